package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/savegen/savegen/internal/cli/ui"
	"github.com/savegen/savegen/internal/compiler/ast"
	"github.com/savegen/savegen/internal/compiler/pipeline"
)

var parseCompact bool

// NewParseCommand creates the parse command
func NewParseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <save>",
		Short: "Dump the document tree of a save as JSON",
		Long: `Parse a save file and print its document tree as JSON.

Object keys keep their order and repeated keys are written once per
occurrence, so the output mirrors the save exactly.`,
		Example: `  # Pretty-print a save
  savegen parse autosave.sav

  # Single-line output for piping
  savegen parse --compact autosave.sav`,
		Args: cobra.ExactArgs(1),
		RunE: runParse,
	}

	cmd.Flags().BoolVar(&parseCompact, "compact", false, "Print without indentation")

	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	in, err := pipeline.ReadInput(args[0])
	if err != nil {
		return err
	}

	doc, _, err := pipeline.Parse(in, pipeline.Options{})
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ParseFailure(in.Name, err, noColor))
		return fmt.Errorf("%s: %w", in.Name, err)
	}

	var data []byte
	if parseCompact {
		data, err = ast.MarshalJSON(doc.Root)
	} else {
		data, err = ast.MarshalIndent(doc.Root, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	_, err = cmd.OutOrStdout().Write(append(data, '\n'))
	return err
}

package commands

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/savegen/savegen/internal/cli/ui"
	"github.com/savegen/savegen/internal/compiler/pipeline"
	"github.com/savegen/savegen/internal/utils"
)

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <save|dir>...",
		Short: "Verify that save files parse",
		Long: `Parse save files without inferring a schema and report every failure
with its line, column and byte offset. Exits non-zero if any input fails.`,
		Example: `  # Check a directory of saves
  savegen check saves/`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCheck,
	}

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	files, err := utils.ExpandInputs(args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	errs := make([]error, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			in, err := pipeline.ReadInput(f)
			if err != nil {
				errs[i] = err
				return nil
			}
			_, _, errs[i] = pipeline.Parse(in, pipeline.Options{})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for i, f := range files {
		if errs[i] != nil {
			failed++
			fmt.Fprint(cmd.ErrOrStderr(), ui.ParseFailure(f, errs[i], noColor))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed to parse", failed, len(files))
	}

	ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("%d inputs parsed", len(files)), noColor)
	return nil
}

package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/savegen/savegen/internal/cli/config"
	"github.com/savegen/savegen/internal/cli/ui"
	"github.com/savegen/savegen/internal/compiler/analyzer"
	"github.com/savegen/savegen/internal/compiler/cache"
	"github.com/savegen/savegen/internal/compiler/naming"
	"github.com/savegen/savegen/internal/compiler/pipeline"
	"github.com/savegen/savegen/internal/compiler/schema"
	utilstrings "github.com/savegen/savegen/internal/util/strings"
	"github.com/savegen/savegen/internal/utils"
)

var (
	inferCorpus  bool
	inferFormat  string
	inferOutput  string
	inferRoot    string
	inferSummary bool
	inferWorkers int
)

// NewInferCommand creates the infer command
func NewInferCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "infer <save|dir>...",
		Short: "Infer a schema from save files",
		Long: `Parse save files and infer the schema of their contents.

Each input gets its own schema unless --corpus is given, in which case
every input that parses contributes to a single schema. Directories are
searched for .sav, .txt, gamestate and meta files.

Schemas are written as JSON, YAML or JSON Schema to stdout, to the file named by
--output, or into --output when it is a directory. Diagnostics go to
stderr.`,
		Example: `  # Infer the schema of one save
  savegen infer autosave.sav

  # Infer one schema covering every save in a directory
  savegen infer --corpus saves/

  # Write YAML schemas for several saves into a directory
  savegen infer -f yaml -o schemas/ a.sav b.sav

  # Emit a JSON Schema that validates the typed projection
  savegen infer -f jsonschema -o schemas/ autosave.sav

  # Show a table of inferred types
  savegen infer --summary autosave.sav`,
		Args: cobra.MinimumNArgs(1),
		RunE: runInfer,
	}

	cmd.Flags().BoolVar(&inferCorpus, "corpus", false, "Infer a single schema over all inputs")
	cmd.Flags().StringVarP(&inferFormat, "format", "f", "", "Output format: json, yaml or jsonschema (default from config)")
	cmd.Flags().StringVarP(&inferOutput, "output", "o", "", "Output file or directory (default: stdout)")
	cmd.Flags().StringVar(&inferRoot, "root", "", "Root type name (default: derived from the file name)")
	cmd.Flags().BoolVar(&inferSummary, "summary", false, "Print a table of inferred types to stderr")
	cmd.Flags().IntVarP(&inferWorkers, "workers", "w", 0, "Inputs processed concurrently (default from config)")

	return cmd
}

func runInfer(cmd *cobra.Command, args []string) error {
	stderr := cmd.ErrOrStderr()

	cfg, err := loadConfig(stderr)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	format, err := resolveFormat(inferFormat, cfg.Output.Format)
	if err != nil {
		fmt.Fprint(stderr, ui.ConfigError(err.Error(), []string{"use --format json, yaml or jsonschema"}, noColor))
		return err
	}
	output := inferOutput
	if output == "" {
		output = cfg.Output.Path
	}

	inputs, err := readInputs(args)
	if err != nil {
		return err
	}

	opts, err := pipelineOptions(cfg, log)
	if err != nil {
		return err
	}
	if opts.Cache != nil {
		defer func() {
			st := opts.Cache.Stats()
			log.Debug("document cache",
				zap.Uint64("hits", st.Hits),
				zap.Uint64("misses", st.Misses),
				zap.Int("entries", st.Entries))
		}()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if inferCorpus {
		return inferCorpusMode(ctx, cmd, inputs, opts, format, output)
	}
	return inferEachMode(ctx, cmd, inputs, opts, format, output)
}

func inferCorpusMode(ctx context.Context, cmd *cobra.Command, inputs []pipeline.Input, opts pipeline.Options, format, output string) error {
	stderr := cmd.ErrOrStderr()

	result, err := pipeline.InferCorpus(ctx, inputs, opts)
	if result != nil {
		for _, f := range result.Failures {
			fmt.Fprint(stderr, ui.ParseFailure(f.Input, f.Err, noColor))
		}
	}
	if err != nil {
		return err
	}

	writeDiagnostics(stderr, result.Analysis.Diagnostics)
	var files *schemaFiles
	if isDir(output) {
		files = newSchemaFiles(format)
	}
	if err := writeSchema(cmd.OutOrStdout(), result.Analysis.Graph, format, output, files); err != nil {
		return err
	}
	if inferSummary {
		writeSummary(stderr, len(result.Parsed), result.Analysis)
	}

	if len(result.Failures) > 0 {
		return fmt.Errorf("%d of %d inputs failed to parse", len(result.Failures), len(inputs))
	}
	return nil
}

func inferEachMode(ctx context.Context, cmd *cobra.Command, inputs []pipeline.Input, opts pipeline.Options, format, output string) error {
	stderr := cmd.ErrOrStderr()

	if len(inputs) > 1 && output != "" && !isDir(output) {
		return fmt.Errorf("--output must be a directory when inferring %d inputs separately", len(inputs))
	}
	var files *schemaFiles
	if len(inputs) > 1 || isDir(output) {
		files = newSchemaFiles(format)
	}

	results := pipeline.RunBatch(ctx, inputs, opts)

	failed := 0
	for _, res := range results {
		if !res.OK() {
			failed++
			fmt.Fprint(stderr, ui.ParseFailure(res.Input, res.Err, noColor))
			continue
		}

		writeDiagnostics(stderr, res.Analysis.Diagnostics)
		if err := writeSchema(cmd.OutOrStdout(), res.Analysis.Graph, format, output, files); err != nil {
			return err
		}
		if inferSummary {
			writeSummary(stderr, 1, res.Analysis)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(inputs))
	}
	return nil
}

// resolveFormat prefers the flag over the configured format
func resolveFormat(flag, configured string) (string, error) {
	format := strings.ToLower(flag)
	if format == "" {
		format = strings.ToLower(configured)
	}
	switch format {
	case "", config.FormatJSON:
		return config.FormatJSON, nil
	case config.FormatYAML, "yml":
		return config.FormatYAML, nil
	case config.FormatJSONSchema, "json-schema":
		return config.FormatJSONSchema, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", format)
	}
}

func readInputs(args []string) ([]pipeline.Input, error) {
	files, err := utils.ExpandInputs(args)
	if err != nil {
		return nil, err
	}

	inputs := make([]pipeline.Input, 0, len(files))
	for _, f := range files {
		in, err := pipeline.ReadInput(f)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func pipelineOptions(cfg *config.Config, log *zap.Logger) (pipeline.Options, error) {
	opts := pipeline.Options{
		Analyzer: cfg.AnalyzerOptions(),
		RootName: cfg.RootName,
		Workers:  cfg.Workers,
		Logger:   log,
	}
	if inferRoot != "" {
		opts.RootName = inferRoot
	}
	if inferWorkers > 0 {
		opts.Workers = inferWorkers
	}
	if cfg.CacheSize > 0 {
		dc, err := cache.NewDocumentCache(cfg.CacheSize)
		if err != nil {
			return opts, err
		}
		opts.Cache = dc
	}
	return opts, nil
}

func marshalSchema(g *schema.Graph, format string) ([]byte, error) {
	switch format {
	case config.FormatYAML:
		return schema.MarshalYAML(g)
	case config.FormatJSONSchema:
		return schema.MarshalJSONSchema(g)
	default:
		return schema.MarshalJSON(g)
	}
}

// schemaFiles hands out the file names written into one output directory.
// Graphs whose roots share a name get distinct files (gamestate_schema.json,
// gamestate_type2_schema.json).
type schemaFiles struct {
	format string
	names  *naming.Scope
}

func newSchemaFiles(format string) *schemaFiles {
	return &schemaFiles{format: format, names: naming.NewScope("")}
}

// next returns the file name for g
func (f *schemaFiles) next(g *schema.Graph) string {
	base := utilstrings.ToSnakeCase(f.names.Allocate(g.Root.QualifiedName))
	if f.format == config.FormatJSONSchema {
		return base + ".schema.json"
	}
	return base + "_schema." + f.format
}

// writeSchema writes a graph to stdout, to the output file, or into the
// output directory when files is set
func writeSchema(stdout io.Writer, g *schema.Graph, format, output string, files *schemaFiles) error {
	data, err := marshalSchema(g, format)
	if err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}

	if output == "" {
		if format == config.FormatYAML {
			if _, err := io.WriteString(stdout, "---\n"); err != nil {
				return err
			}
		}
		_, err := stdout.Write(append(data, '\n'))
		return err
	}

	path := output
	if files != nil {
		if err := os.MkdirAll(output, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		path = filepath.Join(output, files.next(g))
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}
	return nil
}

func writeDiagnostics(w io.Writer, diags []analyzer.Diagnostic) {
	for _, d := range diags {
		if d.Severity == analyzer.SeverityInfo && !verbose {
			continue
		}
		fmt.Fprint(w, ui.DiagnosticMessage(d, noColor))
	}
}

func writeSummary(w io.Writer, inputs int, result *analyzer.Result) {
	kv := ui.NewKeyValueTable(w, noColor)
	kv.AddRow("Root", result.Graph.Root.QualifiedName)
	kv.AddRow("Inputs", strconv.Itoa(inputs))
	kv.AddRow("Types", strconv.Itoa(result.Graph.Len()))
	kv.AddRow("Diagnostics", strconv.Itoa(len(result.Diagnostics)))
	kv.Render()
	fmt.Fprintln(w)

	table := ui.NewTable(w, []string{"Type", "Path", "Fields"}, &ui.TableOptions{NoColor: noColor, RightAlign: []int{2}})
	for _, t := range result.Graph.Types {
		table.AddRow(t.QualifiedName, analyzer.DisplayPath(t.Path), strconv.Itoa(len(t.Fields)))
	}
	table.Render()

	if analyzer.HasWarnings(result.Diagnostics) {
		fmt.Fprint(w, ui.Warning("Schema is shallower than the data in places; see warnings above", noColor))
	}
}

func isDir(path string) bool {
	if path == "" {
		return false
	}
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return true
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

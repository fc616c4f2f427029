// Package pipeline runs parse and analysis end to end over save inputs.
// Each input, or each corpus, gets its own registry, signature table and
// name allocator; nothing but parsed documents is shared between workers.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/savegen/savegen/internal/compiler/analyzer"
	"github.com/savegen/savegen/internal/compiler/ast"
	"github.com/savegen/savegen/internal/compiler/cache"
	"github.com/savegen/savegen/internal/compiler/naming"
	"github.com/savegen/savegen/internal/compiler/parser"
)

// Input is one save document supplied by the caller
type Input struct {
	Name string // File path or label, used for root naming and reporting
	Data []byte // Raw bytes, any supported encoding
}

// ReadInput loads a file as an Input
func ReadInput(path string) (Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Input{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Input{Name: path, Data: data}, nil
}

// Options configures a pipeline run
type Options struct {
	Analyzer analyzer.Options
	// RootName overrides the root type name. Empty derives it from the input name.
	RootName string
	// Workers bounds concurrent inputs. Zero means GOMAXPROCS.
	Workers int
	// Cache, when set, reuses parsed documents across inputs with identical bytes.
	Cache  *cache.DocumentCache
	Logger *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (o Options) analyzer() *analyzer.Analyzer {
	aopts := o.Analyzer
	if aopts.Logger == nil {
		aopts.Logger = o.Logger
	}
	return analyzer.New(aopts)
}

// Result is the outcome for one input
type Result struct {
	Input    string
	Document *ast.Document
	Analysis *analyzer.Result
	Cached   bool
	Duration time.Duration
	Err      error
}

// OK reports whether the input parsed and analyzed
func (r *Result) OK() bool {
	return r.Err == nil
}

// RootNameFor derives a root type name from an input name: the file name
// without extension, Pascalized.
func RootNameFor(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return analyzer.DefaultRootName
	}
	return naming.Sanitize(base)
}

// Parse decodes and parses one input, through the cache when configured
func Parse(in Input, opts Options) (*ast.Document, bool, error) {
	if opts.Cache != nil {
		return opts.Cache.Parse(in.Name, in.Data)
	}
	doc, err := parser.ParseBytes(in.Data)
	return doc, false, err
}

// InferDocument parses one input and infers its schema
func InferDocument(ctx context.Context, in Input, opts Options) (*Result, error) {
	log := opts.logger()
	start := time.Now()
	result := &Result{Input: in.Name}

	doc, cached, err := Parse(in, opts)
	if err != nil {
		log.Warn("parse failed", zap.String("input", in.Name), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", in.Name, err)
	}
	result.Document = doc
	result.Cached = cached

	rootName := opts.RootName
	if rootName == "" {
		rootName = RootNameFor(in.Name)
	}

	analysis, err := opts.analyzer().AnalyzeDocument(ctx, doc, rootName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", in.Name, err)
	}
	result.Analysis = analysis
	result.Duration = time.Since(start)

	log.Info("input analyzed",
		zap.String("input", in.Name),
		zap.Bool("cached", cached),
		zap.Int("types", analysis.Graph.Len()),
		zap.Int("diagnostics", len(analysis.Diagnostics)),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// RunBatch infers a schema per input with at most Workers inputs in flight.
// A failing input is recorded on its Result and does not stop the others.
// Results are in input order.
func RunBatch(ctx context.Context, inputs []Input, opts Options) []Result {
	results := make([]Result, len(inputs))

	var g errgroup.Group
	g.SetLimit(opts.workers())

	for i, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Input: in.Name, Err: err}
				return nil
			}
			res, err := InferDocument(ctx, in, opts)
			if err != nil {
				results[i] = Result{Input: in.Name, Err: err}
				return nil
			}
			results[i] = *res
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// CorpusResult is the outcome of inferring one schema over many inputs
type CorpusResult struct {
	Analysis *analyzer.Result
	Parsed   []string // Inputs that contributed
	Failures []Result // Inputs that failed to parse
}

// InferCorpus parses every input concurrently and infers one schema covering
// all that parsed. It fails only when no input parses or analysis fails.
func InferCorpus(ctx context.Context, inputs []Input, opts Options) (*CorpusResult, error) {
	if len(inputs) == 0 {
		return nil, analyzer.ErrNoDocuments
	}
	log := opts.logger()

	docs := make([]*ast.Document, len(inputs))
	errs := make([]error, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, _, err := Parse(in, opts)
			if err != nil {
				log.Warn("parse failed", zap.String("input", in.Name), zap.Error(err))
				errs[i] = fmt.Errorf("%s: %w", in.Name, err)
				return nil
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &CorpusResult{}
	parsed := make([]*ast.Document, 0, len(docs))
	for i, doc := range docs {
		if doc == nil {
			result.Failures = append(result.Failures, Result{Input: inputs[i].Name, Err: errs[i]})
			continue
		}
		parsed = append(parsed, doc)
		result.Parsed = append(result.Parsed, inputs[i].Name)
	}
	if len(parsed) == 0 {
		return result, fmt.Errorf("no input parsed: %w", analyzer.ErrNoDocuments)
	}

	rootName := opts.RootName
	if rootName == "" {
		rootName = RootNameFor(result.Parsed[0])
	}

	analysis, err := opts.analyzer().AnalyzeDocuments(ctx, parsed, rootName)
	if err != nil {
		return result, err
	}
	result.Analysis = analysis

	log.Info("corpus analyzed",
		zap.Int("inputs", len(parsed)),
		zap.Int("failures", len(result.Failures)),
		zap.Int("types", analysis.Graph.Len()))
	return result, nil
}

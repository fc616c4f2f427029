// Package analyzer infers a schema graph from parsed save documents.
//
// Analysis runs in two stages. The registry stage records every node under
// its structural path across all sample documents. The inference stage walks
// the first document and, at each path, merges the shape of the node at hand
// with every sibling occurrence the registry holds.
package analyzer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/savegen/savegen/internal/compiler/ast"
	"github.com/savegen/savegen/internal/compiler/registry"
	"github.com/savegen/savegen/internal/compiler/schema"
)

// DefaultRootName names the root type when the caller gives none
const DefaultRootName = "Save"

var (
	// ErrNilDocument is returned when a document or its root is nil
	ErrNilDocument = errors.New("document cannot be nil")
	// ErrNoDocuments is returned when there is nothing to analyze
	ErrNoDocuments = errors.New("no documents to analyze")
)

// Result is the output of one analysis run
type Result struct {
	Graph       *schema.Graph
	Diagnostics []Diagnostic
}

// Analyzer infers schemas. It holds only configuration, so one value can
// serve any number of runs, concurrently or not.
type Analyzer struct {
	opts Options
}

// New creates an analyzer. Zero-valued options take their defaults.
func New(opts Options) *Analyzer {
	return &Analyzer{opts: opts.withDefaults()}
}

// Options returns the effective options
func (a *Analyzer) Options() Options {
	return a.opts
}

// AnalyzeDocument infers the schema of a single document
func (a *Analyzer) AnalyzeDocument(ctx context.Context, doc *ast.Document, rootName string) (*Result, error) {
	if doc == nil || doc.Root == nil {
		return nil, ErrNilDocument
	}
	return a.AnalyzeDocuments(ctx, []*ast.Document{doc}, rootName)
}

// AnalyzeDocuments infers one schema covering every document. All roots
// feed a single registry, so the root type is the union of their keys.
func (a *Analyzer) AnalyzeDocuments(ctx context.Context, docs []*ast.Document, rootName string) (*Result, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	reg := a.NewRegistry()
	for i, doc := range docs {
		if doc == nil || doc.Root == nil {
			return nil, fmt.Errorf("document %d: %w", i, ErrNilDocument)
		}
		reg.Collect(doc)
	}

	return a.Analyze(ctx, docs[0].Root, reg, rootName)
}

// NewRegistry creates a registry that collects no deeper than analysis will look
func (a *Analyzer) NewRegistry() *registry.Registry {
	reg := registry.New()
	reg.MaxDepth = a.opts.MaxDepth + 2
	return reg
}

// Analyze runs inference from root against a registry the caller has
// already filled. root must have been collected into reg at the root path.
func (a *Analyzer) Analyze(ctx context.Context, root *ast.Object, reg *registry.Registry, rootName string) (*Result, error) {
	if root == nil {
		return nil, ErrNilDocument
	}
	if rootName == "" {
		rootName = DefaultRootName
	}

	c := newAnalysisContext(ctx, a.opts, reg)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis interrupted: %w", err)
	}

	instances := c.instancesFor(root, registry.Root)
	objects := objectsOf(instances)
	rep := root
	if rep.IsEmpty() {
		for _, obj := range objects {
			if !obj.IsEmpty() {
				rep = obj
				break
			}
		}
	}

	c.root = c.newType(rootName, nil, registry.Root)
	if err := c.populateRecord(c.root, rep, objects, registry.Root, 0); err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	c.finishType(c.root)

	graph := c.graph()
	if err := graph.Validate(); err != nil {
		return nil, fmt.Errorf("inferred schema is invalid: %w", err)
	}

	c.log.Debug("analysis complete",
		zap.String("root", c.root.QualifiedName),
		zap.Int("types", graph.Len()),
		zap.Int("paths", reg.Len()),
		zap.Int("diagnostics", len(c.diags.list)))

	return &Result{
		Graph:       graph,
		Diagnostics: c.Diagnostics(),
	}, nil
}

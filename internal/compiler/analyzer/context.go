package analyzer

import (
	"context"

	"go.uber.org/zap"

	"github.com/savegen/savegen/internal/compiler/naming"
	"github.com/savegen/savegen/internal/compiler/registry"
	"github.com/savegen/savegen/internal/compiler/schema"
)

// AnalysisContext is the mutable state of one analysis run. It is created
// fresh by every Analyze call and never shared between runs or goroutines.
type AnalysisContext struct {
	ctx       context.Context
	opts      Options
	log       *zap.Logger
	registry  *registry.Registry
	allocator *naming.Allocator
	diags     *diagnostics

	// signatures maps a sealed record's structural signature to the one type kept for it
	signatures map[string]*schema.SchemaType
	// paths maps a normalized structural path to the descriptor inferred there.
	// Records are entered the moment they are created, before their fields exist.
	paths map[string]schema.TypeDescriptor
	// pairValuePaths marks normalized paths holding pair-dictionary values
	pairValuePaths map[string]struct{}

	types     []*schema.SchemaType
	discarded map[*schema.SchemaType]struct{}
	selfRef   map[*schema.SchemaType]struct{}
	live      int
	root      *schema.SchemaType
}

func newAnalysisContext(ctx context.Context, opts Options, reg *registry.Registry) *AnalysisContext {
	return &AnalysisContext{
		ctx:            ctx,
		opts:           opts,
		log:            opts.Logger,
		registry:       reg,
		allocator:      naming.NewAllocator(),
		diags:          newDiagnostics(),
		signatures:     make(map[string]*schema.SchemaType),
		paths:          make(map[string]schema.TypeDescriptor),
		pairValuePaths: make(map[string]struct{}),
		types:          make([]*schema.SchemaType, 0),
		discarded:      make(map[*schema.SchemaType]struct{}),
		selfRef:        make(map[*schema.SchemaType]struct{}),
	}
}

// Registry returns the registry the run reads sibling instances from
func (c *AnalysisContext) Registry() *registry.Registry {
	return c.registry
}

// Diagnostics returns the notes recorded so far
func (c *AnalysisContext) Diagnostics() []Diagnostic {
	return c.diags.list
}

// newType allocates names for a record type and enters it in the path table
func (c *AnalysisContext) newType(preferred string, enclosing *schema.SchemaType, path string) *schema.SchemaType {
	scope := ""
	if enclosing != nil {
		scope = enclosing.QualifiedName
	}
	qualified := c.allocator.Allocate(preferred, c.allocator.Global())
	name := qualified
	if scope != "" {
		name = c.allocator.Allocate(preferred, c.allocator.Nested(scope))
	}

	t := schema.NewSchemaType(name, qualified, scope, path)
	c.types = append(c.types, t)
	c.live++
	c.paths[registry.Normalize(path)] = schema.NewReference(t)

	c.log.Debug("schema type created",
		zap.String("type", qualified),
		zap.String("path", DisplayPath(path)))
	return t
}

// finishType seals t and replaces it with an existing structurally identical
// type when one exists. The root and self-referencing types are always kept.
func (c *AnalysisContext) finishType(t *schema.SchemaType) *schema.SchemaType {
	t.Seal()
	if t == c.root {
		return t
	}
	if _, recursive := c.selfRef[t]; recursive {
		return t
	}

	sig := t.Signature()
	if existing, ok := c.signatures[sig]; ok {
		c.discarded[t] = struct{}{}
		c.live--
		c.paths[registry.Normalize(t.Path)] = schema.NewReference(existing)
		c.log.Debug("schema type reused",
			zap.String("type", existing.QualifiedName),
			zap.String("path", DisplayPath(t.Path)))
		return existing
	}

	c.signatures[sig] = t
	return t
}

// graph assembles the kept types in creation order
func (c *AnalysisContext) graph() *schema.Graph {
	kept := make([]*schema.SchemaType, 0, c.live)
	for _, t := range c.types {
		if _, gone := c.discarded[t]; !gone {
			kept = append(kept, t)
		}
	}
	return schema.NewGraph(c.root, kept)
}

// note records a diagnostic and logs warnings
func (c *AnalysisContext) note(code Code, severity Severity, path, format string, args ...any) {
	if !c.diags.add(code, severity, path, format, args...) {
		return
	}
	if severity == SeverityWarning {
		d := c.diags.list[len(c.diags.list)-1]
		c.log.Warn(d.Message,
			zap.String("code", string(d.Code)),
			zap.String("path", DisplayPath(path)))
	}
}

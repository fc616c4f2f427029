// Package registry indexes every node observed at each structural path of
// one or more documents. The analyzer consults it to merge the shape of a
// value with the shapes of its sibling occurrences.
package registry

import (
	"sort"
	"strings"

	"github.com/savegen/savegen/internal/compiler/ast"
)

// Registry holds the instances observed for one analysis run.
// It is not safe for concurrent use.
type Registry struct {
	// MaxDepth stops collection below the given path depth. Zero means unlimited.
	MaxDepth int

	instances  map[string][]ast.Node
	signatures map[string]map[string]int
	related    map[string][]string
	paths      []string
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		instances:  make(map[string][]ast.Node),
		signatures: make(map[string]map[string]int),
		related:    make(map[string][]string),
		paths:      make([]string, 0),
	}
}

// RegisterInstance appends node to the instance list for path
func (r *Registry) RegisterInstance(path string, node ast.Node) {
	if _, seen := r.instances[path]; !seen {
		r.paths = append(r.paths, path)
		norm := Normalize(path)
		r.related[norm] = append(r.related[norm], path)
	}
	r.instances[path] = append(r.instances[path], node)
}

// RegisterObjectSignature records an object shape seen at path
func (r *Registry) RegisterObjectSignature(path, signature string) {
	sigs, ok := r.signatures[path]
	if !ok {
		sigs = make(map[string]int)
		r.signatures[path] = sigs
	}
	sigs[signature]++
}

// HasNonEmptyInstance reports whether any instance at path is a non-empty Object or Array
func (r *Registry) HasNonEmptyInstance(path string) bool {
	for _, node := range r.instances[path] {
		switch n := node.(type) {
		case *ast.Object, *ast.Array:
			if !n.IsEmpty() {
				return true
			}
		}
	}
	return false
}

// InstancesAt returns the nodes recorded at exactly path, in observation order
func (r *Registry) InstancesAt(path string) []ast.Node {
	return r.instances[path]
}

// RelatedPaths returns every recorded path that normalizes to the same form
// as path, in first-seen order
func (r *Registry) RelatedPaths(path string) []string {
	return r.related[Normalize(path)]
}

// RelatedInstances returns the instances at path followed by those at every
// related path
func (r *Registry) RelatedInstances(path string) []ast.Node {
	own := r.instances[path]
	related := r.RelatedPaths(path)
	if len(related) <= 1 {
		return own
	}

	nodes := make([]ast.Node, 0, len(own))
	nodes = append(nodes, own...)
	for _, p := range related {
		if p != path {
			nodes = append(nodes, r.instances[p]...)
		}
	}
	return nodes
}

// PathsStartingWith returns the recorded paths at or below prefix, sorted
func (r *Registry) PathsStartingWith(prefix string) []string {
	matches := make([]string, 0)
	for _, p := range r.paths {
		if hasPrefix(p, prefix) {
			matches = append(matches, p)
		}
	}
	sort.Strings(matches)
	return matches
}

// Signatures returns the distinct object shapes seen at path with their counts
func (r *Registry) Signatures(path string) map[string]int {
	return r.signatures[path]
}

// Paths returns every recorded path in first-seen order
func (r *Registry) Paths() []string {
	return r.paths
}

// Len returns the number of distinct paths recorded
func (r *Registry) Len() int {
	return len(r.paths)
}

// Collect walks a document and records every node under its structural path
func (r *Registry) Collect(doc *ast.Document) {
	if doc == nil || doc.Root == nil {
		return
	}
	r.collect(Root, doc.Root, 0)
}

func (r *Registry) collect(path string, node ast.Node, depth int) {
	r.RegisterInstance(path, node)
	if r.MaxDepth > 0 && depth >= r.MaxDepth {
		return
	}

	switch n := node.(type) {
	case *ast.Object:
		r.RegisterObjectSignature(path, ObjectSignature(n))
		for _, prop := range n.Properties {
			r.collect(Child(path, prop.Key), prop.Value, depth+1)
		}
	case *ast.Array:
		elem := Element(path)
		for _, item := range n.Items {
			r.collect(elem, item, depth+1)
		}
	}
}

// ObjectSignature summarizes one object instance: its distinct keys, sorted,
// each tagged with the kind of its first value and marked when repeated.
func ObjectSignature(obj *ast.Object) string {
	counts := obj.KeyCounts()
	parts := make([]string, 0, len(counts))
	for _, key := range obj.Keys() {
		value, _ := obj.Get(key)
		part := key + ":" + nodeTag(value)
		if counts[key] > 1 {
			part += "*"
		}
		parts = append(parts, part)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func nodeTag(node ast.Node) string {
	switch n := node.(type) {
	case *ast.Object:
		return "o"
	case *ast.Array:
		return "a"
	case *ast.Scalar:
		return n.Kind.String()
	default:
		return "?"
	}
}

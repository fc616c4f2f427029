package schema

import (
	"fmt"
)

// Graph is the result of one analysis run
type Graph struct {
	Root  *SchemaType
	Types []*SchemaType // Every type in creation order, Root included
}

// NewGraph creates a graph from its root and full type list
func NewGraph(root *SchemaType, types []*SchemaType) *Graph {
	return &Graph{Root: root, Types: types}
}

// Lookup finds a type by qualified name
func (g *Graph) Lookup(qualifiedName string) (*SchemaType, bool) {
	for _, t := range g.Types {
		if t.QualifiedName == qualifiedName {
			return t, true
		}
	}
	return nil, false
}

// Len returns the number of types in the graph
func (g *Graph) Len() int {
	return len(g.Types)
}

// Validate checks the graph invariants: the root is part of the graph,
// qualified names are unique, names are unique within their scope, every
// reference resolves to a type in this graph, and dictionary signatures
// round-trip.
func (g *Graph) Validate() error {
	if g.Root == nil {
		return fmt.Errorf("graph has no root type")
	}

	members := make(map[*SchemaType]struct{}, len(g.Types))
	qualified := make(map[string]struct{}, len(g.Types))
	scoped := make(map[string]struct{}, len(g.Types))

	for _, t := range g.Types {
		members[t] = struct{}{}

		if _, dup := qualified[t.QualifiedName]; dup {
			return fmt.Errorf("duplicate qualified name %q", t.QualifiedName)
		}
		qualified[t.QualifiedName] = struct{}{}

		scopedName := t.Scope + "\x00" + t.Name
		if _, dup := scoped[scopedName]; dup {
			return fmt.Errorf("duplicate name %q in scope %q", t.Name, t.Scope)
		}
		scoped[scopedName] = struct{}{}
	}

	if _, ok := members[g.Root]; !ok {
		return fmt.Errorf("root type %q is not part of the graph", g.Root.QualifiedName)
	}

	for _, t := range g.Types {
		for _, f := range t.Fields {
			if err := validateDescriptor(f.Type, members); err != nil {
				return fmt.Errorf("%s.%s: %w", t.QualifiedName, f.Name, err)
			}
		}
	}
	return nil
}

func validateDescriptor(d TypeDescriptor, members map[*SchemaType]struct{}) error {
	switch v := d.(type) {
	case *Primitive:
		return nil
	case *List:
		return validateDescriptor(v.Element, members)
	case *Dictionary:
		key, value, err := ParseDictionarySignature(v.Signature())
		if err != nil {
			return err
		}
		if key != v.Key || value != v.Value.Signature() {
			return fmt.Errorf("%w: dictionary signature does not round-trip", ErrMalformedDescriptor)
		}
		return validateDescriptor(v.Value, members)
	case *Reference:
		if v.Type == nil {
			return fmt.Errorf("nil reference")
		}
		if _, ok := members[v.Type]; !ok {
			return fmt.Errorf("reference to %q outside the graph", v.Type.QualifiedName)
		}
		return nil
	default:
		return fmt.Errorf("unknown descriptor %T", d)
	}
}

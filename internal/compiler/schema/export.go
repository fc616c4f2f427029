package schema

import (
	"fmt"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Descriptor kinds used in exported documents
const (
	KindPrimitive  = "primitive"
	KindList       = "list"
	KindDictionary = "dictionary"
	KindReference  = "reference"
)

// ExportedGraph is the portable form of a Graph. References are by qualified name.
type ExportedGraph struct {
	Root  string         `json:"root" yaml:"root"`
	Types []ExportedType `json:"types" yaml:"types"`
}

// ExportedType is the portable form of a SchemaType
type ExportedType struct {
	Name          string          `json:"name" yaml:"name"`
	QualifiedName string          `json:"qualified_name" yaml:"qualified_name"`
	Scope         string          `json:"scope,omitempty" yaml:"scope,omitempty"`
	Path          string          `json:"path" yaml:"path"`
	Fields        []ExportedField `json:"fields" yaml:"fields"`
}

// ExportedField is the portable form of a Field
type ExportedField struct {
	SourceKey string             `json:"source_key" yaml:"source_key"`
	Name      string             `json:"name" yaml:"name"`
	Type      ExportedDescriptor `json:"type" yaml:"type"`
	Nullable  bool               `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Repeated  bool               `json:"repeated_key,omitempty" yaml:"repeated_key,omitempty"`
}

// ExportedDescriptor is the portable form of a TypeDescriptor
type ExportedDescriptor struct {
	Kind      string              `json:"kind" yaml:"kind"`
	Primitive string              `json:"primitive,omitempty" yaml:"primitive,omitempty"`
	Key       string              `json:"key,omitempty" yaml:"key,omitempty"`
	Element   *ExportedDescriptor `json:"element,omitempty" yaml:"element,omitempty"`
	Ref       string              `json:"ref,omitempty" yaml:"ref,omitempty"`
}

// Export converts a graph to its portable form
func Export(g *Graph) (*ExportedGraph, error) {
	if g == nil || g.Root == nil {
		return nil, fmt.Errorf("graph cannot be nil")
	}

	out := &ExportedGraph{
		Root:  g.Root.QualifiedName,
		Types: make([]ExportedType, 0, len(g.Types)),
	}

	for _, t := range g.Types {
		et := ExportedType{
			Name:          t.Name,
			QualifiedName: t.QualifiedName,
			Scope:         t.Scope,
			Path:          t.Path,
			Fields:        make([]ExportedField, 0, len(t.Fields)),
		}
		for _, f := range t.Fields {
			d, err := exportDescriptor(f.Type)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", t.QualifiedName, f.Name, err)
			}
			et.Fields = append(et.Fields, ExportedField{
				SourceKey: f.SourceKey,
				Name:      f.Name,
				Type:      *d,
				Nullable:  f.Nullable,
				Repeated:  f.RepresentsRepeatedKey,
			})
		}
		out.Types = append(out.Types, et)
	}

	return out, nil
}

func exportDescriptor(d TypeDescriptor) (*ExportedDescriptor, error) {
	switch v := d.(type) {
	case *Primitive:
		return &ExportedDescriptor{Kind: KindPrimitive, Primitive: v.Kind.String()}, nil
	case *List:
		elem, err := exportDescriptor(v.Element)
		if err != nil {
			return nil, err
		}
		return &ExportedDescriptor{Kind: KindList, Element: elem}, nil
	case *Dictionary:
		elem, err := exportDescriptor(v.Value)
		if err != nil {
			return nil, err
		}
		return &ExportedDescriptor{Kind: KindDictionary, Key: v.Key.String(), Element: elem}, nil
	case *Reference:
		return &ExportedDescriptor{Kind: KindReference, Ref: v.Type.QualifiedName}, nil
	default:
		return nil, fmt.Errorf("unknown descriptor %T", d)
	}
}

// MarshalJSON serializes the graph as indented JSON.
// The output is deterministic: types keep creation order and fields keep source order.
func MarshalJSON(g *Graph) ([]byte, error) {
	exported, err := Export(g)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(exported, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize schema: %w", err)
	}
	return data, nil
}

// MarshalYAML serializes the graph as YAML
func MarshalYAML(g *Graph) ([]byte, error) {
	exported, err := Export(g)
	if err != nil {
		return nil, err
	}
	data, err := yaml.Marshal(exported)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize schema: %w", err)
	}
	return data, nil
}

// UnmarshalExported reads a JSON document produced by MarshalJSON
func UnmarshalExported(data []byte) (*ExportedGraph, error) {
	var g ExportedGraph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to deserialize schema: %w", err)
	}
	return &g, nil
}

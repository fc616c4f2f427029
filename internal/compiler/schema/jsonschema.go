package schema

import (
	"fmt"
	"math"

	"github.com/goccy/go-json"
	"github.com/google/jsonschema-go/jsonschema"
)

// JSONSchemaDraft is the dialect of generated JSON Schema documents
const JSONSchemaDraft = "https://json-schema.org/draft/2020-12/schema"

// Patterns for values the save format writes as text
const (
	datePattern       = `^\d{1,4}\.\d{1,2}\.\d{1,2}$`
	integerKeyPattern = `^-?[0-9]+$`
)

// JSONSchema converts a graph to a JSON Schema document describing the typed
// projection of a save: every record type becomes an entry under $defs and the
// document itself refers to the root. Non-nullable fields are required.
func JSONSchema(g *Graph) (*jsonschema.Schema, error) {
	if g == nil || g.Root == nil {
		return nil, fmt.Errorf("graph cannot be nil")
	}

	defs := make(map[string]*jsonschema.Schema, len(g.Types))
	for _, t := range g.Types {
		def, err := recordSchema(t)
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", t.QualifiedName, err)
		}
		defs[t.QualifiedName] = def
	}

	return &jsonschema.Schema{
		Schema: JSONSchemaDraft,
		Title:  g.Root.QualifiedName,
		Ref:    defRef(g.Root),
		Defs:   defs,
	}, nil
}

// MarshalJSONSchema serializes the graph as an indented JSON Schema document
func MarshalJSONSchema(g *Graph) ([]byte, error) {
	s, err := JSONSchema(g)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize JSON schema: %w", err)
	}
	return data, nil
}

func defRef(t *SchemaType) string {
	return "#/$defs/" + t.QualifiedName
}

func recordSchema(t *SchemaType) (*jsonschema.Schema, error) {
	s := &jsonschema.Schema{
		Type:       "object",
		Title:      t.Name,
		Properties: make(map[string]*jsonschema.Schema, len(t.Fields)),
	}
	if t.Path != "" {
		s.Description = "Inferred at " + t.Path
	}

	for _, f := range t.Fields {
		prop, err := descriptorSchema(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.SourceKey, err)
		}
		if f.RepresentsRepeatedKey {
			prop.Description = "Key repeated in the save; one element per occurrence"
		}
		s.Properties[f.SourceKey] = prop
		if !f.Nullable {
			s.Required = append(s.Required, f.SourceKey)
		}
	}
	return s, nil
}

func descriptorSchema(d TypeDescriptor) (*jsonschema.Schema, error) {
	switch v := d.(type) {
	case *Primitive:
		return primitiveSchema(v.Kind), nil
	case *List:
		items, err := descriptorSchema(v.Element)
		if err != nil {
			return nil, err
		}
		return &jsonschema.Schema{Type: "array", Items: items}, nil
	case *Dictionary:
		values, err := descriptorSchema(v.Value)
		if err != nil {
			return nil, err
		}
		s := &jsonschema.Schema{Type: "object", AdditionalProperties: values}
		if v.Key != KeyString {
			s.PropertyNames = &jsonschema.Schema{Pattern: integerKeyPattern}
		}
		return s, nil
	case *Reference:
		return &jsonschema.Schema{Ref: defRef(v.Type)}, nil
	default:
		return nil, fmt.Errorf("unknown descriptor %T", d)
	}
}

func primitiveSchema(kind PrimitiveKind) *jsonschema.Schema {
	switch kind {
	case PrimitiveBool:
		return &jsonschema.Schema{Type: "boolean"}
	case PrimitiveInt:
		return &jsonschema.Schema{
			Type:    "integer",
			Minimum: float64Ptr(math.MinInt32),
			Maximum: float64Ptr(math.MaxInt32),
		}
	case PrimitiveLong:
		return &jsonschema.Schema{Type: "integer"}
	case PrimitiveFloat:
		return &jsonschema.Schema{Type: "number"}
	case PrimitiveDateTime:
		return &jsonschema.Schema{Type: "string", Pattern: datePattern}
	case PrimitiveGuid:
		return &jsonschema.Schema{Type: "string", Format: "uuid"}
	case PrimitiveNode:
		// Untyped subtree
		return &jsonschema.Schema{}
	default:
		return &jsonschema.Schema{Type: "string"}
	}
}

func float64Ptr(v float64) *float64 {
	return &v
}

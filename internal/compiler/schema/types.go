// Package schema defines the inferred type graph: record types, fields and
// type descriptors. It is the hand-off artifact to code emitters and binders.
package schema

import (
	"fmt"
	"sort"
	"strings"
)

// PrimitiveKind identifies a primitive type
type PrimitiveKind int

const (
	// PrimitiveString is text. Identifiers map here too.
	PrimitiveString PrimitiveKind = iota
	// PrimitiveBool is a yes/no flag.
	PrimitiveBool
	// PrimitiveInt is a 32-bit signed integer.
	PrimitiveInt
	// PrimitiveLong is a 64-bit signed integer.
	PrimitiveLong
	// PrimitiveFloat is a floating point number.
	PrimitiveFloat
	// PrimitiveDateTime is a calendar date, emitted as the target's date/time type.
	PrimitiveDateTime
	// PrimitiveGuid is a 128-bit identifier.
	PrimitiveGuid
	// PrimitiveNode is an untyped document subtree, used where analysis stopped early.
	PrimitiveNode
)

var primitiveNames = map[PrimitiveKind]string{
	PrimitiveString:   "String",
	PrimitiveBool:     "Bool",
	PrimitiveInt:      "Int",
	PrimitiveLong:     "Long",
	PrimitiveFloat:    "Float",
	PrimitiveDateTime: "DateTime",
	PrimitiveGuid:     "Guid",
	PrimitiveNode:     "Node",
}

// String returns the signature name of the primitive kind
func (k PrimitiveKind) String() string {
	if name, ok := primitiveNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Primitive(%d)", int(k))
}

// IsNumeric reports whether the kind is Int, Long or Float
func (k PrimitiveKind) IsNumeric() bool {
	return k == PrimitiveInt || k == PrimitiveLong || k == PrimitiveFloat
}

// KeyKind identifies the key type of a dictionary
type KeyKind int

const (
	// KeyInt keys fit a 32-bit signed integer.
	KeyInt KeyKind = iota
	// KeyLong keys need 64 bits.
	KeyLong
	// KeyString keys are arbitrary text.
	KeyString
)

var keyNames = map[KeyKind]string{
	KeyInt:    "Int",
	KeyLong:   "Long",
	KeyString: "String",
}

// String returns the signature name of the key kind
func (k KeyKind) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Key(%d)", int(k))
}

// TypeDescriptor describes the type of a field or collection element.
// Implementations: *Primitive, *List, *Dictionary, *Reference.
type TypeDescriptor interface {
	// Signature returns a canonical string for structural comparison
	Signature() string
	descriptor()
}

// Primitive is a scalar type
type Primitive struct {
	Kind PrimitiveKind
}

// NewPrimitive creates a primitive descriptor
func NewPrimitive(kind PrimitiveKind) *Primitive {
	return &Primitive{Kind: kind}
}

func (p *Primitive) descriptor() {}

// Signature returns the primitive name
func (p *Primitive) Signature() string {
	return p.Kind.String()
}

// List is an ordered collection
type List struct {
	Element TypeDescriptor
}

// NewList creates a list descriptor
func NewList(element TypeDescriptor) *List {
	return &List{Element: element}
}

func (l *List) descriptor() {}

// Signature returns List<element>
func (l *List) Signature() string {
	return "List<" + l.Element.Signature() + ">"
}

// Dictionary is a keyed collection
type Dictionary struct {
	Key   KeyKind
	Value TypeDescriptor
}

// NewDictionary creates a dictionary descriptor
func NewDictionary(key KeyKind, value TypeDescriptor) *Dictionary {
	return &Dictionary{Key: key, Value: value}
}

func (d *Dictionary) descriptor() {}

// Signature returns Dictionary<key,value>
func (d *Dictionary) Signature() string {
	return "Dictionary<" + d.Key.String() + "," + d.Value.Signature() + ">"
}

// Reference points at a record type in the same graph
type Reference struct {
	Type *SchemaType
}

// NewReference creates a reference descriptor
func NewReference(t *SchemaType) *Reference {
	return &Reference{Type: t}
}

func (r *Reference) descriptor() {}

// Signature returns the structural signature of the referenced type
func (r *Reference) Signature() string {
	return r.Type.Signature()
}

// Field is one member of a record type
type Field struct {
	SourceKey             string         // Key as written in the save file
	Name                  string         // Allocated identifier
	Type                  TypeDescriptor // Inferred type
	Nullable              bool           // Absent in at least one observed instance
	RepresentsRepeatedKey bool           // Key repeats; Type is a List of the value type
}

// SchemaType is an inferred record type
type SchemaType struct {
	Name          string // Unique within Scope
	QualifiedName string // Unique within the graph
	Scope         string // QualifiedName of the enclosing type, empty for top level
	Path          string // Structural path the type was first inferred at
	Fields        []*Field

	signature string
	sealed    bool
	visiting  bool
}

// NewSchemaType creates an empty record type
func NewSchemaType(name, qualifiedName, scope, path string) *SchemaType {
	return &SchemaType{
		Name:          name,
		QualifiedName: qualifiedName,
		Scope:         scope,
		Path:          path,
		Fields:        make([]*Field, 0),
	}
}

// AddField appends a field. Adding to a sealed type panics.
func (t *SchemaType) AddField(f *Field) {
	if t.sealed {
		panic(fmt.Sprintf("schema: AddField on sealed type %s", t.QualifiedName))
	}
	t.Fields = append(t.Fields, f)
}

// Field returns the field with the given source key
func (t *SchemaType) Field(sourceKey string) (*Field, bool) {
	for _, f := range t.Fields {
		if f.SourceKey == sourceKey {
			return f, true
		}
	}
	return nil, false
}

// HasField reports whether a field with the given source key exists
func (t *SchemaType) HasField(sourceKey string) bool {
	_, ok := t.Field(sourceKey)
	return ok
}

// Seal freezes the field list and caches the signature
func (t *SchemaType) Seal() {
	if t.sealed {
		return
	}
	t.signature = t.computeSignature()
	t.sealed = true
}

// Sealed reports whether Seal has been called
func (t *SchemaType) Sealed() bool {
	return t.sealed
}

// Signature returns the structural signature: the sorted sourceKey:typeSignature
// pairs wrapped in braces. A key is followed by * when the field gathers a
// repeated key and by ? when it is nullable. A type that refers back to itself
// while its signature is being computed contributes @QualifiedName at that
// point.
func (t *SchemaType) Signature() string {
	if t.sealed {
		return t.signature
	}
	return t.computeSignature()
}

func (t *SchemaType) computeSignature() string {
	if t.visiting {
		return "@" + t.QualifiedName
	}
	t.visiting = true
	defer func() { t.visiting = false }()

	parts := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		parts = append(parts, signatureKey(f.SourceKey)+fieldMarkers(f)+":"+f.Type.Signature())
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ",") + "}"
}

func fieldMarkers(f *Field) string {
	switch {
	case f.RepresentsRepeatedKey && f.Nullable:
		return "*?"
	case f.RepresentsRepeatedKey:
		return "*"
	case f.Nullable:
		return "?"
	}
	return ""
}

// signatureKey percent-encodes the characters that delimit signatures so a
// quoted source key cannot unbalance them
func signatureKey(key string) string {
	if !strings.ContainsAny(key, signatureSpecials) {
		return key
	}
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		c := key[i]
		if strings.IndexByte(signatureSpecials, c) >= 0 {
			fmt.Fprintf(&b, "%%%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

const signatureSpecials = "<>{},:%@*?"

// String returns the qualified name
func (t *SchemaType) String() string {
	return t.QualifiedName
}

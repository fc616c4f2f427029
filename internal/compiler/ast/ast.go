// Package ast defines the document tree produced by parsing Clausewitz save text.
// A tree is built from three node kinds: Object, Array and Scalar.
package ast

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Node is the base interface for all document nodes.
// The set of implementations is closed: *Object, *Array and *Scalar.
type Node interface {
	// IsEmpty reports whether a container node has no children. Scalars are never empty.
	IsEmpty() bool
	node()
}

// Document is the result of parsing one save file. The root is always an Object.
type Document struct {
	Root *Object
}

// Property is a single key=value pair inside an Object
type Property struct {
	Key   string
	Value Node
}

// Object is an ordered sequence of properties. Keys may repeat.
type Object struct {
	Properties []Property
}

func (o *Object) node() {}

// IsEmpty returns true if the object has no properties
func (o *Object) IsEmpty() bool {
	return len(o.Properties) == 0
}

// Len returns the number of properties, counting repeated keys
func (o *Object) Len() int {
	return len(o.Properties)
}

// Get returns the value of the first property with the given key
func (o *Object) Get(key string) (Node, bool) {
	for _, p := range o.Properties {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// GetAll returns the values of every property with the given key, in order
func (o *Object) GetAll(key string) []Node {
	var values []Node
	for _, p := range o.Properties {
		if p.Key == key {
			values = append(values, p.Value)
		}
	}
	return values
}

// Keys returns the distinct keys in first-seen order
func (o *Object) Keys() []string {
	seen := make(map[string]struct{}, len(o.Properties))
	keys := make([]string, 0, len(o.Properties))
	for _, p := range o.Properties {
		if _, ok := seen[p.Key]; ok {
			continue
		}
		seen[p.Key] = struct{}{}
		keys = append(keys, p.Key)
	}
	return keys
}

// KeyCounts returns how many times each key occurs
func (o *Object) KeyCounts() map[string]int {
	counts := make(map[string]int, len(o.Properties))
	for _, p := range o.Properties {
		counts[p.Key]++
	}
	return counts
}

// Array is an ordered sequence of values
type Array struct {
	Items []Node
}

func (a *Array) node() {}

// IsEmpty returns true if the array has no items
func (a *Array) IsEmpty() bool {
	return len(a.Items) == 0
}

// ScalarKind represents the kind of a scalar value
type ScalarKind int

const (
	// ScalarString is a quoted string.
	ScalarString ScalarKind = iota
	// ScalarIdentifier is an unquoted token that is not any other kind. Typed as a string.
	ScalarIdentifier
	// ScalarBool is the bare token yes or no.
	ScalarBool
	// ScalarInt32 is an integer literal within the 32-bit signed range.
	ScalarInt32
	// ScalarInt64 is an integer literal outside the 32-bit range.
	ScalarInt64
	// ScalarFloat is a literal containing a decimal point.
	ScalarFloat
	// ScalarDate is a quoted YYYY.MM.DD date.
	ScalarDate
	// ScalarGuid is a quoted 8-4-4-4-12 hex identifier.
	ScalarGuid
)

var scalarKindNames = map[ScalarKind]string{
	ScalarString:     "string",
	ScalarIdentifier: "identifier",
	ScalarBool:       "bool",
	ScalarInt32:      "int32",
	ScalarInt64:      "int64",
	ScalarFloat:      "float",
	ScalarDate:       "date",
	ScalarGuid:       "guid",
}

// String returns the string representation of a ScalarKind
func (k ScalarKind) String() string {
	if name, ok := scalarKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

// IsNumeric reports whether the kind is Int32, Int64 or Float
func (k ScalarKind) IsNumeric() bool {
	return k == ScalarInt32 || k == ScalarInt64 || k == ScalarFloat
}

// IsIntegral reports whether the kind is Int32 or Int64
func (k ScalarKind) IsIntegral() bool {
	return k == ScalarInt32 || k == ScalarInt64
}

// Date is a calendar date as written in save files (YYYY.MM.DD).
// Game calendars can start at year 1, so it is not a time.Time.
type Date struct {
	Year  int
	Month int
	Day   int
}

// String renders the date in save file notation
func (d Date) String() string {
	return fmt.Sprintf("%d.%02d.%02d", d.Year, d.Month, d.Day)
}

// Time converts the date to a UTC time.Time at midnight
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// Scalar is a leaf value. Value holds the typed payload:
//
//	ScalarString, ScalarIdentifier: string
//	ScalarBool:                     bool
//	ScalarInt32:                    int32
//	ScalarInt64:                    int64
//	ScalarFloat:                    float64
//	ScalarDate:                     Date
//	ScalarGuid:                     uuid.UUID
type Scalar struct {
	Kind  ScalarKind
	Raw   string
	Value any
}

func (s *Scalar) node() {}

// IsEmpty always returns false for scalars
func (s *Scalar) IsEmpty() bool {
	return false
}

// String returns the textual value of the scalar
func (s *Scalar) String() string {
	switch v := s.Value.(type) {
	case string:
		return v
	case Date:
		return v.String()
	case uuid.UUID:
		return v.String()
	}
	return s.Raw
}

// NewString creates a string scalar
func NewString(raw string) *Scalar {
	return &Scalar{Kind: ScalarString, Raw: raw, Value: raw}
}

// NewIdentifier creates an identifier scalar
func NewIdentifier(raw string) *Scalar {
	return &Scalar{Kind: ScalarIdentifier, Raw: raw, Value: raw}
}

// NewBool creates a bool scalar rendered as yes/no
func NewBool(v bool) *Scalar {
	raw := "no"
	if v {
		raw = "yes"
	}
	return &Scalar{Kind: ScalarBool, Raw: raw, Value: v}
}

// NewInt32 creates a 32-bit integer scalar
func NewInt32(v int32) *Scalar {
	return &Scalar{Kind: ScalarInt32, Raw: fmt.Sprint(v), Value: v}
}

// NewInt64 creates a 64-bit integer scalar
func NewInt64(v int64) *Scalar {
	return &Scalar{Kind: ScalarInt64, Raw: fmt.Sprint(v), Value: v}
}

// NewFloat creates a float scalar from its raw text
func NewFloat(raw string, v float64) *Scalar {
	return &Scalar{Kind: ScalarFloat, Raw: raw, Value: v}
}

// NewDate creates a date scalar
func NewDate(raw string, d Date) *Scalar {
	return &Scalar{Kind: ScalarDate, Raw: raw, Value: d}
}

// NewGuid creates a guid scalar
func NewGuid(raw string, id uuid.UUID) *Scalar {
	return &Scalar{Kind: ScalarGuid, Raw: raw, Value: id}
}

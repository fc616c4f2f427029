package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/savegen/savegen/internal/compiler/ast"
	"github.com/savegen/savegen/internal/compiler/schema"
)

func objectOf(keys ...string) *ast.Object {
	obj := &ast.Object{}
	for _, k := range keys {
		obj.Properties = append(obj.Properties, ast.Property{Key: k, Value: ast.NewInt32(1)})
	}
	return obj
}

func TestClassifyObjects(t *testing.T) {
	opts := DefaultOptions()

	tests := []struct {
		name    string
		objects []*ast.Object
		shape   objectShape
		key     schema.KeyKind
	}{
		{"empty", []*ast.Object{objectOf()}, shapeRecord, schema.KeyInt},
		{"named", []*ast.Object{objectOf("a", "b")}, shapeRecord, schema.KeyInt},
		{"indexed", []*ast.Object{objectOf("1", "2")}, shapeIndexedDictionary, schema.KeyInt},
		{"negative indexed", []*ast.Object{objectOf("-1", "7")}, shapeIndexedDictionary, schema.KeyInt},
		{"long indexed", []*ast.Object{objectOf("1", "9999999999")}, shapeIndexedDictionary, schema.KeyLong},
		{"ratio", []*ast.Object{objectOf("1", "2", "3", "4", "x")}, shapeDataDictionary, schema.KeyString},
		{"ratio below minimum entries", []*ast.Object{objectOf("1", "2", "3", "x")}, shapeRecord, schema.KeyInt},
		{"ratio below threshold", []*ast.Object{objectOf("1", "2", "3", "x", "y", "z", "w", "v")}, shapeRecord, schema.KeyInt},
		{"out of range", []*ast.Object{objectOf("x", "2000000")}, shapeDataDictionary, schema.KeyString},
		{"negative out of range", []*ast.Object{objectOf("x", "-5")}, shapeDataDictionary, schema.KeyString},
		{"union across siblings", []*ast.Object{objectOf("1"), objectOf("name")}, shapeRecord, schema.KeyInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := classifyObjects(tt.objects, opts)
			assert.Equal(t, tt.shape, c.shape)
			assert.Equal(t, tt.key, c.key)
		})
	}
}

func pair(key ast.Node, rest ...ast.Node) *ast.Array {
	return &ast.Array{Items: append([]ast.Node{key}, rest...)}
}

func TestDetectPairs(t *testing.T) {
	obj := objectOf("a")

	tests := []struct {
		name  string
		arr   *ast.Array
		shape pairShape
		key   schema.KeyKind
	}{
		{"strict", &ast.Array{Items: []ast.Node{pair(ast.NewInt32(1), obj), pair(ast.NewInt32(2), obj)}}, strictPairs, schema.KeyInt},
		{"long keys", &ast.Array{Items: []ast.Node{pair(ast.NewInt64(1 << 40), obj)}}, strictPairs, schema.KeyLong},
		{"extra element", &ast.Array{Items: []ast.Node{pair(ast.NewInt32(1), obj), pair(ast.NewInt32(2), obj, ast.NewInt32(3))}}, nearPairs, schema.KeyInt},
		{"missing value", &ast.Array{Items: []ast.Node{pair(ast.NewInt32(1), obj), pair(ast.NewInt32(2))}}, nearPairs, schema.KeyInt},
		{"swapped", &ast.Array{Items: []ast.Node{pair(obj, ast.NewInt32(1))}}, notPairs, schema.KeyInt},
		{"string key", &ast.Array{Items: []ast.Node{pair(ast.NewString("a"), obj)}}, notPairs, schema.KeyInt},
		{"scalar values", &ast.Array{Items: []ast.Node{pair(ast.NewInt32(1), ast.NewInt32(2))}}, notPairs, schema.KeyInt},
		{"not arrays", &ast.Array{Items: []ast.Node{obj}}, notPairs, schema.KeyInt},
		{"empty", &ast.Array{}, notPairs, schema.KeyInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape, key := detectPairs(tt.arr)
			assert.Equal(t, tt.shape, shape)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestDetectPairsAcross(t *testing.T) {
	obj := objectOf("a")
	intPairs := &ast.Array{Items: []ast.Node{pair(ast.NewInt32(1), obj)}}
	longPairs := &ast.Array{Items: []ast.Node{pair(ast.NewInt64(5_000_000_000), obj)}}
	near := &ast.Array{Items: []ast.Node{pair(ast.NewInt32(2), obj, ast.NewInt32(3))}}
	scalars := &ast.Array{Items: []ast.Node{ast.NewInt32(1)}}

	tests := []struct {
		name   string
		arrays []*ast.Array
		shape  pairShape
		key    schema.KeyKind
	}{
		{"all strict", []*ast.Array{intPairs, intPairs}, strictPairs, schema.KeyInt},
		{"long key in sibling", []*ast.Array{intPairs, longPairs}, strictPairs, schema.KeyLong},
		{"empty sibling ignored", []*ast.Array{intPairs, {}}, strictPairs, schema.KeyInt},
		{"near sibling", []*ast.Array{intPairs, near}, nearPairs, schema.KeyInt},
		{"scalar sibling", []*ast.Array{longPairs, scalars}, nearPairs, schema.KeyLong},
		{"no pairs", []*ast.Array{scalars, scalars}, notPairs, schema.KeyInt},
		{"only empty", []*ast.Array{{}}, notPairs, schema.KeyInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape, key := detectPairsAcross(tt.arrays)
			assert.Equal(t, tt.shape, shape)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestRepresentative(t *testing.T) {
	empty := &ast.Object{}
	full := objectOf("a")
	arr := &ast.Array{Items: []ast.Node{ast.NewInt32(1)}}
	scalar := ast.NewString("x")

	rep, mixed := representative(full, []ast.Node{full, empty})
	assert.Same(t, full, rep)
	assert.False(t, mixed)

	rep, mixed = representative(empty, []ast.Node{empty, full})
	assert.Same(t, full, rep)
	assert.False(t, mixed)

	rep, mixed = representative(empty, []ast.Node{empty, arr})
	assert.Same(t, arr, rep)
	assert.False(t, mixed)

	rep, mixed = representative(scalar, []ast.Node{scalar, full})
	assert.Same(t, full, rep)
	assert.True(t, mixed)

	rep, mixed = representative(empty, []ast.Node{empty})
	assert.Same(t, empty, rep)
	assert.False(t, mixed)
}

func TestDiagnostics_Dedupe(t *testing.T) {
	d := newDiagnostics()

	assert.True(t, d.add(CodeDepthLimit, SeverityWarning, "a.b", "too deep"))
	assert.False(t, d.add(CodeDepthLimit, SeverityWarning, "a.b", "too deep"))
	assert.True(t, d.add(CodeDepthLimit, SeverityWarning, "a.c", "too deep"))
	assert.Len(t, d.list, 2)
	assert.Equal(t, "WARNING [SCH200] a.b: too deep", d.list[0].String())
	assert.Equal(t, "<root>", DisplayPath(""))
}

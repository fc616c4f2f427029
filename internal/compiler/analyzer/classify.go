package analyzer

import (
	"math"
	"strconv"

	"github.com/savegen/savegen/internal/compiler/ast"
	"github.com/savegen/savegen/internal/compiler/schema"
)

// objectShape is how an object is interpreted
type objectShape int

const (
	shapeRecord objectShape = iota
	shapeIndexedDictionary
	shapeDataDictionary
)

// classification is the result of classifying the objects seen at one path
type classification struct {
	shape objectShape
	key   schema.KeyKind
	// numeric and total count distinct keys, for diagnostics
	numeric int
	total   int
}

// classifyObjects decides between record and dictionary from the distinct
// keys of every object observed at a path.
//
// Indexed dictionary: at least one key and every key is an integer.
// Data dictionary: numeric share above DictionaryRatio with at least
// MinDictionaryEntries keys, or any numeric key outside [0, MaxFieldKey].
func classifyObjects(objects []*ast.Object, opts Options) classification {
	seen := make(map[string]struct{})
	c := classification{shape: shapeRecord, key: schema.KeyInt}
	outOfRange := false

	for _, obj := range objects {
		for _, prop := range obj.Properties {
			if _, dup := seen[prop.Key]; dup {
				continue
			}
			seen[prop.Key] = struct{}{}
			c.total++

			v, err := strconv.ParseInt(prop.Key, 10, 64)
			if err != nil {
				continue
			}
			c.numeric++
			if v < math.MinInt32 || v > math.MaxInt32 {
				c.key = schema.KeyLong
			}
			if v < 0 || v > opts.MaxFieldKey {
				outOfRange = true
			}
		}
	}

	switch {
	case c.total > 0 && c.numeric == c.total:
		c.shape = shapeIndexedDictionary
	case c.numeric > 0 && (outOfRange ||
		(float64(c.numeric)/float64(c.total) > opts.DictionaryRatio && c.total >= opts.MinDictionaryEntries)):
		c.shape = shapeDataDictionary
		c.key = schema.KeyString
	default:
		c.shape = shapeRecord
	}
	return c
}

// pairShape is the outcome of checking an array for the pair-dictionary pattern
type pairShape int

const (
	notPairs pairShape = iota
	strictPairs
	nearPairs
)

// detectPairs checks whether every item is a two-element array holding an
// integer scalar followed by an object. Arrays whose items all open with an
// integer and carry an object second but break the strict shape somewhere
// report nearPairs. The key kind is Long when any key needs 64 bits.
func detectPairs(arr *ast.Array) (pairShape, schema.KeyKind) {
	if arr.IsEmpty() {
		return notPairs, schema.KeyInt
	}

	key := schema.KeyInt
	strict := true
	sawObject := false

	for _, item := range arr.Items {
		inner, ok := item.(*ast.Array)
		if !ok || inner.IsEmpty() {
			return notPairs, schema.KeyInt
		}
		first, ok := inner.Items[0].(*ast.Scalar)
		if !ok || !first.Kind.IsIntegral() {
			return notPairs, schema.KeyInt
		}
		if first.Kind == ast.ScalarInt64 {
			key = schema.KeyLong
		}

		if len(inner.Items) >= 2 {
			if _, isObj := inner.Items[1].(*ast.Object); isObj {
				sawObject = true
				if len(inner.Items) == 2 {
					continue
				}
			}
		}
		strict = false
	}

	switch {
	case strict:
		return strictPairs, key
	case sawObject:
		return nearPairs, key
	default:
		return notPairs, schema.KeyInt
	}
}

// detectPairsAcross folds detectPairs over every non-empty array observed at
// one path. The result is strict only when every array is strict; any array
// that matches or nearly matches makes it nearPairs otherwise. Key kinds
// combine through PromoteKey.
func detectPairsAcross(arrays []*ast.Array) (pairShape, schema.KeyKind) {
	key := schema.KeyInt
	seen, strict, resembling := 0, 0, 0

	for _, arr := range arrays {
		if arr.IsEmpty() {
			continue
		}
		seen++
		shape, k := detectPairs(arr)
		if shape == notPairs {
			continue
		}
		resembling++
		if shape == strictPairs {
			strict++
		}
		key = schema.PromoteKey(key, k)
	}

	switch {
	case seen > 0 && strict == seen:
		return strictPairs, key
	case resembling > 0:
		return nearPairs, key
	default:
		return notPairs, schema.KeyInt
	}
}

// arraysOf returns rep followed by the other arrays among instances
func arraysOf(rep *ast.Array, instances []ast.Node) []*ast.Array {
	out := []*ast.Array{rep}
	for _, inst := range instances {
		if arr, ok := inst.(*ast.Array); ok && arr != rep {
			out = append(out, arr)
		}
	}
	return out
}

// nodeShape is the coarse category of a node
type nodeShape int

const (
	shapeScalar nodeShape = iota
	shapeObject
	shapeArray
)

func shapeOf(node ast.Node) nodeShape {
	switch node.(type) {
	case *ast.Object:
		return shapeObject
	case *ast.Array:
		return shapeArray
	default:
		return shapeScalar
	}
}

// representative picks the node whose shape stands for a path. The current
// node wins when it is a non-empty container; otherwise the first non-empty
// container among its sibling instances; otherwise the node itself. The
// second result reports whether scalars and containers, or objects and
// arrays, were both observed.
func representative(node ast.Node, instances []ast.Node) (ast.Node, bool) {
	var (
		chosen  ast.Node
		shapes  = make(map[nodeShape]struct{}, 3)
		ownFull = shapeOf(node) != shapeScalar && !node.IsEmpty()
	)
	if ownFull {
		chosen = node
	}

	for _, inst := range instances {
		shape := shapeOf(inst)
		if shape != shapeScalar && inst.IsEmpty() {
			continue
		}
		shapes[shape] = struct{}{}
		if chosen == nil && shape != shapeScalar {
			chosen = inst
		}
	}

	if chosen == nil {
		chosen = node
	}
	return chosen, len(shapes) > 1
}

// scalarPrimitive maps a scalar kind to its schema primitive
func scalarPrimitive(kind ast.ScalarKind) schema.PrimitiveKind {
	switch kind {
	case ast.ScalarBool:
		return schema.PrimitiveBool
	case ast.ScalarInt32:
		return schema.PrimitiveInt
	case ast.ScalarInt64:
		return schema.PrimitiveLong
	case ast.ScalarFloat:
		return schema.PrimitiveFloat
	case ast.ScalarDate:
		return schema.PrimitiveDateTime
	case ast.ScalarGuid:
		return schema.PrimitiveGuid
	default:
		return schema.PrimitiveString
	}
}

// objectsOf filters the objects out of a node list
func objectsOf(nodes []ast.Node) []*ast.Object {
	objects := make([]*ast.Object, 0, len(nodes))
	for _, n := range nodes {
		if obj, ok := n.(*ast.Object); ok {
			objects = append(objects, obj)
		}
	}
	return objects
}

package analyzer

import (
	"fmt"

	"github.com/savegen/savegen/internal/compiler/ast"
	"github.com/savegen/savegen/internal/compiler/naming"
	"github.com/savegen/savegen/internal/compiler/registry"
	"github.com/savegen/savegen/internal/compiler/schema"
)

// analyzeNode infers the descriptor for node observed at path. preferred is
// the base name for any record created here and enclosing is the type that
// owns the field being inferred.
func (c *AnalysisContext) analyzeNode(node ast.Node, preferred string, enclosing *schema.SchemaType, path string, depth int) (schema.TypeDescriptor, error) {
	if err := c.ctx.Err(); err != nil {
		return nil, err
	}

	norm := registry.Normalize(path)
	if desc, ok := c.paths[norm]; ok {
		if ref, isRef := desc.(*schema.Reference); isRef && !ref.Type.Sealed() {
			c.selfRef[ref.Type] = struct{}{}
		}
		return desc, nil
	}

	if depth > c.opts.MaxDepth {
		c.note(CodeDepthLimit, SeverityWarning, path,
			"nesting deeper than %d levels is typed as Node", c.opts.MaxDepth)
		return c.remember(norm, schema.NewPrimitive(schema.PrimitiveNode)), nil
	}

	instances := c.instancesFor(node, path)
	rep, mixed := representative(node, instances)
	if mixed {
		c.note(CodeMixedShapes, SeverityInfo, path,
			"values of different shapes observed; inferred from the %s form", shapeName(shapeOf(rep)))
	}

	var (
		desc schema.TypeDescriptor
		err  error
	)
	switch n := rep.(type) {
	case *ast.Scalar:
		desc = c.analyzeScalar(n, instances, path)
	case *ast.Object:
		desc, err = c.analyzeObject(n, instances, preferred, enclosing, path, depth)
	case *ast.Array:
		desc, err = c.analyzeArray(n, instances, preferred, enclosing, path, depth)
	default:
		return nil, fmt.Errorf("unsupported node %T at %s", rep, DisplayPath(path))
	}
	if err != nil {
		return nil, err
	}
	return c.remember(norm, desc), nil
}

func (c *AnalysisContext) remember(norm string, desc schema.TypeDescriptor) schema.TypeDescriptor {
	c.paths[norm] = desc
	return desc
}

// instancesFor returns node followed by every other instance recorded at
// paths related to path. Scalars are dropped at pair-dictionary value paths,
// where the registry also holds the keys.
func (c *AnalysisContext) instancesFor(node ast.Node, path string) []ast.Node {
	related := c.registry.RelatedInstances(path)
	_, pairValues := c.pairValuePaths[registry.Normalize(path)]

	out := make([]ast.Node, 0, len(related)+1)
	out = append(out, node)
	for _, n := range related {
		if n == node {
			continue
		}
		if pairValues && shapeOf(n) == shapeScalar {
			continue
		}
		out = append(out, n)
	}
	return out
}

// analyzeScalar folds the kinds of every scalar observed at the path through
// numeric promotion. Incompatible kinds widen to String.
func (c *AnalysisContext) analyzeScalar(own *ast.Scalar, instances []ast.Node, path string) schema.TypeDescriptor {
	kind := scalarPrimitive(own.Kind)
	conflict := false

	for _, inst := range instances {
		s, ok := inst.(*ast.Scalar)
		if !ok {
			continue
		}
		var clash bool
		kind, clash = schema.Promote(kind, scalarPrimitive(s.Kind))
		conflict = conflict || clash
	}

	if conflict {
		c.note(CodeScalarConflict, SeverityInfo, path,
			"incompatible scalar kinds observed; widened to String")
	}
	return schema.NewPrimitive(kind)
}

// analyzeObject classifies the objects at path and infers a dictionary or a record
func (c *AnalysisContext) analyzeObject(rep *ast.Object, instances []ast.Node, preferred string, enclosing *schema.SchemaType, path string, depth int) (schema.TypeDescriptor, error) {
	objects := objectsOf(instances)
	cls := classifyObjects(objects, c.opts)

	switch cls.shape {
	case shapeIndexedDictionary:
		return c.analyzeDictionary(rep, objects, cls.key, preferred, enclosing, path, depth)
	case shapeDataDictionary:
		c.note(CodeDictionaryHeuristic, SeverityInfo, path,
			"%d of %d keys are numeric; inferred as a dictionary with String keys", cls.numeric, cls.total)
		return c.analyzeDictionary(rep, objects, cls.key, preferred, enclosing, path, depth)
	}

	if c.live >= c.opts.MaxTypes {
		c.note(CodeTypeLimit, SeverityWarning, path,
			"type limit of %d reached; subtree typed as Node", c.opts.MaxTypes)
		return schema.NewPrimitive(schema.PrimitiveNode), nil
	}

	t, err := c.analyzeRecord(rep, objects, preferred, enclosing, path, depth)
	if err != nil {
		return nil, err
	}
	return schema.NewReference(t), nil
}

// analyzeDictionary infers the value type from the first numerically keyed
// entry. Every such entry shares one structural path, so the value type
// covers all of them.
func (c *AnalysisContext) analyzeDictionary(rep *ast.Object, objects []*ast.Object, key schema.KeyKind, preferred string, enclosing *schema.SchemaType, path string, depth int) (schema.TypeDescriptor, error) {
	value := firstNumericValue(rep)
	for i := 0; value == nil && i < len(objects); i++ {
		value = firstNumericValue(objects[i])
	}
	if value == nil {
		return nil, fmt.Errorf("dictionary at %s has no numeric entry", DisplayPath(path))
	}

	valueType, err := c.analyzeNode(value, naming.Singularize(preferred), enclosing,
		registry.Child(path, "0"), depth+1)
	if err != nil {
		return nil, err
	}
	return schema.NewDictionary(key, valueType), nil
}

func firstNumericValue(obj *ast.Object) ast.Node {
	for _, prop := range obj.Properties {
		if registry.IsNumericKey(prop.Key) {
			return prop.Value
		}
	}
	return nil
}

// keyStats summarizes one distinct key across the objects at a path
type keyStats struct {
	key      string
	value    ast.Node
	present  int
	repeated bool
}

// unionKeys merges the keys of rep and its sibling objects in first-seen
// order, rep first.
func unionKeys(rep *ast.Object, objects []*ast.Object) []*keyStats {
	stats := make([]*keyStats, 0, rep.Len())
	index := make(map[string]*keyStats)

	visit := func(obj *ast.Object) {
		counts := obj.KeyCounts()
		for _, prop := range obj.Properties {
			ks, ok := index[prop.Key]
			if !ok {
				ks = &keyStats{key: prop.Key, value: prop.Value}
				index[prop.Key] = ks
				stats = append(stats, ks)
			}
			if counts[prop.Key] > 0 {
				ks.present++
				ks.repeated = ks.repeated || counts[prop.Key] > 1
				counts[prop.Key] = 0
			}
		}
	}

	visit(rep)
	for _, obj := range objects {
		if obj != rep {
			visit(obj)
		}
	}
	return stats
}

// analyzeRecord creates a record type for the objects at path and populates
// it with the union of their keys
func (c *AnalysisContext) analyzeRecord(rep *ast.Object, objects []*ast.Object, preferred string, enclosing *schema.SchemaType, path string, depth int) (*schema.SchemaType, error) {
	if shapes := c.distinctShapes(path); shapes > manyShapes {
		c.note(CodeManyShapes, SeverityInfo, path,
			"%d distinct object shapes observed; fields merged into one record", shapes)
	}

	t := c.newType(preferred, enclosing, path)
	if err := c.populateRecord(t, rep, objects, path, depth); err != nil {
		return nil, err
	}
	return c.finishType(t), nil
}

func (c *AnalysisContext) populateRecord(t *schema.SchemaType, rep *ast.Object, objects []*ast.Object, path string, depth int) error {
	if rep.IsEmpty() {
		c.note(CodeEmptyShape, SeverityInfo, path,
			"no occurrence has any fields; inferred an empty record")
	}

	fieldNames := naming.NewScope(t.QualifiedName)
	for _, ks := range unionKeys(rep, objects) {
		childPath := registry.Child(path, ks.key)
		childName := t.Name + naming.Word(ks.key)

		desc, err := c.analyzeNode(ks.value, childName, t, childPath, depth+1)
		if err != nil {
			return err
		}
		if ks.repeated {
			desc = schema.NewList(desc)
		}

		t.AddField(&schema.Field{
			SourceKey:             ks.key,
			Name:                  fieldNames.Allocate(ks.key),
			Type:                  desc,
			Nullable:              ks.present < len(objects),
			RepresentsRepeatedKey: ks.repeated,
		})
	}
	return nil
}

// analyzeArray infers a list, or a dictionary for the pair pattern
// { { key { ... } } { key { ... } } }. Every array observed at the path
// must match the pattern, and the key kind covers all of them.
func (c *AnalysisContext) analyzeArray(rep *ast.Array, instances []ast.Node, preferred string, enclosing *schema.SchemaType, path string, depth int) (schema.TypeDescriptor, error) {
	if rep.IsEmpty() {
		c.note(CodeEmptyShape, SeverityInfo, path,
			"no occurrence has any items; element type is Node")
		return schema.NewList(schema.NewPrimitive(schema.PrimitiveNode)), nil
	}

	element := naming.Singularize(preferred)

	shape, key := detectPairsAcross(arraysOf(rep, instances))
	switch shape {
	case strictPairs:
		valuePath := registry.Element(registry.Element(path))
		c.pairValuePaths[registry.Normalize(valuePath)] = struct{}{}

		value := rep.Items[0].(*ast.Array).Items[1]
		valueType, err := c.analyzeNode(value, element, enclosing, valuePath, depth+2)
		if err != nil {
			return nil, err
		}
		return schema.NewDictionary(key, valueType), nil
	case nearPairs:
		c.note(CodePairDictionaryFallback, SeverityInfo, path,
			"items resemble [key, object] pairs but not every occurrence has that exact shape; inferred as a list")
	}

	elemType, err := c.analyzeNode(rep.Items[0], element, enclosing, registry.Element(path), depth+1)
	if err != nil {
		return nil, err
	}
	return schema.NewList(elemType), nil
}

// manyShapes is the number of distinct object shapes at one path above
// which the merged record is reported
const manyShapes = 4

// distinctShapes counts the object signatures recorded at path and every
// related path
func (c *AnalysisContext) distinctShapes(path string) int {
	related := c.registry.RelatedPaths(path)
	if len(related) == 1 {
		return len(c.registry.Signatures(related[0]))
	}

	seen := make(map[string]struct{})
	for _, p := range related {
		for sig := range c.registry.Signatures(p) {
			seen[sig] = struct{}{}
		}
	}
	return len(seen)
}

func shapeName(s nodeShape) string {
	switch s {
	case shapeObject:
		return "object"
	case shapeArray:
		return "array"
	default:
		return "scalar"
	}
}

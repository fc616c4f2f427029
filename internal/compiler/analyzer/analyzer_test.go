package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savegen/savegen/internal/compiler/ast"
	"github.com/savegen/savegen/internal/compiler/parser"
	"github.com/savegen/savegen/internal/compiler/registry"
	"github.com/savegen/savegen/internal/compiler/schema"
)

func mustParse(t *testing.T, text string) *ast.Document {
	t.Helper()
	doc, err := parser.Parse(text)
	require.NoError(t, err)
	return doc
}

func analyze(t *testing.T, text string) *Result {
	t.Helper()
	return analyzeWith(t, DefaultOptions(), text)
}

func analyzeWith(t *testing.T, opts Options, text string) *Result {
	t.Helper()
	result, err := New(opts).AnalyzeDocument(context.Background(), mustParse(t, text), "Save")
	require.NoError(t, err)
	require.NoError(t, result.Graph.Validate())
	return result
}

func field(t *testing.T, typ *schema.SchemaType, key string) *schema.Field {
	t.Helper()
	f, ok := typ.Field(key)
	require.True(t, ok, "field %q missing on %s", key, typ.QualifiedName)
	return f
}

func referenced(t *testing.T, d schema.TypeDescriptor) *schema.SchemaType {
	t.Helper()
	ref, ok := d.(*schema.Reference)
	require.True(t, ok, "expected reference, got %s", d.Signature())
	return ref.Type
}

func hasCode(diags []Diagnostic, code Code) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestAnalyze_ScalarPrimitives(t *testing.T) {
	result := analyze(t, `
		name="Earth"
		tag=FRA
		flag=yes
		size=16
		population=4294967296
		growth=0.25
		start="2200.01.01"
		id="123e4567-e89b-12d3-a456-426614174000"
	`)
	root := result.Graph.Root

	expected := map[string]string{
		"name":       "String",
		"tag":        "String",
		"flag":       "Bool",
		"size":       "Int",
		"population": "Long",
		"growth":     "Float",
		"start":      "DateTime",
		"id":         "Guid",
	}
	for key, sig := range expected {
		assert.Equal(t, sig, field(t, root, key).Type.Signature(), key)
	}
	assert.Empty(t, result.Diagnostics)
}

func TestAnalyze_RepeatedKeyBecomesList(t *testing.T) {
	result := analyze(t, `trait="a" trait="b" trait="c"`)
	root := result.Graph.Root

	require.Len(t, root.Fields, 1)
	f := root.Fields[0]
	assert.Equal(t, "trait", f.SourceKey)
	assert.Equal(t, "Trait", f.Name)
	assert.Equal(t, "List<String>", f.Type.Signature())
	assert.True(t, f.RepresentsRepeatedKey)
	assert.False(t, f.Nullable)
}

func TestAnalyze_RepeatedInSiblingOnly(t *testing.T) {
	result := analyze(t, `
		ships={
			{ module=gun }
			{ module=gun module=shield }
		}
	`)
	ship := referenced(t, field(t, result.Graph.Root, "ships").Type.(*schema.List).Element)

	f := field(t, ship, "module")
	assert.True(t, f.RepresentsRepeatedKey)
	assert.Equal(t, "List<String>", f.Type.Signature())
}

func TestAnalyze_IntegerKeysBecomeDictionary(t *testing.T) {
	result := analyze(t, `
		planets={
			1={ name="Earth" size=16 }
			2={ name="Mars" size=10 }
		}
	`)

	f := field(t, result.Graph.Root, "planets")
	dict, ok := f.Type.(*schema.Dictionary)
	require.True(t, ok, "expected dictionary, got %s", f.Type.Signature())
	assert.Equal(t, schema.KeyInt, dict.Key)

	planet := referenced(t, dict.Value)
	assert.Equal(t, "SavePlanet", planet.Name)
	assert.Equal(t, "Save", planet.Scope)
	assert.False(t, planet.HasField("1"))
	assert.True(t, planet.HasField("name"))
	assert.True(t, planet.HasField("size"))
}

func TestAnalyze_LongKeys(t *testing.T) {
	result := analyze(t, `m={ 1={ x=1 } 3000000000={ x=2 } }`)

	dict := field(t, result.Graph.Root, "m").Type.(*schema.Dictionary)
	assert.Equal(t, schema.KeyLong, dict.Key)
}

func TestAnalyze_DataDictionaryByRatio(t *testing.T) {
	result := analyze(t, `m={ 1=a 2=b 3=c 4=d 5=e name=x }`)

	f := field(t, result.Graph.Root, "m")
	assert.Equal(t, "Dictionary<String,String>", f.Type.Signature())
	assert.True(t, hasCode(result.Diagnostics, CodeDictionaryHeuristic))
}

func TestAnalyze_DataDictionaryByOutOfRangeKey(t *testing.T) {
	result := analyze(t, `m={ 5000000=7 name=8 }`)

	assert.Equal(t, "Dictionary<String,Int>", field(t, result.Graph.Root, "m").Type.Signature())
}

func TestAnalyze_FewNumericKeysStayRecord(t *testing.T) {
	result := analyze(t, `m={ 1=a 2=b name=x }`)

	m := referenced(t, field(t, result.Graph.Root, "m").Type)
	assert.Len(t, m.Fields, 3)
	assert.Equal(t, "Entry", m.Fields[0].Name)
	assert.Equal(t, "EntryType2", m.Fields[1].Name)
	assert.False(t, hasCode(result.Diagnostics, CodeDictionaryHeuristic))
}

func TestAnalyze_SignatureReuse(t *testing.T) {
	result := analyze(t, `
		a={ x=1 y="s" }
		b={ y="t" x=2 }
	`)
	root := result.Graph.Root

	a := referenced(t, field(t, root, "a").Type)
	b := referenced(t, field(t, root, "b").Type)
	assert.Same(t, a, b)
	assert.Equal(t, 2, result.Graph.Len())
}

func TestAnalyze_RepeatedKeyNotMergedWithArrayLiteral(t *testing.T) {
	result := analyze(t, `
		a={ n=1 n=2 }
		b={ n={ 1 2 } }
	`)
	root := result.Graph.Root

	a := referenced(t, field(t, root, "a").Type)
	b := referenced(t, field(t, root, "b").Type)
	assert.NotSame(t, a, b)
	assert.Equal(t, 3, result.Graph.Len())

	assert.True(t, field(t, a, "n").RepresentsRepeatedKey)
	assert.False(t, field(t, b, "n").RepresentsRepeatedKey)
	assert.Equal(t, "List<Int>", field(t, b, "n").Type.Signature())
}

func TestFinishType_RootNeverShared(t *testing.T) {
	c := newAnalysisContext(context.Background(), DefaultOptions().withDefaults(), registry.New())
	xField := func() *schema.Field {
		return &schema.Field{SourceKey: "x", Name: "X", Type: schema.NewPrimitive(schema.PrimitiveInt)}
	}

	c.root = c.newType("Save", nil, registry.Root)
	c.root.AddField(xField())
	assert.Same(t, c.root, c.finishType(c.root))

	other := c.newType("SaveOther", c.root, "other")
	other.AddField(xField())
	assert.Same(t, other, c.finishType(other))

	dup := c.newType("SaveDup", c.root, "dup")
	dup.AddField(xField())
	assert.Same(t, other, c.finishType(dup))

	graph := c.graph()
	assert.Equal(t, []*schema.SchemaType{c.root, other}, graph.Types)
	assert.Equal(t, c.root.Signature(), other.Signature())
}

func TestAnalyze_NumericPromotionAcrossSiblings(t *testing.T) {
	result := analyze(t, `items={ { x=1 } { x=2.5 } { x=3 } }`)

	item := referenced(t, field(t, result.Graph.Root, "items").Type.(*schema.List).Element)
	assert.Equal(t, "SaveItem", item.Name)
	assert.Equal(t, "Float", field(t, item, "x").Type.Signature())
}

func TestAnalyze_IntAndLongPromoteToLong(t *testing.T) {
	result := analyze(t, `v={ 1 4294967296 }`)

	assert.Equal(t, "List<Long>", field(t, result.Graph.Root, "v").Type.Signature())
}

func TestAnalyze_ScalarConflictWidensToString(t *testing.T) {
	result := analyze(t, `items={ { a=yes } { a=1 } }`)

	item := referenced(t, field(t, result.Graph.Root, "items").Type.(*schema.List).Element)
	assert.Equal(t, "String", field(t, item, "a").Type.Signature())
	assert.True(t, hasCode(result.Diagnostics, CodeScalarConflict))
}

func TestAnalyze_NullableFromSiblings(t *testing.T) {
	result := analyze(t, `fleets={ { ships=3 admiral="Ann" } { ships=4 } }`)

	fleet := referenced(t, field(t, result.Graph.Root, "fleets").Type.(*schema.List).Element)
	assert.False(t, field(t, fleet, "ships").Nullable)
	assert.True(t, field(t, fleet, "admiral").Nullable)
}

func TestAnalyze_EmptyBorrowsSiblingShape(t *testing.T) {
	result := analyze(t, `
		x={ y={} }
		x={ y={ z=1 } }
	`)

	x := referenced(t, field(t, result.Graph.Root, "x").Type.(*schema.List).Element)
	y := referenced(t, field(t, x, "y").Type)
	f := field(t, y, "z")
	assert.Equal(t, "Int", f.Type.Signature())
	assert.True(t, f.Nullable)
	assert.False(t, hasCode(result.Diagnostics, CodeEmptyShape))
}

func TestAnalyze_EmptyWithoutSibling(t *testing.T) {
	result := analyze(t, `flags={}`)

	flags := referenced(t, field(t, result.Graph.Root, "flags").Type)
	assert.Empty(t, flags.Fields)
	assert.True(t, hasCode(result.Diagnostics, CodeEmptyShape))
}

func TestAnalyze_EmptyArrayBorrowsSiblingItems(t *testing.T) {
	result := analyze(t, `
		owners={ a={} }
		owners={ a={ 1 2 3 } }
	`)

	owners := referenced(t, field(t, result.Graph.Root, "owners").Type.(*schema.List).Element)
	assert.Equal(t, "List<Int>", field(t, owners, "a").Type.Signature())
}

func TestAnalyze_PairDictionary(t *testing.T) {
	result := analyze(t, `
		pairs={
			{ 1 { a=1 } }
			{ 2 { a=2 b=yes } }
		}
	`)

	f := field(t, result.Graph.Root, "pairs")
	dict, ok := f.Type.(*schema.Dictionary)
	require.True(t, ok, "expected dictionary, got %s", f.Type.Signature())
	assert.Equal(t, schema.KeyInt, dict.Key)

	pair := referenced(t, dict.Value)
	assert.Equal(t, "SavePair", pair.Name)
	assert.True(t, field(t, pair, "b").Nullable)
	assert.False(t, hasCode(result.Diagnostics, CodeMixedShapes))
}

func TestAnalyze_PairDictionaryKeyCoversSiblings(t *testing.T) {
	result := analyze(t, `
		fleets={
			1={ x={ { 1 { v=1 } } } }
			2={ x={ { 5000000000 { v=2 } } } }
		}
	`)

	fleets := field(t, result.Graph.Root, "fleets").Type.(*schema.Dictionary)
	fleet := referenced(t, fleets.Value)
	x, ok := field(t, fleet, "x").Type.(*schema.Dictionary)
	require.True(t, ok, "expected dictionary, got %s", field(t, fleet, "x").Type.Signature())
	assert.Equal(t, schema.KeyLong, x.Key)
	assert.Equal(t, "Int", field(t, referenced(t, x.Value), "v").Type.Signature())
}

func TestAnalyze_PairDictionaryNeedsEverySibling(t *testing.T) {
	result := analyze(t, `
		fleet={ x={ { 1 { v=1 } } } }
		fleet={ x={ { 2 { v=2 } 3 } } }
	`)

	fleet := referenced(t, field(t, result.Graph.Root, "fleet").Type.(*schema.List).Element)
	_, isList := field(t, fleet, "x").Type.(*schema.List)
	assert.True(t, isList, "expected list, got %s", field(t, fleet, "x").Type.Signature())
	assert.True(t, hasCode(result.Diagnostics, CodePairDictionaryFallback))
}

func TestAnalyze_ManyShapesAtOnePath(t *testing.T) {
	result := analyze(t, `items={ { a=1 } { b=1 } { c=1 } { d=1 } { e=1 } }`)

	item := referenced(t, field(t, result.Graph.Root, "items").Type.(*schema.List).Element)
	assert.Len(t, item.Fields, 5)
	assert.True(t, hasCode(result.Diagnostics, CodeManyShapes))

	few := analyze(t, `items={ { a=1 } { a=2 b=1 } { a=3 } }`)
	assert.False(t, hasCode(few.Diagnostics, CodeManyShapes))
}

func TestAnalyze_PairDictionaryNearMissFallsBack(t *testing.T) {
	result := analyze(t, `
		pairs={
			{ 1 { a=1 } }
			{ 2 { a=2 } 3 }
		}
	`)

	f := field(t, result.Graph.Root, "pairs")
	_, isList := f.Type.(*schema.List)
	assert.True(t, isList, "expected list, got %s", f.Type.Signature())
	assert.True(t, hasCode(result.Diagnostics, CodePairDictionaryFallback))
}

func TestAnalyze_ListOfScalars(t *testing.T) {
	result := analyze(t, `test={ 1 2 3 4 5 } names={ "a" "b" }`)

	assert.Equal(t, "List<Int>", field(t, result.Graph.Root, "test").Type.Signature())
	assert.Equal(t, "List<String>", field(t, result.Graph.Root, "names").Type.Signature())
}

func TestAnalyze_NestedListOfLists(t *testing.T) {
	result := analyze(t, `grid={ { 1 2 } { 3 4 } }`)

	assert.Equal(t, "List<List<Int>>", field(t, result.Graph.Root, "grid").Type.Signature())
}

func TestAnalyze_MixedBlock(t *testing.T) {
	result := analyze(t, `m={ a=1 2 3 }`)

	f := field(t, result.Graph.Root, "m")
	_, isList := f.Type.(*schema.List)
	assert.True(t, isList)
	assert.True(t, hasCode(result.Diagnostics, CodeMixedShapes))
}

func TestAnalyze_NameCollisionsInScope(t *testing.T) {
	result := analyze(t, `foo_bar={ a=1 } fooBar={ b=2 }`)
	root := result.Graph.Root

	first := referenced(t, field(t, root, "foo_bar").Type)
	second := referenced(t, field(t, root, "fooBar").Type)
	assert.Equal(t, "SaveFooBar", first.Name)
	assert.Equal(t, "SaveFooBarType2", second.Name)
	assert.Equal(t, "FooBar", field(t, root, "foo_bar").Name)
	assert.Equal(t, "FooBarType2", field(t, root, "fooBar").Name)
}

func TestAnalyze_DepthLimit(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxDepth = 3

	result := analyzeWith(t, opts, `a={ b={ c={ d={ e={ f=1 } } } } } other=5`)

	assert.True(t, hasCode(result.Diagnostics, CodeDepthLimit))
	assert.True(t, HasWarnings(result.Diagnostics))
	assert.Equal(t, "Int", field(t, result.Graph.Root, "other").Type.Signature())

	a := referenced(t, field(t, result.Graph.Root, "a").Type)
	b := referenced(t, field(t, a, "b").Type)
	c := referenced(t, field(t, b, "c").Type)
	assert.Equal(t, "Node", field(t, c, "d").Type.Signature())
}

func TestAnalyze_DeepDocumentCompletes(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 500; i++ {
		fmt.Fprintf(&b, "n%d={ ", i%3)
	}
	b.WriteString("leaf=1")
	for i := 0; i < 500; i++ {
		b.WriteString(" }")
	}

	result := analyze(t, b.String())
	assert.True(t, hasCode(result.Diagnostics, CodeDepthLimit))
}

func TestAnalyze_TypeLimit(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxTypes = 2

	result := analyzeWith(t, opts, `a={ x=1 } b={ y=1 } c={ z=1 }`)
	root := result.Graph.Root

	assert.Equal(t, 2, result.Graph.Len())
	assert.Equal(t, "Node", field(t, root, "b").Type.Signature())
	assert.Equal(t, "Node", field(t, root, "c").Type.Signature())
	assert.True(t, hasCode(result.Diagnostics, CodeTypeLimit))
}

func TestAnalyzeDocuments_UnionAcrossSamples(t *testing.T) {
	docs := []*ast.Document{
		mustParse(t, `a=1`),
		mustParse(t, `a=1.5 b="x"`),
	}

	result, err := New(DefaultOptions()).AnalyzeDocuments(context.Background(), docs, "Gamestate")
	require.NoError(t, err)

	root := result.Graph.Root
	assert.Equal(t, "Gamestate", root.Name)
	assert.Equal(t, "Float", field(t, root, "a").Type.Signature())
	assert.True(t, field(t, root, "b").Nullable)
	assert.False(t, field(t, root, "a").Nullable)
}

func TestAnalyze_Deterministic(t *testing.T) {
	text := `
		country={ tag=FRA planets={ 1={ size=3 } 2={ size=4 } } }
		wars={ { name="A" } { name="B" attacker=1 } }
	`

	first, err := schema.MarshalJSON(analyze(t, text).Graph)
	require.NoError(t, err)
	second, err := schema.MarshalJSON(analyze(t, text).Graph)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestAnalyze_DefaultRootName(t *testing.T) {
	result, err := New(Options{}).AnalyzeDocument(context.Background(), mustParse(t, `a=1`), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultRootName, result.Graph.Root.Name)
}

func TestAnalyze_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(DefaultOptions()).AnalyzeDocument(ctx, mustParse(t, `a={ b=1 }`), "Save")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestAnalyze_InvalidInput(t *testing.T) {
	a := New(DefaultOptions())

	_, err := a.AnalyzeDocument(context.Background(), nil, "Save")
	assert.ErrorIs(t, err, ErrNilDocument)

	_, err = a.AnalyzeDocuments(context.Background(), nil, "Save")
	assert.ErrorIs(t, err, ErrNoDocuments)

	_, err = a.AnalyzeDocuments(context.Background(), []*ast.Document{nil}, "Save")
	assert.ErrorIs(t, err, ErrNilDocument)
}

func TestAnalyzer_ConcurrentRuns(t *testing.T) {
	a := New(DefaultOptions())
	doc := mustParse(t, `planets={ 1={ size=3 } } trait=a trait=b`)

	done := make(chan *Result, 4)
	for i := 0; i < 4; i++ {
		go func() {
			result, err := a.AnalyzeDocument(context.Background(), doc, "Save")
			if err != nil {
				done <- nil
				return
			}
			done <- result
		}()
	}

	for i := 0; i < 4; i++ {
		result := <-done
		require.NotNil(t, result)
		assert.Equal(t, 2, result.Graph.Len())
	}
}

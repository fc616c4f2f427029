package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savegen/savegen/internal/compiler/analyzer"
	"github.com/savegen/savegen/internal/compiler/cache"
	"github.com/savegen/savegen/internal/compiler/parser"
)

func TestRootNameFor(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"saves/gamestate", "Gamestate"},
		{"ironman.sav", "Ironman"},
		{"/tmp/my save.txt", "MySave"},
		{"2200.01.01.sav", "Entry"},
		{"", analyzer.DefaultRootName},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, RootNameFor(tt.input))
		})
	}
}

func TestInferDocument(t *testing.T) {
	in := Input{Name: "gamestate", Data: []byte(`date="2200.01.01" planets={ 1={ size=3 } 2={ size=4.5 } }`)}

	result, err := InferDocument(context.Background(), in, Options{})
	require.NoError(t, err)
	require.True(t, result.OK())

	root := result.Analysis.Graph.Root
	assert.Equal(t, "Gamestate", root.Name)
	f, ok := root.Field("planets")
	require.True(t, ok)
	assert.Equal(t, "Dictionary<Int,{size:Float}>", f.Type.Signature())
}

func TestInferDocument_ParseError(t *testing.T) {
	_, err := InferDocument(context.Background(), Input{Name: "bad", Data: []byte(`a={`)}, Options{})
	require.Error(t, err)

	var parseErr *parser.ParseError
	assert.True(t, errors.As(err, &parseErr))
	assert.Contains(t, err.Error(), "bad:")
}

func TestInferDocument_UsesCache(t *testing.T) {
	dc, err := cache.NewDocumentCache(4)
	require.NoError(t, err)
	opts := Options{Cache: dc, RootName: "Save"}
	in := Input{Name: "a", Data: []byte(`a=1`)}

	first, err := InferDocument(context.Background(), in, opts)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := InferDocument(context.Background(), in, opts)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Same(t, first.Document, second.Document)
	assert.NotSame(t, first.Analysis.Graph, second.Analysis.Graph)
}

func TestRunBatch_FailureDoesNotStopOthers(t *testing.T) {
	inputs := []Input{
		{Name: "one", Data: []byte(`a=1`)},
		{Name: "broken", Data: []byte(`a="unterminated`)},
		{Name: "three", Data: []byte(`b={ c=yes }`)},
	}

	results := RunBatch(context.Background(), inputs, Options{Workers: 2})
	require.Len(t, results, 3)

	assert.True(t, results[0].OK())
	assert.Equal(t, "One", results[0].Analysis.Graph.Root.Name)

	assert.False(t, results[1].OK())
	assert.Equal(t, "broken", results[1].Input)
	assert.Contains(t, results[1].Err.Error(), "Unterminated string")

	assert.True(t, results[2].OK())
	assert.Equal(t, "Three", results[2].Analysis.Graph.Root.Name)
}

func TestRunBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := RunBatch(ctx, []Input{{Name: "a", Data: []byte(`a=1`)}}, Options{})
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}

func TestInferCorpus(t *testing.T) {
	inputs := []Input{
		{Name: "autosave_1.sav", Data: []byte(`fleet={ ships=3 }`)},
		{Name: "autosave_2.sav", Data: []byte(`fleet={ ships=4 admiral="Ann" }`)},
		{Name: "broken.sav", Data: []byte(`}`)},
	}

	result, err := InferCorpus(context.Background(), inputs, Options{RootName: "Save"})
	require.NoError(t, err)

	assert.Equal(t, []string{"autosave_1.sav", "autosave_2.sav"}, result.Parsed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "broken.sav", result.Failures[0].Input)

	root := result.Analysis.Graph.Root
	assert.Equal(t, "Save", root.Name)
	f, ok := root.Field("fleet")
	require.True(t, ok)
	assert.Equal(t, "{admiral?:String,ships:Int}", f.Type.Signature())
}

func TestInferCorpus_NothingParses(t *testing.T) {
	_, err := InferCorpus(context.Background(), []Input{{Name: "x", Data: []byte(`{`)}}, Options{})
	assert.ErrorIs(t, err, analyzer.ErrNoDocuments)

	_, err = InferCorpus(context.Background(), nil, Options{})
	assert.ErrorIs(t, err, analyzer.ErrNoDocuments)
}

func TestReadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta")
	require.NoError(t, os.WriteFile(path, []byte(`version="1"`), 0644))

	in, err := ReadInput(path)
	require.NoError(t, err)
	assert.Equal(t, path, in.Name)
	assert.Equal(t, `version="1"`, string(in.Data))

	_, err = ReadInput(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

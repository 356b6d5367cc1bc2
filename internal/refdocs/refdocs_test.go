package refdocs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleIndex = `Class: Circle
  Method: rotate(self, angle)
  Method: scale(self, factor)
  Property: radius

Class: Square
  Method: shift(self, vector)

Class: Empty
`

func TestParseIndex(t *testing.T) {
	ix := ParseIndex(sampleIndex)
	assert.Equal(t, 2, ix.Len(), "class with no members should not be indexed")

	info, ok := ix.Lookup("Circle")
	require.True(t, ok)
	assert.Contains(t, info, "Method: rotate(self, angle)")
	assert.Contains(t, info, "Property: radius")

	_, ok = ix.Lookup("Triangle")
	assert.False(t, ok)
}

func TestExtractContext_FindsAndDeduplicates(t *testing.T) {
	ix := ParseIndex(sampleIndex)
	diag := `error: Argument missing for parameter "angle" for class "Circle"
error: No attribute "side" for class "Circle"
error: Cannot instantiate class "Square"`

	out := ix.ExtractContext(diag)
	assert.Equal(t, 1, strings.Count(out, "Definition for class 'Circle'"))
	assert.Equal(t, 1, strings.Count(out, "Definition for class 'Square'"))
}

func TestExtractContext_UnknownClassesSkipped(t *testing.T) {
	ix := ParseIndex(sampleIndex)
	out := ix.ExtractContext(`error for class "Nonexistent"`)
	assert.Empty(t, out, "lookup misses must yield empty context, not an error")
}

func TestExtractContext_NoClassMentions(t *testing.T) {
	ix := ParseIndex(sampleIndex)
	assert.Empty(t, ix.ExtractContext("error: expected expression on line 3"))
}

func TestExtractContext_Deterministic(t *testing.T) {
	ix := ParseIndex(sampleIndex)
	diag := `class "Square" and class "Circle"`
	first := ix.ExtractContext(diag)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ix.ExtractContext(diag))
	}
	// sorted order, not mention order
	assert.Less(t, strings.Index(first, "Circle"), strings.Index(first, "Square"))
}

func TestExtractContext_NilIndex(t *testing.T) {
	var ix *Index
	assert.Empty(t, ix.ExtractContext(`class "Circle"`))
}

func TestLoadIndex_MissingFile(t *testing.T) {
	_, err := LoadIndex(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}

func TestLoadPitfalls(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "common_error.md")
	require.NoError(t, os.WriteFile(path, []byte("avoid ShowCreation"), 0o644))

	assert.Equal(t, "avoid ShowCreation", LoadPitfalls(path))
	assert.Contains(t, LoadPitfalls(filepath.Join(dir, "nope.md")), "not available")
}

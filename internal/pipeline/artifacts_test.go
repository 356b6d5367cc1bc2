package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eui-labs/eui/internal/codegen"
	"github.com/eui-labs/eui/internal/scriptgen"
)

func TestScriptRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "script.json")
	scenes := []scriptgen.Scene{
		{MusicDescription: "calm", Speech: "hello", AnimationDescription: "draw a grid", Duration: "5"},
		{Speech: "second"},
	}

	require.NoError(t, WriteScript(path, scenes))
	loaded, err := LoadScript(path)
	require.NoError(t, err)
	assert.Equal(t, scenes, loaded)
}

func TestLoadScript_EmptyOrMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))
	_, err := LoadScript(path)
	assert.Error(t, err)

	_, err = LoadScript(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func sampleResults() []codegen.SceneResult {
	return []codegen.SceneResult{
		{SceneNumber: 1, Result: codegen.Result{Status: codegen.StatusSuccess, Code: "class A(Scene):\n    pass"}},
		{SceneNumber: 2, Result: codegen.Result{
			Status:      codegen.StatusFailedValidation,
			Code:        "class B(Scene):\n    broken",
			Diagnostics: "error: name 'broken' is not defined",
			Retries:     codegen.MaxCheckRetries + 1,
		}},
		{SceneNumber: 3, Result: codegen.Result{Status: codegen.StatusMissingInput}},
		{SceneNumber: 4, Result: codegen.Result{Status: codegen.StatusGenerationError, Err: errors.New("boom")}},
		{SceneNumber: 5, Result: codegen.Result{Status: codegen.StatusSuccess, Code: "class E(Scene):\n    pass", Retries: 1}},
	}
}

func TestWriteCodeMarkdown_ThenExtract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "generated_code.md")
	require.NoError(t, WriteCodeMarkdown(path, "pythagoras", sampleResults()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := string(raw)

	assert.Contains(t, doc, "# Generated Manim Code")
	assert.Contains(t, doc, "Topic: pythagoras")
	assert.Contains(t, doc, "### Animation Scene 2")
	assert.Contains(t, doc, "excluded from rendering")
	assert.Contains(t, doc, "error: name 'broken' is not defined")

	blocks := ExtractCodeBlocks(doc)
	require.Len(t, blocks, 5, "one entry per scene heading")
	assert.Equal(t, "class A(Scene):\n    pass", blocks[0])
	assert.Equal(t, "", blocks[1], "failed scene must yield no renderable code")
	assert.Equal(t, "", blocks[2])
	assert.Equal(t, "", blocks[3])
	assert.Equal(t, "class E(Scene):\n    pass", blocks[4])
}

func TestExtractCodeBlocks_IgnoresFencesOutsideScenes(t *testing.T) {
	doc := "# Title\n\n```python\nnot mine\n```\n\n### Animation Scene 1\n\n```python\nmine\n```\n"
	blocks := ExtractCodeBlocks(doc)
	require.Len(t, blocks, 1)
	assert.Equal(t, "mine", blocks[0])
}

func TestExtractCodeBlocks_EmptyDocument(t *testing.T) {
	assert.Empty(t, ExtractCodeBlocks("nothing here"))
}

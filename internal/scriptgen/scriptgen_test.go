package scriptgen

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validScript = `[
  {"music-description": "calm", "speech": "hello", "animation-description": "draw a grid", "duration": "5s"},
  {"music-description": "tense", "speech": "world", "animation-description": "draw a circle", "duration": "4s"}
]`

func TestParseScript_Valid(t *testing.T) {
	scenes, err := ParseScript(validScript)
	require.NoError(t, err)
	require.Len(t, scenes, 2)
	assert.Equal(t, "draw a grid", scenes[0].AnimationDescription)
	assert.Equal(t, "world", scenes[1].Speech)
	assert.Equal(t, "4s", scenes[1].Duration)
}

func TestParseScript_StripsJSONFence(t *testing.T) {
	scenes, err := ParseScript("```json\n" + validScript + "\n```")
	require.NoError(t, err)
	assert.Len(t, scenes, 2)
}

func TestParseScript_RejectsNonList(t *testing.T) {
	_, err := ParseScript(`{"music-description": "x"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JSON list")
}

func TestParseScript_RejectsEmptyList(t *testing.T) {
	_, err := ParseScript(`[]`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty list")
}

func TestParseScript_RejectsMissingKeys(t *testing.T) {
	_, err := ParseScript(`[{"speech": "hi", "duration": "3s"}]`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "item 1")
	assert.Contains(t, err.Error(), "music-description")
	assert.Contains(t, err.Error(), "animation-description")
}

func TestParseScript_RejectsInvalidJSON(t *testing.T) {
	_, err := ParseScript(`[{"speech": }]`)
	require.Error(t, err)
}

func TestLoadGuidelines_TrimsExampleAndHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "generate_video_prompt.md")
	content := "Make a yt-short on the topic X\nKeep it under 60 seconds.\nUse a friendly tone.\n\nExample output\n[ ... ]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := LoadGuidelines(path)
	require.NoError(t, err)
	assert.Equal(t, "Keep it under 60 seconds.\nUse a friendly tone.", got)
}

func TestLoadGuidelines_EmptyAfterTrimming(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.md")
	require.NoError(t, os.WriteFile(path, []byte("example output\nonly examples here"), 0o644))

	_, err := LoadGuidelines(path)
	assert.Error(t, err)
}

func TestLoadGuidelines_MissingFile(t *testing.T) {
	_, err := LoadGuidelines(filepath.Join(t.TempDir(), "absent.md"))
	assert.Error(t, err)
}

type fixedModel struct {
	out     string
	prompts []string
	systems []string
}

func (f *fixedModel) GenerateContent(_ context.Context, _, system, prompt string) (string, error) {
	f.systems = append(f.systems, system)
	f.prompts = append(f.prompts, prompt)
	return f.out, nil
}

func TestGenerate_PromptCarriesTopicAndGuidelines(t *testing.T) {
	model := &fixedModel{out: validScript}
	g := NewGenerator(model, "gemini-test")

	scenes, err := g.Generate(context.Background(), "black holes", "keep it simple")
	require.NoError(t, err)
	assert.Len(t, scenes, 2)

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], `"black holes"`)
	assert.Contains(t, model.prompts[0], "keep it simple")
	assert.True(t, strings.Contains(model.systems[0], "JSON"), "system instruction pins the output format")
}

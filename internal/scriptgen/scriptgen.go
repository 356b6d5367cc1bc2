// Package scriptgen turns a topic into a structured video script: one model
// call constrained to a JSON array, then strict parsing and validation.
package scriptgen

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	"github.com/eui-labs/eui/internal/gemini"
)

const systemInstruction = "You are an AI assistant that generates video scripts strictly in JSON format according to detailed guidelines."

const exampleMarker = "example output"

type Generator struct {
	model     gemini.GeminiInterface
	modelName string
}

func NewGenerator(model gemini.GeminiInterface, modelName string) *Generator {
	return &Generator{model: model, modelName: modelName}
}

// LoadGuidelines reads the script-guidelines template. Everything from an
// "example output" marker on is dropped (the prompt supplies its own format
// example), as is a leading "make a yt-short on the topic" header line.
func LoadGuidelines(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read guidelines %s: %w", path, err)
	}
	content := string(raw)

	if idx := strings.Index(strings.ToLower(content), exampleMarker); idx >= 0 {
		content = strings.TrimSpace(content[:idx])
	}

	lines := strings.Split(content, "\n")
	if len(lines) > 0 && strings.Contains(strings.ToLower(lines[0]), "make a yt-short on the topic") {
		content = strings.TrimSpace(strings.Join(lines[1:], "\n"))
	}

	if content == "" {
		return "", fmt.Errorf("guidelines file %s is empty or relevant content is missing", path)
	}
	return content, nil
}

// Generate asks the model for the full script of a video on the topic and
// returns the parsed scenes.
func (g *Generator) Generate(ctx context.Context, topic, guidelines string) ([]Scene, error) {
	prompt := buildPrompt(topic, guidelines)

	log.Info().Str("topic", topic).Msg("requesting video script from model")
	raw, err := g.model.GenerateContent(ctx, g.modelName, systemInstruction, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate script: %w", err)
	}

	scenes, err := ParseScript(raw)
	if err != nil {
		return nil, err
	}
	log.Info().Int("scenes", len(scenes)).Msg("script parsed and validated")
	return scenes, nil
}

func buildPrompt(topic, guidelines string) string {
	return fmt.Sprintf(`**Topic**
"%s"

**Guidelines for Script Generation:**
%s

**Output Format Instructions:**
- The entire output MUST be a single, valid JSON array of script items.
- Start with `+"`[`"+` and end with `+"`]`"+`.
- Each item in the array must be a JSON object with the exact keys: "music-description", "speech", "animation-description", and "duration".
- Do NOT include any text, explanations, or markdown formatting (like `+"```json ... ```"+`) outside of the JSON array itself.
- Ensure "speech" is optimized for AI TTS: avoid "..." ellipses and full ALL CAPS words unless they are acronyms.
- Ensure "animation-description" is highly descriptive, assumes simple shapes and text, and that each animation scene starts by drawing a 2D grid.
- Adhere to all constraints mentioned in the guidelines, such as tone, technical depth and item count.
`, topic, guidelines)
}

// ParseScript strips fence decoration from the model output and validates it
// into scenes: a non-empty JSON array whose items all carry the required
// keys.
func ParseScript(raw string) ([]Scene, error) {
	cleaned := gemini.StripFences(raw, "json")

	if !strings.HasPrefix(cleaned, "[") || !strings.HasSuffix(cleaned, "]") {
		return nil, fmt.Errorf("generated script does not appear to be a JSON list: %s", snippet(cleaned))
	}

	var items []map[string]any
	if err := sonic.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil, fmt.Errorf("decode script JSON: %w: %s", err, snippet(cleaned))
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("generated script is an empty list")
	}
	for i, item := range items {
		var missing []string
		for _, key := range requiredKeys {
			if _, ok := item[key]; !ok {
				missing = append(missing, key)
			}
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("script item %d is malformed, missing keys: %s", i+1, strings.Join(missing, ", "))
		}
	}

	var scenes []Scene
	if err := sonic.Unmarshal([]byte(cleaned), &scenes); err != nil {
		return nil, fmt.Errorf("decode script items: %w", err)
	}
	return scenes, nil
}

func snippet(s string) string {
	const limit = 500
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

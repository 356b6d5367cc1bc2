// Package pipeline sequences the production stages and owns the on-disk
// artifacts they hand to each other.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/eui-labs/eui/internal/codegen"
	"github.com/eui-labs/eui/internal/scriptgen"
)

// Layout maps artifact names to paths under the output directory. Every
// stage reads its input and writes its output through this, so stages can be
// rerun independently.
type Layout struct {
	OutDir string
}

func (l Layout) ScriptPath() string     { return filepath.Join(l.OutDir, "script.json") }
func (l Layout) CodePath() string       { return filepath.Join(l.OutDir, "generated_code.md") }
func (l Layout) AudioDir() string       { return filepath.Join(l.OutDir, "audio") }
func (l Layout) MediaDir() string       { return filepath.Join(l.OutDir, "media") }
func (l Layout) RenderErrorLog() string { return filepath.Join(l.OutDir, "render_errors.md") }
func (l Layout) SegmentsDir() string    { return filepath.Join(l.OutDir, "segments") }
func (l Layout) FinalVideoPath() string { return filepath.Join(l.OutDir, "final.mp4") }
func (l Layout) ReportPath() string     { return filepath.Join(l.OutDir, "report.json") }

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	raw, err := sonic.ConfigDefault.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, raw, 0o644)
}

// WriteScript persists the parsed script between the script and code stages.
func WriteScript(path string, scenes []scriptgen.Scene) error {
	return writeJSON(path, scenes)
}

func LoadScript(path string) ([]scriptgen.Scene, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}
	var scenes []scriptgen.Scene
	if err := sonic.Unmarshal(raw, &scenes); err != nil {
		return nil, fmt.Errorf("decode script %s: %w", path, err)
	}
	if len(scenes) == 0 {
		return nil, fmt.Errorf("script %s holds no scenes", path)
	}
	return scenes, nil
}

// WriteCodeMarkdown writes the per-scene generation outcomes as a markdown
// document. Validated code goes into python fences; everything else goes
// into plain fences or notes, so the render stage picks up exactly the
// scenes that passed.
func WriteCodeMarkdown(path, topic string, results []codegen.SceneResult) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Generated Manim Code\n\nTopic: %s\n\n", topic)

	for _, r := range results {
		fmt.Fprintf(&b, "### Animation Scene %d\n\n", r.SceneNumber)
		switch r.Status {
		case codegen.StatusSuccess:
			fmt.Fprintf(&b, "```python\n%s\n```\n\n", r.Code)
		case codegen.StatusFailedValidation:
			fmt.Fprintf(&b, "Type checking failed after %d attempts; this scene is excluded from rendering.\n\n", r.Retries)
			fmt.Fprintf(&b, "```text\n%s\n```\n\n", r.Code)
			fmt.Fprintf(&b, "**Type Checker Output:**\n\n```\n%s\n```\n\n", r.Diagnostics)
		case codegen.StatusGenerationError:
			fmt.Fprintf(&b, "Code generation failed: %v\n\n", r.Err)
		case codegen.StatusMissingInput:
			b.WriteString("Scene skipped: no animation description in the script.\n\n")
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// ExtractCodeBlocks returns one entry per "### Animation Scene" heading, in
// document order: the scene's python-fenced code, or "" when the scene has
// none. Positions stay aligned with scene numbers so later stages can match
// segments to narration.
func ExtractCodeBlocks(doc string) []string {
	var blocks []string
	var code strings.Builder
	inPython := false
	inOther := false

	for _, line := range strings.Split(doc, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case inPython:
			if trimmed == "```" {
				blocks[len(blocks)-1] = strings.TrimRight(code.String(), "\n")
				inPython = false
				break
			}
			code.WriteString(line)
			code.WriteString("\n")
		case inOther:
			if trimmed == "```" {
				inOther = false
			}
		case strings.HasPrefix(trimmed, "### Animation Scene"):
			blocks = append(blocks, "")
		case trimmed == "```python" && len(blocks) > 0 && blocks[len(blocks)-1] == "":
			code.Reset()
			inPython = true
		case strings.HasPrefix(trimmed, "```"):
			inOther = true
		}
	}

	return blocks
}

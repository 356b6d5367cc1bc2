package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/eui-labs/eui/internal/audio"
	"github.com/eui-labs/eui/internal/checker"
	"github.com/eui-labs/eui/internal/codegen"
	"github.com/eui-labs/eui/internal/config"
	"github.com/eui-labs/eui/internal/gemini"
	"github.com/eui-labs/eui/internal/refdocs"
	"github.com/eui-labs/eui/internal/render"
	"github.com/eui-labs/eui/internal/scriptgen"
	"github.com/eui-labs/eui/internal/utils/logger"
	"github.com/eui-labs/eui/internal/video"
)

const (
	guidelinesFile = "script_guidelines.txt"
	pitfallsFile   = "common_errors.txt"
)

// Pipeline wires the stages together over one shared configuration. Each
// stage reads its input artifact and writes its output artifact, so any
// stage can be rerun on its own.
type Pipeline struct {
	cfg    *config.AppConfig
	layout Layout
	model  gemini.GeminiInterface
}

func New(cfg *config.AppConfig) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	model, err := gemini.NewGemini(&cfg.GeminiEnvConfig)
	if err != nil {
		return nil, err
	}
	return &Pipeline{cfg: cfg, layout: Layout{OutDir: cfg.OutDir}, model: model}, nil
}

// RunScript generates the structured video script for a topic and writes it
// to script.json.
func (p *Pipeline) RunScript(ctx context.Context, topic string) error {
	slog := logger.Stage("script")

	guidelines, err := scriptgen.LoadGuidelines(filepath.Join(p.cfg.PromptsDir, guidelinesFile))
	if err != nil {
		return err
	}

	scenes, err := scriptgen.NewGenerator(p.model, p.cfg.ScriptModel).Generate(ctx, topic, guidelines)
	if err != nil {
		return err
	}

	if err := WriteScript(p.layout.ScriptPath(), scenes); err != nil {
		return err
	}
	slog.Info().Int("scenes", len(scenes)).Str("path", p.layout.ScriptPath()).Msg("script written")
	return nil
}

// RunCode turns script.json into per-scene animation code, writing the
// markdown artifact and the batch report. Per-scene failures are recorded in
// both, never returned as an error.
func (p *Pipeline) RunCode(ctx context.Context, topic string) error {
	slog := logger.Stage("code")

	scenes, err := LoadScript(p.layout.ScriptPath())
	if err != nil {
		return err
	}

	index, err := refdocs.LoadIndex(p.cfg.ClassMethodsTxt)
	if err != nil {
		return err
	}
	pitfalls := refdocs.LoadPitfalls(filepath.Join(p.cfg.PromptsDir, pitfallsFile))

	tasks := make([]codegen.Task, 0, len(scenes))
	for i, scene := range scenes {
		tasks = append(tasks, codegen.Task{SceneNumber: i + 1, Description: scene.AnimationDescription})
	}

	agent := codegen.NewAgent(p.model, checker.NewPyright(&p.cfg.ToolsEnvConfig), index, pitfalls, p.cfg.CodeModel)

	start := time.Now()
	results := agent.GenerateBatch(ctx, tasks)
	report := BuildReport(topic, scenes, results, time.Since(start))

	if err := WriteCodeMarkdown(p.layout.CodePath(), topic, results); err != nil {
		return err
	}
	if err := WriteReport(p.layout.ReportPath(), report); err != nil {
		return err
	}

	slog.Info().
		Int("scenes", report.Scenes).
		Int("succeeded", report.Succeeded).
		Int("failed_validation", report.FailedValidation).
		Int("generation_errors", report.GenerationErrors).
		Float64("mean_retries", report.MeanRetries).
		Str("path", p.layout.CodePath()).
		Msg("code generation finished")
	return nil
}

// RunAudio synthesizes narration for every scene in script.json.
func (p *Pipeline) RunAudio(ctx context.Context) error {
	slog := logger.Stage("audio")

	scenes, err := LoadScript(p.layout.ScriptPath())
	if err != nil {
		return err
	}
	tts, err := audio.NewChatterbox(&p.cfg.TTSEnvConfig)
	if err != nil {
		return err
	}

	failed, err := audio.GenerateNarration(ctx, tts, scenes, p.layout.AudioDir())
	if err != nil {
		return err
	}
	slog.Info().Int("scenes", len(scenes)).Int("failed", failed).Msg("narration stage finished")
	return nil
}

// RunRender renders the validated code blocks from the markdown artifact.
func (p *Pipeline) RunRender(ctx context.Context) error {
	slog := logger.Stage("render")

	raw, err := os.ReadFile(p.layout.CodePath())
	if err != nil {
		return fmt.Errorf("read generated code %s: %w", p.layout.CodePath(), err)
	}
	blocks := ExtractCodeBlocks(string(raw))
	if len(blocks) == 0 {
		return fmt.Errorf("no scenes found in %s", p.layout.CodePath())
	}

	renderer := render.NewRenderer(&p.cfg.ToolsEnvConfig)
	failed, err := renderer.RenderScenes(ctx, blocks, p.layout.MediaDir(), p.layout.RenderErrorLog())
	if err != nil {
		return err
	}
	slog.Info().Int("blocks", len(blocks)).Int("failed", failed).Msg("render stage finished")
	return nil
}

// RunVideo assembles the rendered segments and narration into the final
// video.
func (p *Pipeline) RunVideo(ctx context.Context) error {
	slog := logger.Stage("video")

	scenes, err := LoadScript(p.layout.ScriptPath())
	if err != nil {
		return err
	}

	assembler := video.NewAssembler(&p.cfg.ToolsEnvConfig)
	if err := assembler.Assemble(ctx, p.layout.MediaDir(), p.layout.AudioDir(), p.layout.SegmentsDir(), p.layout.FinalVideoPath(), len(scenes)); err != nil {
		return err
	}
	slog.Info().Str("path", p.layout.FinalVideoPath()).Msg("final video written")
	return nil
}

// RunAll runs every stage in order for a topic.
func (p *Pipeline) RunAll(ctx context.Context, topic string) error {
	if err := p.RunScript(ctx, topic); err != nil {
		return err
	}
	if err := p.RunCode(ctx, topic); err != nil {
		return err
	}
	if err := p.RunAudio(ctx); err != nil {
		return err
	}
	if err := p.RunRender(ctx); err != nil {
		return err
	}
	return p.RunVideo(ctx)
}

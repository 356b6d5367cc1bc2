// Package render drives the manim CLI to turn generated scene code into
// video segments.
package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/eui-labs/eui/internal/config"
	"github.com/eui-labs/eui/internal/utils/proc"
)

var sceneClassRe = regexp.MustCompile(`class\s+([a-zA-Z0-9_]+)\s*\((?:Scene|MovingCameraScene|ZoomedScene|ThreeDScene)\)\s*:`)

// portrait resolution for the vertical short format
const renderResolution = "1080,1920"

// FindSceneName returns the first scene class declared in a code block, or
// "" when none is recognizable.
func FindSceneName(code string) string {
	m := sceneClassRe.FindStringSubmatch(code)
	if m == nil {
		return ""
	}
	return m[1]
}

type Renderer struct {
	cmd   string
	grace time.Duration
}

func NewRenderer(cfg *config.ToolsEnvConfig) *Renderer {
	return &Renderer{cmd: cfg.ManimCmd, grace: cfg.KillGrace}
}

// RenderScenes renders each code block in order into mediaDir. Segment i
// lands under mediaDir/videos/scene_<i+1>/. Per-scene failures are appended
// to the markdown error log and counted, never fatal; the returned error
// covers setup problems and a missing manim binary only.
func (r *Renderer) RenderScenes(ctx context.Context, blocks []string, mediaDir, errorLogPath string) (failed int, err error) {
	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		return 0, fmt.Errorf("create media dir: %w", err)
	}
	if err := initErrorLog(errorLogPath); err != nil {
		log.Error().Err(err).Str("path", errorLogPath).Msg("could not initialize render error log")
	}

	scriptsDir, err := os.MkdirTemp("", "eui-render-*")
	if err != nil {
		return 0, fmt.Errorf("create temp scripts dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(scriptsDir); rmErr != nil {
			log.Warn().Err(rmErr).Msg("failed to remove temp scripts dir")
		}
	}()

	slog := log.With().Int("total", len(blocks)).Logger()
	for i, code := range blocks {
		if strings.TrimSpace(code) == "" {
			slog.Info().Int("block", i+1).Msg("no validated code for this scene, skipping")
			continue
		}
		sceneName := FindSceneName(code)
		if sceneName == "" {
			slog.Warn().Int("block", i+1).Msg("could not determine scene class, skipping block")
			appendErrorLog(errorLogPath, code, "Could not determine Scene name from code snippet.")
			failed++
			continue
		}

		scriptPath := filepath.Join(scriptsDir, fmt.Sprintf("scene_%d.py", i+1))
		if err := os.WriteFile(scriptPath, []byte(code), 0o644); err != nil {
			appendErrorLog(errorLogPath, code, fmt.Sprintf("Failed to write temporary script: %v", err))
			failed++
			continue
		}

		slog.Info().Int("block", i+1).Str("scene", sceneName).Msg("rendering scene")
		out, runErr := proc.Run(ctx, r.grace, r.cmd,
			"render", scriptPath, sceneName,
			"--media_dir", mediaDir,
			"-r", renderResolution,
		)
		if runErr != nil {
			if errors.Is(runErr, proc.ErrToolNotFound) {
				appendErrorLog(errorLogPath, code, fmt.Sprintf("'%s' command not found. Ensure manim is installed and in PATH.", r.cmd))
				return failed + 1, fmt.Errorf("render scenes: %w", runErr)
			}
			appendErrorLog(errorLogPath, code, runErr.Error())
			failed++
			continue
		}
		if out.ExitCode != 0 {
			slog.Error().Int("block", i+1).Int("exit_code", out.ExitCode).Msg("manim exited with error")
			appendErrorLog(errorLogPath, code, fmt.Sprintf("manim exited with code %d.\n%s", out.ExitCode, out.Combined()))
			failed++
			continue
		}
		slog.Info().Int("block", i+1).Str("scene", sceneName).Msg("scene rendered")
	}

	return failed, nil
}

func initErrorLog(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte("# Manim Render Errors Log\n\n"), 0o644)
}

func appendErrorLog(path, code, message string) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("could not write render error log")
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "### Render Error\n\n```python\n%s\n```\n\n**Error Message:**\n```\n%s\n```\n\n---\n\n", code, message)
}

// Package video stretches rendered segments to match their narration and
// concatenates them into the final vertical short.
package video

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	"github.com/eui-labs/eui/internal/config"
	"github.com/eui-labs/eui/internal/utils/proc"
)

type Assembler struct {
	ffmpeg  string
	ffprobe string
	grace   time.Duration
}

func NewAssembler(cfg *config.ToolsEnvConfig) *Assembler {
	return &Assembler{ffmpeg: cfg.FfmpegCmd, ffprobe: cfg.FfprobeCmd, grace: cfg.KillGrace}
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func parseDuration(raw []byte) (float64, error) {
	var out probeOutput
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if out.Format.Duration == "" {
		return 0, fmt.Errorf("ffprobe output has no format.duration")
	}
	d, err := strconv.ParseFloat(out.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe duration %q: %w", out.Format.Duration, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("ffprobe reported non-positive duration %v", d)
	}
	return d, nil
}

// ProbeDuration returns the duration of a media file in seconds.
func (a *Assembler) ProbeDuration(ctx context.Context, path string) (float64, error) {
	out, err := proc.Run(ctx, a.grace, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", path, err)
	}
	if out.ExitCode != 0 {
		return 0, fmt.Errorf("ffprobe exited with code %d: %s", out.ExitCode, out.Combined())
	}
	return parseDuration([]byte(out.Stdout))
}

// findSegment locates the rendered mp4 for one scene. Manim buries the
// output under videos/<script>/<quality>/, so walk the scene's subtree and
// take the first mp4 found.
func findSegment(mediaDir string, scene int) (string, error) {
	root := filepath.Join(mediaDir, "videos", fmt.Sprintf("scene_%d", scene))
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".mp4") && !strings.Contains(path, "partial_movie_files") {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", fmt.Errorf("no rendered mp4 under %s", root)
	}
	return found, nil
}

func writeConcatList(path string, segments []string) error {
	var b strings.Builder
	for _, seg := range segments {
		// single quotes in the path would break the concat demuxer syntax
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(seg, "'", `'\''`))
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// Assemble builds outPath from up to sceneCount rendered segments. Each
// segment is retimed so its video track spans the scene's narration, then
// muxed with that narration; segments without audio keep their own pace.
// Scenes with no rendered segment are skipped with a warning. Zero usable
// segments is an error.
func (a *Assembler) Assemble(ctx context.Context, mediaDir, audioDir, workDir, outPath string, sceneCount int) error {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}

	var segments []string
	for scene := 1; scene <= sceneCount; scene++ {
		videoPath, err := findSegment(mediaDir, scene)
		if err != nil {
			log.Warn().Int("scene", scene).Err(err).Msg("no rendered segment, skipping scene")
			continue
		}

		segPath := filepath.Join(workDir, fmt.Sprintf("segment_%d.mp4", scene))
		audioPath := filepath.Join(audioDir, fmt.Sprintf("%d.mp3", scene))
		if _, statErr := os.Stat(audioPath); statErr != nil {
			log.Warn().Int("scene", scene).Msg("no narration for scene, keeping original timing")
			if err := a.transcode(ctx, videoPath, segPath); err != nil {
				log.Error().Err(err).Int("scene", scene).Msg("segment transcode failed, skipping scene")
				continue
			}
		} else if err := a.retime(ctx, videoPath, audioPath, segPath); err != nil {
			log.Error().Err(err).Int("scene", scene).Msg("segment retime failed, skipping scene")
			continue
		}
		segments = append(segments, segPath)
	}

	if len(segments) == 0 {
		return fmt.Errorf("no usable segments, nothing to assemble")
	}

	listPath := filepath.Join(workDir, "concat.txt")
	if err := writeConcatList(listPath, segments); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}

	log.Info().Int("segments", len(segments)).Str("out", outPath).Msg("concatenating final video")
	out, err := proc.Run(ctx, a.grace, a.ffmpeg,
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outPath,
	)
	if err != nil {
		return fmt.Errorf("concat segments: %w", err)
	}
	if out.ExitCode != 0 {
		return fmt.Errorf("ffmpeg concat exited with code %d: %s", out.ExitCode, out.Combined())
	}
	return nil
}

// retime stretches the video track so it lasts exactly as long as the
// narration, then muxes the narration in.
func (a *Assembler) retime(ctx context.Context, videoPath, audioPath, outPath string) error {
	videoDur, err := a.ProbeDuration(ctx, videoPath)
	if err != nil {
		return err
	}
	audioDur, err := a.ProbeDuration(ctx, audioPath)
	if err != nil {
		return err
	}

	factor := audioDur / videoDur
	out, err := proc.Run(ctx, a.grace, a.ffmpeg,
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-filter:v", fmt.Sprintf("setpts=%.6f*PTS", factor),
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "libx264",
		"-c:a", "aac",
		"-b:a", "192k",
		"-ar", "44100",
		"-shortest",
		outPath,
	)
	if err != nil {
		return err
	}
	if out.ExitCode != 0 {
		return fmt.Errorf("ffmpeg retime exited with code %d: %s", out.ExitCode, out.Combined())
	}
	return nil
}

// transcode re-encodes a segment without touching its timing so every
// concat input shares the same codec parameters.
func (a *Assembler) transcode(ctx context.Context, videoPath, outPath string) error {
	out, err := proc.Run(ctx, a.grace, a.ffmpeg,
		"-y",
		"-i", videoPath,
		"-c:v", "libx264",
		"-c:a", "aac",
		"-b:a", "192k",
		"-ar", "44100",
		outPath,
	)
	if err != nil {
		return err
	}
	if out.ExitCode != 0 {
		return fmt.Errorf("ffmpeg transcode exited with code %d: %s", out.ExitCode, out.Combined())
	}
	return nil
}

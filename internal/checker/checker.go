// Package checker runs an external static type checker against generated
// scene code and classifies the outcome.
package checker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/eui-labs/eui/internal/config"
)

const emptyOutputPlaceholder = "Type checker returned an error but no output."

// Result is the tagged outcome of one check. Diagnostics is never empty when
// Passed is false, so the retry loop can always feed something back into the
// next prompt. ToolMissing marks the case where the checker binary itself
// could not be invoked; the diagnostics then carry a synthetic message.
type Result struct {
	Passed      bool
	Diagnostics string
	ToolMissing bool
}

type CheckerInterface interface {
	Check(ctx context.Context, code string) Result
}

// Pyright invokes the pyright CLI (or any drop-in replacement taking a file
// path and reporting through exit code plus text output).
type Pyright struct {
	cmd string
}

func NewPyright(cfg *config.ToolsEnvConfig) *Pyright {
	return &Pyright{cmd: cfg.PyrightCmd}
}

// Check writes code to a throwaway file, runs the checker against it and
// removes the file whatever the outcome.
func (p *Pyright) Check(ctx context.Context, code string) Result {
	tmp, err := os.CreateTemp("", "eui-scene-*.py")
	if err != nil {
		return Result{Diagnostics: fmt.Sprintf("failed to stage script for type checking: %v", err)}
	}
	defer func() {
		if rmErr := os.Remove(tmp.Name()); rmErr != nil {
			log.Warn().Err(rmErr).Str("path", tmp.Name()).Msg("failed to remove temp script")
		}
	}()

	if _, err := tmp.WriteString(code); err != nil {
		_ = tmp.Close()
		return Result{Diagnostics: fmt.Sprintf("failed to write temp script: %v", err)}
	}
	if err := tmp.Close(); err != nil {
		return Result{Diagnostics: fmt.Sprintf("failed to close temp script: %v", err)}
	}

	log.Info().Str("cmd", p.cmd).Str("script", tmp.Name()).Msg("running static type check")

	cmd := exec.CommandContext(ctx, p.cmd, tmp.Name())
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr == nil {
		log.Info().Msg("type check passed")
		return Result{Passed: true}
	}

	var execErr *exec.Error
	if errors.As(runErr, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
		msg := fmt.Sprintf("Error: '%s' command not found. Make sure it's installed and in your PATH.", p.cmd)
		log.Error().Str("cmd", p.cmd).Msg("type checker binary not found")
		return Result{Diagnostics: msg, ToolMissing: true}
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		diag := combinedOutput(stderr.String(), stdout.String())
		if diag == "" {
			diag = emptyOutputPlaceholder
		}
		log.Warn().Int("exit_code", exitErr.ExitCode()).Msg("type check failed")
		return Result{Diagnostics: diag}
	}

	// Anything else (cancelled context, I/O failure) is reported as a plain
	// failure so the loop treats it uniformly.
	log.Error().Err(runErr).Msg("unexpected error running type checker")
	return Result{Diagnostics: fmt.Sprintf("An unexpected error occurred during type checking: %v", runErr)}
}

func combinedOutput(stderr, stdout string) string {
	switch {
	case stderr != "" && stdout != "":
		return strings.TrimSpace(stderr + "\n\n#######################\n\n" + stdout)
	case stderr != "":
		return strings.TrimSpace(stderr)
	default:
		return strings.TrimSpace(stdout)
	}
}

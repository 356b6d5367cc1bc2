// Package proc runs external tools with drained pipes and bounded shutdown.
package proc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

// Output captures a finished command's streams and exit code.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ErrToolNotFound wraps exec lookup failures so callers can distinguish "the
// tool is not installed" from "the tool ran and failed".
var ErrToolNotFound = errors.New("tool not found")

// Run executes name with args and waits for completion. Stdout and stderr
// are drained concurrently so a chatty subprocess cannot deadlock on a full
// pipe buffer. On context cancellation the process group receives SIGTERM,
// escalating to SIGKILL after grace.
//
// A non-zero exit is not an error here; callers read Output.ExitCode. The
// returned error covers lookup and I/O failures only.
func Run(ctx context.Context, grace time.Duration, name string, args ...string) (Output, error) {
	if _, err := exec.LookPath(name); err != nil {
		return Output{}, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.WaitDelay = grace
	cmd.Cancel = func() error {
		log.Warn().Str("cmd", name).Msg("cancellation requested, terminating subprocess group")
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
	}

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return Output{}, fmt.Errorf("stdout pipe: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return Output{}, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return Output{}, fmt.Errorf("start %s: %w", name, err)
	}

	var wg sync.WaitGroup
	var stdout, stderr bytes.Buffer
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = io.Copy(&stdout, stdoutPipe)
	}()
	go func() {
		defer wg.Done()
		_, _ = io.Copy(&stderr, stderrPipe)
	}()
	wg.Wait()

	waitErr := cmd.Wait()
	out := Output{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return out, nil
		}
		return out, fmt.Errorf("wait %s: %w", name, waitErr)
	}
	return out, nil
}

// Combined joins stderr and stdout for diagnostics, stderr first.
func (o Output) Combined() string {
	switch {
	case o.Stderr != "" && o.Stdout != "":
		return o.Stderr + "\n" + o.Stdout
	case o.Stderr != "":
		return o.Stderr
	default:
		return o.Stdout
	}
}

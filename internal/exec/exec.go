package exec

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// Exit codes reserved for driver-level failures, matching shell conventions.
const (
	ExitTimeout  = 124
	ExitNotFound = 127
)

// Result holds a completed subprocess invocation.
type Result struct {
	Stdout   string
	Stderr   string
	Duration time.Duration
	ExitCode int
}

// Run executes a command under ctx, capturing output and duration.
// A context deadline maps to exit code 124, a missing executable to 127.
// The external tool's own exit status is passed through otherwise; callers
// decide whether non-zero is fatal (Slither exits non-zero when it finds
// issues, so it usually is not).
func Run(ctx context.Context, name string, args []string, dir string) (Result, error) {
	start := time.Now()
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case ctx.Err() == context.DeadlineExceeded:
			res.ExitCode = ExitTimeout
		case errors.Is(err, exec.ErrNotFound):
			res.ExitCode = ExitNotFound
		case errors.As(err, &exitErr):
			res.ExitCode = exitErr.ExitCode()
		default:
			res.ExitCode = 1
		}
	}

	return res, err
}

// Available reports whether an executable can be resolved on PATH.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

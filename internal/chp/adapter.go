package chp

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/roach88/stabsim/internal/ir"
	"github.com/roach88/stabsim/internal/outcome"
	"github.com/roach88/stabsim/internal/simerr"
)

// Runner executes a translated program once. payload is Encode(p), passed in
// so callers serialize a program once for all of its shots.
type Runner interface {
	RunShot(ctx context.Context, p *ir.Program, payload []byte) (outcome.Shot, error)
}

// waitDelay bounds how long Wait blocks on output pipes after the process
// has been killed.
const waitDelay = 2 * time.Second

// maxStderr caps how much simulator stderr is copied into an error.
const maxStderr = 512

// Adapter runs an external simulator executable, one process per attempt.
type Adapter struct {
	// Executable is the simulator binary.
	Executable string

	// Args precede the program file path on the command line.
	Args []string

	// Env is appended to the current environment.
	Env []string

	// Timeout bounds one attempt. Zero means no deadline.
	Timeout time.Duration

	// Retries is how many extra attempts a failed shot gets.
	Retries int

	// WorkDir is the parent of per-attempt directories, os.TempDir if empty.
	WorkDir string
}

// RunShot implements Runner. Execution failures are retried up to Retries
// times; the returned error carries the last failure's code and the number
// of attempts made. Cancellation of ctx is returned as is and never retried.
func (a *Adapter) RunShot(ctx context.Context, p *ir.Program, payload []byte) (outcome.Shot, error) {
	if payload == nil {
		payload = Encode(p)
	}

	attempts := a.Retries + 1
	var last *simerr.Error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return outcome.Shot{}, err
		}

		start := time.Now()
		shot, err := a.attempt(ctx, p, payload)
		attemptDuration.Observe(time.Since(start).Seconds())

		if err == nil {
			attemptsTotal.WithLabelValues("ok").Inc()
			return shot, nil
		}
		if ctx.Err() != nil {
			return outcome.Shot{}, ctx.Err()
		}

		attemptsTotal.WithLabelValues(string(err.Code)).Inc()
		last = err
		if attempt < attempts {
			slog.Warn("simulator attempt failed, retrying",
				"code", err.Code,
				"attempt", attempt,
				"max_attempts", attempts,
				"error", err.Message)
		}
	}

	last.Attempts = attempts
	return outcome.Shot{}, last
}

func (a *Adapter) attempt(ctx context.Context, p *ir.Program, payload []byte) (outcome.Shot, *simerr.Error) {
	dir, err := os.MkdirTemp(a.WorkDir, "stabsim-shot-*")
	if err != nil {
		return outcome.Shot{}, simerr.Wrap(simerr.CodeSimulatorExecution, err, "create attempt directory")
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, ProgramFile)
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return outcome.Shot{}, simerr.Wrap(simerr.CodeSimulatorExecution, err, "write program file")
	}

	runCtx := ctx
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, a.Executable, append(slices.Clone(a.Args), path)...)
	cmd.Dir = dir
	cmd.Stdin = bytes.NewReader(payload)
	cmd.WaitDelay = waitDelay
	if len(a.Env) > 0 {
		cmd.Env = append(os.Environ(), a.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return outcome.Shot{}, simerr.New(simerr.CodeTimeout, "simulator exceeded %s", a.Timeout)
	}
	if runErr != nil {
		msg := "simulator failed"
		if tail := stderrTail(stderr.Bytes()); tail != "" {
			msg += ": " + tail
		}
		return outcome.Shot{}, simerr.Wrap(simerr.CodeSimulatorExecution, runErr, "%s", msg)
	}

	shot, err := ParseOutput(&stdout, p.Measured)
	if err != nil {
		var se *simerr.Error
		if errors.As(err, &se) {
			return outcome.Shot{}, se
		}
		return outcome.Shot{}, simerr.Wrap(simerr.CodeParse, err, "parse simulator output")
	}
	return shot, nil
}

func stderrTail(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxStderr {
		s = "..." + s[len(s)-maxStderr:]
	}
	return s
}

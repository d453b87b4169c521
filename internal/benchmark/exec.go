package benchmark

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/kballard/go-shellquote"
)

// waitDelay bounds how long Wait keeps copying output after the process is
// killed, so a child holding our pipes cannot stall the harness.
const waitDelay = 2 * time.Second

// Invocation describes one external process to run.
type Invocation struct {
	Dir  string
	Path string
	Args []string
}

// String renders the invocation as a copy-pasteable shell command.
func (inv Invocation) String() string {
	return shellquote.Join(append([]string{inv.Path}, inv.Args...)...)
}

// Output is what a finished process left behind.
type Output struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Elapsed  time.Duration
}

// Executor runs external processes to completion.
//
// A non-zero exit status is reported through Output.ExitCode with a nil
// error; the error is reserved for processes that could not be started or
// were stopped by ctx.
type Executor interface {
	Execute(ctx context.Context, inv Invocation) (Output, error)
}

// ProcessExecutor implements Executor with os/exec.
type ProcessExecutor struct{}

func NewProcessExecutor() *ProcessExecutor {
	return &ProcessExecutor{}
}

func (e *ProcessExecutor) Execute(ctx context.Context, inv Invocation) (Output, error) {
	cmd := exec.CommandContext(ctx, inv.Path, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	out := Output{
		ExitCode: -1,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Elapsed:  time.Since(start),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, ctxErr
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		out.ExitCode = 0
	case errors.As(err, &exitErr):
		out.ExitCode = exitErr.ExitCode()
	default:
		return out, err
	}
	return out, nil
}

// invoke runs inv under an optional timeout and classifies the result. fail
// builds the error for a completed but unsuccessful process.
func invoke(ctx context.Context, ex Executor, inv Invocation, timeout time.Duration, allowStderr bool,
	fail func(out Output, err error) error) (Output, error) {
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	out, err := ex.Execute(runCtx, inv)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return out, &TimeoutError{
				Command: inv.String(),
				Timeout: timeout,
				Stdout:  out.Stdout,
				Stderr:  out.Stderr,
			}
		}
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		return out, fail(out, err)
	}

	if out.ExitCode != 0 || (!allowStderr && out.Stderr != "") {
		return out, fail(out, nil)
	}
	return out, nil
}

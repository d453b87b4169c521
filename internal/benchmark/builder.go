package benchmark

import (
	"context"
	"log/slog"
	"time"
)

// Builder compiles the benchmark binary with an external build tool.
type Builder struct {
	Dir         string
	Tool        string
	Args        []string
	Timeout     time.Duration
	AllowStderr bool
	Exec        Executor
	Logger      *slog.Logger
}

// NewBuilder returns a Builder that runs tool in dir.
func NewBuilder(dir, tool string, args []string, ex Executor, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{Dir: dir, Tool: tool, Args: args, Exec: ex, Logger: logger}
}

// Build runs the build tool once. It fails on a non-zero exit status or, unless
// AllowStderr is set, on any diagnostic output.
func (b *Builder) Build(ctx context.Context) error {
	inv := Invocation{Dir: b.Dir, Path: b.Tool, Args: b.Args}
	b.Logger.Info("building benchmark", "dir", b.Dir, "command", inv.String())

	out, err := invoke(ctx, b.Exec, inv, b.Timeout, b.AllowStderr, func(out Output, err error) error {
		return &BuildError{
			Dir:      b.Dir,
			Command:  inv.String(),
			ExitCode: out.ExitCode,
			Stdout:   out.Stdout,
			Stderr:   out.Stderr,
			Err:      err,
		}
	})
	if err != nil {
		return err
	}

	b.Logger.Info("build finished", "elapsed", out.Elapsed)
	return nil
}

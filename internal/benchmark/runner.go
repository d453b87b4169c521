package benchmark

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
	"time"
)

// SweepConfig bounds the parameter space and controls invocation policy.
// Procs overrides the host's processing unit count when positive.
type SweepConfig struct {
	Variants         int
	MinThreads       int
	ThreadMultiplier int
	Procs            int
	Timeout          time.Duration
	Retries          int
	RetryBackoff     time.Duration
	AllowStderr      bool
}

// DefaultSweepConfig sweeps two variants from 2 threads to three times the CPU count.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Variants:         2,
		MinThreads:       2,
		ThreadMultiplier: 3,
		Timeout:          10 * time.Minute,
		RetryBackoff:     time.Second,
	}
}

// ThreadBounds returns the inclusive thread count range of the sweep.
func (c SweepConfig) ThreadBounds() (lo, hi int) {
	return c.MinThreads, c.ProcCount() * c.ThreadMultiplier
}

// ProcCount returns Procs, or the logical CPU count when Procs is unset.
func (c SweepConfig) ProcCount() int {
	if c.Procs <= 0 {
		return runtime.NumCPU()
	}
	return c.Procs
}

// Validate reports bounds that would produce an empty or malformed sweep.
func (c SweepConfig) Validate() error {
	if c.Variants < 1 {
		return fmt.Errorf("variants must be at least 1, got %d", c.Variants)
	}
	if c.MinThreads < 1 {
		return fmt.Errorf("min threads must be at least 1, got %d", c.MinThreads)
	}
	if c.ThreadMultiplier < 1 {
		return fmt.Errorf("thread multiplier must be at least 1, got %d", c.ThreadMultiplier)
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", c.Retries)
	}
	if lo, hi := c.ThreadBounds(); lo > hi {
		return fmt.Errorf("empty thread range %d..%d", lo, hi)
	}
	return nil
}

// Binary locates the benchmark executable and its selector flags.
type Binary struct {
	Dir         string
	Name        string
	VariantFlag string
	ThreadFlag  string
}

func (b Binary) invocation(variant, threads int) Invocation {
	return Invocation{
		Dir:  b.Dir,
		Path: filepath.Join(b.Dir, b.Name),
		Args: []string{b.VariantFlag, strconv.Itoa(variant), b.ThreadFlag, strconv.Itoa(threads)},
	}
}

// Event describes one attempt at one sweep point.
type Event struct {
	Variant int
	Threads int
	Attempt int
	Elapsed time.Duration
	Run     *Run
	Err     error
}

// Observer is notified after every attempt.
type Observer interface {
	Observe(ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(ev Event) { f(ev) }

// SweepRunner drives the benchmark binary over every (variant, threads) pair.
type SweepRunner struct {
	Config    SweepConfig
	Binary    Binary
	Exec      Executor
	Logger    *slog.Logger
	Observers []Observer

	// SleepFunc waits between retries; overridable in tests.
	SleepFunc func(ctx context.Context, d time.Duration) error
}

func NewSweepRunner(cfg SweepConfig, bin Binary, ex Executor, logger *slog.Logger) *SweepRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &SweepRunner{
		Config:    cfg,
		Binary:    bin,
		Exec:      ex,
		Logger:    logger,
		SleepFunc: sleepContext,
	}
}

// Points returns the number of invocations a full sweep needs.
func (r *SweepRunner) Points() int {
	lo, hi := r.Config.ThreadBounds()
	if hi < lo {
		return 0
	}
	return r.Config.Variants * (hi - lo + 1)
}

// Run executes the whole sweep. The first failure aborts it and no dataset is
// returned.
func (r *SweepRunner) Run(ctx context.Context) (*Dataset, error) {
	if err := r.Config.Validate(); err != nil {
		return nil, err
	}

	lo, hi := r.Config.ThreadBounds()
	r.Logger.Info("starting sweep", "variants", r.Config.Variants, "min_threads", lo, "max_threads", hi, "points", r.Points())

	ds := NewDataset()
	for v := 1; v <= r.Config.Variants; v++ {
		for t := lo; t <= hi; t++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			reference, measured, err := r.measure(ctx, v, t)
			if err != nil {
				return nil, err
			}

			run, err := ds.Append(v, t, reference, measured)
			if err != nil {
				return nil, err
			}
			r.Logger.Info("recorded run", "variant", v, "threads", t,
				"reference", run.Reference, "measured", run.Measured, "speedup", run.Speedup)
		}
	}

	r.Logger.Info("sweep finished", "runs", ds.Len())
	return ds, nil
}

// measure invokes the binary for one point, retrying transient failures when
// configured to.
func (r *SweepRunner) measure(ctx context.Context, variant, threads int) (float64, float64, error) {
	inv := r.Binary.invocation(variant, threads)
	attempts := r.Config.Retries + 1

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			wait := r.Config.RetryBackoff * time.Duration(1<<(attempt-2))
			r.Logger.Warn("retrying invocation", "command", inv.String(), "attempt", attempt, "wait", wait, "error", lastErr)
			if err := r.SleepFunc(ctx, wait); err != nil {
				return 0, 0, err
			}
		}

		r.Logger.Debug("invoking benchmark", "command", inv.String(), "attempt", attempt)
		out, err := invoke(ctx, r.Exec, inv, r.Config.Timeout, r.Config.AllowStderr, func(out Output, err error) error {
			return &CommandError{
				Command:  inv.String(),
				ExitCode: out.ExitCode,
				Stdout:   out.Stdout,
				Stderr:   out.Stderr,
				Err:      err,
			}
		})

		ev := Event{Variant: variant, Threads: threads, Attempt: attempt, Elapsed: out.Elapsed}
		if err != nil {
			ev.Err = err
			r.notify(ev)
			if !retryable(err) {
				return 0, 0, err
			}
			lastErr = err
			continue
		}

		reference, measured, err := ParseOutput(out.Stdout)
		if err == nil {
			var sp float64
			sp, err = Speedup(reference, measured)
			ev.Run = &Run{Threads: threads, Reference: reference, Measured: measured, Speedup: sp}
		}
		ev.Err = err
		r.notify(ev)
		return reference, measured, err
	}
	return 0, 0, lastErr
}

func (r *SweepRunner) notify(ev Event) {
	for _, o := range r.Observers {
		o.Observe(ev)
	}
}

// retryable reports whether err may be transient. Parse failures are treated
// as deterministic.
func retryable(err error) bool {
	var cmdErr *CommandError
	var timeoutErr *TimeoutError
	return errors.As(err, &cmdErr) || errors.As(err, &timeoutErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

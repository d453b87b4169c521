package benchmark

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrUndefinedSpeedup is returned when the measured time is zero.
	ErrUndefinedSpeedup = errors.New("speedup undefined: measured time is zero")
	// ErrThreadOrder is returned when a series would lose its strict thread ordering.
	ErrThreadOrder = errors.New("thread counts must be strictly increasing")
)

// BuildError reports a failed build step.
type BuildError struct {
	Dir      string
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *BuildError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "build failed in %s: %s (exit code %d)", e.Dir, e.Command, e.ExitCode)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	writeStreams(&b, e.Stdout, e.Stderr)
	return b.String()
}

func (e *BuildError) Unwrap() error { return e.Err }

// CommandError reports a failed benchmark invocation.
type CommandError struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "command failed: %s (exit code %d)", e.Command, e.ExitCode)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	writeStreams(&b, e.Stdout, e.Stderr)
	return b.String()
}

func (e *CommandError) Unwrap() error { return e.Err }

// TimeoutError reports an invocation that exceeded its deadline and was killed.
type TimeoutError struct {
	Command string
	Timeout time.Duration
	Stdout  string
	Stderr  string
}

func (e *TimeoutError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "command timed out after %s: %s", e.Timeout, e.Command)
	writeStreams(&b, e.Stdout, e.Stderr)
	return b.String()
}

// ParseError reports output that did not carry exactly two timings.
type ParseError struct {
	Text    string
	Matches []float64
}

func (e *ParseError) Error() string {
	if len(e.Matches) == 2 {
		return fmt.Sprintf("bracketed timing out of range %v in output:\n%s", e.Matches, e.Text)
	}
	return fmt.Sprintf("expected 2 bracketed timings, found %d %v in output:\n%s", len(e.Matches), e.Matches, e.Text)
}

func writeStreams(b *strings.Builder, stdout, stderr string) {
	if stdout != "" {
		fmt.Fprintf(b, "\nstdout:\n%s", stdout)
	}
	if stderr != "" {
		fmt.Fprintf(b, "\nstderr:\n%s", stderr)
	}
}

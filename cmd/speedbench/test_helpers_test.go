package main

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"speedbench/internal/benchmark"
)

// fakeExecutor answers for both the build tool and the benchmark binary.
type fakeExecutor struct {
	mu     sync.Mutex
	calls  []benchmark.Invocation
	stderr string
}

func (f *fakeExecutor) Execute(ctx context.Context, inv benchmark.Invocation) (benchmark.Output, error) {
	f.mu.Lock()
	f.calls = append(f.calls, inv)
	f.mu.Unlock()

	if inv.Path == "make" {
		return benchmark.Output{Stdout: "make: 'mandelbrot' is up to date.\n"}, nil
	}
	threads, _ := strconv.Atoi(inv.Args[3])
	return benchmark.Output{
		Stdout: fmt.Sprintf("[mandelbrot serial]:\t\t[%.3f] ms\n[mandelbrot thread]:\t\t[%.3f] ms\n", 300.0, 300.0/float64(threads)),
		Stderr: f.stderr,
	}, nil
}

// withFakeExecutor routes all process execution to ex for the test.
func withFakeExecutor(t *testing.T, ex *fakeExecutor) {
	t.Helper()
	old := newExecutor
	newExecutor = func() benchmark.Executor { return ex }
	t.Cleanup(func() { newExecutor = old })
}

// resetConfig clears viper state left by earlier commands and restores flag bindings.
func resetConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	bindFlags()
	t.Cleanup(func() {
		viper.Reset()
		bindFlags()
	})
}

// executeCommand executes a cobra command and returns its output.
func executeCommand(root *cobra.Command, args ...string) (string, error) {
	resetFlags(root)
	oldExit := exit
	exit = func(code int) {
		if code != 0 {
			panic(fmt.Sprintf("exit-%d", code))
		}
	}
	defer func() { exit = oldExit }()
	defer func() {
		if r := recover(); r != nil {
			if s, ok := r.(string); ok && strings.HasPrefix(s, "exit-") {
				return
			}
			panic(r)
		}
	}()
	root.SetArgs(args)
	b := new(bytes.Buffer)
	root.SetOut(b)
	root.SetErr(b)
	root.SetIn(bytes.NewBufferString(""))
	err := root.Execute()
	return b.String(), err
}

// resetFlags resets all flags to their default values.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

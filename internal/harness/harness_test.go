package harness

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"speedbench/internal/benchmark"
	"speedbench/internal/chart"
	"speedbench/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecutor plays both make and the benchmark binary.
type fakeExecutor struct {
	calls  int
	stderr bool
}

func (f *fakeExecutor) Execute(ctx context.Context, inv benchmark.Invocation) (benchmark.Output, error) {
	f.calls++
	if inv.Path == "make" {
		return benchmark.Output{Stdout: "make: Nothing to be done for 'all'.\n"}, nil
	}
	threads, _ := strconv.Atoi(inv.Args[3])
	out := benchmark.Output{
		Stdout: fmt.Sprintf("[mandelbrot serial]:\t\t[%.3f] ms\n[mandelbrot thread]:\t\t[%.3f] ms\n", 240.0, 240.0/float64(threads)),
	}
	if f.stderr && threads == 3 {
		out.Stderr = "segfault in worker 2\n"
	}
	return out, nil
}

type pipeline struct {
	harness *Harness
	ex      *fakeExecutor
	dir     string
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	dir := t.TempDir()
	ex := &fakeExecutor{}

	cfg := benchmark.DefaultSweepConfig()
	cfg.Procs = 2
	bin := benchmark.Binary{Dir: "/work/prog", Name: "mandelbrot", VariantFlag: "-v", ThreadFlag: "-t"}

	store, err := benchmark.NewFileStore(dir, "prog1", benchmark.FormatJSON)
	require.NoError(t, err)
	renderer, err := chart.NewRenderer(dir, "prog1", "png")
	require.NoError(t, err)

	h := New(
		benchmark.NewBuilder("/work/prog", "make", nil, ex, nil),
		benchmark.NewSweepRunner(cfg, bin, ex, nil),
		store,
		renderer,
		nil,
	)
	h.Now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 450_000_000, time.UTC) }
	h.Host = "bench-01"
	h.Procs = 2
	return &pipeline{harness: h, ex: ex, dir: dir}
}

func TestHarness_Run(t *testing.T) {
	p := newPipeline(t)

	report, err := p.harness.Run(context.Background())
	require.NoError(t, err)

	// 1 build + 2 variants x threads 2..6
	assert.Equal(t, 11, p.ex.calls)
	assert.Equal(t, time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC), report.Timestamp)
	assert.Equal(t, filepath.Join(p.dir, "prog1_data_2024-03-09_14:05:07.json"), report.DataFile)
	assert.Equal(t, filepath.Join(p.dir, "prog1_img_2024-03-09_14:05:07.png"), report.ChartFile)
	assert.FileExists(t, report.DataFile)
	assert.FileExists(t, report.ChartFile)
	assert.Zero(t, report.HistoryID)

	store, err := benchmark.NewFileStore(p.dir, "prog1", benchmark.FormatJSON)
	require.NoError(t, err)
	loaded, err := store.Load(report.DataFile)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, loaded.Variants())
	assert.Equal(t, []int{2, 3, 4, 5, 6}, loaded.Series(1).Threads())
	assert.Equal(t, 3.0, loaded.Series(2).Runs[1].Speedup)
}

func TestHarness_StderrWritesNothing(t *testing.T) {
	p := newPipeline(t)
	p.ex.stderr = true

	report, err := p.harness.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, report)

	var cmdErr *benchmark.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Contains(t, cmdErr.Stderr, "segfault")

	entries, err := os.ReadDir(p.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type failingBuilder struct{ err error }

func (b failingBuilder) Build(ctx context.Context) error { return b.err }

type countingSweeper struct{ runs int }

func (s *countingSweeper) Run(ctx context.Context) (*benchmark.Dataset, error) {
	s.runs++
	return benchmark.NewDataset(), nil
}

func TestHarness_BuildFailureSkipsSweep(t *testing.T) {
	buildErr := &benchmark.BuildError{Dir: "/work/prog", Command: "make", ExitCode: 2}
	sweeper := &countingSweeper{}
	h := New(failingBuilder{err: buildErr}, sweeper, nil, nil, nil)

	_, err := h.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, buildErr)
	assert.Zero(t, sweeper.runs)
}

type failingRenderer struct{}

func (failingRenderer) Render(ds *benchmark.Dataset, ts time.Time) (string, error) {
	return "", errors.New("no space left on device")
}

func TestHarness_ChartFailureKeepsDataFile(t *testing.T) {
	p := newPipeline(t)
	p.harness.Chart = failingRenderer{}

	report, err := p.harness.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to render chart")
	require.NotNil(t, report)
	assert.FileExists(t, report.DataFile)
	assert.Empty(t, report.ChartFile)
}

func TestHarness_RecordsHistory(t *testing.T) {
	p := newPipeline(t)
	history, err := db.NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer history.Close()
	p.harness.History = history

	report, err := p.harness.Run(context.Background())
	require.NoError(t, err)
	assert.NotZero(t, report.HistoryID)

	sweeps, err := history.ListSweeps(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, sweeps, 1)
	assert.Equal(t, "bench-01", sweeps[0].Host)
	assert.Equal(t, 2, sweeps[0].Procs)
	assert.Equal(t, 10, sweeps[0].RunCount)
	assert.Equal(t, report.DataFile, sweeps[0].DataFile)
	assert.Equal(t, report.ChartFile, sweeps[0].ChartFile)
}

type brokenHistory struct{ db.Store }

func (brokenHistory) SaveSweep(ctx context.Context, rec db.SweepRecord) (int64, error) {
	return 0, errors.New("database is locked")
}

func TestHarness_HistoryFailureIsNotFatal(t *testing.T) {
	p := newPipeline(t)
	p.harness.History = brokenHistory{}

	report, err := p.harness.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.HistoryID)
	assert.FileExists(t, report.ChartFile)
}

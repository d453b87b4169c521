package harness

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"speedbench/internal/benchmark"
	"speedbench/internal/db"
)

// Report describes the outputs of one completed pipeline run.
type Report struct {
	Timestamp time.Time
	Dataset   *benchmark.Dataset
	DataFile  string
	ChartFile string
	HistoryID int64
}

// Harness runs build, sweep, save and render in order. Nothing is written
// unless the build and the whole sweep succeed.
type Harness struct {
	Builder Builder
	Sweeper Sweeper
	Store   benchmark.Store
	Chart   Renderer
	History db.Store // optional

	Now    func() time.Time
	Logger *slog.Logger
	Host   string
	Procs  int
}

func New(b Builder, s Sweeper, store benchmark.Store, chart Renderer, logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.Default()
	}
	return &Harness{
		Builder: b,
		Sweeper: s,
		Store:   store,
		Chart:   chart,
		Now:     time.Now,
		Logger:  logger,
	}
}

// Run executes the pipeline. On a chart failure the returned report still
// names the data file that was written.
func (h *Harness) Run(ctx context.Context) (*Report, error) {
	h.Logger.Info("Building benchmark")
	if err := h.Builder.Build(ctx); err != nil {
		return nil, fmt.Errorf("build failed: %w", err)
	}

	started := h.now()
	h.Logger.Info("Starting sweep")
	ds, err := h.Sweeper.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("sweep failed: %w", err)
	}

	// one timestamp names both artifacts
	ts := h.now().Truncate(time.Second)
	report := &Report{Timestamp: ts, Dataset: ds}

	report.DataFile, err = h.Store.Save(ds, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to save results: %w", err)
	}
	h.Logger.Info("Results saved", "path", report.DataFile)

	report.ChartFile, err = h.Chart.Render(ds, ts)
	if err != nil {
		return report, fmt.Errorf("failed to render chart: %w", err)
	}
	h.Logger.Info("Chart rendered", "path", report.ChartFile)

	if h.History != nil {
		id, err := h.History.SaveSweep(ctx, h.record(report, started))
		if err != nil {
			// the files are the primary output; a history failure does not undo them
			h.Logger.Warn("Failed to record sweep history", "error", err)
		} else {
			report.HistoryID = id
			h.Logger.Debug("Sweep recorded", "id", id)
		}
	}

	return report, nil
}

func (h *Harness) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

func (h *Harness) record(r *Report, started time.Time) db.SweepRecord {
	rec := db.SweepRecord{
		StartedAt: started,
		Host:      h.Host,
		Procs:     h.Procs,
		DataFile:  r.DataFile,
		ChartFile: r.ChartFile,
	}
	for _, v := range r.Dataset.Variants() {
		for _, run := range r.Dataset.Series(v).Runs {
			rec.Runs = append(rec.Runs, db.RunRecord{
				Variant:   v,
				Threads:   run.Threads,
				Reference: run.Reference,
				Measured:  run.Measured,
				Speedup:   run.Speedup,
			})
		}
	}
	rec.RunCount = len(rec.Runs)
	return rec
}

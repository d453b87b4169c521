package db

import (
	"context"
	"time"
)

// SweepRecord is one completed sweep as stored in the history database.
type SweepRecord struct {
	ID        int64       `json:"id"`
	StartedAt time.Time   `json:"started_at"`
	Host      string      `json:"host"`
	Procs     int         `json:"procs"`
	DataFile  string      `json:"data_file"`
	ChartFile string      `json:"chart_file"`
	RunCount  int         `json:"run_count"`
	Runs      []RunRecord `json:"runs,omitempty"`
}

// RunRecord is one measurement of a sweep.
type RunRecord struct {
	Variant   int     `json:"variant"`
	Threads   int     `json:"threads"`
	Reference float64 `json:"reference"`
	Measured  float64 `json:"measured"`
	Speedup   float64 `json:"speedup"`
}

// Store is an append-only history of sweeps.
type Store interface {
	Close() error
	SaveSweep(ctx context.Context, rec SweepRecord) (int64, error)
	// ListSweeps returns the most recent sweeps, newest first, without runs.
	ListSweeps(ctx context.Context, limit int) ([]SweepRecord, error)
}

package harness

import (
	"context"
	"time"

	"speedbench/internal/benchmark"
)

// Builder compiles the program under test.
type Builder interface {
	Build(ctx context.Context) error
}

// Sweeper measures every (variant, threads) point and returns the dataset.
type Sweeper interface {
	Run(ctx context.Context) (*benchmark.Dataset, error)
}

// Renderer draws the speedup chart for a dataset.
type Renderer interface {
	Render(ds *benchmark.Dataset, ts time.Time) (string, error)
}

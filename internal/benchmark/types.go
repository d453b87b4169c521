package benchmark

import (
	"fmt"
	"sort"
)

// Run is the outcome of one invocation of the benchmark binary.
type Run struct {
	Threads   int
	Reference float64 // serial time reported by the binary, seconds
	Measured  float64 // parallel time at Threads, seconds
	Speedup   float64
}

// Series holds the runs of one variant ordered by thread count.
type Series struct {
	Variant int
	Runs    []Run
}

// Threads returns the thread counts of the series in order.
func (s *Series) Threads() []int {
	out := make([]int, len(s.Runs))
	for i, r := range s.Runs {
		out[i] = r.Threads
	}
	return out
}

// Dataset maps variant identifiers to their series for one sweep.
type Dataset struct {
	series map[int]*Series
}

func NewDataset() *Dataset {
	return &Dataset{series: make(map[int]*Series)}
}

// Series returns the series for variant, or nil if nothing was recorded.
func (d *Dataset) Series(variant int) *Series {
	return d.series[variant]
}

// Variants returns the recorded variant identifiers in ascending order.
func (d *Dataset) Variants() []int {
	ids := make([]int, 0, len(d.series))
	for id := range d.series {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Len returns the total number of runs across all variants.
func (d *Dataset) Len() int {
	n := 0
	for _, s := range d.series {
		n += len(s.Runs)
	}
	return n
}

// VariantKey is the record key for a variant, e.g. "v1".
func VariantKey(variant int) string {
	return fmt.Sprintf("v%d", variant)
}

package benchmark

import "fmt"

// VariantSummary condenses one series to its best observed scaling point.
type VariantSummary struct {
	Variant     int
	Points      int
	BestThreads int
	BestSpeedup float64
	// Efficiency is BestSpeedup divided by BestThreads; 1.0 is ideal scaling.
	Efficiency float64
}

// Summarize returns one summary per variant in ascending variant order.
func Summarize(ds *Dataset) []VariantSummary {
	var out []VariantSummary
	for _, id := range ds.Variants() {
		s := ds.Series(id)
		sum := VariantSummary{Variant: id, Points: len(s.Runs)}
		for _, r := range s.Runs {
			if r.Speedup > sum.BestSpeedup {
				sum.BestSpeedup = r.Speedup
				sum.BestThreads = r.Threads
			}
		}
		if sum.BestThreads > 0 {
			sum.Efficiency = sum.BestSpeedup / float64(sum.BestThreads)
		}
		out = append(out, sum)
	}
	return out
}

func (s VariantSummary) String() string {
	return fmt.Sprintf("%s: best speedup %.2fx at %d threads (%.0f%% efficiency)",
		VariantKey(s.Variant), s.BestSpeedup, s.BestThreads, s.Efficiency*100)
}

package benchmark

import (
	"fmt"

	"gonum.org/v1/gonum/floats/scalar"
)

// speedupPrecision is the number of decimals kept on derived speedups.
const speedupPrecision = 2

// Speedup returns reference/measured rounded to two decimals.
func Speedup(reference, measured float64) (float64, error) {
	if measured <= 0 {
		return 0, fmt.Errorf("%w (reference=%v, measured=%v)", ErrUndefinedSpeedup, reference, measured)
	}
	return scalar.RoundEven(reference/measured, speedupPrecision), nil
}

// Append records one measurement for variant. Thread counts must be strictly
// increasing within a variant.
func (d *Dataset) Append(variant, threads int, reference, measured float64) (Run, error) {
	sp, err := Speedup(reference, measured)
	if err != nil {
		return Run{}, err
	}

	s, ok := d.series[variant]
	if !ok {
		s = &Series{Variant: variant}
		d.series[variant] = s
	}
	if n := len(s.Runs); n > 0 && s.Runs[n-1].Threads >= threads {
		return Run{}, fmt.Errorf("%w: variant %d got %d after %d", ErrThreadOrder, variant, threads, s.Runs[n-1].Threads)
	}

	run := Run{
		Threads:   threads,
		Reference: reference,
		Measured:  measured,
		Speedup:   sp,
	}
	s.Runs = append(s.Runs, run)
	return run, nil
}

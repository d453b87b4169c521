package benchmark

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutput(t *testing.T) {
	output := `
[mandelbrot serial]:		[676.718] ms
Wrote image file mandelbrot-serial.ppm
[mandelbrot thread]:		[340.230] ms
Wrote image file mandelbrot-thread.ppm
				(1.99x speedup from 2 threads)
`
	reference, measured, err := ParseOutput(output)
	require.NoError(t, err)
	assert.Equal(t, 676.718, reference)
	assert.Equal(t, 340.23, measured)
}

func TestParseOutput_SurroundingText(t *testing.T) {
	reference, measured, err := ParseOutput("elapsed [100.00] ... [50.00] done")
	require.NoError(t, err)
	assert.Equal(t, 100.0, reference)
	assert.Equal(t, 50.0, measured)
}

func TestParseOutput_WrongCount(t *testing.T) {
	cases := map[string]struct {
		output  string
		matches []float64
	}{
		"none":  {"no timings at all", nil},
		"one":   {"took [1.25] ms", []float64{1.25}},
		"three": {"[1.0] [2.0] [3.0]", []float64{1, 2, 3}},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := ParseOutput(tc.output)
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tc.output, parseErr.Text)
			assert.Equal(t, tc.matches, parseErr.Matches)
		})
	}
}

func TestParseOutput_Malformed(t *testing.T) {
	// integers, missing fraction and unclosed brackets do not count
	reference, measured, err := ParseOutput("[12] [3.] [.5] [4.0 [7.25] [8.5]")
	require.NoError(t, err)
	assert.Equal(t, 7.25, reference)
	assert.Equal(t, 8.5, measured)
}

func TestParseOutput_FirstMatchPerToken(t *testing.T) {
	// a token carrying two timings only contributes the first one
	_, _, err := ParseOutput("[1.0][2.0]")
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, []float64{1.0}, parseErr.Matches)

	reference, measured, err := ParseOutput("t=[1.5]ms,x [2.5]")
	require.NoError(t, err)
	assert.Equal(t, 1.5, reference)
	assert.Equal(t, 2.5, measured)
}

func TestParseOutput_OutOfRange(t *testing.T) {
	huge := "[1" + strings.Repeat("0", 400) + ".0]"
	output := "serial " + huge + " thread [50.0]"

	_, _, err := ParseOutput(output)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Len(t, parseErr.Matches, 2)
	assert.True(t, math.IsInf(parseErr.Matches[0], 1))
	assert.Equal(t, 50.0, parseErr.Matches[1])
	assert.Contains(t, err.Error(), "out of range")
}

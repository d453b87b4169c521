package benchmark

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// timingRegex matches a bracketed decimal such as [123.456].
var timingRegex = regexp.MustCompile(`\[(\d+\.\d+)\]`)

// ParseOutput extracts the reference and measured timings from the binary's
// standard output. Only the first match of each whitespace-separated token
// counts, and exactly two matches are required.
func ParseOutput(output string) (reference, measured float64, err error) {
	var matches []float64
	for _, field := range strings.Fields(output) {
		m := timingRegex.FindStringSubmatch(field)
		if m == nil {
			continue
		}
		// out of range values come back as +Inf and are kept for the error
		v, perr := strconv.ParseFloat(m[1], 64)
		if perr != nil && !errors.Is(perr, strconv.ErrRange) {
			continue
		}
		matches = append(matches, v)
	}

	if len(matches) != 2 || math.IsInf(matches[0], 0) || math.IsInf(matches[1], 0) {
		return 0, 0, &ParseError{Text: output, Matches: matches}
	}
	return matches[0], matches[1], nil
}

package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/tabscope/internal/schema"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultBins is the bin count used when Histogram gets bins <= 0.
const DefaultBins = 20

// HistogramResult is an equal-width binning of a numeric column.
type HistogramResult struct {
	Column string
	// Edges has len(Counts)+1 entries; bin i covers [Edges[i], Edges[i+1]),
	// the last bin is closed.
	Edges  []float64
	Counts []int
}

// Max returns the largest bin count.
func (h *HistogramResult) Max() int {
	m := 0
	for _, c := range h.Counts {
		if c > m {
			m = c
		}
	}
	return m
}

// Total returns the number of binned values.
func (h *HistogramResult) Total() int {
	n := 0
	for _, c := range h.Counts {
		n += c
	}
	return n
}

// Histogram bins the present finite values of a numeric column into
// equal-width bins. A constant column yields a single bin. Infinite cells are
// skipped; a column with no finite values, or whose range overflows float64,
// is ErrNotApplicable.
func Histogram(f *schema.Frame, column string, bins int) (*HistogramResult, error) {
	desc, ok := f.Column(column)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	if desc.Kind != schema.Numeric {
		return nil, fmt.Errorf("%w: %q", ErrNotNumeric, column)
	}
	all, _ := f.Floats(column)
	xs := make([]float64, 0, len(all))
	for _, x := range all {
		if !math.IsInf(x, 0) && !math.IsNaN(x) {
			xs = append(xs, x)
		}
	}
	if len(xs) == 0 {
		return nil, fmt.Errorf("%w: %q has no finite values", ErrNotApplicable, column)
	}
	if bins <= 0 {
		bins = DefaultBins
	}
	sort.Float64s(xs)
	lo, hi := xs[0], xs[len(xs)-1]
	if lo == hi {
		bins = 1
	}
	if math.IsInf(hi-lo, 0) {
		return nil, fmt.Errorf("%w: %q range overflows", ErrNotApplicable, column)
	}

	edges := floats.Span(make([]float64, bins+1), lo, hi)
	dividers := make([]float64, len(edges))
	copy(dividers, edges)
	// rounding in Span may push interior edges past hi
	for i := 1; i < bins; i++ {
		dividers[i] = math.Min(math.Max(dividers[i], dividers[i-1]), hi)
	}
	// the last divider must exceed the maximum so it lands in the final bin
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	weights := stat.Histogram(nil, dividers, xs, nil)
	counts := make([]int, len(weights))
	for i, w := range weights {
		counts[i] = int(w)
	}
	return &HistogramResult{Column: column, Edges: edges, Counts: counts}, nil
}

package analysis

import (
	"errors"
	"fmt"
	"sort"

	"github.com/KaramelBytes/tabscope/internal/schema"
)

// DefaultTopN is the number of values kept by TopFrequencies when n <= 0.
const DefaultTopN = 10

var (
	// ErrUnknownColumn is returned for a column name not in the frame.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrNotNumeric is returned when a numeric operation targets a categorical column.
	ErrNotNumeric = errors.New("column is not numeric")
	// ErrNotApplicable is returned when an aggregate is undefined for the frame.
	ErrNotApplicable = errors.New("not applicable")
)

// Frequency is one distinct value and how often it occurs.
type Frequency struct {
	Value schema.Value
	Count int
}

// Label renders the value for tables and charts.
func (f Frequency) Label() string { return f.Value.String() }

// TopFrequencies counts each distinct non-missing value of column, orders by
// descending count with ties in first-encounter order, and keeps the first n.
// Categorical values are counted verbatim.
func TopFrequencies(f *schema.Frame, column string, n int) ([]Frequency, error) {
	if n <= 0 {
		n = DefaultTopN
	}
	counts, err := countValues(f, column)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts, nil
}

// GroupCount returns the size of each group of column, ordered by key:
// ascending for numeric columns and lexicographic for categorical ones.
func GroupCount(f *schema.Frame, column string) ([]Frequency, error) {
	counts, err := countValues(f, column)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(counts, func(i, j int) bool {
		a, b := counts[i].Value, counts[j].Value
		if x, ok := a.Float(); ok {
			y, _ := b.Float()
			return x < y
		}
		return a.String() < b.String()
	})
	return counts, nil
}

// countValues returns counts in first-encounter order.
func countValues(f *schema.Frame, column string) ([]Frequency, error) {
	vals, ok := f.Values(column)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	pos := make(map[schema.Value]int)
	var out []Frequency
	for _, v := range vals {
		if v.IsMissing() {
			continue
		}
		if i, seen := pos[v]; seen {
			out[i].Count++
			continue
		}
		pos[v] = len(out)
		out = append(out, Frequency{Value: v, Count: 1})
	}
	return out, nil
}

// Package selector lists the selectable values of a column and filters rows by
// a chosen value using the column's kind.
package selector

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/tabscope/internal/schema"
	"golang.org/x/text/cases"
)

var (
	// ErrUnknownColumn is returned for a column name not in the frame.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrKindMismatch is returned when a value's variant differs from the column kind.
	ErrKindMismatch = errors.New("value does not match column kind")
)

// Result holds the matching rows in original order.
type Result struct {
	Column  string
	Value   schema.Value
	Columns []string
	Indices []int
	Rows    [][]string
}

// Len returns the number of matching rows.
func (r *Result) Len() int { return len(r.Indices) }

// Empty reports whether nothing matched.
func (r *Result) Empty() bool { return len(r.Indices) == 0 }

// Distinct returns the selectable values of a column. Missing cells are dropped;
// categorical values are trimmed, blanks dropped, de-duplicated and sorted
// lexicographically; numeric values are de-duplicated and sorted ascending.
func Distinct(f *schema.Frame, column string) ([]schema.Value, error) {
	desc, vals, err := lookup(f, column)
	if err != nil {
		return nil, err
	}
	if desc.Kind == schema.Numeric {
		seen := make(map[float64]struct{})
		var nums []float64
		for _, v := range vals {
			x, ok := v.Float()
			if !ok {
				continue
			}
			if _, dup := seen[x]; dup {
				continue
			}
			seen[x] = struct{}{}
			nums = append(nums, x)
		}
		sort.Float64s(nums)
		out := make([]schema.Value, len(nums))
		for i, x := range nums {
			out[i] = schema.NumericValue(x)
		}
		return out, nil
	}

	seen := make(map[string]struct{})
	var texts []string
	for _, v := range vals {
		s, ok := v.Text()
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		texts = append(texts, s)
	}
	sort.Strings(texts)
	out := make([]schema.Value, len(texts))
	for i, s := range texts {
		out[i] = schema.CategoricalValue(s)
	}
	return out, nil
}

// ParseValue converts user input into the variant matching the column.
func ParseValue(desc schema.ColumnDescriptor, raw string) (schema.Value, error) {
	if desc.Kind == schema.Numeric {
		x, ok := schema.ParseFloat(raw)
		if !ok {
			return schema.Value{}, fmt.Errorf("%w: %q is not a number for column %q", ErrKindMismatch, raw, desc.Name)
		}
		return schema.NumericValue(x), nil
	}
	return schema.CategoricalValue(raw), nil
}

// Filter returns the rows whose value in column matches value. Numeric columns
// match by exact equality. Categorical columns match when the trimmed,
// case-folded cell contains the case-folded value. Missing cells never match.
// No matches is an empty Result, not an error.
func Filter(f *schema.Frame, column string, value schema.Value) (*Result, error) {
	return filter(f, column, value, false)
}

// FilterExact is Filter with trimmed string equality for categorical columns.
func FilterExact(f *schema.Frame, column string, value schema.Value) (*Result, error) {
	return filter(f, column, value, true)
}

func filter(f *schema.Frame, column string, value schema.Value, exact bool) (*Result, error) {
	desc, vals, err := lookup(f, column)
	if err != nil {
		return nil, err
	}
	if value.IsMissing() || value.Kind() != desc.Kind {
		return nil, fmt.Errorf("%w: column %q is %s", ErrKindMismatch, column, desc.Kind)
	}

	match := numericMatcher(value)
	if desc.Kind == schema.Categorical {
		if exact {
			match = exactTextMatcher(value)
		} else {
			match = containsTextMatcher(value)
		}
	}

	t := f.Table()
	res := &Result{Column: column, Value: value, Columns: t.Columns()}
	for i, v := range vals {
		if v.IsMissing() || !match(v) {
			continue
		}
		res.Indices = append(res.Indices, i)
		res.Rows = append(res.Rows, t.Row(i))
	}
	return res, nil
}

func numericMatcher(want schema.Value) func(schema.Value) bool {
	x, _ := want.Float()
	return func(v schema.Value) bool {
		y, ok := v.Float()
		return ok && y == x
	}
}

func containsTextMatcher(want schema.Value) func(schema.Value) bool {
	fold := cases.Fold()
	needle, _ := want.Text()
	needle = fold.String(needle)
	return func(v schema.Value) bool {
		s, ok := v.Text()
		return ok && strings.Contains(fold.String(strings.TrimSpace(s)), needle)
	}
}

func exactTextMatcher(want schema.Value) func(schema.Value) bool {
	target, _ := want.Text()
	target = strings.TrimSpace(target)
	return func(v schema.Value) bool {
		s, ok := v.Text()
		return ok && strings.TrimSpace(s) == target
	}
}

func lookup(f *schema.Frame, column string) (schema.ColumnDescriptor, []schema.Value, error) {
	desc, ok := f.Column(column)
	if !ok {
		return desc, nil, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	vals, _ := f.Values(column)
	return desc, vals, nil
}

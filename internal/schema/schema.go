// Package schema classifies the columns of a loaded table and resolves every
// cell to a typed Value once, so that filtering and aggregation never
// re-derive column types.
package schema

import (
	"strconv"
	"strings"

	"github.com/KaramelBytes/tabscope/internal/dataset"
)

// ColumnDescriptor summarizes one column.
type ColumnDescriptor struct {
	Name              string  `json:"name"`
	Index             int     `json:"index"`
	Kind              Kind    `json:"-"`
	KindName          string  `json:"kind"`
	Dtype             string  `json:"dtype"`
	NonNull           int     `json:"non_null"`
	MissingCount      int     `json:"missing_count"`
	MissingPercentage float64 `json:"missing_percentage"`
	Unique            int     `json:"unique"`
}

// Frame is an inspected table. It is immutable and safe to share.
type Frame struct {
	table  *dataset.Table
	cols   []ColumnDescriptor
	cells  [][]Value // cells[col][row]
	byName map[string]int
}

// Inspect classifies every column of t. A column is Numeric iff every
// non-missing cell parses as a number and at least one cell is present.
func Inspect(t *dataset.Table) *Frame {
	names := t.Columns()
	rows := t.NumRows()
	f := &Frame{
		table:  t,
		cols:   make([]ColumnDescriptor, len(names)),
		cells:  make([][]Value, len(names)),
		byName: make(map[string]int, len(names)),
	}
	for j, name := range names {
		f.byName[name] = j
		kind, missing, integral := classify(t, j)
		vals := make([]Value, rows)
		uniq := make(map[Value]struct{})
		for i := 0; i < rows; i++ {
			cell := t.Cell(i, j)
			switch {
			case dataset.IsMissing(cell):
				vals[i] = Missing(kind)
				continue
			case kind == Numeric:
				x, _ := ParseFloat(cell)
				vals[i] = NumericValue(x)
			default:
				vals[i] = CategoricalValue(cell)
			}
			uniq[vals[i]] = struct{}{}
		}
		f.cells[j] = vals
		f.cols[j] = ColumnDescriptor{
			Name:              name,
			Index:             j,
			Kind:              kind,
			KindName:          kind.String(),
			Dtype:             kind.Dtype(integral && missing == 0),
			NonNull:           rows - missing,
			MissingCount:      missing,
			MissingPercentage: MissingPercentage(missing, rows),
			Unique:            len(uniq),
		}
	}
	return f
}

func classify(t *dataset.Table, j int) (Kind, int, bool) {
	missing := 0
	present := 0
	numeric := true
	integral := true
	for i := 0; i < t.NumRows(); i++ {
		cell := t.Cell(i, j)
		if dataset.IsMissing(cell) {
			missing++
			continue
		}
		present++
		if numeric {
			if _, ok := ParseFloat(cell); !ok {
				numeric = false
			}
		}
		if integral {
			if _, err := strconv.ParseInt(strings.TrimSpace(cell), 10, 64); err != nil {
				integral = false
			}
		}
	}
	if numeric && present > 0 {
		return Numeric, missing, integral
	}
	return Categorical, missing, false
}

// MissingPercentage is 100*missing/rows, and 0 for an empty table.
func MissingPercentage(missing, rows int) float64 {
	if rows == 0 {
		return 0
	}
	return 100 * float64(missing) / float64(rows)
}

// Table returns the underlying raw table.
func (f *Frame) Table() *dataset.Table { return f.table }

// NumRows returns the row count.
func (f *Frame) NumRows() int { return f.table.NumRows() }

// Columns returns a copy of all descriptors in column order.
func (f *Frame) Columns() []ColumnDescriptor {
	out := make([]ColumnDescriptor, len(f.cols))
	copy(out, f.cols)
	return out
}

// Column looks up a descriptor by name.
func (f *Frame) Column(name string) (ColumnDescriptor, bool) {
	j, ok := f.byName[name]
	if !ok {
		return ColumnDescriptor{}, false
	}
	return f.cols[j], true
}

// Values returns the typed cells of a column; the slice must not be modified.
func (f *Frame) Values(name string) ([]Value, bool) {
	j, ok := f.byName[name]
	if !ok {
		return nil, false
	}
	return f.cells[j], true
}

// NumericColumns returns the names of numeric columns in column order.
func (f *Frame) NumericColumns() []string {
	var out []string
	for _, c := range f.cols {
		if c.Kind == Numeric {
			out = append(out, c.Name)
		}
	}
	return out
}

// Floats returns the present values of a numeric column, in row order.
func (f *Frame) Floats(name string) ([]float64, bool) {
	vals, ok := f.Values(name)
	if !ok {
		return nil, false
	}
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if x, ok := v.Float(); ok {
			out = append(out, x)
		}
	}
	return out, true
}

// InfoLine is one row of the info block.
type InfoLine struct {
	Index   int
	Name    string
	NonNull int
	Dtype   string
}

// Info mirrors a dataframe info() block.
type Info struct {
	Rows    int
	Columns []InfoLine
	Dtypes  map[string]int
}

// Info describes row count, per-column non-null counts and dtypes.
func (f *Frame) Info() Info {
	info := Info{Rows: f.NumRows(), Dtypes: map[string]int{}}
	for _, c := range f.cols {
		info.Columns = append(info.Columns, InfoLine{Index: c.Index, Name: c.Name, NonNull: c.NonNull, Dtype: c.Dtype})
		info.Dtypes[c.Dtype]++
	}
	return info
}

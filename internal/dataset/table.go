// Package dataset loads a single delimited or spreadsheet file into an in-memory
// table of raw string cells.
package dataset

import (
	"fmt"
	"strings"
)

// Source describes where a table was read from.
type Source struct {
	// Path is the path as given by the caller; empty for uploads.
	Path string
	// AbsPath is the resolved absolute path; empty for uploads.
	AbsPath string
	// Upload is the client-supplied file name of an uploaded stream.
	Upload string
}

// String returns the most descriptive name for the source.
func (s Source) String() string {
	switch {
	case s.AbsPath != "":
		return s.AbsPath
	case s.Path != "":
		return s.Path
	case s.Upload != "":
		return s.Upload
	default:
		return "(stream)"
	}
}

// Table is an ordered set of uniquely named columns over rows of raw cells.
// Every row has exactly one cell per column. A Table is never mutated after load.
type Table struct {
	Name   string
	Source Source
	// Skipped counts data rows dropped because of Options.MaxRows.
	Skipped int

	header []string
	index  map[string]int
	rows   [][]string
}

// New builds a table from a header and rows. Duplicate or blank header names are
// renamed ("Year", "Year.1"; "Unnamed: 2"), short rows are padded with empty
// (missing) cells, and rows longer than the header are rejected.
func New(name string, header []string, rows [][]string) (*Table, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("table %q has no columns", name)
	}
	t := &Table{
		Name:   name,
		header: uniqueHeader(header),
		rows:   make([][]string, 0, len(rows)),
	}
	t.index = make(map[string]int, len(t.header))
	for i, h := range t.header {
		t.index[h] = i
	}
	ncol := len(t.header)
	for i, rec := range rows {
		if len(rec) > ncol {
			return nil, fmt.Errorf("row %d: expected %d fields, saw %d", i+1, ncol, len(rec))
		}
		row := make([]string, ncol)
		copy(row, rec)
		t.rows = append(t.rows, row)
	}
	return t, nil
}

func uniqueHeader(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	suffix := make(map[string]int)
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for used[name] {
			suffix[h]++
			name = fmt.Sprintf("%s.%d", h, suffix[h])
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// Columns returns a copy of the header.
func (t *Table) Columns() []string {
	out := make([]string, len(t.header))
	copy(out, t.header)
	return out
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return len(t.rows) }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.header) }

// Shape returns (rows, columns).
func (t *Table) Shape() (int, int) { return len(t.rows), len(t.header) }

// ShapeString renders the shape the way dataframe libraries print it.
func (t *Table) ShapeString() string {
	r, c := t.Shape()
	return fmt.Sprintf("(%d, %d)", r, c)
}

// Index returns the position of a column by exact name.
func (t *Table) Index(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Cell returns the raw cell at row i, column j.
func (t *Table) Cell(i, j int) string { return t.rows[i][j] }

// Row returns a copy of row i.
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

// Head returns copies of the first n rows (all rows if n exceeds the row count).
func (t *Table) Head(n int) [][]string {
	if n < 0 {
		n = 0
	}
	if n > len(t.rows) {
		n = len(t.rows)
	}
	out := make([][]string, n)
	for i := 0; i < n; i++ {
		out[i] = t.Row(i)
	}
	return out
}

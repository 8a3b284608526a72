package analysis

import (
	"math"

	"github.com/KaramelBytes/tabscope/internal/schema"
	"gonum.org/v1/gonum/stat"
)

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]; NaN where undefined
}

// Defined reports whether the coefficient at (i, j) could be computed.
func (m *CorrMatrix) Defined(i, j int) bool { return !math.IsNaN(m.Values[i][j]) }

// At returns the coefficient between two named columns.
func (m *CorrMatrix) At(a, b string) (float64, bool) {
	ia, ib := -1, -1
	for i, c := range m.Columns {
		if c == a {
			ia = i
		}
		if c == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return 0, false
	}
	return m.Values[ia][ib], true
}

// CorrelationMatrix computes pairwise Pearson correlation over every numeric
// column, using rows where both values are present. The diagonal is 1. Pairs
// with fewer than two shared rows or zero variance are NaN. Fewer than two
// numeric columns is ErrNotApplicable.
func CorrelationMatrix(f *schema.Frame) (*CorrMatrix, error) {
	names := f.NumericColumns()
	if len(names) < 2 {
		return nil, ErrNotApplicable
	}
	cols := make([][]schema.Value, len(names))
	for i, name := range names {
		cols[i], _ = f.Values(name)
	}
	n := len(names)
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
		mat[i][i] = 1
	}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			r := pearson(cols[a], cols[b])
			mat[a][b] = r
			mat[b][a] = r
		}
	}
	return &CorrMatrix{Columns: names, Values: mat}, nil
}

func pearson(xs, ys []schema.Value) float64 {
	var x, y []float64
	for i := range xs {
		xv, okx := xs[i].Float()
		yv, oky := ys[i].Float()
		if okx && oky {
			x = append(x, xv)
			y = append(y, yv)
		}
	}
	if len(x) < 2 {
		return math.NaN()
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return math.NaN()
	}
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/tabscope/internal/schema"
	"github.com/montanaflynn/stats"
)

// OutlierThreshold is the robust |z| above which a value counts as an outlier.
const OutlierThreshold = 3.5

// ColumnStats is one column of the summary statistics table.
type ColumnStats struct {
	Name  string
	Kind  schema.Kind
	Count int

	// Numeric columns
	Mean, Std          float64
	Min, Q25, Q50, Q75 float64
	Max                float64
	Outliers           int

	// Categorical columns
	Unique int
	Top    string
	Freq   int
}

// Describe computes summary statistics for every column. Numeric columns get
// count, mean, sample std, min, quartiles, max and a robust outlier count;
// categorical columns get count, unique, top and freq. Std is NaN below two values.
func Describe(f *schema.Frame) []ColumnStats {
	var out []ColumnStats
	for _, c := range f.Columns() {
		if c.Kind == schema.Numeric {
			xs, _ := f.Floats(c.Name)
			out = append(out, describeNumeric(c.Name, xs))
			continue
		}
		s := ColumnStats{Name: c.Name, Kind: c.Kind, Count: c.NonNull}
		counts, _ := countValues(f, c.Name)
		s.Unique = len(counts)
		for _, fr := range counts {
			if fr.Count > s.Freq {
				s.Top, s.Freq = fr.Label(), fr.Count
			}
		}
		out = append(out, s)
	}
	return out
}

// DescribeNumeric restricts Describe to numeric columns.
func DescribeNumeric(f *schema.Frame) []ColumnStats {
	var out []ColumnStats
	for _, s := range Describe(f) {
		if s.Kind == schema.Numeric {
			out = append(out, s)
		}
	}
	return out
}

func describeNumeric(name string, xs []float64) ColumnStats {
	s := ColumnStats{Name: name, Kind: schema.Numeric, Count: len(xs), Std: math.NaN()}
	if len(xs) == 0 {
		s.Mean, s.Min, s.Max = math.NaN(), math.NaN(), math.NaN()
		s.Q25, s.Q50, s.Q75 = math.NaN(), math.NaN(), math.NaN()
		return s
	}
	data := stats.Float64Data(xs)
	s.Mean, _ = data.Mean()
	s.Min, _ = data.Min()
	s.Max, _ = data.Max()
	if len(xs) > 1 {
		s.Std, _ = data.StandardDeviationSample()
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	s.Q25 = quantile(sorted, 0.25)
	s.Q50 = quantile(sorted, 0.5)
	s.Q75 = quantile(sorted, 0.75)
	s.Outliers = countOutliers(data)
	return s
}

// countOutliers counts values with robust z-score (MAD based) above OutlierThreshold.
func countOutliers(data stats.Float64Data) int {
	if len(data) < 8 {
		return 0
	}
	median, err := data.Median()
	if err != nil {
		return 0
	}
	mad, err := stats.MedianAbsoluteDeviation(data)
	if err != nil || mad == 0 {
		return 0
	}
	n := 0
	for _, v := range data {
		if math.Abs(0.6745*(v-median)/mad) > OutlierThreshold {
			n++
		}
	}
	return n
}

// quantile interpolates linearly between closest ranks of sorted values.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

package schema

import (
	"testing"

	"github.com/KaramelBytes/tabscope/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jobsTable(t *testing.T) *dataset.Table {
	t.Helper()
	tbl, err := dataset.New("jobs.csv", []string{"Year", "Job Title", "Rating", "Empty"}, [][]string{
		{"2020", "Web Designer II", "4.5", ""},
		{"2020", " web designer ii ", "NA", ""},
		{"2021", "Engineer", "3", ""},
		{"", "Analyst", "x", ""},
	})
	require.NoError(t, err)
	return tbl
}

func TestInspectClassifiesColumns(t *testing.T) {
	f := Inspect(jobsTable(t))

	year, ok := f.Column("Year")
	require.True(t, ok)
	assert.Equal(t, Numeric, year.Kind)
	assert.Equal(t, 1, year.MissingCount)
	assert.Equal(t, 25.0, year.MissingPercentage)
	assert.Equal(t, 3, year.NonNull)
	assert.Equal(t, 2, year.Unique)

	title, _ := f.Column("Job Title")
	assert.Equal(t, Categorical, title.Kind)
	assert.Equal(t, 0, title.MissingCount)

	// one non-numeric cell demotes the whole column
	rating, _ := f.Column("Rating")
	assert.Equal(t, Categorical, rating.Kind)
	assert.Equal(t, 1, rating.MissingCount)

	empty, _ := f.Column("Empty")
	assert.Equal(t, Categorical, empty.Kind)
	assert.Equal(t, 100.0, empty.MissingPercentage)

	assert.Equal(t, []string{"Year"}, f.NumericColumns())
}

func TestInspectResolvesTypedValuesOnce(t *testing.T) {
	f := Inspect(jobsTable(t))
	years, ok := f.Values("Year")
	require.True(t, ok)
	x, ok := years[0].Float()
	require.True(t, ok)
	assert.Equal(t, 2020.0, x)
	assert.True(t, years[3].IsMissing())
	assert.Equal(t, Numeric, years[3].Kind())

	titles, _ := f.Values("Job Title")
	s, ok := titles[1].Text()
	require.True(t, ok)
	assert.Equal(t, " web designer ii ", s)

	floats, _ := f.Floats("Year")
	assert.Equal(t, []float64{2020, 2020, 2021}, floats)
}

func TestMissingPercentageOfEmptyTableIsZero(t *testing.T) {
	assert.Equal(t, 0.0, MissingPercentage(0, 0))
	assert.Equal(t, 50.0, MissingPercentage(1, 2))

	tbl, err := dataset.New("empty", []string{"a", "b"}, nil)
	require.NoError(t, err)
	f := Inspect(tbl)
	for _, c := range f.Columns() {
		assert.Equal(t, 0.0, c.MissingPercentage)
		assert.Equal(t, Categorical, c.Kind)
	}
}

func TestInfoCountsDtypes(t *testing.T) {
	info := Inspect(jobsTable(t)).Info()
	assert.Equal(t, 4, info.Rows)
	assert.Equal(t, 1, info.Dtypes["float64"])
	assert.Equal(t, 3, info.Dtypes["object"])
	assert.Equal(t, "Job Title", info.Columns[1].Name)
	assert.Equal(t, 4, info.Columns[1].NonNull)
}

func TestInfoLabelsIntegerColumns(t *testing.T) {
	tbl, err := dataset.New("counts.csv", []string{"Count", "Score", "Gaps", "Label"}, [][]string{
		{"1", "1", "1", "a"},
		{" 2 ", "2.0", "", "b"},
		{"-3", "3", "3", "c"},
	})
	require.NoError(t, err)
	info := Inspect(tbl).Info()
	got := map[string]string{}
	for _, c := range info.Columns {
		got[c.Name] = c.Dtype
	}
	assert.Equal(t, map[string]string{"Count": "int64", "Score": "float64", "Gaps": "float64", "Label": "object"}, got)
	assert.Equal(t, map[string]int{"int64": 1, "float64": 2, "object": 1}, info.Dtypes)
}

func TestValueFormattingAndEquality(t *testing.T) {
	assert.Equal(t, "2020", NumericValue(2020).String())
	assert.Equal(t, "3.5", NumericValue(3.5).String())
	assert.Equal(t, "", Missing(Numeric).String())
	assert.True(t, NumericValue(1).Equal(NumericValue(1)))
	assert.False(t, NumericValue(1).Equal(CategoricalValue("1")))
	assert.False(t, Missing(Numeric).Equal(Missing(Numeric)))

	_, ok := ParseFloat("0x10")
	assert.False(t, ok)
	v, ok := ParseFloat(" 12.5 ")
	assert.True(t, ok)
	assert.Equal(t, 12.5, v)
}

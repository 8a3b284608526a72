package selector

import (
	"strings"
	"testing"

	"github.com/KaramelBytes/tabscope/internal/dataset"
	"github.com/KaramelBytes/tabscope/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioFrame(t *testing.T) *schema.Frame {
	t.Helper()
	tbl, err := dataset.New("jobs.csv", []string{"Year", "Job Title"}, [][]string{
		{"2020", "Web Designer II"},
		{"2020", " web designer ii "},
		{"2021", "Engineer"},
	})
	require.NoError(t, err)
	return schema.Inspect(tbl)
}

func TestFilterCategoricalIsCaseInsensitiveTrimmedContains(t *testing.T) {
	f := scenarioFrame(t)
	res, err := Filter(f, "Job Title", schema.CategoricalValue("web designer"))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, res.Indices)
	assert.Equal(t, "2020", res.Rows[1][0])
	assert.Equal(t, []string{"Year", "Job Title"}, res.Columns)
}

func TestFilterNumericIsExact(t *testing.T) {
	f := scenarioFrame(t)
	res, err := Filter(f, "Year", schema.NumericValue(2020))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, res.Indices)

	res, err = Filter(f, "Year", schema.NumericValue(2020.0000001))
	require.NoError(t, err)
	assert.True(t, res.Empty())
}

func TestFilterNoMatchIsNotAnError(t *testing.T) {
	res, err := Filter(scenarioFrame(t), "Job Title", schema.CategoricalValue("astronaut"))
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Equal(t, 0, res.Len())
}

func TestFilterRejectsBadQueries(t *testing.T) {
	f := scenarioFrame(t)
	_, err := Filter(f, "Salary", schema.NumericValue(1))
	assert.ErrorIs(t, err, ErrUnknownColumn)
	_, err = Filter(f, "Year", schema.CategoricalValue("2020"))
	assert.ErrorIs(t, err, ErrKindMismatch)
	_, err = Filter(f, "Job Title", schema.Missing(schema.Categorical))
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestFilterMissingNeverMatches(t *testing.T) {
	tbl, err := dataset.New("t", []string{"Title", "Score"}, [][]string{
		{"", "1"}, {"NA", ""}, {"nancy", "2"},
	})
	require.NoError(t, err)
	f := schema.Inspect(tbl)

	res, err := Filter(f, "Title", schema.CategoricalValue(""))
	require.NoError(t, err)
	assert.Equal(t, []int{2}, res.Indices)

	res, err = Filter(f, "Score", schema.NumericValue(0))
	require.NoError(t, err)
	assert.True(t, res.Empty())
}

func TestFilterMatchesOnlyRowsWhoseFoldedValueContainsNeedle(t *testing.T) {
	titles := []string{"Straße Planner", "STRASSE planner", "Engineer", " engineer II", "", "Sales"}
	rows := make([][]string, len(titles))
	for i, s := range titles {
		rows[i] = []string{s}
	}
	tbl, err := dataset.New("t", []string{"Title"}, rows)
	require.NoError(t, err)
	f := schema.Inspect(tbl)

	for _, needle := range []string{"engineer", "ENGINEER ii", "planner", "s", "zzz"} {
		res, err := Filter(f, "Title", schema.CategoricalValue(needle))
		require.NoError(t, err)
		var want []int
		for i, s := range titles {
			if dataset.IsMissing(s) {
				continue
			}
			if strings.Contains(strings.ToLower(strings.TrimSpace(s)), strings.ToLower(needle)) {
				want = append(want, i)
			}
		}
		assert.Equal(t, want, res.Indices, needle)
	}
}

func TestFilterExactUsesTrimmedEquality(t *testing.T) {
	tbl, err := dataset.New("t", []string{"Job Title"}, [][]string{
		{"Web Designer II"}, {" Web Designer II "}, {"web designer ii"}, {"Web Designer III"},
	})
	require.NoError(t, err)
	res, err := FilterExact(schema.Inspect(tbl), "Job Title", schema.CategoricalValue("Web Designer II"))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, res.Indices)
}

func TestDistinct(t *testing.T) {
	tbl, err := dataset.New("t", []string{"Year", "Title"}, [][]string{
		{"2021", " b "}, {"2020", "a"}, {"", "b"}, {"2021", "   "}, {"1999.5", "C"},
	})
	require.NoError(t, err)
	f := schema.Inspect(tbl)

	years, err := Distinct(f, "Year")
	require.NoError(t, err)
	require.Len(t, years, 3)
	assert.Equal(t, "1999.5", years[0].String())
	assert.Equal(t, "2021", years[2].String())

	titles, err := Distinct(f, "Title")
	require.NoError(t, err)
	var got []string
	for _, v := range titles {
		got = append(got, v.String())
	}
	assert.Equal(t, []string{"C", "a", "b"}, got)

	_, err = Distinct(f, "nope")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestParseValue(t *testing.T) {
	f := scenarioFrame(t)
	year, _ := f.Column("Year")
	v, err := ParseValue(year, " 2020 ")
	require.NoError(t, err)
	x, ok := v.Float()
	require.True(t, ok)
	assert.Equal(t, 2020.0, x)

	_, err = ParseValue(year, "twenty")
	assert.ErrorIs(t, err, ErrKindMismatch)

	title, _ := f.Column("Job Title")
	v, err = ParseValue(title, "Engineer")
	require.NoError(t, err)
	assert.Equal(t, schema.Categorical, v.Kind())
}

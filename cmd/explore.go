package cmd

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/KaramelBytes/tabscope/internal/analysis"
	"github.com/KaramelBytes/tabscope/internal/dataset"
	"github.com/KaramelBytes/tabscope/internal/schema"
	"github.com/KaramelBytes/tabscope/internal/selector"
	"github.com/KaramelBytes/tabscope/internal/utils"
	"github.com/spf13/cobra"
)

var (
	exFilterColumn string
	exFilterValue  string
	exGroupBy      string
	exHead         int
	exChartTitle   string
	exJSON         bool
)

// chartWidth is the length of the longest bar in the ASCII chart.
const chartWidth = 40

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Print head, statistics, missing counts, a filter and a grouped count",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		loader, err := newLoader()
		if err != nil {
			return err
		}
		t, err := loader.LoadFile(c.DataPath)
		if err != nil {
			failf(cmd.OutOrStdout(), "%s", dataset.UserMessage(err))
			return errReported
		}
		head := exHead
		if head <= 0 {
			head = c.HeadRows
		}
		ex := explore(schema.Inspect(t), head)
		out := cmd.OutOrStdout()
		if exJSON {
			b, err := utils.PrettyJSON(ex)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		ex.print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exploreCmd)
	exploreCmd.Flags().StringVar(&exFilterColumn, "filter-column", "Job Title", "column for the exact-match filter")
	exploreCmd.Flags().StringVar(&exFilterValue, "filter-value", "Web Designer II", "value the trimmed cell must equal")
	exploreCmd.Flags().StringVar(&exGroupBy, "group-by", "Year", "column to group and count by")
	exploreCmd.Flags().IntVar(&exHead, "head", 0, "rows to preview (default head_rows)")
	exploreCmd.Flags().StringVar(&exChartTitle, "title", "Yearly Job Counts", "title of the grouped-count bar chart")
	exploreCmd.Flags().BoolVar(&exJSON, "json", false, "print the walkthrough as JSON")
}

type exploration struct {
	Name     string         `json:"name"`
	Rows     int            `json:"rows"`
	Columns  []string       `json:"columns"`
	Head     [][]string     `json:"head"`
	Describe []describeRow  `json:"describe"`
	Missing  []missingCount `json:"missing"`
	Filter   filterResult   `json:"filter"`
	Groups   groupResult    `json:"groups"`
}

type describeRow struct {
	Column string   `json:"column"`
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	Std    *float64 `json:"std"`
	Min    *float64 `json:"min"`
	Q25    *float64 `json:"25%"`
	Q50    *float64 `json:"50%"`
	Q75    *float64 `json:"75%"`
	Max    *float64 `json:"max"`
}

type missingCount struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
}

type filterResult struct {
	Column  string     `json:"column"`
	Value   string     `json:"value"`
	Indices []int      `json:"indices"`
	Rows    [][]string `json:"rows"`
	Error   string     `json:"error,omitempty"`
}

type groupResult struct {
	Column string       `json:"column"`
	Title  string       `json:"title"`
	Counts []groupCount `json:"counts"`
	Error  string       `json:"error,omitempty"`
}

type groupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// explore runs the fixed walkthrough. Unknown filter or group columns are
// reported in the result and skipped.
func explore(f *schema.Frame, head int) *exploration {
	t := f.Table()
	ex := &exploration{
		Name:    t.Name,
		Rows:    t.NumRows(),
		Columns: t.Columns(),
		Head:    t.Head(head),
	}
	for _, s := range analysis.DescribeNumeric(f) {
		ex.Describe = append(ex.Describe, describeRow{
			Column: s.Name, Count: s.Count,
			Mean: finite(s.Mean), Std: finite(s.Std), Min: finite(s.Min),
			Q25: finite(s.Q25), Q50: finite(s.Q50), Q75: finite(s.Q75), Max: finite(s.Max),
		})
	}
	for _, c := range f.Columns() {
		ex.Missing = append(ex.Missing, missingCount{Column: c.Name, Count: c.MissingCount})
	}

	ex.Filter = filterResult{Column: exFilterColumn, Value: exFilterValue}
	if desc, ok := f.Column(exFilterColumn); !ok {
		ex.Filter.Error = fmt.Sprintf("column %q not found", exFilterColumn)
	} else if v, err := selector.ParseValue(desc, exFilterValue); err != nil {
		ex.Filter.Error = err.Error()
	} else if res, err := selector.FilterExact(f, exFilterColumn, v); err != nil {
		ex.Filter.Error = err.Error()
	} else {
		ex.Filter.Indices = res.Indices
		ex.Filter.Rows = res.Rows
	}

	ex.Groups = groupResult{Column: exGroupBy, Title: exChartTitle}
	groups, err := analysis.GroupCount(f, exGroupBy)
	switch {
	case errors.Is(err, analysis.ErrUnknownColumn):
		ex.Groups.Error = fmt.Sprintf("column %q not found", exGroupBy)
	case err != nil:
		ex.Groups.Error = err.Error()
	default:
		for _, g := range groups {
			ex.Groups.Counts = append(ex.Groups.Counts, groupCount{Key: g.Label(), Count: g.Count})
		}
	}
	return ex
}

func (ex *exploration) print(w io.Writer) {
	okf(w, "File loaded successfully. Shape: (%d, %d)", ex.Rows, len(ex.Columns))

	fmt.Fprintln(w, "\nFirst rows:")
	printTable(w, ex.Columns, ex.Head, nil)

	fmt.Fprintln(w, "\nSummary statistics:")
	if len(ex.Describe) == 0 {
		fmt.Fprintln(w, "(no numeric columns)")
	} else {
		header := []string{"", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}
		var rows [][]string
		for _, d := range ex.Describe {
			rows = append(rows, []string{d.Column, strconv.Itoa(d.Count), ptrNum(d.Mean), ptrNum(d.Std), ptrNum(d.Min), ptrNum(d.Q25), ptrNum(d.Q50), ptrNum(d.Q75), ptrNum(d.Max)})
		}
		printGrid(w, header, rows)
	}

	fmt.Fprintln(w, "\nMissing values:")
	var missing [][]string
	for _, m := range ex.Missing {
		missing = append(missing, []string{m.Column, strconv.Itoa(m.Count)})
	}
	printGrid(w, nil, missing)

	fmt.Fprintf(w, "\nRows where %s is %q:\n", ex.Filter.Column, ex.Filter.Value)
	switch {
	case ex.Filter.Error != "":
		warnf(w, "Skipping filter: %s", ex.Filter.Error)
	case len(ex.Filter.Rows) == 0:
		fmt.Fprintln(w, "(no rows)")
	default:
		printTable(w, ex.Columns, ex.Filter.Rows, ex.Filter.Indices)
	}

	fmt.Fprintf(w, "\nCounts by %s:\n", ex.Groups.Column)
	if ex.Groups.Error != "" {
		warnf(w, "Skipping group count: %s", ex.Groups.Error)
		return
	}
	var counts [][]string
	for _, g := range ex.Groups.Counts {
		counts = append(counts, []string{g.Key, strconv.Itoa(g.Count)})
	}
	printGrid(w, nil, counts)

	fmt.Fprintf(w, "\n%s\n", ex.Groups.Title)
	fmt.Fprint(w, barChart(ex.Groups.Counts, chartWidth))
}

// barChart draws one horizontal bar per group, scaled to width.
func barChart(groups []groupCount, width int) string {
	maxCount, labelWidth := 0, 0
	for _, g := range groups {
		if g.Count > maxCount {
			maxCount = g.Count
		}
		if len(g.Key) > labelWidth {
			labelWidth = len(g.Key)
		}
	}
	var b strings.Builder
	for _, g := range groups {
		n := 0
		if maxCount > 0 {
			n = int(math.Round(float64(g.Count) * float64(width) / float64(maxCount)))
		}
		if n == 0 && g.Count > 0 {
			n = 1
		}
		fmt.Fprintf(&b, "%-*s | %s %d\n", labelWidth, g.Key, strings.Repeat("#", n), g.Count)
	}
	return b.String()
}

// printTable prints rows with a leading row index, like a dataframe. A nil
// index numbers rows from 0.
func printTable(w io.Writer, columns []string, rows [][]string, index []int) {
	header := append([]string{""}, columns...)
	indexed := make([][]string, len(rows))
	for i, r := range rows {
		n := i
		if i < len(index) {
			n = index[i]
		}
		indexed[i] = append([]string{strconv.Itoa(n)}, r...)
	}
	printGrid(w, header, indexed)
}

func printGrid(w io.Writer, header []string, rows [][]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if header != nil {
		fmt.Fprintln(tw, strings.Join(header, "\t"))
	}
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	_ = tw.Flush()
}

func finite(x float64) *float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	return &x
}

func ptrNum(x *float64) string {
	if x == nil {
		return "NaN"
	}
	return strconv.FormatFloat(*x, 'g', 6, 64)
}

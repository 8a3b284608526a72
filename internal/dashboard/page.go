package dashboard

import (
	"errors"
	"fmt"
	"html/template"
	"math"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/KaramelBytes/tabscope/internal/analysis"
	"github.com/KaramelBytes/tabscope/internal/dataset"
	"github.com/KaramelBytes/tabscope/internal/schema"
	"github.com/KaramelBytes/tabscope/internal/selector"
)

const failedLoadMessage = "Failed to load the data. Please check the file path and contents."

// Page is everything one render pass shows.
type Page struct {
	Status  Status
	Loaded  bool
	Info    schema.Info
	Head    Grid
	Columns []string
	Stats   Grid
	Missing []schema.ColumnDescriptor

	Drill     *Drill
	Top       *BarChart
	Numeric   *NumericView
	Heatmap   *Heatmap
	NoNumeric string

	Upload   *UploadView
	Feedback *FeedbackView

	ShowRaw     bool
	Raw         Grid
	RawLink     string
	MaxUploadMB int64
}

// Status is the load-status block.
type Status struct {
	Attempt string
	Success string
	Error   string
	Failed  string
}

// Grid is a plain table.
type Grid struct {
	Columns []string
	Rows    [][]string
}

// Option is one entry of a select box.
type Option struct {
	Value    string
	Selected bool
}

// Drill is the first-column analysis: a value picker and the matching rows.
type Drill struct {
	Column   string
	Options  []Option
	Selected string
	Result   Grid
	Message  string
}

// Bar is one bar of an HTML bar chart; Width is a percentage of the widest bar.
type Bar struct {
	Label string
	Count int
	Width float64
}

// BarChart is a titled set of bars.
type BarChart struct {
	Title string
	Bars  []Bar
}

// NumericView is the histogram section with its column picker.
type NumericView struct {
	Options   []Option
	Histogram *BarChart
	Error     string
}

// HeatCell is one colored correlation coefficient.
type HeatCell struct {
	Text  string
	Style template.CSS
}

// HeatRow is one row of the heatmap.
type HeatRow struct {
	Name  string
	Cells []HeatCell
}

// Heatmap renders a correlation matrix.
type Heatmap struct {
	Columns []string
	Rows    []HeatRow
}

// UploadView is the preview of an uploaded file.
type UploadView struct {
	Name  string
	Head  Grid
	Shape string
	Error string
}

// FeedbackView acknowledges a feedback submission.
type FeedbackView struct {
	Message string
	Receipt string
}

// buildPage runs one render pass over the default dataset. A load failure is
// terminal: the page carries only the status block.
func (s *Server) buildPage(q url.Values) (*Page, error) {
	p := &Page{MaxUploadMB: s.opt.MaxUploadBytes >> 20}
	abs, err := filepath.Abs(s.opt.DataPath)
	if err != nil {
		abs = s.opt.DataPath
	}
	p.Status.Attempt = "Attempting to load file from: " + abs

	t, err := s.cache.Load(s.opt.DataPath)
	if err != nil {
		p.Status.Error = dataset.UserMessage(err)
		p.Status.Failed = failedLoadMessage
		return p, err
	}
	p.Loaded = true
	p.Status.Success = "File loaded successfully. Shape: " + t.ShapeString()

	f := schema.Inspect(t)
	p.Info = f.Info()
	p.Head = Grid{Columns: t.Columns(), Rows: t.Head(s.opt.HeadRows)}
	p.Columns = t.Columns()
	p.Stats = statsGrid(analysis.Describe(f))
	p.Missing = f.Columns()

	if len(p.Columns) > 0 {
		col := q.Get("column")
		if col == "" {
			col = p.Columns[0]
		}
		p.Drill = s.drill(f, col, q.Get("value"))
		p.Top = s.topChart(f, col)
	}

	numeric := f.NumericColumns()
	if len(numeric) == 0 {
		p.NoNumeric = "No numeric columns found for analysis."
	} else {
		p.Numeric = s.numericView(f, numeric, q.Get("numeric"))
		if m, err := analysis.CorrelationMatrix(f); err == nil {
			p.Heatmap = heatmap(m)
		}
	}

	p.ShowRaw = q.Get("raw") == "1"
	if p.ShowRaw {
		p.Raw = Grid{Columns: t.Columns(), Rows: t.Head(t.NumRows())}
	}
	raw := url.Values{}
	for k, v := range q {
		raw[k] = v
	}
	if p.ShowRaw {
		raw.Del("raw")
	} else {
		raw.Set("raw", "1")
	}
	p.RawLink = "/?" + raw.Encode()
	return p, nil
}

func (s *Server) drill(f *schema.Frame, col, raw string) *Drill {
	d := &Drill{Column: col}
	desc, ok := f.Column(col)
	if !ok {
		d.Message = fmt.Sprintf("Unknown column: %s", col)
		return d
	}
	values, err := selector.Distinct(f, col)
	if err != nil {
		d.Message = err.Error()
		return d
	}
	if len(values) == 0 {
		d.Message = fmt.Sprintf("No values available for %s", col)
		return d
	}

	selected := values[0]
	if raw != "" {
		v, err := selector.ParseValue(desc, raw)
		if err != nil {
			d.Message = err.Error()
			return d
		}
		selected = v
	}
	d.Selected = selected.String()
	for _, v := range values {
		d.Options = append(d.Options, Option{Value: v.String(), Selected: v.Equal(selected)})
	}

	res, err := selector.Filter(f, col, selected)
	if err != nil {
		d.Message = err.Error()
		return d
	}
	if res.Empty() {
		d.Message = fmt.Sprintf("No data found for the %s: %s", col, d.Selected)
		return d
	}
	d.Result = Grid{Columns: res.Columns, Rows: res.Rows}
	return d
}

func (s *Server) topChart(f *schema.Frame, col string) *BarChart {
	top, err := analysis.TopFrequencies(f, col, s.opt.TopN)
	if err != nil {
		return nil
	}
	chart := &BarChart{Title: fmt.Sprintf("Top %d %ss", s.opt.TopN, col)}
	widest := 0
	for _, fr := range top {
		if fr.Count > widest {
			widest = fr.Count
		}
	}
	for _, fr := range top {
		chart.Bars = append(chart.Bars, Bar{Label: fr.Label(), Count: fr.Count, Width: width(fr.Count, widest)})
	}
	return chart
}

func (s *Server) numericView(f *schema.Frame, numeric []string, pick string) *NumericView {
	col := numeric[0]
	for _, c := range numeric {
		if c == pick {
			col = c
		}
	}
	v := &NumericView{}
	for _, c := range numeric {
		v.Options = append(v.Options, Option{Value: c, Selected: c == col})
	}
	h, err := analysis.Histogram(f, col, s.opt.Bins)
	if err != nil {
		if errors.Is(err, analysis.ErrNotApplicable) {
			v.Error = fmt.Sprintf("No values to plot for %s: the column has no finite values or its range is too wide", col)
		} else {
			v.Error = err.Error()
		}
		return v
	}
	chart := &BarChart{Title: "Distribution of " + col}
	widest := h.Max()
	for i, c := range h.Counts {
		label := fmt.Sprintf("[%s, %s)", num(h.Edges[i]), num(h.Edges[i+1]))
		if i == len(h.Counts)-1 {
			label = fmt.Sprintf("[%s, %s]", num(h.Edges[i]), num(h.Edges[i+1]))
		}
		chart.Bars = append(chart.Bars, Bar{Label: label, Count: c, Width: width(c, widest)})
	}
	v.Histogram = chart
	return v
}

func statsGrid(all []analysis.ColumnStats) Grid {
	var numeric []analysis.ColumnStats
	for _, s := range all {
		if s.Kind == schema.Numeric {
			numeric = append(numeric, s)
		}
	}
	// dataframe describe() shows numeric columns when there are any
	if len(numeric) > 0 {
		g := Grid{Columns: []string{"", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}}
		for _, s := range numeric {
			g.Rows = append(g.Rows, []string{s.Name, strconv.Itoa(s.Count), num(s.Mean), num(s.Std), num(s.Min), num(s.Q25), num(s.Q50), num(s.Q75), num(s.Max)})
		}
		return g
	}
	g := Grid{Columns: []string{"", "count", "unique", "top", "freq"}}
	for _, s := range all {
		g.Rows = append(g.Rows, []string{s.Name, strconv.Itoa(s.Count), strconv.Itoa(s.Unique), s.Top, strconv.Itoa(s.Freq)})
	}
	return g
}

func heatmap(m *analysis.CorrMatrix) *Heatmap {
	h := &Heatmap{Columns: m.Columns}
	for i, name := range m.Columns {
		row := HeatRow{Name: name}
		for j := range m.Columns {
			if !m.Defined(i, j) {
				row.Cells = append(row.Cells, HeatCell{Text: "NaN", Style: "background-color: #eeeeee"})
				continue
			}
			r := m.Values[i][j]
			row.Cells = append(row.Cells, HeatCell{Text: strconv.FormatFloat(r, 'f', 2, 64), Style: coolwarm(r)})
		}
		h.Rows = append(h.Rows, row)
	}
	return h
}

// coolwarm maps r in [-1, 1] onto a diverging blue-white-red scale.
func coolwarm(r float64) template.CSS {
	lo := [3]float64{59, 76, 192}
	mid := [3]float64{221, 221, 221}
	hi := [3]float64{180, 4, 38}
	from, to, t := mid, hi, r
	if r < 0 {
		from, to, t = mid, lo, -r
	}
	var c [3]int
	for i := range c {
		c[i] = int(math.Round(from[i] + (to[i]-from[i])*t))
	}
	return template.CSS(fmt.Sprintf("background-color: rgb(%d, %d, %d)", c[0], c[1], c[2]))
}

func width(n, widest int) float64 {
	if widest == 0 {
		return 0
	}
	return math.Round(1000*float64(n)/float64(widest)) / 10
}

func num(x float64) string {
	if math.IsNaN(x) {
		return "NaN"
	}
	return strconv.FormatFloat(x, 'g', 6, 64)
}

package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/tabscope/internal/schema"
)

// Options controls which sections a Report carries.
type Options struct {
	// SampleRows determines how many head rows to include in the report.
	SampleRows int
	// TopN limits the top values listed per categorical column.
	TopN int
	// Correlations includes the Pearson matrix among numeric columns.
	Correlations bool
}

// DefaultOptions returns reasonable defaults for dataset profiles.
func DefaultOptions() Options {
	return Options{SampleRows: 5, TopN: DefaultTopN, Correlations: true}
}

// Report is a markdown-friendly profile of one inspected table.
type Report struct {
	Name     string
	Rows     int
	Skipped  int
	Header   []string
	Cols     []schema.ColumnDescriptor
	Stats    []ColumnStats
	Top      map[string][]Frequency
	Corr     *CorrMatrix
	Samples  [][]string
	Warnings []string
}

// BuildReport profiles f.
func BuildReport(f *schema.Frame, opt Options) *Report {
	t := f.Table()
	rep := &Report{
		Name:    t.Name,
		Rows:    f.NumRows(),
		Skipped: t.Skipped,
		Header:  t.Columns(),
		Cols:    f.Columns(),
		Stats:   Describe(f),
		Top:     map[string][]Frequency{},
		Samples: t.Head(opt.SampleRows),
	}
	for _, c := range rep.Cols {
		if c.Kind != schema.Categorical || c.NonNull == 0 {
			continue
		}
		top, err := TopFrequencies(f, c.Name, opt.TopN)
		if err == nil {
			rep.Top[c.Name] = top
		}
	}
	if opt.Correlations {
		m, err := CorrelationMatrix(f)
		switch {
		case err == nil:
			rep.Corr = m
		case len(f.NumericColumns()) == 0:
			rep.Warnings = append(rep.Warnings, "no numeric columns found for analysis")
		default:
			rep.Warnings = append(rep.Warnings, "correlation matrix not applicable: fewer than two numeric columns")
		}
	}
	if rep.Skipped > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("processed only %d/%d rows due to MaxRows", rep.Rows, rep.Rows+rep.Skipped))
	}
	return rep
}

// Markdown renders a compact report suitable for standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	if r.Skipped > 0 {
		b.WriteString(fmt.Sprintf("Rows: ~%d (processed %d)\n", r.Rows+r.Skipped, r.Rows))
	} else {
		b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	}
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, c.MissingPercentage))
		if top := r.Top[c.Name]; len(top) > 0 {
			b.WriteString("; top: ")
			for i, kv := range top {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Label()), kv.Count))
			}
			if c.Unique > len(top) {
				b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
			}
		}
		b.WriteString("\n")
	}

	var numeric []ColumnStats
	for _, s := range r.Stats {
		if s.Kind == schema.Numeric {
			numeric = append(numeric, s)
		}
	}
	if len(numeric) > 0 {
		b.WriteString("\n[SUMMARY STATISTICS]\n")
		b.WriteString("| column | count | mean | std | min | 25% | 50% | 75% | max | outliers |\n")
		b.WriteString("| --- | --- | --- | --- | --- | --- | --- | --- | --- | --- |\n")
		for _, s := range numeric {
			b.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s | %s | %s | %s | %s | %d |\n",
				safeVal(s.Name), s.Count, num(s.Mean), num(s.Std), num(s.Min), num(s.Q25), num(s.Q50), num(s.Q75), num(s.Max), s.Outliers))
		}
	}

	b.WriteString("\n[MISSING VALUES]\n")
	b.WriteString("| Column | Missing Count | Missing Percentage |\n| --- | --- | --- |\n")
	for _, c := range r.Cols {
		b.WriteString(fmt.Sprintf("| %s | %d | %.2f |\n", safeVal(c.Name), c.MissingCount, c.MissingPercentage))
	}

	if r.Corr != nil && len(r.Corr.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		// list top pairs by |r|
		type pr struct {
			A, B string
			R    float64
		}
		var pairs []pr
		n := len(r.Corr.Columns)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if !r.Corr.Defined(i, j) {
					continue
				}
				pairs = append(pairs, pr{A: r.Corr.Columns[i], B: r.Corr.Columns[j], R: r.Corr.Values[i][j]})
			}
		}
		sort.Slice(pairs, func(i, j int) bool {
			ai := math.Abs(pairs[i].R)
			aj := math.Abs(pairs[j].R)
			if ai == aj {
				return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
			}
			return ai > aj
		})
		if len(pairs) > 10 {
			pairs = pairs[:10]
		}
		for _, p := range pairs {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
		}
		if len(pairs) == 0 {
			b.WriteString("- (no defined pairs)\n")
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString(markdownTable(r.Header, r.Samples))
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func markdownTable(header []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString("| ")
	for i, h := range header {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeName(h))
	}
	b.WriteString(" |\n| ")
	for i := range header {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("---")
	}
	b.WriteString(" |\n")
	for _, row := range rows {
		b.WriteString("| ")
		for i := range header {
			if i > 0 {
				b.WriteString(" | ")
			}
			val := ""
			if i < len(row) {
				val = row[i]
			}
			if len(val) > 80 {
				val = val[:77] + "..."
			}
			b.WriteString(safeVal(val))
		}
		b.WriteString(" |\n")
	}
	return b.String()
}

func num(x float64) string {
	if math.IsNaN(x) {
		return "NaN"
	}
	return fmt.Sprintf("%.4g", x)
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}
func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/tabscope/internal/analysis"
	"github.com/KaramelBytes/tabscope/internal/dataset"
	"github.com/KaramelBytes/tabscope/internal/schema"
	"github.com/KaramelBytes/tabscope/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anaOutputPath string
	anaDelimiter  string
	anaSampleRows int
	anaMaxRows    int
	anaTopN       int
	anaNoCorr     bool
	anaQuiet      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <files...>",
	Short: "Profile CSV/TSV/XLSX files as Markdown",
	Long: `Profile one or more datasets: schema, summary statistics, missing values,
top values, correlations and sample rows. Arguments may be glob patterns.
With several inputs, --output names a directory that receives one
<name>.summary.md per file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := utils.ExpandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}

		lopt := dataset.Options{MaxRows: anaMaxRows}
		if anaDelimiter != "" {
			switch anaDelimiter {
			case ",":
				lopt.Delimiter = ','
			case "\t", "tab":
				lopt.Delimiter = '\t'
			case ";":
				lopt.Delimiter = ';'
			default:
				return fmt.Errorf("unsupported --delimiter: %s", anaDelimiter)
			}
		}
		loader := dataset.NewLoader(lopt, logger)

		opt := analysis.DefaultOptions()
		opt.SampleRows = anaSampleRows
		opt.TopN = anaTopN
		if !cmd.Flags().Changed("top") {
			opt.TopN = settings().TopN
		}
		opt.Correlations = !anaNoCorr

		out := cmd.OutOrStdout()
		multi := len(files) > 1
		if multi && anaOutputPath != "" {
			if err := os.MkdirAll(anaOutputPath, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
		total := len(files)
		for i, path := range files {
			if multi && !anaQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			t, err := loader.LoadFile(path)
			if err != nil {
				return err
			}
			md := analysis.BuildReport(schema.Inspect(t), opt).Markdown()

			switch {
			case anaOutputPath == "":
				if !anaQuiet || !multi {
					fmt.Fprintln(out, md)
				}
			case !multi:
				if err := os.WriteFile(anaOutputPath, []byte(md), 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				okf(out, "Wrote analysis to %s", anaOutputPath)
			default:
				outFile := uniqueSummaryPath(anaOutputPath, path)
				if err := os.WriteFile(outFile, []byte(md), 0o644); err != nil {
					return fmt.Errorf("write summary: %w", err)
				}
				if !anaQuiet {
					okf(out, "Wrote %s", outFile)
				}
			}
		}
		return nil
	},
}

// uniqueSummaryPath picks <dir>/<name>.summary.md, adding __2, __3, ... when
// a summary with that name was already written.
func uniqueSummaryPath(dir, input string) string {
	name := utils.SummaryName(input)
	outFile := filepath.Join(dir, name)
	if _, err := os.Stat(outFile); err != nil {
		return outFile
	}
	stem := strings.TrimSuffix(name, ".summary.md")
	for idx := 2; ; idx++ {
		cand := filepath.Join(dir, fmt.Sprintf("%s__%d.summary.md", stem, idx))
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			return cand
		}
	}
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "write Markdown to this file (or directory, for several inputs)")
	analyzeCmd.Flags().StringVar(&anaDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 5, "number of sample rows to include (0 disables samples)")
	analyzeCmd.Flags().IntVar(&anaMaxRows, "max-rows", 100000, "maximum rows to process (0 = unlimited)")
	analyzeCmd.Flags().IntVar(&anaTopN, "top", analysis.DefaultTopN, "top values listed per categorical column (default top_n)")
	analyzeCmd.Flags().BoolVar(&anaNoCorr, "no-correlations", false, "skip the Pearson correlation section")
	analyzeCmd.Flags().BoolVar(&anaQuiet, "quiet", false, "suppress progress and non-essential output")
}

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/KaramelBytes/tabscope/internal/dashboard"
	"github.com/KaramelBytes/tabscope/internal/dataset"
	"github.com/KaramelBytes/tabscope/internal/metrics"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analysis dashboard over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		addr := c.ListenAddr
		if cmd.Flags().Changed("addr") && serveAddr != "" {
			addr = serveAddr
		}
		loader, err := newLoader()
		if err != nil {
			return err
		}
		srv, err := dashboard.New(dashboard.Options{
			DataPath:       c.DataPath,
			TopN:           c.TopN,
			Bins:           c.HistogramBins,
			HeadRows:       c.HeadRows,
			MaxUploadBytes: int64(c.MaxUploadMB) << 20,
		}, loader, metrics.New(), logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		host := addr
		if strings.HasPrefix(host, ":") {
			host = "localhost" + host
		}
		okf(cmd.OutOrStdout(), "Dashboard for %s at http://%s (Ctrl+C to stop)", c.DataPath, host)
		if err := srv.Run(ctx, addr); err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		okf(cmd.OutOrStdout(), "Dashboard stopped")
		return nil
	},
}

// newLoader builds a dataset loader from the effective configuration.
func newLoader() (*dataset.Loader, error) {
	c := settings()
	delim, err := c.DelimiterRune()
	if err != nil {
		return nil, err
	}
	return dataset.NewLoader(dataset.Options{Delimiter: delim, MaxRows: c.MaxRows}, logger), nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides listen_addr)")
}

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	cfgpkg "github.com/KaramelBytes/tabscope/internal/config"
	"github.com/KaramelBytes/tabscope/internal/logging"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	flagData  string
	logFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
	// logger is rebuilt from configuration before each command runs
	logger = zerolog.Nop()
)

// errReported marks a failure whose message was already printed.
var errReported = errors.New("reported")

var rootCmd = &cobra.Command{
	Use:   "tabscope",
	Short: "tabscope: exploratory analysis for a single CSV file",
	Long: `tabscope loads one tabular file and explores it: a web dashboard with drill-down,
charts and correlations (serve), a plain-text walkthrough (explore), and Markdown
dataset profiles (analyze).`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			failf(os.Stderr, "Error: %v", err)
		}
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tabscope/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagData, "data", "", "dataset path (overrides data_path)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log output: console | json (overrides log_format)")
}

func loadConfig() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		warnf(os.Stderr, "Warning: failed to read .env: %v", err)
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		warnf(os.Stderr, "Warning: failed to load config: %v", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("data") && flagData != "" {
		cfg.DataPath = flagData
	}
	if f.Changed("log-format") && logFormat != "" {
		cfg.LogFormat = logFormat
	}
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	logger = logging.New(level, cfg.LogFormat, os.Stderr)
}

// settings returns the effective configuration, or defaults if none loaded.
func settings() *cfgpkg.Global {
	if cfg == nil {
		return cfgpkg.Defaults()
	}
	return cfg
}

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed)
)

func okf(w io.Writer, format string, a ...any) {
	okColor.Fprintln(w, "✓ "+fmt.Sprintf(format, a...))
}

func warnf(w io.Writer, format string, a ...any) {
	warnColor.Fprintln(w, "⚠ "+fmt.Sprintf(format, a...))
}

func failf(w io.Writer, format string, a ...any) {
	errColor.Fprintln(w, "✗ "+fmt.Sprintf(format, a...))
}

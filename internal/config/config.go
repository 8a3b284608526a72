package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/tabscope/internal/utils"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Dataset
	DataPath  string `mapstructure:"data_path" yaml:"data_path"`
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	MaxRows   int    `mapstructure:"max_rows" yaml:"max_rows"`

	// Presentation
	ListenAddr    string `mapstructure:"listen_addr" yaml:"listen_addr"`
	TopN          int    `mapstructure:"top_n" yaml:"top_n"`
	HistogramBins int    `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	HeadRows      int    `mapstructure:"head_rows" yaml:"head_rows"`
	MaxUploadMB   int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Defaults returns the built-in configuration.
func Defaults() *Global {
	return &Global{
		DataPath:      "MOCK_DATA.csv",
		ListenAddr:    ":8501",
		TopN:          10,
		HistogramBins: 20,
		HeadRows:      5,
		MaxUploadMB:   200,
		LogLevel:      "info",
		LogFormat:     "console",
	}
}

// DefaultPath returns ~/.tabscope/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tabscope", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tabscope/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("TABSCOPE")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("data_path", d.DataPath)
	v.SetDefault("delimiter", d.Delimiter)
	v.SetDefault("max_rows", d.MaxRows)
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("top_n", d.TopN)
	v.SetDefault("histogram_bins", d.HistogramBins)
	v.SetDefault("head_rows", d.HeadRows)
	v.SetDefault("max_upload_mb", d.MaxUploadMB)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(p))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// DelimiterRune maps the configured delimiter name to a rune; 0 means detect by extension.
func (c *Global) DelimiterRune() (rune, error) {
	switch c.Delimiter {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case ";", "semicolon":
		return ';', nil
	case "\t", "tab":
		return '\t', nil
	default:
		return 0, fmt.Errorf("unsupported delimiter: %q (use ',' | ';' | 'tab')", c.Delimiter)
	}
}

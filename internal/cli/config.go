package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all CLI configuration.
type Config struct {
	// Elements is an alternate element table (.yaml or .cue).
	// Empty means the built-in periodic table.
	Elements string        `mapstructure:"elements"`
	Catalog  CatalogConfig `mapstructure:"catalog"`
	Log      LogConfig     `mapstructure:"log"`
	Formula  FormulaConfig `mapstructure:"formula"`
}

// CatalogConfig holds catalog database configuration.
type CatalogConfig struct {
	DB string `mapstructure:"db"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// FormulaConfig holds defaults for formula rendering.
type FormulaConfig struct {
	Order   string `mapstructure:"order"`
	Packing string `mapstructure:"packing"`
}

// LoadConfig loads configuration from file and environment.
// An empty configPath uses defaults; a named file must exist and parse.
//
// Environment variables use the CHEMCOMP_ prefix with dots replaced by
// underscores, e.g. CHEMCOMP_CATALOG_DB or CHEMCOMP_LOG_LEVEL.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("elements", "")
	v.SetDefault("catalog.db", "chemcomp.db")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("formula.order", "alpha")
	v.SetDefault("formula.packing", "cubes")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// A named file must exist and parse
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("CHEMCOMP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// SetupLogger creates a logger with the configured level and format.
// verbose forces the debug level regardless of configuration.
func SetupLogger(cfg *Config, w io.Writer, verbose bool) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

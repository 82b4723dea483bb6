// Package config loads converter settings from file, environment and flags
// through viper, and builds the process logger.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/insightdelivered/bri-statement-converter/internal/extractor"
	"github.com/insightdelivered/bri-statement-converter/internal/writer"
)

// EnvPrefix prefixes every environment override, e.g. BRI_CONVERT_WORKERS.
const EnvPrefix = "BRI_CONVERT"

// Config holds all converter configuration.
type Config struct {
	Workers int           `mapstructure:"workers"`
	Layout  string        `mapstructure:"layout"`
	Output  OutputConfig  `mapstructure:"output"`
	Extract ExtractConfig `mapstructure:"extract"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
}

type OutputConfig struct {
	// Format is "xlsx" or "csv".
	Format string `mapstructure:"format"`
	// Dir receives the output files; empty writes next to each input.
	Dir          string `mapstructure:"dir"`
	AmountFormat string `mapstructure:"amount_format"`
	// Debug logs the classification of every line.
	Debug bool `mapstructure:"debug"`
}

type ExtractConfig struct {
	XTolerance        float64 `mapstructure:"x_tolerance"`
	PdftotextFallback bool    `mapstructure:"pdftotext_fallback"`
}

type ServerConfig struct {
	Addr        string `mapstructure:"addr"`
	BodyLimitMB int    `mapstructure:"body_limit_mb"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	ext := extractor.DefaultOptions()

	v.SetDefault("workers", 1)
	v.SetDefault("layout", "bri")
	v.SetDefault("output.format", "xlsx")
	v.SetDefault("output.dir", "")
	v.SetDefault("output.amount_format", writer.DefaultAmountFormat)
	v.SetDefault("output.debug", false)
	v.SetDefault("extract.x_tolerance", ext.XTolerance)
	v.SetDefault("extract.pdftotext_fallback", ext.PdftotextFallback)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.body_limit_mb", 32)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	switch strings.ToLower(c.Output.Format) {
	case "xlsx", "csv":
	default:
		errs = append(errs, fmt.Errorf("output.format must be xlsx or csv, got %q", c.Output.Format))
	}
	if c.Extract.XTolerance < 0 {
		errs = append(errs, fmt.Errorf("extract.x_tolerance must not be negative, got %g", c.Extract.XTolerance))
	}
	if c.Server.BodyLimitMB < 1 {
		errs = append(errs, fmt.Errorf("server.body_limit_mb must be at least 1, got %d", c.Server.BodyLimitMB))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// ExtractorOptions converts the extract section for the PDF extractor.
func (c *Config) ExtractorOptions() extractor.Options {
	return extractor.Options{
		XTolerance:        c.Extract.XTolerance,
		PdftotextFallback: c.Extract.PdftotextFallback,
	}
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// NewLogger builds a text or JSON slog logger writing to w.
func NewLogger(c LogConfig, w io.Writer) *slog.Logger {
	level, _ := ParseLevel(c.Level)
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

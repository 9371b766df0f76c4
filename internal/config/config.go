// File: internal/config/config.go
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/nullpath9/droidforge/internal/diagnosis"
)

// Config holds the entire droidforge configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Diagnose DiagnoseConfig `mapstructure:"diagnose" yaml:"diagnose"`
	History  HistoryConfig  `mapstructure:"history" yaml:"history"`
	Watch    WatchConfig    `mapstructure:"watch" yaml:"watch"`
}

// LoggerConfig holds all the configuration for the operational logger.
// This logger carries droidforge's own diagnostics; the build report itself
// goes through the reporting sinks, never through here.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the terminal colors for each log level.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// DiagnoseConfig controls the batch diagnosis run.
type DiagnoseConfig struct {
	// Format selects the file report encoding: text, json or junit.
	Format string `mapstructure:"format" yaml:"format"`
	// Output is the report file path. Empty means console only.
	Output string `mapstructure:"output" yaml:"output"`
	// MarkerPath overrides where the zero-byte failure marker is written.
	MarkerPath string `mapstructure:"marker_path" yaml:"marker_path"`
	// Jobs bounds how many logs are diagnosed concurrently.
	Jobs    int  `mapstructure:"jobs" yaml:"jobs"`
	NoColor bool `mapstructure:"no_color" yaml:"no_color"`
}

// HistoryConfig controls the optional incident history store. Disabled by
// default; when enabled every diagnosis run is recorded best-effort.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	URL     string `mapstructure:"url" yaml:"url"`
}

// WatchConfig controls live log following.
type WatchConfig struct {
	// Poll switches the tailer to polling, for filesystems without
	// inotify support.
	Poll bool `mapstructure:"poll" yaml:"poll"`
	// PrintRate caps live incident prints per second. The final summary
	// always covers every incident regardless of this cap.
	PrintRate float64 `mapstructure:"print_rate" yaml:"print_rate"`
}

// SetDefaults registers the default for every configuration key on v.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "droidforge")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Diagnose --
	v.SetDefault("diagnose.format", "text")
	v.SetDefault("diagnose.output", "")
	v.SetDefault("diagnose.marker_path", diagnosis.DefaultMarkerPath)
	v.SetDefault("diagnose.jobs", 4)
	v.SetDefault("diagnose.no_color", false)

	// -- History --
	v.SetDefault("history.enabled", false)
	v.SetDefault("history.url", "")

	// -- Watch --
	v.SetDefault("watch.poll", false)
	v.SetDefault("watch.print_rate", 10.0)
}

// NewConfigFromViper unmarshals and validates the effective configuration.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	// The connection string carries credentials, so it also binds to a
	// dedicated environment variable.
	v.BindEnv("history.url", "DROIDFORGE_HISTORY_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	switch c.Diagnose.Format {
	case "text", "json", "junit":
	default:
		return fmt.Errorf("diagnose.format must be one of text, json or junit, got %q", c.Diagnose.Format)
	}
	if c.Diagnose.Jobs <= 0 {
		return fmt.Errorf("diagnose.jobs must be a positive integer")
	}
	if err := c.History.Validate(); err != nil {
		return fmt.Errorf("history configuration invalid: %w", err)
	}
	if c.Watch.PrintRate <= 0 {
		return fmt.Errorf("watch.print_rate must be positive")
	}
	return nil
}

// Validate checks the history store settings.
func (h *HistoryConfig) Validate() error {
	if !h.Enabled {
		return nil
	}
	if h.URL == "" {
		return fmt.Errorf("history.url is required when history is enabled. Set it or DROIDFORGE_HISTORY_URL")
	}
	return nil
}

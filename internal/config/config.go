// File: internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/go-playground/validator"
	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	Backend   BackendConfig   `mapstructure:"backend" yaml:"backend"`
	UI        UIConfig        `mapstructure:"ui" yaml:"ui"`
	Dashboard DashboardConfig `mapstructure:"dashboard" yaml:"dashboard"`
	Watch     WatchConfig     `mapstructure:"watch" yaml:"watch"`
	Mock      MockConfig      `mapstructure:"mock" yaml:"mock"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level" validate:"required"`
	Format      string      `mapstructure:"format" yaml:"format" validate:"required,oneof=console json"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size" validate:"min=0"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups" validate:"min=0"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age" validate:"min=0"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BackendConfig points the client at the investigation backend.
type BackendConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url" validate:"required"`
	// Timeout bounds every call except the scan trigger.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// RunTimeout bounds the scan trigger, which blocks for the whole scan.
	RunTimeout     time.Duration `mapstructure:"run_timeout" yaml:"run_timeout"`
	HealthInterval time.Duration `mapstructure:"health_interval" yaml:"health_interval"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	StateFile    string `mapstructure:"state_file" yaml:"state_file" validate:"required"`
	DefaultTheme string `mapstructure:"default_theme" yaml:"default_theme" validate:"required"`
	// AssumeYes skips interactive delete confirmation.
	AssumeYes bool `mapstructure:"assume_yes" yaml:"assume_yes"`
}

// DashboardConfig tunes the investigation list.
type DashboardConfig struct {
	EnrichConcurrency int `mapstructure:"enrich_concurrency" yaml:"enrich_concurrency" validate:"min=1,max=32"`
}

// WatchConfig tunes `soko watch <id>`.
type WatchConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

// MockConfig configures the local stand-in backend.
type MockConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr" validate:"required"`
	DSN  string `mapstructure:"dsn" yaml:"dsn" validate:"required"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "warn")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "soko")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 20)
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

	// -- Backend --
	v.SetDefault("backend.base_url", "http://127.0.0.1:5000")
	v.SetDefault("backend.timeout", "15s")
	v.SetDefault("backend.run_timeout", "5m")
	v.SetDefault("backend.health_interval", "30s")

	// -- UI --
	v.SetDefault("ui.state_file", "~/.soko/state.yaml")
	v.SetDefault("ui.default_theme", "dark")
	v.SetDefault("ui.assume_yes", false)

	// -- Dashboard --
	v.SetDefault("dashboard.enrich_concurrency", 4)

	// -- Watch --
	v.SetDefault("watch.poll_interval", "3s")

	// -- Mock backend --
	v.SetDefault("mock.addr", "127.0.0.1:5000")
	v.SetDefault("mock.dsn", ":memory:")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
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
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil {
		return fmt.Errorf("backend.base_url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend.base_url must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("backend.base_url must include a host")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be a positive duration")
	}
	if c.Backend.RunTimeout < c.Backend.Timeout {
		return fmt.Errorf("backend.run_timeout must not be shorter than backend.timeout")
	}
	if c.Backend.HealthInterval < time.Second {
		return fmt.Errorf("backend.health_interval must be at least 1s")
	}
	if c.Watch.PollInterval <= 0 {
		return fmt.Errorf("watch.poll_interval must be a positive duration")
	}
	return nil
}

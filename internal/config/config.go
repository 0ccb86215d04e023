// Package config provides configuration types, defaults, loading and
// persistence for mvc.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/zjrosen/mvc/internal/flags"
	"github.com/zjrosen/mvc/internal/log"
	"github.com/zjrosen/mvc/internal/tracing"
)

// EnvPrefix prefixes environment overrides, e.g. MVC_LOG_LEVEL.
const EnvPrefix = "MVC"

// DefaultLocalPath is the project-local config file checked before the user config.
const DefaultLocalPath = ".mvc/config.yaml"

// Config holds all configuration options for mvc.
type Config struct {
	Log     LogConfig       `mapstructure:"log" yaml:"log"`
	Tracing tracing.Config  `mapstructure:"tracing" yaml:"tracing"`
	Metrics MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
	Events  EventsConfig    `mapstructure:"events" yaml:"events"`
	Demo    DemoConfig      `mapstructure:"demo" yaml:"demo"`
	Flags   map[string]bool `mapstructure:"flags" yaml:"flags"`
}

// LogConfig controls the category logger.
type LogConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`   // log file, "-" for stderr
	Level   string `mapstructure:"level" yaml:"level"` // debug, info, warn, error
}

// MetricsConfig controls the prometheus collectors and their HTTP endpoint.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Namespace string `mapstructure:"namespace" yaml:"namespace"`
	Addr      string `mapstructure:"addr" yaml:"addr"` // listen address for /metrics, empty disables serving
}

// EventsConfig controls the per-core event bus.
type EventsConfig struct {
	BufferSize int `mapstructure:"buffer_size" yaml:"buffer_size"`
}

// DemoConfig controls the sample application started by `mvc run`.
type DemoConfig struct {
	Keys     []string `mapstructure:"keys" yaml:"keys"`
	Greeting string   `mapstructure:"greeting" yaml:"greeting"`
}

// DefaultLogPath returns ~/.config/mvc/debug.log, or "" if the home dir is unavailable.
func DefaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "mvc", "debug.log")
}

// DefaultTracesFilePath returns ~/.config/mvc/traces/traces.jsonl, or "" if
// the home dir is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "mvc", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	tr := tracing.DefaultConfig()
	tr.FilePath = DefaultTracesFilePath()

	return Config{
		Log: LogConfig{
			Enabled: false,
			Path:    DefaultLogPath(),
			Level:   "info",
		},
		Tracing: tr,
		Metrics: MetricsConfig{
			Enabled:   false,
			Namespace: "mvc",
			Addr:      "",
		},
		Events: EventsConfig{
			BufferSize: 256,
		},
		Demo: DemoConfig{
			Keys:     []string{"main"},
			Greeting: "hello",
		},
		Flags: flags.Defaults(),
	}
}

// Validate checks the config for values the runtime would reject.
func (c Config) Validate() error {
	var errs []error
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Enabled && c.Log.Path == "" {
		errs = append(errs, fmt.Errorf("log.path is required when logging is enabled"))
	}
	if err := c.Tracing.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		errs = append(errs, fmt.Errorf("metrics.namespace is required when metrics are enabled"))
	}
	if c.Events.BufferSize < 1 {
		errs = append(errs, fmt.Errorf("events.buffer_size must be at least 1, got %d", c.Events.BufferSize))
	}
	if err := validateKeys(c.Demo.Keys); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func validateKeys(keys []string) error {
	seen := make(map[string]bool, len(keys))
	for i, key := range keys {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("demo.keys[%d] is empty", i)
		}
		if seen[key] {
			return fmt.Errorf("demo.keys[%d] duplicates %q", i, key)
		}
		seen[key] = true
	}
	return nil
}

// SetDefaults registers every default with v so env overrides resolve for
// keys absent from the file.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("log.enabled", d.Log.Enabled)
	v.SetDefault("log.path", d.Log.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
	v.SetDefault("events.buffer_size", d.Events.BufferSize)
	v.SetDefault("demo.keys", d.Demo.Keys)
	v.SetDefault("demo.greeting", d.Demo.Greeting)
	for name, enabled := range d.Flags {
		v.SetDefault("flags."+name, enabled)
	}
}

// NewViper returns a viper instance with defaults and MVC_ env overrides.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config at path over the defaults. An empty path loads the
// defaults and environment only. A missing file is an error.
func Load(path string) (Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	return Unmarshal(v)
}

// Unmarshal decodes v into a Config and validates it.
func Unmarshal(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# mvc configuration

# Category logger
log:
  enabled: false
  # path: ~/.config/mvc/debug.log   # "-" writes to stderr
  level: info                      # debug, info, warn, error

# OpenTelemetry tracing of notification dispatch and command execution
tracing:
  enabled: false
  exporter: file                   # none, file, stdout, otlp
  # file_path: ~/.config/mvc/traces/traces.jsonl
  otlp_endpoint: localhost:4317
  sample_rate: 1.0
  service_name: mvc

# Prometheus collectors
metrics:
  enabled: false
  namespace: mvc
  # addr: 127.0.0.1:9464          # serve /metrics while mvc run is active

# Per-core event bus
events:
  buffer_size: 256

# Sample application started by "mvc run"
demo:
  keys:
    - main
  greeting: hello

# Feature flags
flags:
  dispatch-spans: true             # trace View dispatch in addition to commands
  event-tap: false                 # same as "mvc run --events"
`
}

// WriteDefaultConfig creates a config file at configPath with default
// settings and comments, creating the parent directory if needed.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "created default config", "path", configPath)
	return nil
}

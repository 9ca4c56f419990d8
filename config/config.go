// Package config loads the static cache configuration: store location, size
// bounds, the per-tool TTL table, the non-cacheable tool set, and telemetry
// settings. Configuration is read once at startup and handed to the cache
// controller at construction; nothing here is runtime-mutable.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/toolcache/cache"
	"github.com/jonwraymond/toolcache/observe"
)

// Duration is a time.Duration that unmarshals from YAML strings like "5m".
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Telemetry configures logging, metrics and tracing for the cache.
type Telemetry struct {
	LogLevel        string  `yaml:"log_level"`
	MetricsExporter string  `yaml:"metrics_exporter"`
	TraceExporter   string  `yaml:"trace_exporter"`
	TraceSamplePct  float64 `yaml:"trace_sample_pct"`
}

// Config is the full cache configuration document.
type Config struct {
	StorePath      string              `yaml:"store_path"`
	MaxEntries     int                 `yaml:"max_entries"`
	MaxResultBytes int                 `yaml:"max_result_bytes"`
	TTL            map[string]Duration `yaml:"ttl"`
	NoCache        []string            `yaml:"no_cache"`
	FileTools      map[string]string   `yaml:"file_tools"`
	Telemetry      Telemetry           `yaml:"telemetry"`
}

// Default returns the configuration used when no file is supplied: the
// default tool policy and a store under the user's home directory.
func Default() *Config {
	policy := cache.DefaultPolicy()

	ttl := make(map[string]Duration, len(policy.TTL))
	for tool, d := range policy.TTL {
		ttl[tool] = Duration(d)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return &Config{
		StorePath:      filepath.Join(home, ".toolcache", "store.json"),
		MaxEntries:     policy.MaxEntries,
		MaxResultBytes: policy.MaxResultBytes,
		TTL:            ttl,
		NoCache:        policy.NoCache,
		FileTools:      policy.FilePathParam,
		Telemetry:      Telemetry{LogLevel: "info"},
	}
}

// Load reads a YAML configuration file. `${VAR}` references are expanded
// from the environment before parsing and error when the variable is unset.
// Omitted fields fall back to Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	expanded, err := expandEnvStrict(string(data))
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the cache cannot run with.
func (c *Config) Validate() error {
	if c.StorePath == "" {
		return errors.New("store_path is required")
	}
	if c.MaxEntries <= 0 {
		return fmt.Errorf("max_entries must be positive, got %d", c.MaxEntries)
	}
	if c.MaxResultBytes <= 0 {
		return fmt.Errorf("max_result_bytes must be positive, got %d", c.MaxResultBytes)
	}
	for tool, d := range c.TTL {
		if d <= 0 {
			return fmt.Errorf("ttl for %q must be positive, got %s", tool, time.Duration(d))
		}
	}
	for tool, param := range c.FileTools {
		if param == "" {
			return fmt.Errorf("file_tools entry for %q has an empty parameter name", tool)
		}
		if _, ok := c.TTL[tool]; !ok {
			return fmt.Errorf("file_tools entry for %q has no ttl entry", tool)
		}
	}
	return nil
}

// Policy builds the cache policy from the configuration.
func (c *Config) Policy() cache.Policy {
	ttl := make(map[string]time.Duration, len(c.TTL))
	for tool, d := range c.TTL {
		ttl[tool] = time.Duration(d)
	}
	return cache.Policy{
		TTL:            ttl,
		NoCache:        c.NoCache,
		FilePathParam:  c.FileTools,
		MaxEntries:     c.MaxEntries,
		MaxResultBytes: c.MaxResultBytes,
	}
}

// Observe builds the telemetry configuration for the given service identity.
// Metrics and tracing are enabled only when an exporter is named.
func (c *Config) Observe(serviceName, version string) observe.Config {
	return observe.Config{
		ServiceName: serviceName,
		Version:     version,
		Logging: observe.LoggingConfig{
			Enabled: c.Telemetry.LogLevel != "",
			Level:   c.Telemetry.LogLevel,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.Telemetry.MetricsExporter != "",
			Exporter: c.Telemetry.MetricsExporter,
		},
		Tracing: observe.TracingConfig{
			Enabled:   c.Telemetry.TraceExporter != "",
			Exporter:  c.Telemetry.TraceExporter,
			SamplePct: c.Telemetry.TraceSamplePct,
		},
	}
}

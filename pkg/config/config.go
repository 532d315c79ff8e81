// Package config provides the configuration for a stockpile pool host.
//
// The configuration is organized into logical sections:
//   - Pool: prewarm count and return behavior
//   - Catalog: the category tree of prototypes to register
//   - Logging, Metrics, Tracing: observability
//   - Soak: the synthetic borrow/return workload
//
// Example usage:
//
//	cfg := config.Default()
//	if err := config.Load("pool.yaml", cfg); err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"time"

	"github.com/ajitpratap0/stockpile/pkg/errors"
)

// Config is the root configuration structure.
type Config struct {
	// Name identifies the pool in logs and metrics
	Name string `yaml:"name" json:"name" mapstructure:"name"`

	Pool    PoolConfig       `yaml:"pool" json:"pool" mapstructure:"pool"`
	Catalog []CategoryConfig `yaml:"catalog" json:"catalog" mapstructure:"catalog"`
	Logging LoggingConfig    `yaml:"logging" json:"logging" mapstructure:"logging"`
	Metrics MetricsConfig    `yaml:"metrics" json:"metrics" mapstructure:"metrics"`
	Tracing TracingConfig    `yaml:"tracing" json:"tracing" mapstructure:"tracing"`
	Soak    SoakConfig       `yaml:"soak" json:"soak" mapstructure:"soak"`
}

// PoolConfig controls pool behavior.
type PoolConfig struct {
	// AutoInitialize configures (and prewarms) the pool as soon as the host starts
	AutoInitialize bool `yaml:"auto_initialize" json:"auto_initialize" mapstructure:"auto_initialize"`
	// PrewarmCount is how many instances per key are created up front
	PrewarmCount int `yaml:"prewarm_count" json:"prewarm_count" mapstructure:"prewarm_count"`
	// DeactivateOnReturn switches returned instances off
	DeactivateOnReturn bool `yaml:"deactivate_on_return" json:"deactivate_on_return" mapstructure:"deactivate_on_return"`
}

// CategoryConfig is one category of the prototype catalog.
type CategoryConfig struct {
	Key     string        `yaml:"key" json:"key" mapstructure:"key"`
	Entries []EntryConfig `yaml:"entries" json:"entries" mapstructure:"entries"`
}

// EntryConfig binds a key to a prototype kind. An empty key defaults to the
// prototype name.
type EntryConfig struct {
	Key string `yaml:"key,omitempty" json:"key,omitempty" mapstructure:"key"`
	// Prototype is the prototype kind (buffer, record)
	Prototype string `yaml:"prototype" json:"prototype" mapstructure:"prototype"`
	// Size is the kind-specific capacity: bytes for buffers, fields for records
	Size int `yaml:"size,omitempty" json:"size,omitempty" mapstructure:"size"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level       string `yaml:"level" json:"level" mapstructure:"level"`
	Encoding    string `yaml:"encoding" json:"encoding" mapstructure:"encoding"`
	Development bool   `yaml:"development" json:"development" mapstructure:"development"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	Address   string `yaml:"address" json:"address" mapstructure:"address"`
	Namespace string `yaml:"namespace" json:"namespace" mapstructure:"namespace"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	Exporter    string  `yaml:"exporter" json:"exporter" mapstructure:"exporter"` // stdout or none
	ServiceName string  `yaml:"service_name" json:"service_name" mapstructure:"service_name"`
	SampleRate  float64 `yaml:"sample_rate" json:"sample_rate" mapstructure:"sample_rate"`
}

// SoakConfig controls the synthetic workload.
type SoakConfig struct {
	// Rounds is the number of borrow/return rounds
	Rounds int `yaml:"rounds" json:"rounds" mapstructure:"rounds"`
	// Hold is the maximum number of instances held per key in one round
	Hold int `yaml:"hold" json:"hold" mapstructure:"hold"`
	// Seed makes the workload reproducible
	Seed int64 `yaml:"seed" json:"seed" mapstructure:"seed"`
	// Timeout bounds the whole run
	Timeout time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`
}

// Default returns a Config with sensible defaults and an empty catalog.
func Default() *Config {
	return &Config{
		Name: "stockpile",
		Pool: PoolConfig{
			AutoInitialize:     true,
			PrewarmCount:       0,
			DeactivateOnReturn: true,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
		Metrics: MetricsConfig{
			Enabled:   false,
			Address:   ":9090",
			Namespace: "stockpile",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			Exporter:    "stdout",
			ServiceName: "stockpile",
			SampleRate:  1.0,
		},
		Soak: SoakConfig{
			Rounds:  1000,
			Hold:    4,
			Seed:    1,
			Timeout: time.Minute,
		},
	}
}

// Validate checks ranges and required fields. Catalog entries are not
// validated here: the catalog build drops entries without a prototype.
func (c *Config) Validate() error {
	if c.Name == "" {
		return errors.New(errors.ErrorTypeValidation, "name is required")
	}
	if c.Pool.PrewarmCount < 0 {
		return errors.New(errors.ErrorTypeValidation, "pool.prewarm_count cannot be negative")
	}
	for i, cat := range c.Catalog {
		if cat.Key == "" {
			return errors.Newf(errors.ErrorTypeValidation, "catalog[%d]: key is required", i)
		}
	}
	if c.Metrics.Enabled && c.Metrics.Address == "" {
		return errors.New(errors.ErrorTypeValidation, "metrics.address is required when metrics are enabled")
	}
	if c.Tracing.Enabled {
		switch c.Tracing.Exporter {
		case "stdout", "none":
		default:
			return errors.Newf(errors.ErrorTypeValidation, "tracing.exporter must be stdout or none, got %q", c.Tracing.Exporter)
		}
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return errors.New(errors.ErrorTypeValidation, "tracing.sample_rate must be between 0 and 1")
	}
	if c.Soak.Rounds < 0 {
		return errors.New(errors.ErrorTypeValidation, "soak.rounds cannot be negative")
	}
	if c.Soak.Hold <= 0 {
		return errors.New(errors.ErrorTypeValidation, "soak.hold must be positive")
	}
	return nil
}

// EntryCount returns the number of catalog entries across all categories.
func (c *Config) EntryCount() int {
	n := 0
	for _, cat := range c.Catalog {
		n += len(cat.Entries)
	}
	return n
}

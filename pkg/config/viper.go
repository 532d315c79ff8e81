package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/ajitpratap0/stockpile/pkg/errors"
)

// EnvPrefix prefixes environment overrides, e.g. STOCKPILE_POOL_PREWARM_COUNT.
const EnvPrefix = "STOCKPILE"

// LoadViper reads the YAML file at path through Viper, applies STOCKPILE_*
// environment overrides and returns the merged configuration. An empty path
// yields the defaults plus environment overrides.
func LoadViper(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "read config")
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "decode config")
	}
	return cfg, nil
}

// setDefaults registers every scalar key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("name", d.Name)

	v.SetDefault("pool.auto_initialize", d.Pool.AutoInitialize)
	v.SetDefault("pool.prewarm_count", d.Pool.PrewarmCount)
	v.SetDefault("pool.deactivate_on_return", d.Pool.DeactivateOnReturn)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.encoding", d.Logging.Encoding)
	v.SetDefault("logging.development", d.Logging.Development)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.address", d.Metrics.Address)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)

	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)

	v.SetDefault("soak.rounds", d.Soak.Rounds)
	v.SetDefault("soak.hold", d.Soak.Hold)
	v.SetDefault("soak.seed", d.Soak.Seed)
	v.SetDefault("soak.timeout", d.Soak.Timeout)
}

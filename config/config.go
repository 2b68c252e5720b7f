// Package config provides configuration management for kernelbus.
package config

import (
	"fmt"
	"time"
)

// Config is the global configuration for kernelbus.
type Config struct {
	// App is the application configuration.
	App AppConfig `mapstructure:"app" validate:"required"`

	// Log is the logging configuration.
	Log LogConfig `mapstructure:"log" validate:"required"`

	// Admin is the admin HTTP endpoint configuration.
	Admin AdminConfig `mapstructure:"admin"`

	// Metrics is the observability configuration.
	Metrics MetricsConfig `mapstructure:"metrics"`

	// Tracing is the distributed tracing configuration.
	Tracing TracingConfig `mapstructure:"tracing"`

	// Mailbox configures the mailboxes created for each unit.
	Mailbox MailboxConfig `mapstructure:"mailbox"`

	// Signal configures the signal managers and the Redis bridge.
	Signal SignalConfig `mapstructure:"signal"`

	// Round configures the reaction round driver.
	Round RoundConfig `mapstructure:"round"`

	// Redis is the Redis connection used by the signal bridge.
	Redis RedisConfig `mapstructure:"redis"`
}

// AppConfig holds application metadata and settings.
type AppConfig struct {
	// Name is the application name.
	Name string `mapstructure:"name" validate:"required"`

	// Version is the application version.
	Version string `mapstructure:"version"`

	// Environment is the runtime environment (development, staging, production).
	Environment string `mapstructure:"environment" validate:"env"`

	// Debug enables debug mode with verbose logging.
	Debug bool `mapstructure:"debug"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`

	// Format is the output format (json, text).
	Format string `mapstructure:"format" validate:"oneof=json text"`

	// Output is the output destination (stdout, stderr, discard, or file path).
	Output string `mapstructure:"output"`
}

// AdminConfig holds the admin HTTP endpoint settings.
type AdminConfig struct {
	// Enabled enables the admin endpoint.
	Enabled bool `mapstructure:"enabled"`

	// Host is the bind address.
	Host string `mapstructure:"host" validate:"omitempty,hostname|ip"`

	// Port is the admin port.
	Port int `mapstructure:"port" validate:"min=1,max=65535"`

	// ReadTimeout is the maximum duration for reading a request.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// ShutdownTimeout bounds the graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// MetricsConfig holds observability settings.
type MetricsConfig struct {
	// Enabled enables metrics collection.
	Enabled bool `mapstructure:"enabled"`

	// Path is the metrics endpoint path on the admin router.
	Path string `mapstructure:"path" validate:"startswith=/"`
}

// TracingConfig holds distributed tracing settings.
type TracingConfig struct {
	// Enabled enables distributed tracing.
	Enabled bool `mapstructure:"enabled"`

	// Exporter is the span exporter (otlpgrpc).
	Exporter string `mapstructure:"exporter" validate:"oneof=otlpgrpc"`

	// Endpoint is the collector endpoint.
	Endpoint string `mapstructure:"endpoint"`

	// Headers are sent with every export request.
	Headers map[string]string `mapstructure:"headers"`

	// Insecure disables TLS towards the collector.
	Insecure bool `mapstructure:"insecure"`

	// Timeout bounds a single export.
	Timeout time.Duration `mapstructure:"timeout"`

	// Sampler is the sampling strategy.
	Sampler string `mapstructure:"sampler" validate:"oneof=always_on always_off parentbased_traceidratio"`

	// SampleRate is the fraction of traces to sample (0.0-1.0).
	SampleRate float64 `mapstructure:"sample_rate" validate:"min=0,max=1"`
}

// MailboxConfig holds mailbox settings.
type MailboxConfig struct {
	// Ordering is the message order (arrival, creation_time).
	Ordering string `mapstructure:"ordering" validate:"oneof=arrival creation_time"`

	// Buffered stages inserted messages until the end of the round.
	Buffered bool `mapstructure:"buffered"`

	// Discard replaces every mailbox with a discard mailbox.
	Discard bool `mapstructure:"discard"`

	// InsertDelay is the artificial insertion cost of discard mailboxes.
	InsertDelay time.Duration `mapstructure:"insert_delay" validate:"min=0"`

	// RemoveDelay is the artificial removal cost of discard mailboxes.
	RemoveDelay time.Duration `mapstructure:"remove_delay" validate:"min=0"`

	// ReadDelay is the artificial read cost of discard mailboxes.
	ReadDelay time.Duration `mapstructure:"read_delay" validate:"min=0"`
}

// SignalConfig holds signal manager settings.
type SignalConfig struct {
	// DefaultPolicy is the initial policy of new managers.
	DefaultPolicy string `mapstructure:"default_policy" validate:"policy"`

	// Buffered makes new managers stage signals until the end of the round.
	Buffered bool `mapstructure:"buffered"`

	// Bridge relays signals between processes over Redis pub/sub.
	Bridge BridgeConfig `mapstructure:"bridge"`
}

// BridgeConfig holds Redis signal bridge settings.
type BridgeConfig struct {
	// Enabled enables the bridge.
	Enabled bool `mapstructure:"enabled"`

	// Channel is the pub/sub channel.
	Channel string `mapstructure:"channel" validate:"required"`

	// RateLimit bounds inbound signals per second; 0 disables the limit.
	RateLimit float64 `mapstructure:"rate_limit" validate:"min=0"`

	// Burst is the inbound burst size.
	Burst int `mapstructure:"burst" validate:"min=0"`

	// PublishTimeout bounds a single publish.
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`
}

// RoundConfig holds reaction round settings.
type RoundConfig struct {
	// Agents is the number of demo agents.
	Agents int `mapstructure:"agents" validate:"min=1"`

	// Interval is the pause between two rounds.
	Interval time.Duration `mapstructure:"interval" validate:"min=0"`

	// Count is the number of rounds to run; 0 runs until stopped.
	Count int `mapstructure:"count" validate:"min=0"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	// Address is the Redis server address.
	Address string `mapstructure:"address"`

	// Password is the Redis password.
	Password string `mapstructure:"password"`

	// DB is the Redis database number.
	DB int `mapstructure:"db" validate:"min=0"`

	// DialTimeout bounds connection setup.
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// Validate performs validation on the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if err := c.validateDependencies(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// validateDependencies checks settings that only matter when another one is
// enabled.
func (c *Config) validateDependencies() error {
	var errs ValidationErrors
	if c.Tracing.Enabled {
		if c.Tracing.Endpoint == "" {
			errs = append(errs, ConfigError{Field: "Config.Tracing.Endpoint", Message: "required when tracing is enabled", Value: c.Tracing.Endpoint})
		}
		if c.Tracing.Timeout <= 0 {
			errs = append(errs, ConfigError{Field: "Config.Tracing.Timeout", Message: "must be positive when tracing is enabled", Value: c.Tracing.Timeout})
		}
	}
	if c.Signal.Bridge.Enabled {
		if c.Redis.Address == "" {
			errs = append(errs, ConfigError{Field: "Config.Redis.Address", Message: "required when the signal bridge is enabled", Value: c.Redis.Address})
		}
		if c.Signal.Bridge.RateLimit > 0 && c.Signal.Bridge.Burst <= 0 {
			errs = append(errs, ConfigError{Field: "Config.Signal.Bridge.Burst", Message: "must be positive when rate_limit is set", Value: c.Signal.Bridge.Burst})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// String returns a string representation of the configuration (without sensitive data).
func (c *Config) String() string {
	return fmt.Sprintf("Config{App: %s, Env: %s, Admin: :%d, Policy: %s}",
		c.App.Name, c.App.Environment, c.Admin.Port, c.Signal.DefaultPolicy)
}

package config

import "time"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "kernelbus",
			Version:     "dev",
			Environment: "development",
			Debug:       false,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Admin: AdminConfig{
			Enabled:         true,
			Host:            "127.0.0.1",
			Port:            9091,
			ReadTimeout:     10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Tracing: TracingConfig{
			Enabled:    false,
			Exporter:   "otlpgrpc",
			Endpoint:   "localhost:4317",
			Insecure:   true,
			Timeout:    5 * time.Second,
			Sampler:    "parentbased_traceidratio",
			SampleRate: 0.1,
		},
		Mailbox: MailboxConfig{
			Ordering: "arrival",
			Buffered: true,
		},
		Signal: SignalConfig{
			DefaultPolicy: "fire_signal",
			Buffered:      true,
			Bridge: BridgeConfig{
				Enabled:        false,
				Channel:        "kernelbus:signals",
				RateLimit:      0,
				Burst:          100,
				PublishTimeout: time.Second,
			},
		},
		Round: RoundConfig{
			Agents:   4,
			Interval: 500 * time.Millisecond,
			Count:    0,
		},
		Redis: RedisConfig{
			Address:     "localhost:6379",
			Password:    "",
			DB:          0,
			DialTimeout: 2 * time.Second,
		},
	}
}

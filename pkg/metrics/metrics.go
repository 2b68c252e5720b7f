// Package metrics provides Prometheus metrics instrumentation for kernelbus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for kernelbus. It implements the
// recorder interfaces of the mailbox, signal and round packages so that a
// single instance can be injected everywhere.
type Manager struct {
	registry *prometheus.Registry
	enabled  bool

	// Mailbox metrics
	mailboxAdded   *prometheus.CounterVec
	mailboxRemoved *prometheus.CounterVec
	mailboxSyncs   *prometheus.CounterVec
	mailboxMoved   *prometheus.CounterVec

	// Signal metrics
	signalAccepted  *prometheus.CounterVec
	signalDelivered *prometheus.CounterVec
	signalQueued    *prometheus.CounterVec
	signalDropped   *prometheus.CounterVec
	signalReplayed  *prometheus.CounterVec

	// Bridge metrics
	bridgePublished *prometheus.CounterVec
	bridgeReceived  *prometheus.CounterVec
	bridgeDropped   *prometheus.CounterVec

	// Round metrics
	roundFlushes      *prometheus.CounterVec
	roundDuration     *prometheus.HistogramVec
	roundSyncers      *prometheus.GaugeVec
	roundSyncFailures *prometheus.CounterVec

	// Admin endpoint metrics
	adminRequests *prometheus.CounterVec
	adminDuration *prometheus.HistogramVec
	adminInFlight prometheus.Gauge
}

// Config holds metrics configuration.
type Config struct {
	Enabled bool
	Path    string

	// Histogram bucket configurations
	RoundDurationBuckets []float64
	AdminDurationBuckets []float64
}

// DefaultConfig returns default metrics configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:              true,
		Path:                 "/metrics",
		RoundDurationBuckets: []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		AdminDurationBuckets: defaultAdminBuckets,
	}
}

// NewManager creates a new metrics manager.
func NewManager(cfg Config) *Manager {
	if !cfg.Enabled {
		return &Manager{enabled: false}
	}

	registry := prometheus.NewRegistry()

	// Register Go runtime metrics
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Manager{
		registry: registry,
		enabled:  true,
	}

	m.initMailboxMetrics()
	m.initSignalMetrics()
	m.initRoundMetrics(cfg)
	m.initAdminMetrics(cfg)

	return m
}

// Enabled returns whether metrics collection is enabled.
func (m *Manager) Enabled() bool {
	return m.enabled
}

// Registry returns the underlying registry, or nil when disabled.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler for the metrics endpoint.
func (m *Manager) Handler() http.Handler {
	if !m.enabled {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// NoOpManager returns a no-op metrics manager for when metrics are disabled.
func NoOpManager() *Manager {
	return &Manager{enabled: false}
}

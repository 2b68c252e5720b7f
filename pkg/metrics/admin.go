package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace      = "kernelbus"
	adminSubsystem = "admin"
)

// The admin endpoint serves probes, status snapshots and scrapes; anything
// slower than a quarter second is an outlier.
var defaultAdminBuckets = []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25}

func (m *Manager) initAdminMetrics(cfg Config) {
	buckets := cfg.AdminDurationBuckets
	if len(buckets) == 0 {
		buckets = defaultAdminBuckets
	}

	m.adminRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: adminSubsystem,
			Name:      "requests_total",
			Help:      "Admin endpoint requests by route, method and status code",
		},
		[]string{"route", "method", "code"},
	)

	m.adminDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: adminSubsystem,
			Name:      "request_duration_seconds",
			Help:      "Admin endpoint request latency by route",
			Buckets:   buckets,
		},
		[]string{"route"},
	)

	m.adminInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: adminSubsystem,
			Name:      "requests_in_flight",
			Help:      "Admin endpoint requests currently being served",
		},
	)

	m.registry.MustRegister(m.adminRequests, m.adminDuration, m.adminInFlight)
}

// RecordAdminRequest records one served admin request. route is the matched
// router pattern, never the raw path.
func (m *Manager) RecordAdminRequest(method, route, code string, duration time.Duration) {
	if !m.enabled {
		return
	}
	m.adminRequests.WithLabelValues(route, method, code).Inc()
	m.adminDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// IncInFlight marks an admin request as started.
func (m *Manager) IncInFlight() {
	if m.enabled {
		m.adminInFlight.Inc()
	}
}

// DecInFlight marks an admin request as finished.
func (m *Manager) DecInFlight() {
	if m.enabled {
		m.adminInFlight.Dec()
	}
}

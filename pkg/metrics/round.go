package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/goclaw/kernelbus/pkg/round"
)

var _ round.MetricsRecorder = (*Manager)(nil)

// initRoundMetrics initializes round barrier metrics.
func (m *Manager) initRoundMetrics(cfg Config) {
	m.roundFlushes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "round_flushes_total",
			Help: "Total number of round flushes",
		},
		[]string{"barrier"},
	)

	m.roundDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "round_flush_duration_seconds",
			Help:    "Round flush duration in seconds",
			Buckets: cfg.RoundDurationBuckets,
		},
		[]string{"barrier"},
	)

	m.roundSyncers = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "round_syncers",
			Help: "Current number of syncers registered on a barrier",
		},
		[]string{"barrier"},
	)

	m.roundSyncFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "round_sync_failures_total",
			Help: "Total number of syncers that failed during a flush",
		},
		[]string{"barrier", "syncer"},
	)

	m.registry.MustRegister(m.roundFlushes)
	m.registry.MustRegister(m.roundDuration)
	m.registry.MustRegister(m.roundSyncers)
	m.registry.MustRegister(m.roundSyncFailures)
}

// RecordRoundFlush records a flush. The duration sample carries the trace of
// ctx as an exemplar when one is active.
func (m *Manager) RecordRoundFlush(ctx context.Context, barrier string, _ int, duration time.Duration) {
	if !m.enabled {
		return
	}
	m.roundFlushes.WithLabelValues(barrier).Inc()

	observer := m.roundDuration.WithLabelValues(barrier)
	if labels, ok := traceExemplarLabels(ctx); ok {
		if eo, ok := observer.(prometheus.ExemplarObserver); ok {
			eo.ObserveWithExemplar(duration.Seconds(), labels)
			return
		}
	}
	observer.Observe(duration.Seconds())
}

// RecordRoundSyncFailure records a syncer that failed during a flush.
func (m *Manager) RecordRoundSyncFailure(barrier, syncer string) {
	if !m.enabled {
		return
	}
	m.roundSyncFailures.WithLabelValues(barrier, syncer).Inc()
}

// SetRoundSyncers sets the number of syncers registered on a barrier.
func (m *Manager) SetRoundSyncers(barrier string, count int) {
	if !m.enabled {
		return
	}
	m.roundSyncers.WithLabelValues(barrier).Set(float64(count))
}

// traceExemplarLabels returns exemplar labels for the span in ctx.
func traceExemplarLabels(ctx context.Context) (prometheus.Labels, bool) {
	if ctx == nil {
		return nil, false
	}
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return nil, false
	}
	return prometheus.Labels{
		"trace_id": spanCtx.TraceID().String(),
		"span_id":  spanCtx.SpanID().String(),
	}, true
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/goclaw/kernelbus/pkg/signal"
)

var _ signal.MetricsRecorder = (*Manager)(nil)

func (m *Manager) initSignalMetrics() {
	m.signalAccepted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_accepted_total",
			Help: "Total number of signals accepted by managers",
		},
		[]string{"kind", "origin", "policy"},
	)

	m.signalDelivered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_deliveries_total",
			Help: "Total number of listener notifications",
		},
		[]string{"kind"},
	)

	m.signalQueued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_queued_total",
			Help: "Total number of signals appended to pull queues",
		},
		[]string{"kind"},
	)

	m.signalDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_dropped_total",
			Help: "Total number of dropped signals",
		},
		[]string{"kind", "reason"},
	)

	m.signalReplayed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_sync_replayed_total",
			Help: "Total number of staged signals replayed by Sync",
		},
		[]string{"kind"},
	)

	m.bridgePublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_bridge_published_total",
			Help: "Total number of signals published to the bridge channel",
		},
		[]string{"channel"},
	)

	m.bridgeReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_bridge_received_total",
			Help: "Total number of signals received from the bridge channel",
		},
		[]string{"channel"},
	)

	m.bridgeDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_bridge_dropped_total",
			Help: "Total number of bridge signals dropped by reason",
		},
		[]string{"channel", "reason"},
	)

	m.registry.MustRegister(m.signalAccepted)
	m.registry.MustRegister(m.signalDelivered)
	m.registry.MustRegister(m.signalQueued)
	m.registry.MustRegister(m.signalDropped)
	m.registry.MustRegister(m.signalReplayed)
	m.registry.MustRegister(m.bridgePublished)
	m.registry.MustRegister(m.bridgeReceived)
	m.registry.MustRegister(m.bridgeDropped)
}

// RecordSignalAccepted records a signal accepted by a manager.
func (m *Manager) RecordSignalAccepted(kind, origin, policy string) {
	if !m.enabled {
		return
	}
	m.signalAccepted.WithLabelValues(kind, origin, policy).Inc()
}

// RecordSignalDelivered records the fan-out of one signal to listeners.
func (m *Manager) RecordSignalDelivered(kind string, listeners int) {
	if !m.enabled {
		return
	}
	m.signalDelivered.WithLabelValues(kind).Add(float64(listeners))
}

// RecordSignalQueued records a signal appended to a pull queue.
func (m *Manager) RecordSignalQueued(kind string) {
	if !m.enabled {
		return
	}
	m.signalQueued.WithLabelValues(kind).Inc()
}

// RecordSignalDropped records a dropped signal.
func (m *Manager) RecordSignalDropped(kind, reason string) {
	if !m.enabled {
		return
	}
	m.signalDropped.WithLabelValues(kind, reason).Inc()
}

// RecordSignalSync records the staged signals replayed by one Sync.
func (m *Manager) RecordSignalSync(kind string, replayed int) {
	if !m.enabled {
		return
	}
	m.signalReplayed.WithLabelValues(kind).Add(float64(replayed))
}

// RecordBridgePublished records a signal published by a bridge.
func (m *Manager) RecordBridgePublished(channel string) {
	if !m.enabled {
		return
	}
	m.bridgePublished.WithLabelValues(channel).Inc()
}

// RecordBridgeReceived records a signal relayed from the bridge channel.
func (m *Manager) RecordBridgeReceived(channel string) {
	if !m.enabled {
		return
	}
	m.bridgeReceived.WithLabelValues(channel).Inc()
}

// RecordBridgeDropped records a bridge signal dropped for reason.
func (m *Manager) RecordBridgeDropped(channel, reason string) {
	if !m.enabled {
		return
	}
	m.bridgeDropped.WithLabelValues(channel, reason).Inc()
}

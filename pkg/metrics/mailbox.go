package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/goclaw/kernelbus/pkg/mailbox"
)

var _ mailbox.MetricsRecorder = (*Manager)(nil)

// initMailboxMetrics initializes mailbox metrics.
func (m *Manager) initMailboxMetrics() {
	m.mailboxAdded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailbox_messages_added_total",
			Help: "Total number of messages added to mailboxes",
		},
		[]string{"variant"},
	)

	m.mailboxRemoved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailbox_messages_removed_total",
			Help: "Total number of messages removed from mailboxes",
		},
		[]string{"variant"},
	)

	m.mailboxSyncs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailbox_synchronizations_total",
			Help: "Total number of mailbox synchronizations",
		},
		[]string{"variant"},
	)

	m.mailboxMoved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailbox_messages_synchronized_total",
			Help: "Total number of messages made visible by synchronizations",
		},
		[]string{"variant"},
	)

	m.registry.MustRegister(m.mailboxAdded)
	m.registry.MustRegister(m.mailboxRemoved)
	m.registry.MustRegister(m.mailboxSyncs)
	m.registry.MustRegister(m.mailboxMoved)
}

// RecordMessageAdded records a message added to a mailbox.
func (m *Manager) RecordMessageAdded(variant string) {
	if !m.enabled {
		return
	}
	m.mailboxAdded.WithLabelValues(variant).Inc()
}

// RecordMessagesRemoved records messages removed from a mailbox.
func (m *Manager) RecordMessagesRemoved(variant string, count int) {
	if !m.enabled {
		return
	}
	m.mailboxRemoved.WithLabelValues(variant).Add(float64(count))
}

// RecordMailboxSynchronized records a synchronization and the number of
// messages it made visible.
func (m *Manager) RecordMailboxSynchronized(variant string, moved int) {
	if !m.enabled {
		return
	}
	m.mailboxSyncs.WithLabelValues(variant).Inc()
	m.mailboxMoved.WithLabelValues(variant).Add(float64(moved))
}

package mailbox

// MetricsRecorder defines metrics hooks for mailbox operations. Variant is
// one of "ordered", "buffered" or "discard".
type MetricsRecorder interface {
	RecordMessageAdded(variant string)
	RecordMessagesRemoved(variant string, count int)
	RecordMailboxSynchronized(variant string, moved int)
}

type nopMetrics struct{}

func (nopMetrics) RecordMessageAdded(string)             {}
func (nopMetrics) RecordMessagesRemoved(string, int)     {}
func (nopMetrics) RecordMailboxSynchronized(string, int) {}

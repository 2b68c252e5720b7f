package signal

// MetricsRecorder defines metrics hooks for signal managers. Kind is
// "instant" or "buffered"; origin is "external" for OnSignal and "local" for
// FireSignal.
type MetricsRecorder interface {
	RecordSignalAccepted(kind, origin, policy string)
	RecordSignalDelivered(kind string, listeners int)
	RecordSignalQueued(kind string)
	RecordSignalDropped(kind, reason string)
	RecordSignalSync(kind string, replayed int)
}

type nopMetrics struct{}

func (nopMetrics) RecordSignalAccepted(string, string, string) {}
func (nopMetrics) RecordSignalDelivered(string, int)           {}
func (nopMetrics) RecordSignalQueued(string)                   {}
func (nopMetrics) RecordSignalDropped(string, string)          {}
func (nopMetrics) RecordSignalSync(string, int)                {}

package signal

import (
	"sync"
)

// recorder is a listener that records what it is notified of, and optionally
// appends its name to a shared journal to observe notification order.
type recorder struct {
	name    string
	journal *journal

	mu  sync.Mutex
	got []Signal
}

func newRecorder(name string, j *journal) *recorder {
	return &recorder{name: name, journal: j}
}

func (r *recorder) OnSignal(s Signal) {
	r.mu.Lock()
	r.got = append(r.got, s)
	r.mu.Unlock()
	if r.journal != nil {
		r.journal.add(r.name)
	}
}

func (r *recorder) received() []Signal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Signal(nil), r.got...)
}

type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(e string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

// alarm is a typed signal used to exercise the adapters.
type alarm struct {
	*Basic
}

func newAlarm(level int) *alarm {
	return &alarm{Basic: New("sensor", "alarm", level)}
}

func (a *alarm) Level() int {
	return a.Value(0).(int)
}

// countingMetrics records calls made on the metrics hooks.
type countingMetrics struct {
	mu       sync.Mutex
	accepted map[string]int
	dropped  map[string]int
	queued   int
	synced   int
	bridge   map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{
		accepted: make(map[string]int),
		dropped:  make(map[string]int),
		bridge:   make(map[string]int),
	}
}

func (c *countingMetrics) RecordSignalAccepted(kind, origin, policy string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accepted[kind+"/"+origin+"/"+policy]++
}

func (c *countingMetrics) RecordSignalDelivered(string, int) {}

func (c *countingMetrics) RecordSignalQueued(string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queued++
}

func (c *countingMetrics) RecordSignalDropped(_, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropped[reason]++
}

func (c *countingMetrics) RecordSignalSync(_ string, replayed int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.synced += replayed
}

func (c *countingMetrics) RecordBridgePublished(string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bridge["published"]++
}

func (c *countingMetrics) RecordBridgeReceived(string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bridge["received"]++
}

func (c *countingMetrics) RecordBridgeDropped(_, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bridge["dropped:"+reason]++
}

func (c *countingMetrics) droppedCount(reason string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped[reason]
}

func (c *countingMetrics) bridgeCount(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bridge[key]
}

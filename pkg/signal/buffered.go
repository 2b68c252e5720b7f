package signal

// staged is a signal accepted by a Buffered manager together with the policy
// that was in force when it arrived.
type staged struct {
	signal Signal
	policy Policy
}

// Buffered is a manager that stages accepted signals and applies the policy
// effects only when Sync is called. Signals arriving under PolicyIgnoreAll
// are dropped immediately and never staged.
type Buffered struct {
	base
	staging []staged
}

// NewBuffered creates a buffered manager.
func NewBuffered(opts ...Option) *Buffered {
	m := &Buffered{}
	m.init(kindBuffered, buildOptions(opts))
	return m
}

// OnSignal stages a signal arriving from outside this node.
func (m *Buffered) OnSignal(s Signal) {
	m.accept(s, originExternal)
}

// FireSignal stages a signal from the owning unit and escalates it at once;
// whether the parent defers it depends on the parent's own kind.
func (m *Buffered) FireSignal(s Signal) {
	m.accept(s, originLocal)
	m.escalate(s)
}

func (m *Buffered) accept(s Signal, origin string) {
	if s == nil {
		return
	}
	m.lock()
	defer m.mu.Unlock()

	policy := m.policy
	m.opts.metrics.RecordSignalAccepted(m.kind, origin, policy.String())
	if policy == PolicyIgnoreAll {
		m.opts.metrics.RecordSignalDropped(m.kind, "ignored")
		return
	}
	m.staging = append(m.staging, staged{signal: s, policy: policy})
}

// Sync replays the staged signals in arrival order, queueing or fanning out
// each one as an Instant manager would have done on arrival, then clears the
// staging list. Signals accepted while Sync runs wait for the next call.
func (m *Buffered) Sync() {
	m.lock()
	batch := m.staging
	m.staging = nil

	var fire []Signal
	for _, st := range batch {
		switch st.policy {
		case PolicyStoreInQueue:
			m.enqueueLocked(st.signal)
		case PolicyFireSignal:
			fire = append(fire, st.signal)
		}
	}
	var listeners []Listener
	if len(fire) > 0 {
		listeners = m.snapshotLocked()
	}
	m.mu.Unlock()

	for _, s := range fire {
		m.deliver(s, listeners)
	}
	if len(batch) > 0 {
		m.opts.metrics.RecordSignalSync(m.kind, len(batch))
		m.opts.log.Debug("staged signals replayed", "count", len(batch), "fired", len(fire))
	}
}

// BufferSize returns the number of staged signals.
func (m *Buffered) BufferSize() int {
	m.lock()
	defer m.mu.Unlock()
	return len(m.staging)
}

// IsBufferEmpty reports whether nothing is staged.
func (m *Buffered) IsBufferEmpty() bool {
	return m.BufferSize() == 0
}

// ClearBuffer drops the staged signals without applying them.
func (m *Buffered) ClearBuffer() {
	m.lock()
	defer m.mu.Unlock()
	m.staging = nil
}

// Detach marks the manager as detached and drops its staging list,
// listeners and queue.
func (m *Buffered) Detach() {
	m.mu.Lock()
	m.staging = nil
	m.mu.Unlock()
	m.detach()
}

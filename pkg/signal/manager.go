package signal

import (
	"reflect"
	"runtime/debug"
	"slices"
	"sync"
)

// Manager is a policy-driven node of the signal bus.
type Manager interface {
	Listener

	// FireSignal accepts a signal originated by the manager's own unit and
	// escalates it to the parent, if any.
	FireSignal(s Signal)

	// SetPolicy changes the policy. Unknown values are rejected.
	SetPolicy(p Policy) error
	Policy() Policy

	// AddSignalListener registers l. Listeners are notified in registration
	// order. Registering a listener that is already present has no effect.
	// Listeners are matched with ==; a listener whose dynamic value is not
	// comparable (a slice or map type, say) never matches, so it cannot be
	// removed. Use pointer listeners.
	AddSignalListener(l Listener)

	// RemoveSignalListener unregisters l and reports whether it was
	// registered.
	RemoveSignalListener(l Listener) bool

	// PollSignal dequeues the oldest queued signal.
	PollSignal() (Signal, bool)

	// HasSignal reports whether the pull queue is non-empty.
	HasSignal() bool

	// QueueSize returns the length of the pull queue.
	QueueSize() int

	// Parent returns the escalation target, or nil.
	Parent() Manager

	// Detach marks the owning unit as finalized. Any later call panics with
	// a *DetachedError.
	Detach()
}

var (
	_ Manager = (*Instant)(nil)
	_ Manager = (*Buffered)(nil)
)

const (
	kindInstant  = "instant"
	kindBuffered = "buffered"

	originExternal = "external"
	originLocal    = "local"
)

// base holds the state shared by both manager kinds: the policy, the
// listener set, the pull queue and the parent link. The listener set and
// the parent link are kept apart so that escalation never doubles as
// fan-out.
type base struct {
	mu        sync.Mutex
	policy    Policy
	listeners []Listener
	queue     []Signal
	detached  bool

	kind string
	opts *options
}

func (b *base) init(kind string, opts *options) {
	b.policy = opts.policy
	b.kind = kind
	b.opts = opts
}

// lock acquires the manager lock, panicking with a *DetachedError (and the
// lock released) when the manager has been detached.
func (b *base) lock() {
	b.mu.Lock()
	if b.detached {
		b.mu.Unlock()
		panic(&DetachedError{Name: b.opts.name})
	}
}

// SetPolicy changes the policy.
func (b *base) SetPolicy(p Policy) error {
	if !p.Valid() {
		return &InvalidPolicyError{Value: int(p)}
	}
	b.lock()
	old := b.policy
	b.policy = p
	b.mu.Unlock()

	if old != p {
		b.opts.log.Debug("signal policy changed", "from", old.String(), "to", p.String())
	}
	return nil
}

// Policy returns the current policy.
func (b *base) Policy() Policy {
	b.lock()
	defer b.mu.Unlock()
	return b.policy
}

// AddSignalListener registers l.
func (b *base) AddSignalListener(l Listener) {
	if l == nil {
		return
	}
	b.lock()
	defer b.mu.Unlock()
	if b.indexLocked(l) >= 0 {
		return
	}
	b.listeners = append(b.listeners, l)
}

// RemoveSignalListener unregisters l.
func (b *base) RemoveSignalListener(l Listener) bool {
	b.lock()
	defer b.mu.Unlock()

	i := b.indexLocked(l)
	if i < 0 {
		return false
	}
	b.listeners = slices.Delete(b.listeners, i, i+1)
	return true
}

// indexLocked returns the position of l in the listener set, or -1.
func (b *base) indexLocked(l Listener) int {
	if l == nil || !reflect.ValueOf(l).Comparable() {
		return -1
	}
	return slices.IndexFunc(b.listeners, func(x Listener) bool {
		return reflect.TypeOf(x) == reflect.TypeOf(l) &&
			reflect.ValueOf(x).Comparable() && x == l
	})
}

// ListenerCount returns the number of registered listeners.
func (b *base) ListenerCount() int {
	b.lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

// PollSignal dequeues the oldest queued signal.
func (b *base) PollSignal() (Signal, bool) {
	b.lock()
	defer b.mu.Unlock()

	if len(b.queue) == 0 {
		return nil, false
	}
	s := b.queue[0]
	b.queue[0] = nil
	b.queue = b.queue[1:]
	return s, true
}

// HasSignal reports whether the pull queue is non-empty.
func (b *base) HasSignal() bool {
	return b.QueueSize() > 0
}

// QueueSize returns the length of the pull queue.
func (b *base) QueueSize() int {
	b.lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Parent returns the escalation target.
func (b *base) Parent() Manager {
	b.lock()
	defer b.mu.Unlock()
	return b.opts.parent
}

// Name returns the manager name.
func (b *base) Name() string {
	b.lock()
	defer b.mu.Unlock()
	return b.opts.name
}

// enqueueLocked appends s to the pull queue.
func (b *base) enqueueLocked(s Signal) {
	b.queue = append(b.queue, s)
	b.opts.metrics.RecordSignalQueued(b.kind)
}

// snapshotLocked copies the listener set so that callbacks run unlocked.
func (b *base) snapshotLocked() []Listener {
	return slices.Clone(b.listeners)
}

// deliver notifies listeners in order. A panicking listener is logged and
// skipped; the remaining listeners are still notified.
func (b *base) deliver(s Signal, listeners []Listener) {
	for _, l := range listeners {
		b.safeCall(l, s)
	}
	b.opts.metrics.RecordSignalDelivered(b.kind, len(listeners))
}

func (b *base) safeCall(l Listener, s Signal) {
	defer func() {
		if r := recover(); r != nil {
			b.opts.log.Error("signal listener panicked",
				"signal", s.Name(),
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()
	l.OnSignal(s)
}

func (b *base) detach() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.detached {
		return
	}
	b.detached = true
	b.listeners = nil
	b.queue = nil
	b.opts.log.Debug("signal manager detached")
}

// escalate hands a self-originated signal to the parent.
func (b *base) escalate(s Signal) {
	if parent := b.opts.parent; parent != nil {
		parent.FireSignal(s)
	}
}

// Instant is a manager that applies its policy as soon as a signal is
// accepted: listeners are notified before OnSignal returns.
type Instant struct {
	base
}

// NewInstant creates an instant manager.
func NewInstant(opts ...Option) *Instant {
	m := &Instant{}
	m.init(kindInstant, buildOptions(opts))
	return m
}

// OnSignal accepts a signal arriving from outside this node.
func (m *Instant) OnSignal(s Signal) {
	m.accept(s, originExternal)
}

// FireSignal accepts a signal from the owning unit, then escalates it.
func (m *Instant) FireSignal(s Signal) {
	m.accept(s, originLocal)
	m.escalate(s)
}

func (m *Instant) accept(s Signal, origin string) {
	if s == nil {
		return
	}
	m.lock()
	policy := m.policy
	m.opts.metrics.RecordSignalAccepted(m.kind, origin, policy.String())

	switch policy {
	case PolicyStoreInQueue:
		m.enqueueLocked(s)
		m.mu.Unlock()
	case PolicyFireSignal:
		listeners := m.snapshotLocked()
		m.mu.Unlock()
		m.deliver(s, listeners)
	default:
		m.mu.Unlock()
		m.opts.metrics.RecordSignalDropped(m.kind, "ignored")
	}
}

// Detach marks the manager as detached and drops its listeners and queue.
func (m *Instant) Detach() {
	m.detach()
}

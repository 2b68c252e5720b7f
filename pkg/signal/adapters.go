package signal

import (
	"iter"
	"sync"
)

// QueuedAdapter is a listener that keeps every received signal of type T in
// a FIFO, for units that prefer polling over callbacks. Signals of other
// types are ignored.
type QueuedAdapter[T Signal] struct {
	mu    sync.Mutex
	queue []T
}

// NewQueuedAdapter creates an empty queued adapter.
func NewQueuedAdapter[T Signal]() *QueuedAdapter[T] {
	return &QueuedAdapter[T]{}
}

// OnSignal enqueues s when it is a T.
func (a *QueuedAdapter[T]) OnSignal(s Signal) {
	t, ok := s.(T)
	if !ok {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.queue = append(a.queue, t)
}

// FirstAvailable dequeues the oldest signal.
func (a *QueuedAdapter[T]) FirstAvailable() (T, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var zero T
	if len(a.queue) == 0 {
		return zero, false
	}
	t := a.queue[0]
	a.queue[0] = zero
	a.queue = a.queue[1:]
	return t, true
}

// QueueSize returns the number of queued signals.
func (a *QueuedAdapter[T]) QueueSize() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.queue)
}

// Clear drops every queued signal.
func (a *QueuedAdapter[T]) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.queue = nil
}

// All returns a consuming sequence: each step dequeues the signal it yields.
// Signals received while ranging are yielded too.
func (a *QueuedAdapter[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			t, ok := a.FirstAvailable()
			if !ok || !yield(t) {
				return
			}
		}
	}
}

// LastValueAdapter is a listener that retains only the most recent signal of
// type T.
type LastValueAdapter[T Signal] struct {
	mu   sync.Mutex
	last T
	set  bool
}

// NewLastValueAdapter creates an empty last-value adapter.
func NewLastValueAdapter[T Signal]() *LastValueAdapter[T] {
	return &LastValueAdapter[T]{}
}

// OnSignal overwrites the retained value when s is a T.
func (a *LastValueAdapter[T]) OnSignal(s Signal) {
	t, ok := s.(T)
	if !ok {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.last = t
	a.set = true
}

// LastReceived returns the retained signal without discarding it.
func (a *LastValueAdapter[T]) LastReceived() (T, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last, a.set
}

// Clear discards the retained signal.
func (a *LastValueAdapter[T]) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	var zero T
	a.last = zero
	a.set = false
}

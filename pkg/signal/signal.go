// Package signal provides the signal bus of the kernel.
//
// A signal is an immutable named event carrying opaque values. Signals are
// accepted by a Manager either from outside (OnSignal) or from the manager's
// own unit (FireSignal). What happens next depends on the manager's Policy:
//   - PolicyIgnoreAll: the signal is dropped
//   - PolicyFireSignal: every registered listener is notified, in
//     registration order
//   - PolicyStoreInQueue: the signal is appended to a FIFO drained with
//     PollSignal
//
// A Buffered manager applies those effects only when Sync is called, once per
// round. FireSignal additionally escalates the signal to the parent manager,
// which handles it under its own policy.
package signal

import "fmt"

// Signal is an event broadcast through a Manager. Implementations must be
// immutable; identity is the reference itself.
type Signal interface {
	// Source returns the originating unit.
	Source() any

	// Name returns the symbolic name of the signal.
	Name() string

	// Values returns the payload values in order.
	Values() []any
}

// Basic is the default Signal implementation. Signal subtypes embed *Basic
// and add typed accessors.
type Basic struct {
	source any
	name   string
	values []any
}

// New creates a signal. The values slice is copied.
func New(source any, name string, values ...any) *Basic {
	return &Basic{
		source: source,
		name:   name,
		values: append([]any(nil), values...),
	}
}

func (b *Basic) Source() any  { return b.source }
func (b *Basic) Name() string { return b.name }

// Values returns a copy of the payload.
func (b *Basic) Values() []any {
	return append([]any(nil), b.values...)
}

// Value returns the i-th payload value, or nil when out of range.
func (b *Basic) Value(i int) any {
	if i < 0 || i >= len(b.values) {
		return nil
	}
	return b.values[i]
}

func (b *Basic) String() string {
	return fmt.Sprintf("Signal{name=%s, source=%v, values=%v}", b.name, b.source, b.values)
}

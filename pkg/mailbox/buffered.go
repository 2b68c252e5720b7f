package mailbox

import "sync"

// Buffered is a mailbox whose Add stages messages in a side buffer. Reads
// only ever observe the visible store; SynchronizeMessages publishes the
// buffer.
type Buffered struct {
	*Ordered

	// bufMu is always acquired before the store lock.
	bufMu  sync.Mutex
	buffer []*Message
}

// NewBuffered creates an empty buffered mailbox.
func NewBuffered(opts ...Option) *Buffered {
	return &Buffered{
		Ordered: newOrdered(variantBuffered, buildOptions(opts)),
	}
}

func (b *Buffered) ensureAttached() {
	b.Ordered.lock()
	b.Ordered.mu.Unlock()
}

// Add stages m. It becomes visible at the next SynchronizeMessages.
func (b *Buffered) Add(m *Message) bool {
	if m == nil {
		return false
	}
	b.bufMu.Lock()
	defer b.bufMu.Unlock()

	b.ensureAttached()
	b.buffer = append(b.buffer, m)
	b.opts.metrics.RecordMessageAdded(b.variant)
	return true
}

// SynchronizeMessages moves every staged message into the visible store, in
// staging order, and empties the buffer. Readers see either none or all of
// the staged messages.
func (b *Buffered) SynchronizeMessages() {
	b.bufMu.Lock()
	defer b.bufMu.Unlock()

	moved := b.Ordered.insertAll(b.buffer)
	b.buffer = nil
	if moved > 0 {
		b.opts.metrics.RecordMailboxSynchronized(b.variant, moved)
		b.opts.log.Debug("staged messages published", "count", moved)
	}
}

// IsBufferEmpty reports whether nothing is staged.
func (b *Buffered) IsBufferEmpty() bool {
	return b.BufferSize() == 0
}

// BufferSize returns the number of staged messages.
func (b *Buffered) BufferSize() int {
	b.bufMu.Lock()
	defer b.bufMu.Unlock()

	b.ensureAttached()
	return len(b.buffer)
}

// ClearBuffer discards the staged messages without publishing them.
func (b *Buffered) ClearBuffer() {
	b.bufMu.Lock()
	defer b.bufMu.Unlock()

	b.ensureAttached()
	b.buffer = nil
}

// Synchronize merges a snapshot of other into the visible store.
func (b *Buffered) Synchronize(other Mailbox) {
	if other == Mailbox(b) {
		return
	}
	b.Ordered.Synchronize(other)
}

// Detach drops both the buffer and the visible store.
func (b *Buffered) Detach() {
	b.bufMu.Lock()
	defer b.bufMu.Unlock()

	b.buffer = nil
	b.Ordered.Detach()
}

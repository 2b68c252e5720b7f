package mailbox

import (
	"cmp"
	"slices"
	"sort"
	"sync"
)

// entry is a stored message stamped with its insertion sequence. The pair
// (ordering, seq) is the total order of the store.
type entry struct {
	msg *Message
	seq uint64
}

// Ordered is a mailbox whose messages are visible as soon as they are added.
type Ordered struct {
	mu       sync.Mutex
	entries  []entry
	seq      uint64
	detached bool

	variant string
	opts    *options
}

// NewOrdered creates an empty mailbox.
func NewOrdered(opts ...Option) *Ordered {
	return newOrdered(variantOrdered, buildOptions(opts))
}

func newOrdered(variant string, o *options) *Ordered {
	return &Ordered{
		variant: variant,
		opts:    o,
	}
}

func (o *Ordered) compare(a, b entry) int {
	if c := o.opts.ordering(a.msg, b.msg); c != 0 {
		return c
	}
	return cmp.Compare(a.seq, b.seq)
}

// successorLocked returns the index of the first entry strictly after e.
func (o *Ordered) successorLocked(e entry) int {
	return sort.Search(len(o.entries), func(i int) bool {
		return o.compare(o.entries[i], e) > 0
	})
}

func (o *Ordered) insertLocked(m *Message) {
	e := entry{msg: m, seq: o.seq}
	o.seq++
	i := o.successorLocked(e)
	o.entries = slices.Insert(o.entries, i, e)
}

func (o *Ordered) indexOfLocked(m *Message) int {
	return slices.IndexFunc(o.entries, func(e entry) bool {
		return e.msg == m
	})
}

func (o *Ordered) indexMatchLocked(sel Selector) int {
	return slices.IndexFunc(o.entries, func(e entry) bool {
		return sel(e.msg)
	})
}

func (o *Ordered) removeLocked(i int) *Message {
	m := o.entries[i].msg
	o.entries = slices.Delete(o.entries, i, i+1)
	return m
}

// lock acquires the store lock, panicking with a *DetachedError (and the lock
// released) when the mailbox has been detached.
func (o *Ordered) lock() {
	o.mu.Lock()
	if o.detached {
		o.mu.Unlock()
		panic(&DetachedError{Name: o.opts.name})
	}
}

// insertAll inserts msgs in order within a single critical section.
func (o *Ordered) insertAll(msgs []*Message) int {
	o.lock()
	defer o.mu.Unlock()

	n := 0
	for _, m := range msgs {
		if m == nil {
			continue
		}
		o.insertLocked(m)
		n++
	}
	return n
}

// Add inserts m according to the ordering. A nil message is rejected.
func (o *Ordered) Add(m *Message) bool {
	if m == nil {
		return false
	}
	o.lock()
	o.insertLocked(m)
	o.mu.Unlock()

	o.opts.metrics.RecordMessageAdded(o.variant)
	return true
}

// Remove removes m and reports whether it was stored.
func (o *Ordered) Remove(m *Message) bool {
	o.lock()
	i := o.indexOfLocked(m)
	if i >= 0 {
		o.removeLocked(i)
	}
	o.mu.Unlock()

	if i < 0 {
		return false
	}
	o.opts.metrics.RecordMessagesRemoved(o.variant, 1)
	return true
}

// RemoveAt removes and returns the message at index i.
func (o *Ordered) RemoveAt(i int) (*Message, error) {
	o.lock()
	if i < 0 || i >= len(o.entries) {
		size := len(o.entries)
		o.mu.Unlock()
		return nil, &OutOfRangeError{Index: i, Size: size}
	}
	m := o.removeLocked(i)
	o.mu.Unlock()

	o.opts.metrics.RecordMessagesRemoved(o.variant, 1)
	return m, nil
}

// RemoveFirst removes and returns the first message.
func (o *Ordered) RemoveFirst() (*Message, bool) {
	o.lock()
	if len(o.entries) == 0 {
		o.mu.Unlock()
		return nil, false
	}
	m := o.removeLocked(0)
	o.mu.Unlock()

	o.opts.metrics.RecordMessagesRemoved(o.variant, 1)
	return m, true
}

// RemoveFirstMatch removes and returns the first message matching sel.
func (o *Ordered) RemoveFirstMatch(sel Selector) (*Message, bool) {
	o.lock()
	i := o.indexMatchLocked(sel)
	if i < 0 {
		o.mu.Unlock()
		return nil, false
	}
	m := o.removeLocked(i)
	o.mu.Unlock()

	o.opts.metrics.RecordMessagesRemoved(o.variant, 1)
	return m, true
}

// RemoveAll removes every message matching sel.
func (o *Ordered) RemoveAll(sel Selector) bool {
	o.lock()
	before := len(o.entries)
	o.entries = slices.DeleteFunc(o.entries, func(e entry) bool {
		return sel(e.msg)
	})
	removed := before - len(o.entries)
	o.mu.Unlock()

	if removed == 0 {
		return false
	}
	o.opts.metrics.RecordMessagesRemoved(o.variant, removed)
	return true
}

// First returns the first message.
func (o *Ordered) First() (*Message, bool) {
	o.lock()
	defer o.mu.Unlock()

	if len(o.entries) == 0 {
		return nil, false
	}
	return o.entries[0].msg, true
}

// FirstMatch returns the first message matching sel.
func (o *Ordered) FirstMatch(sel Selector) (*Message, bool) {
	o.lock()
	defer o.mu.Unlock()

	i := o.indexMatchLocked(sel)
	if i < 0 {
		return nil, false
	}
	return o.entries[i].msg, true
}

// Get returns the message at index i.
func (o *Ordered) Get(i int) (*Message, error) {
	o.lock()
	defer o.mu.Unlock()

	if i < 0 || i >= len(o.entries) {
		return nil, &OutOfRangeError{Index: i, Size: len(o.entries)}
	}
	return o.entries[i].msg, nil
}

// Contains reports whether m is stored.
func (o *Ordered) Contains(m *Message) bool {
	o.lock()
	defer o.mu.Unlock()
	return o.indexOfLocked(m) >= 0
}

// ContainsMatch reports whether any message matches sel.
func (o *Ordered) ContainsMatch(sel Selector) bool {
	o.lock()
	defer o.mu.Unlock()
	return o.indexMatchLocked(sel) >= 0
}

// Size returns the number of visible messages.
func (o *Ordered) Size() int {
	o.lock()
	defer o.mu.Unlock()
	return len(o.entries)
}

// IsEmpty reports whether no message is visible.
func (o *Ordered) IsEmpty() bool {
	return o.Size() == 0
}

// Clear removes every message.
func (o *Ordered) Clear() {
	o.lock()
	removed := len(o.entries)
	o.entries = nil
	o.mu.Unlock()

	if removed > 0 {
		o.opts.metrics.RecordMessagesRemoved(o.variant, removed)
	}
}

// Iterator returns a cursor over every message.
func (o *Ordered) Iterator(consuming bool) *Cursor {
	return newCursor(o, nil, consuming)
}

// IteratorMatch returns a cursor over the messages matching sel.
func (o *Ordered) IteratorMatch(sel Selector, consuming bool) *Cursor {
	return newCursor(o, sel, consuming)
}

// step finds the first entry after the given one (or the first entry when
// after is nil) that matches sel, removing it when consuming is set.
func (o *Ordered) step(after *entry, sel Selector, consuming bool) (entry, bool) {
	o.lock()
	start := 0
	if after != nil {
		start = o.successorLocked(*after)
	}
	for i := start; i < len(o.entries); i++ {
		e := o.entries[i]
		if sel != nil && !sel(e.msg) {
			continue
		}
		if consuming {
			o.removeLocked(i)
		}
		o.mu.Unlock()

		if consuming {
			o.opts.metrics.RecordMessagesRemoved(o.variant, 1)
		}
		return e, true
	}
	o.mu.Unlock()
	return entry{}, false
}

// Synchronize merges a snapshot of other into the visible store.
func (o *Ordered) Synchronize(other Mailbox) {
	if other == nil || other == Mailbox(o) {
		return
	}
	moved := o.insertAll(other.Messages())
	o.opts.metrics.RecordMailboxSynchronized(o.variant, moved)
	o.opts.log.Debug("mailbox synchronized", "moved", moved)
}

// Messages returns an ordered snapshot of the visible messages.
func (o *Ordered) Messages() []*Message {
	o.lock()
	defer o.mu.Unlock()

	out := make([]*Message, len(o.entries))
	for i, e := range o.entries {
		out[i] = e.msg
	}
	return out
}

// Ordering returns the order in force.
func (o *Ordered) Ordering() Ordering {
	o.lock()
	defer o.mu.Unlock()
	return o.opts.ordering
}

// Detach drops every message and marks the mailbox as detached.
func (o *Ordered) Detach() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.detached {
		return
	}
	o.detached = true
	o.entries = nil
	o.opts.log.Debug("mailbox detached")
}

// Detached reports whether Detach has been called.
func (o *Ordered) Detached() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.detached
}

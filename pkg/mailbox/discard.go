package mailbox

import (
	"sync/atomic"
	"time"
)

// DiscardConfig holds the artificial call costs of a Discard mailbox.
type DiscardConfig struct {
	// InsertDelay is slept on every Add.
	InsertDelay time.Duration

	// RemoveDelay is slept on every removing operation.
	RemoveDelay time.Duration

	// ReadDelay is slept on every read.
	ReadDelay time.Duration
}

// Discard is a null-object mailbox. Mutations report success and change
// nothing, reads report empty, and no storage is ever allocated.
type Discard struct {
	cfg      DiscardConfig
	opts     *options
	detached atomic.Bool
}

// NewDiscard creates a discard mailbox with the given delays.
func NewDiscard(cfg DiscardConfig, opts ...Option) *Discard {
	return &Discard{
		cfg:  cfg,
		opts: buildOptions(opts),
	}
}

func (d *Discard) pause(delay time.Duration) {
	if d.detached.Load() {
		panic(&DetachedError{Name: d.opts.name})
	}
	if delay > 0 {
		time.Sleep(delay)
	}
}

func (d *Discard) insert() {
	d.pause(d.cfg.InsertDelay)
	d.opts.metrics.RecordMessageAdded(variantDiscard)
}

func (d *Discard) remove() { d.pause(d.cfg.RemoveDelay) }
func (d *Discard) read()   { d.pause(d.cfg.ReadDelay) }

// Add reports success without storing m.
func (d *Discard) Add(*Message) bool {
	d.insert()
	return true
}

// Remove reports success without doing anything.
func (d *Discard) Remove(*Message) bool {
	d.remove()
	return true
}

// RemoveAt always reports an out-of-range index.
func (d *Discard) RemoveAt(i int) (*Message, error) {
	d.remove()
	return nil, &OutOfRangeError{Index: i, Size: 0}
}

func (d *Discard) RemoveFirst() (*Message, bool) {
	d.remove()
	return nil, false
}

func (d *Discard) RemoveFirstMatch(Selector) (*Message, bool) {
	d.remove()
	return nil, false
}

// RemoveAll reports success without doing anything.
func (d *Discard) RemoveAll(Selector) bool {
	d.remove()
	return true
}

// Clear does nothing.
func (d *Discard) Clear() {
	d.remove()
}

func (d *Discard) First() (*Message, bool) {
	d.read()
	return nil, false
}

func (d *Discard) FirstMatch(Selector) (*Message, bool) {
	d.read()
	return nil, false
}

// Get always reports an out-of-range index.
func (d *Discard) Get(i int) (*Message, error) {
	d.read()
	return nil, &OutOfRangeError{Index: i, Size: 0}
}

func (d *Discard) Contains(*Message) bool {
	d.read()
	return false
}

func (d *Discard) ContainsMatch(Selector) bool {
	d.read()
	return false
}

func (d *Discard) Size() int {
	d.read()
	return 0
}

func (d *Discard) IsEmpty() bool {
	d.read()
	return true
}

// Iterator returns an exhausted cursor.
func (d *Discard) Iterator(bool) *Cursor {
	d.read()
	return newCursor(nil, nil, false)
}

// IteratorMatch returns an exhausted cursor.
func (d *Discard) IteratorMatch(Selector, bool) *Cursor {
	d.read()
	return newCursor(nil, nil, false)
}

// Synchronize discards whatever other holds.
func (d *Discard) Synchronize(Mailbox) {
	d.insert()
}

func (d *Discard) Messages() []*Message {
	d.read()
	return nil
}

func (d *Discard) Ordering() Ordering {
	d.pause(0)
	return d.opts.ordering
}

// Detach marks the mailbox as detached.
func (d *Discard) Detach() {
	d.detached.Store(true)
}

package mailbox

// Mailbox is the message store of one behavioral unit.
//
// The First-named operations report an empty result as (nil, false). Index
// based operations return an *OutOfRangeError for invalid indices. After
// Detach every operation panics with a *DetachedError.
type Mailbox interface {
	// Add inserts a message according to the ordering and reports whether
	// the mailbox accepted it.
	Add(m *Message) bool

	// Remove removes the given message and reports whether it was present.
	Remove(m *Message) bool

	// RemoveAt removes and returns the message at index i.
	RemoveAt(i int) (*Message, error)

	// RemoveFirst removes and returns the first message.
	RemoveFirst() (*Message, bool)

	// RemoveFirstMatch removes and returns the first message matching sel.
	RemoveFirstMatch(sel Selector) (*Message, bool)

	// RemoveAll removes every message matching sel and reports whether
	// anything was removed.
	RemoveAll(sel Selector) bool

	// First returns the first message without removing it.
	First() (*Message, bool)

	// FirstMatch returns the first message matching sel without removing it.
	FirstMatch(sel Selector) (*Message, bool)

	// Get returns the message at index i.
	Get(i int) (*Message, error)

	// Contains reports whether the given message is stored.
	Contains(m *Message) bool

	// ContainsMatch reports whether any stored message matches sel.
	ContainsMatch(sel Selector) bool

	Size() int
	IsEmpty() bool
	Clear()

	// Iterator returns a one-shot cursor over the messages in order. When
	// consuming is true each yielded message is removed as it is produced.
	Iterator(consuming bool) *Cursor

	// IteratorMatch is Iterator restricted to messages matching sel.
	IteratorMatch(sel Selector, consuming bool) *Cursor

	// Synchronize merges every message currently in other into this mailbox.
	Synchronize(other Mailbox)

	// Messages returns an ordered snapshot of the stored messages.
	Messages() []*Message

	// Ordering returns the order in force.
	Ordering() Ordering

	// Detach marks the owning unit as finalized.
	Detach()
}

var (
	_ Mailbox = (*Ordered)(nil)
	_ Mailbox = (*Buffered)(nil)
	_ Mailbox = (*Discard)(nil)
)

const (
	variantOrdered  = "ordered"
	variantBuffered = "buffered"
	variantDiscard  = "discard"
)

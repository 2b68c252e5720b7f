package mailbox

// Ordering is a total order over messages. It returns a negative number when a
// sorts before b, a positive number when a sorts after b and zero when they are
// equivalent. Equivalent messages keep their relative insertion order.
type Ordering func(a, b *Message) int

// Selector is a side-effect free predicate used to filter mailbox queries.
type Selector func(m *Message) bool

// FirstArrived orders messages by arrival: every pair compares equal, so the
// stable insertion order decides.
func FirstArrived(_, _ *Message) int {
	return 0
}

// ByCreationTime orders messages by their CreatedAt timestamp, oldest first.
func ByCreationTime(a, b *Message) int {
	return a.CreatedAt.Compare(b.CreatedAt)
}

// FromSender selects messages sent by the given address.
func FromSender(sender string) Selector {
	return func(m *Message) bool {
		return m.Sender == sender
	}
}

// ContentIs selects messages whose content has the dynamic type T.
func ContentIs[T any]() Selector {
	return func(m *Message) bool {
		_, ok := m.Content.(T)
		return ok
	}
}

// Not inverts a selector.
func Not(sel Selector) Selector {
	return func(m *Message) bool {
		return !sel(m)
	}
}

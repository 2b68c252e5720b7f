package mailbox

import "iter"

// Cursor is a lazy, one-shot walk over a mailbox in ordering order. Each
// call to Next locks the mailbox once, locates the successor of the last
// yielded message, removes it if the cursor is consuming, and unlocks.
//
// Messages inserted ahead of the cursor position while it is open are
// picked up; messages inserted behind it are not.
type Cursor struct {
	box       *Ordered
	sel       Selector
	consuming bool

	last *entry
	done bool
}

func newCursor(box *Ordered, sel Selector, consuming bool) *Cursor {
	return &Cursor{
		box:       box,
		sel:       sel,
		consuming: consuming,
		done:      box == nil,
	}
}

// Consuming reports whether the cursor removes what it yields.
func (c *Cursor) Consuming() bool {
	return c.consuming
}

// Next returns the next message, or (nil, false) once the walk is over. A
// finished cursor stays finished.
func (c *Cursor) Next() (*Message, bool) {
	if c.done {
		return nil, false
	}
	e, ok := c.box.step(c.last, c.sel, c.consuming)
	if !ok {
		c.done = true
		c.last = nil
		return nil, false
	}
	c.last = &e
	return e.msg, true
}

// All adapts the cursor to a range-over-func sequence. Breaking out of the
// loop leaves the remaining messages untouched.
func (c *Cursor) All() iter.Seq[*Message] {
	return func(yield func(*Message) bool) {
		for {
			m, ok := c.Next()
			if !ok || !yield(m) {
				return
			}
		}
	}
}

package mailbox

import (
	"errors"
	"fmt"
)

// OutOfRangeError is returned by index based operations on an invalid index.
type OutOfRangeError struct {
	Index int
	Size  int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("mailbox index %d out of range (size: %d)", e.Index, e.Size)
}

// DetachedError is the panic value raised when a mailbox is used after its
// owning unit has been finalized.
type DetachedError struct {
	Name string
}

func (e *DetachedError) Error() string {
	return fmt.Sprintf("mailbox %s is detached from its owner", e.Name)
}

// IsOutOfRangeError returns true if err is or wraps an OutOfRangeError.
func IsOutOfRangeError(err error) bool {
	var target *OutOfRangeError
	return errors.As(err, &target)
}

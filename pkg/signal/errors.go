package signal

import (
	"errors"
	"fmt"
)

// ErrBridgeClosed is returned when starting a bridge that has been closed.
var ErrBridgeClosed = errors.New("signal bridge is closed")

// InvalidPolicyError is returned by SetPolicy and ParsePolicy for values
// outside the known policies.
type InvalidPolicyError struct {
	Value any
}

func (e *InvalidPolicyError) Error() string {
	return fmt.Sprintf("invalid signal policy: %v", e.Value)
}

// DetachedError is the panic value raised when a manager is used after its
// owning unit has been finalized.
type DetachedError struct {
	Name string
}

func (e *DetachedError) Error() string {
	return fmt.Sprintf("signal manager %s is detached from its owner", e.Name)
}

// IsInvalidPolicyError returns true if err is or wraps an InvalidPolicyError.
func IsInvalidPolicyError(err error) bool {
	var target *InvalidPolicyError
	return errors.As(err, &target)
}

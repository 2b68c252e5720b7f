package kernel

import (
	"errors"
	"fmt"
)

// NotRunningError is returned when an operation requires a running kernel.
type NotRunningError struct {
	State State
}

func (e *NotRunningError) Error() string {
	return fmt.Sprintf("kernel is not running (state: %s)", e.State)
}

// AlreadyRunningError is returned by Start on a running kernel.
type AlreadyRunningError struct{}

func (e *AlreadyRunningError) Error() string {
	return "kernel is already running"
}

// IsNotRunningError reports whether err is a NotRunningError.
func IsNotRunningError(err error) bool {
	var target *NotRunningError
	return errors.As(err, &target)
}

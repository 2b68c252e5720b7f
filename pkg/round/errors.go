package round

import (
	"errors"
	"fmt"
)

// DuplicateSyncerError is returned when registering a name twice.
type DuplicateSyncerError struct {
	Barrier string
	Name    string
}

func (e *DuplicateSyncerError) Error() string {
	return fmt.Sprintf("syncer %q already registered on barrier %s", e.Name, e.Barrier)
}

// SyncError reports a syncer that panicked during a flush.
type SyncError struct {
	Barrier string
	Name    string
	Round   uint64
	Panic   any
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("syncer %q failed in round %d of barrier %s: %v", e.Name, e.Round, e.Barrier, e.Panic)
}

// IsDuplicateSyncerError returns true if err is or wraps a DuplicateSyncerError.
func IsDuplicateSyncerError(err error) bool {
	var target *DuplicateSyncerError
	return errors.As(err, &target)
}

// IsSyncError returns true if err is or wraps a SyncError.
func IsSyncError(err error) bool {
	var target *SyncError
	return errors.As(err, &target)
}

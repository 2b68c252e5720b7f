// Package round makes buffered mailboxes and signal managers flush together.
//
// Under an influence/reaction execution model every unit acts against the
// state published at the end of the previous round. A Barrier collects the
// buffered instances of a kernel and publishes all of them in one Flush, which
// the external scheduler calls once per round after every unit has run.
package round

import (
	"github.com/goclaw/kernelbus/pkg/mailbox"
)

// Syncer publishes staged state.
type Syncer interface {
	Sync()
}

// SyncFunc adapts a function to the Syncer interface.
type SyncFunc func()

// Sync calls f.
func (f SyncFunc) Sync() { f() }

// Mailbox adapts a buffered mailbox: its staged messages become visible on
// Sync. A buffered signal manager is a Syncer as is.
func Mailbox(box *mailbox.Buffered) Syncer {
	return SyncFunc(box.SynchronizeMessages)
}

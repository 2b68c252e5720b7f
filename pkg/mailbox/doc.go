// Package mailbox provides the per-unit message stores of the kernel.
//
// A mailbox keeps the messages addressed to one behavioral unit in the order
// defined by its Ordering. Three variants share the Mailbox interface:
//   - Ordered: messages become visible as soon as they are added
//   - Buffered: added messages are staged until SynchronizeMessages is called,
//     which lets a round run every unit against a stable snapshot
//   - Discard: a null object that stores nothing, optionally slowed down by
//     fixed delays for throughput experiments
//
// All variants are safe for concurrent producers racing a single consumer.
// Locks are held for one structural change at a time; a Cursor takes the lock
// once per step, never for a whole iteration.
//
// Once a mailbox has been detached from its owner, any further call panics
// with a *DetachedError.
package mailbox

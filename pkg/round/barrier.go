package round

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const spanFlush = "round.flush"

type member struct {
	name   string
	syncer Syncer
}

// Barrier flushes registered syncers once per round, in registration order.
type Barrier struct {
	mu      sync.Mutex
	members []member
	round   uint64
	flushMu sync.Mutex

	opts *options
}

// NewBarrier creates an empty barrier.
func NewBarrier(opts ...Option) *Barrier {
	return &Barrier{opts: buildOptions(opts)}
}

// Register adds s under name. Names are unique per barrier.
func (b *Barrier) Register(name string, s Syncer) error {
	if s == nil {
		return fmt.Errorf("syncer %q cannot be nil", name)
	}

	b.mu.Lock()
	if slices.ContainsFunc(b.members, func(m member) bool { return m.name == name }) {
		b.mu.Unlock()
		return &DuplicateSyncerError{Barrier: b.opts.name, Name: name}
	}
	b.members = append(b.members, member{name: name, syncer: s})
	n := len(b.members)
	b.mu.Unlock()

	b.opts.metrics.SetRoundSyncers(b.opts.name, n)
	return nil
}

// Unregister removes the syncer registered under name, typically when its
// unit is finalized.
func (b *Barrier) Unregister(name string) bool {
	b.mu.Lock()
	i := slices.IndexFunc(b.members, func(m member) bool { return m.name == name })
	if i >= 0 {
		b.members = slices.Delete(b.members, i, i+1)
	}
	n := len(b.members)
	b.mu.Unlock()

	if i < 0 {
		return false
	}
	b.opts.metrics.SetRoundSyncers(b.opts.name, n)
	return true
}

// Len returns the number of registered syncers.
func (b *Barrier) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.members)
}

// Round returns the number of completed flushes.
func (b *Barrier) Round() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.round
}

// Flush syncs every registered syncer once. A cancelled ctx prevents the
// flush from starting; once started it always runs to completion so that a
// round is never half published. A panicking syncer is recorded as a
// *SyncError and the others still run. Flushes are serialized.
func (b *Barrier) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	b.mu.Lock()
	members := slices.Clone(b.members)
	current := b.round + 1
	b.mu.Unlock()

	ctx, span := b.opts.tracer.Start(ctx, spanFlush,
		trace.WithAttributes(
			attribute.String("barrier", b.opts.name),
			attribute.Int64("round", int64(current)),
			attribute.Int("syncers", len(members)),
		),
	)
	defer span.End()

	start := time.Now()
	var errs []error
	for _, m := range members {
		if err := b.sync(current, m); err != nil {
			errs = append(errs, err)
			span.RecordError(err)
		}
	}
	elapsed := time.Since(start)

	b.mu.Lock()
	b.round = current
	b.mu.Unlock()

	b.opts.metrics.RecordRoundFlush(ctx, b.opts.name, len(members), elapsed)
	err := errors.Join(errs...)
	if err != nil {
		span.SetStatus(codes.Error, "syncer failed")
		b.opts.log.ErrorContext(ctx, "round flushed with failures", "round", current, "failures", len(errs))
		return err
	}
	b.opts.log.DebugContext(ctx, "round flushed", "round", current, "syncers", len(members), "elapsed", elapsed)
	return nil
}

func (b *Barrier) sync(current uint64, m member) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.opts.log.Error("syncer panicked", "syncer", m.name, "panic", r, "stack", string(debug.Stack()))
			b.opts.metrics.RecordRoundSyncFailure(b.opts.name, m.name)
			err = &SyncError{Barrier: b.opts.name, Name: m.name, Round: current, Panic: r}
		}
	}()
	m.syncer.Sync()
	return nil
}

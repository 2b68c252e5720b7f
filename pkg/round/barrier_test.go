package round

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/goclaw/kernelbus/pkg/mailbox"
	"github.com/goclaw/kernelbus/pkg/signal"
)

type fakeMetrics struct {
	mu       sync.Mutex
	flushes  int
	failures []string
	syncers  int
}

func (f *fakeMetrics) RecordRoundFlush(context.Context, string, int, time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
}

func (f *fakeMetrics) RecordRoundSyncFailure(_, syncer string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, syncer)
}

func (f *fakeMetrics) SetRoundSyncers(_ string, count int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncers = count
}

func TestBarrier_FlushRunsSyncersInRegistrationOrder(t *testing.T) {
	b := NewBarrier()
	var order []string
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, b.Register(name, SyncFunc(func() { order = append(order, name) })))
	}

	require.NoError(t, b.Flush(context.Background()))
	require.NoError(t, b.Flush(context.Background()))

	assert.Equal(t, []string{"c", "a", "b", "c", "a", "b"}, order)
	assert.Equal(t, uint64(2), b.Round())
}

func TestBarrier_Register(t *testing.T) {
	metrics := &fakeMetrics{}
	b := NewBarrier(WithName("kernel-1"), WithMetrics(metrics))

	require.NoError(t, b.Register("agent-1", SyncFunc(func() {})))
	err := b.Register("agent-1", SyncFunc(func() {}))
	require.Error(t, err)
	assert.True(t, IsDuplicateSyncerError(err))
	assert.Contains(t, err.Error(), "kernel-1")

	assert.Error(t, b.Register("nil", nil))
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, 1, metrics.syncers)

	assert.True(t, b.Unregister("agent-1"))
	assert.False(t, b.Unregister("agent-1"))
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 0, metrics.syncers)
}

func TestBarrier_CancelledContextSkipsFlush(t *testing.T) {
	b := NewBarrier()
	called := false
	require.NoError(t, b.Register("s", SyncFunc(func() { called = true })))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, b.Flush(ctx), context.Canceled)
	assert.False(t, called)
	assert.Equal(t, uint64(0), b.Round())
}

func TestBarrier_PanickingSyncerDoesNotStopFlush(t *testing.T) {
	metrics := &fakeMetrics{}
	b := NewBarrier(WithMetrics(metrics))

	gone := mailbox.NewBuffered(mailbox.WithName("gone"))
	gone.Detach()
	alive := mailbox.NewBuffered()
	alive.Add(mailbox.NewMessage("a", "b", "hello"))

	require.NoError(t, b.Register("gone", Mailbox(gone)))
	require.NoError(t, b.Register("alive", Mailbox(alive)))

	err := b.Flush(context.Background())
	require.Error(t, err)
	assert.True(t, IsSyncError(err))
	assert.Contains(t, err.Error(), `syncer "gone" failed in round 1`)

	assert.Equal(t, 1, alive.Size())
	assert.Equal(t, []string{"gone"}, metrics.failures)
	assert.Equal(t, 1, metrics.flushes)
	assert.Equal(t, uint64(1), b.Round())
}

func TestBarrier_FlushSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	b := NewBarrier(WithName("kernel-7"), WithTracer(provider.Tracer("test")))
	require.NoError(t, b.Register("ok", SyncFunc(func() {})))
	require.NoError(t, b.Register("bad", SyncFunc(func() { panic("boom") })))

	_ = b.Flush(context.Background())

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "round.flush", span.Name())
	assert.Contains(t, span.Attributes(), attribute.String("barrier", "kernel-7"))
	assert.Contains(t, span.Attributes(), attribute.Int64("round", 1))
	assert.Equal(t, codes.Error, span.Status().Code)
}

// TestBarrier_ReactionRound runs agents that each message every other agent
// and raise a signal. Nothing sent during a round is observable before the
// flush, whatever the execution order.
func TestBarrier_ReactionRound(t *testing.T) {
	const agents = 3
	b := NewBarrier()

	inboxes := make([]*mailbox.Buffered, agents)
	managers := make([]*signal.Buffered, agents)
	alarms := make([]*signal.QueuedAdapter[signal.Signal], agents)
	for i := range agents {
		inboxes[i] = mailbox.NewBuffered(mailbox.WithName(fmt.Sprintf("agent-%d", i)))
		managers[i] = signal.NewBuffered(signal.WithName(fmt.Sprintf("agent-%d", i)))
		alarms[i] = signal.NewQueuedAdapter[signal.Signal]()
		managers[i].AddSignalListener(alarms[i])

		require.NoError(t, b.Register(fmt.Sprintf("inbox-%d", i), Mailbox(inboxes[i])))
		require.NoError(t, b.Register(fmt.Sprintf("signals-%d", i), managers[i]))
	}

	act := func(i int) {
		// Every agent sees the previous round only.
		assert.True(t, inboxes[i].IsEmpty(), "agent %d saw a message sent this round", i)
		assert.Equal(t, 0, alarms[i].QueueSize(), "agent %d saw a signal raised this round", i)
		for j := range agents {
			if j != i {
				inboxes[j].Add(mailbox.NewMessage(fmt.Sprint(i), fmt.Sprint(j), "influence"))
				managers[j].OnSignal(signal.New(i, "nudge"))
			}
		}
	}

	for _, i := range []int{2, 0, 1} {
		act(i)
	}
	require.NoError(t, b.Flush(context.Background()))

	for i := range agents {
		assert.Equal(t, agents-1, inboxes[i].Size())
		assert.True(t, inboxes[i].IsBufferEmpty())
		assert.Equal(t, agents-1, alarms[i].QueueSize())
	}
}

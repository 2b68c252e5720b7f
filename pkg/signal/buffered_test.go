package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffered_FireSignalWaitsForSync(t *testing.T) {
	m := NewBuffered()
	l := newRecorder("l", nil)
	m.AddSignalListener(l)

	a := New("unit", "a")
	b := New("unit", "b")
	m.OnSignal(a)
	m.FireSignal(b)

	assert.Empty(t, l.received())
	assert.Equal(t, 2, m.BufferSize())
	assert.False(t, m.IsBufferEmpty())

	m.Sync()

	assert.Equal(t, []Signal{a, b}, l.received())
	assert.True(t, m.IsBufferEmpty())

	m.Sync()
	assert.Len(t, l.received(), 2)
}

func TestBuffered_StoreInQueueWaitsForSync(t *testing.T) {
	m := NewBuffered(WithPolicy(PolicyStoreInQueue))
	l := newRecorder("l", nil)
	m.AddSignalListener(l)

	s := New("unit", "a")
	m.OnSignal(s)
	assert.False(t, m.HasSignal())

	m.Sync()

	got, ok := m.PollSignal()
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Empty(t, l.received())
}

func TestBuffered_IgnoreAllIsNotStaged(t *testing.T) {
	metrics := newCountingMetrics()
	m := NewBuffered(WithPolicy(PolicyIgnoreAll), WithMetrics(metrics))

	m.OnSignal(New("unit", "a"))

	assert.True(t, m.IsBufferEmpty())
	assert.Equal(t, 1, metrics.droppedCount("ignored"))
}

func TestBuffered_ReplayUsesPolicyAtAcceptance(t *testing.T) {
	m := NewBuffered()
	l := newRecorder("l", nil)
	m.AddSignalListener(l)

	fired := New("unit", "fired")
	m.OnSignal(fired)
	require.NoError(t, m.SetPolicy(PolicyStoreInQueue))
	queued := New("unit", "queued")
	m.OnSignal(queued)
	require.NoError(t, m.SetPolicy(PolicyIgnoreAll))

	m.Sync()

	assert.Equal(t, []Signal{fired}, l.received())
	got, ok := m.PollSignal()
	require.True(t, ok)
	assert.Same(t, queued, got)
}

func TestBuffered_ClearBuffer(t *testing.T) {
	m := NewBuffered()
	l := newRecorder("l", nil)
	m.AddSignalListener(l)

	m.OnSignal(New("unit", "a"))
	m.ClearBuffer()
	m.Sync()

	assert.Empty(t, l.received())
	assert.True(t, m.IsBufferEmpty())
}

func TestBuffered_EscalationIsImmediate(t *testing.T) {
	root := NewInstant()
	supervisor := newRecorder("supervisor", nil)
	root.AddSignalListener(supervisor)
	child := NewBuffered(WithParent(root))

	child.FireSignal(New("unit", "a"))

	assert.Len(t, supervisor.received(), 1)
	assert.Equal(t, 1, child.BufferSize())
}

func TestBuffered_BufferedParentDefersEscalatedSignal(t *testing.T) {
	root := NewBuffered()
	supervisor := newRecorder("supervisor", nil)
	root.AddSignalListener(supervisor)
	child := NewInstant(WithParent(root))

	child.FireSignal(New("unit", "a"))
	assert.Empty(t, supervisor.received())

	root.Sync()
	assert.Len(t, supervisor.received(), 1)
}

func TestBuffered_SignalsAcceptedDuringSyncWaitForNextRound(t *testing.T) {
	m := NewBuffered()
	echoed := false
	m.AddSignalListener(NewListener(func(s Signal) {
		if !echoed {
			echoed = true
			m.OnSignal(New("listener", "echo"))
		}
	}))
	l := newRecorder("l", nil)
	m.AddSignalListener(l)

	m.OnSignal(New("unit", "a"))
	m.Sync()

	require.Len(t, l.received(), 1)
	assert.Equal(t, 1, m.BufferSize())

	m.Sync()
	require.Len(t, l.received(), 2)
	assert.Equal(t, "echo", l.received()[1].Name())
}

func TestBuffered_SyncMetrics(t *testing.T) {
	metrics := newCountingMetrics()
	m := NewBuffered(WithMetrics(metrics))

	m.OnSignal(New("unit", "a"))
	m.OnSignal(New("unit", "b"))
	m.Sync()

	assert.Equal(t, 2, metrics.synced)
	assert.Equal(t, 2, metrics.accepted["buffered/external/fire_signal"])
}

func TestBuffered_DetachedUsePanics(t *testing.T) {
	m := NewBuffered(WithName("agent-1"))
	m.OnSignal(New("unit", "a"))
	m.Detach()

	assert.PanicsWithError(t, "signal manager agent-1 is detached from its owner", func() {
		m.Sync()
	})
	assert.Panics(t, func() { m.BufferSize() })
}

package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueuedAdapter_KeepsMatchingSignalsInOrder(t *testing.T) {
	m := NewInstant()
	alarms := NewQueuedAdapter[*alarm]()
	m.AddSignalListener(alarms)

	m.OnSignal(newAlarm(1))
	m.OnSignal(New("unit", "noise"))
	m.OnSignal(newAlarm(2))

	assert.Equal(t, 2, alarms.QueueSize())

	first, ok := alarms.FirstAvailable()
	require.True(t, ok)
	assert.Equal(t, 1, first.Level())

	second, ok := alarms.FirstAvailable()
	require.True(t, ok)
	assert.Equal(t, 2, second.Level())

	_, ok = alarms.FirstAvailable()
	assert.False(t, ok)
}

func TestQueuedAdapter_AllConsumes(t *testing.T) {
	all := NewQueuedAdapter[Signal]()
	for i := 0; i < 5; i++ {
		all.OnSignal(New("unit", "tick", i))
	}

	var seen []any
	for s := range all.All() {
		seen = append(seen, s.Values()[0])
		if len(seen) == 3 {
			break
		}
	}

	assert.Equal(t, []any{0, 1, 2}, seen)
	assert.Equal(t, 2, all.QueueSize())

	all.Clear()
	assert.Equal(t, 0, all.QueueSize())
}

func TestLastValueAdapter_RetainsMostRecent(t *testing.T) {
	m := NewInstant()
	last := NewLastValueAdapter[*alarm]()
	m.AddSignalListener(last)

	_, ok := last.LastReceived()
	assert.False(t, ok)

	s1 := newAlarm(1)
	s2 := newAlarm(2)
	m.FireSignal(s1)
	m.FireSignal(New("unit", "noise"))
	m.FireSignal(s2)

	got, ok := last.LastReceived()
	require.True(t, ok)
	assert.Same(t, s2, got)

	got, ok = last.LastReceived()
	require.True(t, ok)
	assert.Same(t, s2, got)

	last.Clear()
	got, ok = last.LastReceived()
	assert.False(t, ok)
	assert.Nil(t, got)
}

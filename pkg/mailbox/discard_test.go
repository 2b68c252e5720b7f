package mailbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDiscard_EveryReadIsEmpty(t *testing.T) {
	box := NewDiscard(DiscardConfig{})
	m := NewMessage("a", "r", nil)

	assert.True(t, box.Add(m))
	assert.True(t, box.Remove(m))
	assert.True(t, box.RemoveAll(FromSender("a")))
	box.Clear()
	box.Synchronize(NewOrdered())

	assert.Equal(t, 0, box.Size())
	assert.True(t, box.IsEmpty())
	assert.False(t, box.Contains(m))
	assert.False(t, box.ContainsMatch(FromSender("a")))
	assert.Nil(t, box.Messages())

	_, ok := box.First()
	assert.False(t, ok)
	_, ok = box.FirstMatch(FromSender("a"))
	assert.False(t, ok)
	_, ok = box.RemoveFirst()
	assert.False(t, ok)
	_, ok = box.RemoveFirstMatch(FromSender("a"))
	assert.False(t, ok)
	_, ok = box.Iterator(true).Next()
	assert.False(t, ok)
	_, ok = box.IteratorMatch(FromSender("a"), false).Next()
	assert.False(t, ok)

	_, err := box.Get(0)
	assert.True(t, IsOutOfRangeError(err))
	_, err = box.RemoveAt(0)
	assert.True(t, IsOutOfRangeError(err))
}

func TestDiscard_UnderLoad(t *testing.T) {
	box := NewDiscard(DiscardConfig{InsertDelay: time.Microsecond})

	start := time.Now()
	for i := 0; i < 1000; i++ {
		assert.True(t, box.Add(NewMessage("a", "r", i)))
		if box.Size() != 0 {
			t.Fatalf("size grew to %d after %d inserts", box.Size(), i+1)
		}
	}
	assert.GreaterOrEqual(t, time.Since(start), 1000*time.Microsecond)
}

func TestDiscard_OrderingDefaultsToFirstArrived(t *testing.T) {
	box := NewDiscard(DiscardConfig{})
	a := NewMessage("a", "r", nil)
	assert.Equal(t, 0, box.Ordering()(a, a))
}

func TestDiscard_Detach(t *testing.T) {
	box := NewDiscard(DiscardConfig{}, WithName("bench"))
	box.Detach()
	assert.Panics(t, func() { box.Add(NewMessage("a", "r", nil)) })
	assert.Panics(t, func() { box.Size() })
	assert.Panics(t, func() { box.Ordering() })
}

package bus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got int
	_, err := b.Subscribe("debris.collected", func(e Event) error {
		v, ok := Payload[int](e)
		require.True(t, ok)
		got = v
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent("debris.collected", "collector", 123)))
	assert.Equal(t, 123, got)
	require.NoError(t, b.Publish(NewEvent("debris.bounced", "collector", 7)))
	assert.Equal(t, 123, got, "other types are not delivered")
}

func TestDeliveryFollowsSubscriptionOrder(t *testing.T) {
	b := New()
	var order []int
	for i := range 8 {
		_, err := b.Subscribe("tick", func(Event) error {
			order = append(order, i)
			return nil
		})
		require.NoError(t, err)
	}
	require.NoError(t, b.Publish(NewEvent("tick", "test", nil)))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, order)
}

func TestHandlerErrorsAreJoined(t *testing.T) {
	b := New()
	errA, errB := errors.New("a"), errors.New("b")
	_, _ = b.Subscribe("x", func(Event) error { return errA })
	_, _ = b.Subscribe("x", func(Event) error { return nil })
	_, _ = b.Subscribe("x", func(Event) error { return errB })

	err := b.Publish(NewEvent("x", "src", nil))
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)

	err = b.PublishBatch(NewEvent("y", "src", nil), NewEvent("x", "src", nil))
	assert.ErrorIs(t, err, errA)
	assert.NoError(t, b.PublishBatch(NewEvent("y", "src", nil)))
}

func TestPublishBatchKeepsOrder(t *testing.T) {
	b := New()
	var seen []string
	record := func(e Event) error { seen = append(seen, e.Type()+":"+e.Source()); return nil }
	_, _ = b.Subscribe("a", record)
	_, _ = b.Subscribe("b", record)

	require.NoError(t, b.PublishBatch(
		NewEvent("a", "1", nil),
		NewEvent("b", "2", nil),
		NewEvent("a", "3", nil),
	))
	assert.Equal(t, []string{"a:1", "b:2", "a:3"}, seen)
}

func TestCancelStopsDelivery(t *testing.T) {
	b := New()
	calls := 0
	sub, err := b.Subscribe("x", func(Event) error { calls++; return nil })
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID())
	assert.Equal(t, "x", sub.EventType())

	_ = b.Publish(NewEvent("x", "src", nil))
	require.NoError(t, b.Unsubscribe(sub))
	require.NoError(t, sub.Cancel())
	_ = b.Publish(NewEvent("x", "src", nil))

	assert.Equal(t, 1, calls)
	assert.False(t, sub.IsActive())
	assert.NoError(t, b.Unsubscribe(nil))
}

func TestCancelDuringDelivery(t *testing.T) {
	b := New()
	var second Subscription
	calls := 0
	_, _ = b.Subscribe("x", func(Event) error { return second.Cancel() })
	second, _ = b.Subscribe("x", func(Event) error { calls++; return nil })

	require.NoError(t, b.Publish(NewEvent("x", "src", nil)))
	assert.Zero(t, calls, "cancelled before its turn")
}

func TestNilHandlerRejected(t *testing.T) {
	_, err := New().Subscribe("x", nil)
	assert.ErrorIs(t, err, ErrNilHandler)
}

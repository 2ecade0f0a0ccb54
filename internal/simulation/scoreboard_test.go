package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fermisquasar/Filling-the-Void/internal/core/collection"
	"github.com/fermisquasar/Filling-the-Void/internal/core/debris"
	"github.com/fermisquasar/Filling-the-Void/internal/core/events/bus"
)

func TestScoreboardTallies(t *testing.T) {
	b := bus.New()
	s, err := NewScoreboard(b)
	require.NoError(t, err)

	consumed := func(v debris.Variant) bus.Event {
		return bus.NewEvent(EventDebrisConsumed, sourceAttractor, ConsumedEvent{
			DebrisEvent: DebrisEvent{Variant: v},
			Score:       v.Coefficients().Score,
		})
	}
	require.NoError(t, b.PublishBatch(
		consumed(debris.Heavy),
		consumed(debris.Sticky),
		consumed(debris.Heavy),
		bus.NewEvent(EventDebrisSpawned, sourceSpawner, DebrisEvent{}),
		bus.NewEvent(EventDebrisCollected, sourceCollector, DebrisEvent{}),
		bus.NewEvent(EventDebrisBounced, sourceCollector, DebrisEvent{}),
		bus.NewEvent(EventDebrisDespawned, sourceBounds, DebrisEvent{}),
		bus.NewEvent(EventDebrisExpelled, sourceCollector, ExpelledEvent{Mode: collection.ExpelInward, Count: 4}),
	))

	st := s.Stats()
	assert.Equal(t, 8, st.Score)
	assert.Equal(t, map[debris.Variant]int{debris.Heavy: 2, debris.Sticky: 1}, st.Consumed)
	assert.Equal(t, 3, st.TotalConsumed())
	assert.Equal(t, 1, st.Spawned)
	assert.Equal(t, 1, st.Collected)
	assert.Equal(t, 1, st.Bounced)
	assert.Equal(t, 1, st.Despawned)
	assert.Equal(t, 4, st.Expelled)

	st.Consumed[debris.Fragile] = 9
	assert.NotContains(t, s.Stats().Consumed, debris.Fragile, "stats are copied")

	require.NoError(t, s.Close())
	require.NoError(t, b.Publish(consumed(debris.Heavy)))
	assert.Equal(t, 8, s.Stats().Score)
}

func TestScoreboardIgnoresForeignPayloads(t *testing.T) {
	b := bus.New()
	s, err := NewScoreboard(b)
	require.NoError(t, err)
	require.NoError(t, b.Publish(bus.NewEvent(EventDebrisConsumed, "test", "not an event")))
	assert.Zero(t, s.Stats().Score)
}

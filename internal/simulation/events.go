package simulation

import (
	"github.com/google/uuid"

	"github.com/fermisquasar/Filling-the-Void/internal/core/collection"
	"github.com/fermisquasar/Filling-the-Void/internal/core/debris"
	"github.com/fermisquasar/Filling-the-Void/internal/core/systems/physics"
)

// Event types published on the world bus.
const (
	EventDebrisSpawned   = "debris.spawned"
	EventDebrisCollected = "debris.collected"
	EventDebrisBounced   = "debris.bounced"
	EventDebrisConsumed  = "debris.consumed"
	EventDebrisDespawned = "debris.despawned"
	EventDebrisExpelled  = "debris.expelled"
)

// Event sources.
const (
	sourceSpawner   = "spawner"
	sourceCollector = "collector"
	sourceAttractor = "attractor"
	sourceBounds    = "bounds"
)

// DebrisEvent describes one body at the moment something happened to it.
// Time is simulation time in seconds.
type DebrisEvent struct {
	ID       uuid.UUID
	Variant  debris.Variant
	Position physics.Vec2
	Velocity physics.Vec2
	Time     float64
}

func debrisEvent(b *debris.Body, t float64) DebrisEvent {
	return DebrisEvent{
		ID:       b.ID(),
		Variant:  b.Variant(),
		Position: b.Position(),
		Velocity: b.Velocity(),
		Time:     t,
	}
}

// ConsumedEvent is published when the attractor destroys a body.
type ConsumedEvent struct {
	DebrisEvent
	Score int
}

// ExpelledEvent is published once per expulsion; the emitted bodies follow as
// debris.spawned events.
type ExpelledEvent struct {
	Mode  collection.Mode
	Count int
	Force float64
	Time  float64
}

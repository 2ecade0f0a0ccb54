package simulation

import (
	"math"

	"github.com/fermisquasar/Filling-the-Void/internal/core/debris"
	"github.com/fermisquasar/Filling-the-Void/internal/core/systems/physics"
)

// orbitPathPoints is the resolution of the predicted orbit in detailed snapshots.
const orbitPathPoints = 64

// Snapshot is the read-only view handed to UI collaborators.
type Snapshot struct {
	Time           float64      `json:"time"`
	Step           uint64       `json:"step"`
	Count          int          `json:"count"`
	Capacity       int          `json:"capacity"`
	AtCapacity     bool         `json:"at_capacity"`
	Collecting     bool         `json:"collecting"`
	Gravity        float64      `json:"gravity_strength"`
	BaseGravity    float64      `json:"base_gravity_strength"`
	OrbitAngle     float64      `json:"orbit_angle"`
	OrbitSpeed     float64      `json:"orbit_speed"`
	OrbitDirection string       `json:"orbit_direction"`
	Planet         physics.Vec2 `json:"planet"`
	PlanetRotation float64      `json:"planet_rotation"`
	ZoneMembers    int          `json:"zone_members"`
	ActiveDebris   int          `json:"active_debris"`
	Stats          Stats        `json:"stats"`

	Debris    []DebrisView   `json:"debris,omitempty"`
	OrbitPath []physics.Vec2 `json:"orbit_path,omitempty"`
}

type DebrisView struct {
	ID       string         `json:"id"`
	Variant  debris.Variant `json:"variant"`
	Position physics.Vec2   `json:"position"`
	Rotation float64        `json:"rotation"`
	Radius   float64        `json:"radius"`
}

// Snapshot captures the HUD state. detailed adds every body and the orbit path.
func (w *World) Snapshot(detailed bool) Snapshot {
	s := Snapshot{
		Time:           w.time,
		Step:           w.steps,
		Count:          w.collector.Count(),
		Capacity:       w.collector.Capacity(),
		AtCapacity:     w.collector.IsAtCapacity(),
		Collecting:     w.collector.IsCollecting(),
		Gravity:        w.gravity.GravitationalStrength(),
		BaseGravity:    w.gravity.BaseStrength(),
		OrbitAngle:     w.orbit.Angle(),
		OrbitSpeed:     w.orbit.Speed(),
		OrbitDirection: w.orbit.Direction().String(),
		Planet:         w.orbit.Position(),
		PlanetRotation: w.orbit.Rotation(),
		ZoneMembers:    w.gravity.MemberCount(),
		ActiveDebris:   w.ActiveDebris(),
		Stats:          w.scoreboard.Stats(),
	}
	if !detailed {
		return s
	}
	s.Debris = make([]DebrisView, 0, len(w.bodies))
	for _, b := range w.bodies {
		if !b.Alive() {
			continue
		}
		s.Debris = append(s.Debris, DebrisView{
			ID:       b.ID().String(),
			Variant:  b.Variant(),
			Position: b.Position(),
			Rotation: b.Rotation(),
			Radius:   b.Radius(),
		})
	}
	s.OrbitPath = make([]physics.Vec2, orbitPathPoints)
	for i := range s.OrbitPath {
		s.OrbitPath[i] = w.orbit.PositionAtAngle(2 * math.Pi * float64(i) / orbitPathPoints)
	}
	return s
}

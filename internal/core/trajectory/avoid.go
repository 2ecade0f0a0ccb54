package trajectory

import (
	"github.com/fermisquasar/Filling-the-Void/internal/core/systems/physics"
)

// MaxAvoidanceWeight caps how far avoidance may override the original heading.
const MaxAvoidanceWeight = 0.5

// ClosestPointOnSegment projects p onto the segment [start, start+delta].
func ClosestPointOnSegment(start, delta, p physics.Vec2) physics.Vec2 {
	length := delta.Len()
	if length == 0 {
		return start
	}
	dir := delta.Scale(1 / length)
	projection := p.Sub(start).Dot(dir)
	switch {
	case projection < 0:
		return start
	case projection > length:
		return start.Add(delta)
	default:
		return start.Add(dir.Scale(projection))
	}
}

// AvoidanceWeight is 0 at the avoidance radius and grows linearly to
// MaxAvoidanceWeight at the attractor center.
func AvoidanceWeight(distance, radius float64) float64 {
	if radius <= 0 || distance >= radius {
		return 0
	}
	return MaxAvoidanceWeight * physics.Clamp01(1-distance/radius)
}

// AvoidObstacle bends delta away from the attractor when the segment
// [start, start+delta] passes inside its avoidance radius. The result keeps
// the magnitude of delta.
func AvoidObstacle(start, delta physics.Vec2, a Attractor) physics.Vec2 {
	closest := ClosestPointOnSegment(start, delta, a.Position)
	away := closest.Sub(a.Position)
	distance := away.Len()

	weight := AvoidanceWeight(distance, a.AvoidanceRadius)
	if weight == 0 {
		return delta
	}

	heading := delta.Normalize()
	awayDir := away.Normalize()
	if awayDir.IsZero() {
		// path runs straight through the center, either side will do
		awayDir = heading.PerpCCW()
	}
	return heading.Lerp(awayDir, weight).WithLen(delta.Len())
}

// ApplyCurvature adds a perpendicular component of size factor to the unit
// heading dir and renormalizes.
func ApplyCurvature(dir physics.Vec2, factor float64, clockwise bool) physics.Vec2 {
	perp := dir.PerpCCW()
	if clockwise {
		perp = dir.PerpCW()
	}
	curved := dir.Add(perp.Scale(factor)).Normalize()
	if curved.IsZero() {
		return dir
	}
	return curved
}

// ClosestApproach is the minimum distance between p and the segment.
func ClosestApproach(start, delta, p physics.Vec2) float64 {
	return ClosestPointOnSegment(start, delta, p).DistanceTo(p)
}

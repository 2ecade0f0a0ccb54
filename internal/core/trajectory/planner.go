// Package trajectory places spawn points on the field perimeter and plans
// curved initial headings that cross the field while steering around the
// attractor.
package trajectory

import (
	"math/rand/v2"

	"github.com/fermisquasar/Filling-the-Void/internal/core/observability/log"
	"github.com/fermisquasar/Filling-the-Void/internal/core/systems/physics"
)

// Edge identifies a side of the field.
type Edge uint8

const (
	EdgeTop Edge = iota
	EdgeRight
	EdgeBottom
	EdgeLeft
)

func (e Edge) String() string {
	switch e {
	case EdgeTop:
		return "top"
	case EdgeRight:
		return "right"
	case EdgeBottom:
		return "bottom"
	default:
		return "left"
	}
}

// Opposite returns the edge across the field.
func (e Edge) Opposite() Edge { return (e + 2) % 4 }

// Attractor is the obstacle trajectories steer around.
type Attractor struct {
	Position        physics.Vec2
	AvoidanceRadius float64
}

// Config tunes the planner.
type Config struct {
	SpawnPointsPerEdge int
	CurveMin           float64
	CurveMax           float64
}

// Planner is not safe for concurrent use; it owns its random source.
type Planner struct {
	field     physics.Field
	attractor *Attractor
	curveMin  float64
	curveMax  float64
	points    []physics.Vec2
	rng       *rand.Rand
	logger    log.Log
}

// NewPlanner builds a planner and generates its spawn points. A nil attractor
// disables avoidance.
func NewPlanner(field physics.Field, attractor *Attractor, cfg Config, rng *rand.Rand, logger log.Log) *Planner {
	if logger == nil {
		logger = log.NewNop()
	}
	p := &Planner{
		field:     field,
		attractor: attractor,
		curveMin:  cfg.CurveMin,
		curveMax:  cfg.CurveMax,
		rng:       rng,
		logger:    logger.With(log.String("component", "trajectory")),
	}
	if attractor == nil {
		p.logger.Warn("no attractor configured, trajectories will not avoid it")
	}
	if !field.Valid() {
		p.logger.Warn("degenerate field size",
			log.Float64("width", field.Width), log.Float64("height", field.Height))
	}
	p.Regenerate(cfg.SpawnPointsPerEdge)
	return p
}

// Regenerate replaces the spawn point set.
func (p *Planner) Regenerate(countPerEdge int) {
	p.points = GenerateSpawnPoints(p.field, countPerEdge)
	if len(p.points) == 0 {
		p.logger.Warn("no spawn points generated, falling back to field center",
			log.Int("count_per_edge", countPerEdge))
	}
}

func (p *Planner) SpawnPoints() []physics.Vec2 { return p.points }

func (p *Planner) Field() physics.Field { return p.field }

func (p *Planner) Attractor() (Attractor, bool) {
	if p.attractor == nil {
		return Attractor{}, false
	}
	return *p.attractor, true
}

// GenerateSpawnPoints places countPerEdge evenly spaced points along each edge,
// endpoints included, in top, right, bottom, left order. A count of one puts a
// single point at each edge midpoint; zero or less yields nothing.
func GenerateSpawnPoints(field physics.Field, countPerEdge int) []physics.Vec2 {
	if countPerEdge <= 0 {
		return nil
	}
	left, right := field.Left(), field.Right()
	top, bottom := field.Top(), field.Bottom()

	along := func(i int) float64 {
		if countPerEdge == 1 {
			return 0.5
		}
		return float64(i) / float64(countPerEdge-1)
	}

	points := make([]physics.Vec2, 0, 4*countPerEdge)
	for i := 0; i < countPerEdge; i++ {
		points = append(points, physics.V(left+field.Width*along(i), top))
	}
	for i := 0; i < countPerEdge; i++ {
		points = append(points, physics.V(right, top-field.Height*along(i)))
	}
	for i := 0; i < countPerEdge; i++ {
		points = append(points, physics.V(right-field.Width*along(i), bottom))
	}
	for i := 0; i < countPerEdge; i++ {
		points = append(points, physics.V(left, bottom+field.Height*along(i)))
	}
	return points
}

// PickRandomSpawnPoint selects uniformly among the spawn points, or returns the
// field center when there are none.
func (p *Planner) PickRandomSpawnPoint() physics.Vec2 {
	if len(p.points) == 0 {
		return p.field.Center
	}
	return p.points[p.rng.IntN(len(p.points))]
}

// ClassifyEdge finds the edge a perimeter point lies on. Corners resolve in
// top, right, bottom, left order. Points off the perimeter resolve to left.
func ClassifyEdge(field physics.Field, point physics.Vec2) Edge {
	switch {
	case physics.Approx(point.Y, field.Top()):
		return EdgeTop
	case physics.Approx(point.X, field.Right()):
		return EdgeRight
	case physics.Approx(point.Y, field.Bottom()):
		return EdgeBottom
	default:
		return EdgeLeft
	}
}

// RandomPointOnEdge samples a uniformly distributed point on edge.
func (p *Planner) RandomPointOnEdge(edge Edge) physics.Vec2 {
	f := p.field
	switch edge {
	case EdgeTop:
		return physics.V(f.Left()+p.rng.Float64()*f.Width, f.Top())
	case EdgeRight:
		return physics.V(f.Right(), f.Bottom()+p.rng.Float64()*f.Height)
	case EdgeBottom:
		return physics.V(f.Left()+p.rng.Float64()*f.Width, f.Bottom())
	default:
		return physics.V(f.Left(), f.Bottom()+p.rng.Float64()*f.Height)
	}
}

// ComputePathDirection returns a unit heading from spawn toward a random point
// on the opposite edge, bent away from the attractor and curved by a random
// amount in a random sense. The heading is not guaranteed to reach the target.
func (p *Planner) ComputePathDirection(spawn physics.Vec2) physics.Vec2 {
	target := p.RandomPointOnEdge(ClassifyEdge(p.field, spawn).Opposite())
	return p.DirectionToward(spawn, target)
}

// DirectionToward runs avoidance and curvature for a known target.
func (p *Planner) DirectionToward(spawn, target physics.Vec2) physics.Vec2 {
	base := target.Sub(spawn)
	if base.IsZero() {
		// spawn sits on the target, head for the center instead
		base = p.field.Center.Sub(spawn)
		if base.IsZero() {
			base = physics.V(0, -1)
		}
	}

	if p.attractor != nil {
		base = AvoidObstacle(spawn, base, *p.attractor)
	}

	factor := p.curveMin
	if p.curveMax > p.curveMin {
		factor += p.rng.Float64() * (p.curveMax - p.curveMin)
	}
	clockwise := p.rng.IntN(2) == 0
	return ApplyCurvature(base.Normalize(), factor, clockwise)
}

package trajectory

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fermisquasar/Filling-the-Void/internal/core/systems/physics"
)

var testField = physics.NewField(physics.Zero, 20, 20)

func newRand() *rand.Rand { return rand.New(rand.NewPCG(7, 11)) }

func TestGenerateSpawnPoints(t *testing.T) {
	got := GenerateSpawnPoints(testField, 3)
	want := []physics.Vec2{
		{X: -10, Y: 10}, {X: 0, Y: 10}, {X: 10, Y: 10},
		{X: 10, Y: 10}, {X: 10, Y: 0}, {X: 10, Y: -10},
		{X: 10, Y: -10}, {X: 0, Y: -10}, {X: -10, Y: -10},
		{X: -10, Y: -10}, {X: -10, Y: 0}, {X: -10, Y: 10},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("spawn points mismatch (-want +got):\n%s", diff)
	}

	for _, p := range GenerateSpawnPoints(testField, 7) {
		onPerimeter := physics.Approx(math.Abs(p.X), 10) || physics.Approx(math.Abs(p.Y), 10)
		assert.True(t, onPerimeter, "point %v off the perimeter", p)
	}
}

func TestGenerateSpawnPointsDegenerateCounts(t *testing.T) {
	assert.Empty(t, GenerateSpawnPoints(testField, 0))
	assert.Empty(t, GenerateSpawnPoints(testField, -3))

	single := GenerateSpawnPoints(testField, 1)
	want := []physics.Vec2{{X: 0, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: -10}, {X: -10, Y: 0}}
	assert.Equal(t, want, single)
}

func TestPickRandomSpawnPoint(t *testing.T) {
	p := NewPlanner(testField, nil, Config{SpawnPointsPerEdge: 5}, newRand(), nil)
	points := p.SpawnPoints()
	require.Len(t, points, 20)

	for i := 0; i < 50; i++ {
		assert.Contains(t, points, p.PickRandomSpawnPoint())
	}

	empty := NewPlanner(physics.NewField(physics.V(3, 4), 20, 20), nil, Config{}, newRand(), nil)
	assert.Equal(t, physics.V(3, 4), empty.PickRandomSpawnPoint())
}

func TestClassifyEdge(t *testing.T) {
	tests := []struct {
		point physics.Vec2
		want  Edge
	}{
		{physics.V(0, 10), EdgeTop},
		{physics.V(10, 3), EdgeRight},
		{physics.V(-4, -10), EdgeBottom},
		{physics.V(-10, 2), EdgeLeft},
		{physics.V(10, 10), EdgeTop},
		{physics.V(10, -10), EdgeRight},
		{physics.V(-10, -10), EdgeBottom},
		{physics.V(0, 10.0000001), EdgeTop},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyEdge(testField, tt.point), "%v", tt.point)
	}
	assert.Equal(t, EdgeBottom, EdgeTop.Opposite())
	assert.Equal(t, EdgeLeft, EdgeRight.Opposite())
}

func TestRandomPointOnEdge(t *testing.T) {
	p := NewPlanner(testField, nil, Config{SpawnPointsPerEdge: 2}, newRand(), nil)
	for i := 0; i < 20; i++ {
		b := p.RandomPointOnEdge(EdgeBottom)
		assert.Equal(t, -10.0, b.Y)
		assert.True(t, b.X >= -10 && b.X <= 10)

		l := p.RandomPointOnEdge(EdgeLeft)
		assert.Equal(t, -10.0, l.X)
		assert.True(t, l.Y >= -10 && l.Y <= 10)
	}
}

func TestClosestPointOnSegment(t *testing.T) {
	start := physics.V(0, 0)
	delta := physics.V(10, 0)

	assert.Equal(t, start, ClosestPointOnSegment(start, delta, physics.V(-3, 2)), "before start")
	assert.Equal(t, physics.V(10, 0), ClosestPointOnSegment(start, delta, physics.V(14, -1)), "past end")
	assert.Equal(t, physics.V(4, 0), ClosestPointOnSegment(start, delta, physics.V(4, 5)), "interior")
	assert.Equal(t, start, ClosestPointOnSegment(start, physics.Zero, physics.V(1, 1)))
}

func TestAvoidanceWeight(t *testing.T) {
	assert.Equal(t, 0.0, AvoidanceWeight(3, 3))
	assert.Equal(t, 0.0, AvoidanceWeight(5, 3))
	assert.Equal(t, MaxAvoidanceWeight, AvoidanceWeight(0, 3))

	prev := 0.0
	for d := 3.0; d >= 0; d -= 0.25 {
		w := AvoidanceWeight(d, 3)
		assert.GreaterOrEqual(t, w, prev)
		assert.LessOrEqual(t, w, MaxAvoidanceWeight)
		prev = w
	}
}

func TestAvoidanceDeflectsTopToBottomCrossing(t *testing.T) {
	attractor := Attractor{Position: physics.Zero, AvoidanceRadius: 3}
	spawn := physics.V(0, 10)
	require.Equal(t, EdgeTop, ClassifyEdge(testField, spawn))

	for _, target := range []physics.Vec2{{X: 1, Y: -10}, {X: -1.5, Y: -10}, {X: 0, Y: -10}} {
		base := target.Sub(spawn)
		before := ClosestApproach(spawn, base, attractor.Position)
		require.Less(t, before, attractor.AvoidanceRadius, "target %v", target)

		adjusted := AvoidObstacle(spawn, base, attractor)
		after := ClosestApproach(spawn, adjusted, attractor.Position)

		assert.Greater(t, after, before, "target %v", target)
		assert.InDelta(t, base.Len(), adjusted.Len(), 1e-9, "magnitude preserved")
	}
}

func TestAvoidanceLeavesClearPathsAlone(t *testing.T) {
	attractor := Attractor{Position: physics.Zero, AvoidanceRadius: 3}
	spawn := physics.V(-10, 10)
	base := physics.V(20, 0).Sub(physics.V(0, 0)) // along the top edge
	assert.Equal(t, base, AvoidObstacle(spawn, base, attractor))
}

func TestApplyCurvature(t *testing.T) {
	dir := physics.V(0, -1)

	ccw := ApplyCurvature(dir, 0.25, false)
	cw := ApplyCurvature(dir, 0.25, true)
	assert.InDelta(t, 1, ccw.Len(), 1e-12)
	assert.InDelta(t, 1, cw.Len(), 1e-12)
	assert.Greater(t, ccw.X, 0.0)
	assert.Less(t, cw.X, 0.0)
	assert.InDelta(t, math.Atan(0.25), math.Acos(ccw.Dot(dir)), 1e-12)

	assert.Equal(t, dir, ApplyCurvature(dir, 0, false))
}

func TestComputePathDirection(t *testing.T) {
	attractor := &Attractor{Position: physics.Zero, AvoidanceRadius: 3}
	p := NewPlanner(testField, attractor, Config{SpawnPointsPerEdge: 6, CurveMin: 0.1, CurveMax: 0.3}, newRand(), nil)

	for i := 0; i < 200; i++ {
		spawn := p.PickRandomSpawnPoint()
		dir := p.ComputePathDirection(spawn)
		assert.InDelta(t, 1, dir.Len(), 1e-9)
	}
}

func TestComputePathDirectionHeadsAcross(t *testing.T) {
	p := NewPlanner(testField, nil, Config{SpawnPointsPerEdge: 3}, newRand(), nil)
	for i := 0; i < 50; i++ {
		dir := p.ComputePathDirection(physics.V(0, 10))
		assert.Less(t, dir.Y, 0.0)

		dir = p.ComputePathDirection(physics.V(-10, 0))
		assert.Greater(t, dir.X, 0.0)
	}
}

func TestDirectionTowardDegenerateTarget(t *testing.T) {
	p := NewPlanner(testField, nil, Config{SpawnPointsPerEdge: 3}, newRand(), nil)
	dir := p.DirectionToward(physics.V(0, 10), physics.V(0, 10))
	assert.Equal(t, physics.V(0, -1), dir)
}

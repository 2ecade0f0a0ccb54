package collection

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fermisquasar/Filling-the-Void/internal/core/debris"
	"github.com/fermisquasar/Filling-the-Void/internal/core/systems/physics"
)

type recordingBooster struct {
	history []float64
}

func (b *recordingBooster) SetStrengthMultiplier(m float64) { b.history = append(b.history, m) }

func (b *recordingBooster) last() float64 { return b.history[len(b.history)-1] }

func newTestCollector(cfg Config) (*Collector, *recordingBooster) {
	booster := &recordingBooster{}
	attractor := physics.V(0, 0)
	return New(cfg, booster, &attractor, rand.New(rand.NewPCG(3, 5)), nil), booster
}

func newContact(v debris.Variant, pos, vel physics.Vec2) *debris.Body {
	b := &debris.Body{}
	b.Init(v, debris.SpawnParams{Position: pos})
	b.SetVelocity(vel)
	return b
}

func TestBoostFollowsSignalAndCapacity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Capacity = 1
	c, booster := newTestCollector(cfg)
	assert.Equal(t, 1.0, booster.last())

	c.SetCollecting(true)
	assert.Equal(t, 1.5, booster.last())
	c.Update()
	c.Update()
	assert.Equal(t, 1.5, booster.last(), "never compounds")

	c.HandleContact(physics.Zero, newContact(debris.Standard, physics.V(1, 0), physics.V(-1, 0)))
	assert.True(t, c.IsAtCapacity())
	assert.Equal(t, 1.0, booster.last(), "full collectors do not boost")

	c.Expel(ExpelOutward, physics.V(5, 0))
	assert.Equal(t, 1.5, booster.last(), "room again while still collecting")

	c.SetCollecting(false)
	assert.Equal(t, 1.0, booster.last())
}

func TestCollectUntilCapacityThenBounce(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Capacity = 5
	c, _ := newTestCollector(cfg)
	c.SetCollecting(true)

	agent := physics.V(5, 0)
	for i := 0; i < 5; i++ {
		b := newContact(debris.Standard, physics.V(5.5, 0), physics.V(-1, 0))
		require.Equal(t, OutcomeCollected, c.HandleContact(agent, b))
		assert.False(t, b.Alive())
	}
	assert.Equal(t, 5, c.Count())
	assert.True(t, c.IsAtCapacity())

	sixth := newContact(debris.Standard, physics.V(5.5, 0), physics.V(-1, 0))
	assert.Equal(t, OutcomeBounced, c.HandleContact(agent, sixth))
	assert.True(t, sixth.Alive())
	assert.Equal(t, 5, c.Count())
	assert.True(t, c.IsAtCapacity())
	assert.True(t, c.IsCollecting())
}

func TestCountNeverExceedsCapacity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Capacity = 3
	c, _ := newTestCollector(cfg)
	rng := rand.New(rand.NewPCG(9, 9))

	for i := 0; i < 200; i++ {
		switch rng.IntN(4) {
		case 0:
			c.SetCollecting(!c.IsCollecting())
		case 1:
			c.Expel(Mode(rng.IntN(2)), physics.V(2, 2))
			assert.Equal(t, 0, c.Count())
		default:
			c.HandleContact(physics.Zero, newContact(debris.Fragile, physics.V(0, 1), physics.V(0, -1)))
		}
		assert.GreaterOrEqual(t, c.Count(), 0)
		assert.LessOrEqual(t, c.Count(), c.Capacity())
	}
}

func TestBounceVelocity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinimumBounceSpeed = 2
	c, _ := newTestCollector(cfg)

	tests := []struct {
		variant debris.Variant
		speed   float64
		want    float64
	}{
		{debris.Standard, 4, 4},
		{debris.Heavy, 4, 3.2},
		{debris.Fragile, 4, 4.8},
		{debris.Sticky, 4, 2.4},
		{debris.Sticky, 1, 2}, // floor
	}
	for _, tt := range tests {
		b := newContact(tt.variant, physics.V(0, 1), physics.V(0, -tt.speed))
		require.Equal(t, OutcomeBounced, c.HandleContact(physics.Zero, b))
		assert.InDelta(t, 0, b.Velocity().X, 1e-12, tt.variant.String())
		assert.InDelta(t, tt.want, b.Velocity().Y, 1e-12, tt.variant.String())
		assert.LessOrEqual(t, math.Abs(b.AngularVelocity()), cfg.TorqueImpulse/b.Mass()+1e-12)
	}
}

func TestBounceAtAgentCenterReversesVelocity(t *testing.T) {
	c, _ := newTestCollector(DefaultConfig())
	b := newContact(debris.Standard, physics.Zero, physics.V(3, 0))
	c.HandleContact(physics.Zero, b)
	assert.InDelta(t, -3, b.Velocity().X, 1e-12)
}

func TestExpelWithNothingIsNoop(t *testing.T) {
	c, _ := newTestCollector(DefaultConfig())
	assert.Nil(t, c.Expel(ExpelInward, physics.V(3, 0)))
	assert.Equal(t, 0, c.Count())
}

func fill(c *Collector, n int) {
	c.SetCollecting(true)
	for i := 0; i < n; i++ {
		c.HandleContact(physics.Zero, newContact(debris.Standard, physics.V(1, 0), physics.Zero))
	}
	c.SetCollecting(false)
}

func TestExpelOutwardImpulse(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseForce = 5
	cfg.PerDebrisForce = 0.5
	c, _ := newTestCollector(cfg)
	fill(c, 3)
	require.Equal(t, 3, c.Count())

	agent := physics.V(4, 3)
	emissions := c.Expel(ExpelOutward, agent)
	require.Len(t, emissions, 3)
	assert.Equal(t, 0, c.Count())

	outward := agent.Normalize()
	maxDeviation := math.Cos(physics.Rad(cfg.Outward.Angle))
	for _, e := range emissions {
		assert.InDelta(t, 6.5, e.Impulse.Len(), 1e-9)
		assert.InDelta(t, 1, e.Direction.Len(), 1e-9)
		assert.Greater(t, e.Direction.Dot(outward), maxDeviation)
		assert.InDelta(t, cfg.SpawnOffset, e.Position.DistanceTo(agent), 1e-9)
	}
}

func TestExpelInwardAimsAtAttractor(t *testing.T) {
	c, _ := newTestCollector(DefaultConfig())
	fill(c, 4)

	agent := physics.V(0, 6)
	emissions := c.Expel(ExpelInward, agent)
	require.Len(t, emissions, 4)

	inward := physics.V(0, -1)
	for _, e := range emissions {
		assert.InDelta(t, c.TotalForce(4), e.Impulse.Len(), 1e-9)
		// 20% blend of a 15 degree cone stays within a few degrees
		assert.Greater(t, e.Direction.Dot(inward), math.Cos(physics.Rad(4)))
		toSpawn := e.Position.Sub(agent).Normalize()
		assert.Greater(t, toSpawn.Dot(inward), math.Cos(physics.Rad(45))-1e-9)
	}
}

func TestExpelInwardWithoutAttractorUsesOrigin(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Origin = physics.V(10, 0)
	cfg.Inward = Cone{}
	c := New(cfg, nil, nil, rand.New(rand.NewPCG(1, 1)), nil)
	fill(c, 1)

	e := c.Expel(ExpelInward, physics.V(0, 0))
	require.Len(t, e, 1)
	assert.InDelta(t, 1, e[0].Direction.X, 1e-12)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("OUT")
	require.NoError(t, err)
	assert.Equal(t, ExpelOutward, m)

	_, err = ParseMode("sideways")
	assert.Error(t, err)
}

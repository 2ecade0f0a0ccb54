// Package collection gates whether debris touching the planet is absorbed or
// bounced, holds the absorbed count and re-emits it on command.
package collection

import (
	"math"
	"math/rand/v2"

	"github.com/fermisquasar/Filling-the-Void/internal/core/debris"
	"github.com/fermisquasar/Filling-the-Void/internal/core/observability/log"
	"github.com/fermisquasar/Filling-the-Void/internal/core/systems/physics"
)

// Booster receives the temporary gravity multiplier.
type Booster interface {
	SetStrengthMultiplier(m float64)
}

// Contact is the debris side of a planet contact.
type Contact interface {
	Variant() debris.Variant
	Position() physics.Vec2
	Velocity() physics.Vec2
	SetVelocity(v physics.Vec2)
	AddAngularImpulse(j float64)
	Destroy()
}

// Outcome of a contact.
type Outcome uint8

const (
	OutcomeIgnored Outcome = iota
	OutcomeCollected
	OutcomeBounced
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCollected:
		return "collected"
	case OutcomeBounced:
		return "bounced"
	default:
		return "ignored"
	}
}

// Cone perturbs a heading by a random angle in [-Angle, Angle] degrees,
// blended in with Weight.
type Cone struct {
	Angle  float64
	Weight float64
}

// Config holds every tunable of the economy.
type Config struct {
	Capacity           int
	StrengthMultiplier float64
	MinimumBounceSpeed float64
	// TorqueImpulse bounds the random angular impulse given on bounce and emission.
	TorqueImpulse  float64
	BaseForce      float64
	PerDebrisForce float64
	Inward         Cone
	Outward        Cone
	// SpawnCone scatters emitted bodies around the agent, in degrees.
	SpawnCone   float64
	SpawnOffset float64
	// Origin is the reference point outward expulsion pushes away from.
	Origin physics.Vec2
}

func DefaultConfig() Config {
	return Config{
		Capacity:           5,
		StrengthMultiplier: 1.5,
		MinimumBounceSpeed: 2,
		TorqueImpulse:      5,
		BaseForce:          5,
		PerDebrisForce:     0.5,
		Inward:             Cone{Angle: 15, Weight: 0.2},
		Outward:            Cone{Angle: 30, Weight: 0.3},
		SpawnCone:          45,
		SpawnOffset:        0.75,
	}
}

// Collector is the economy of one collecting agent.
type Collector struct {
	cfg        Config
	booster    Booster
	attractor  *physics.Vec2
	rng        *rand.Rand
	logger     log.Log
	count      int
	collecting bool
}

// New builds a collector. booster may be nil; attractor may be nil, in which
// case inward expulsion aims at Origin instead.
func New(cfg Config, booster Booster, attractor *physics.Vec2, rng *rand.Rand, logger log.Log) *Collector {
	if logger == nil {
		logger = log.NewNop()
	}
	c := &Collector{
		cfg:       cfg,
		booster:   booster,
		attractor: attractor,
		rng:       rng,
		logger:    logger.With(log.String("component", "collector")),
	}
	if cfg.Capacity < 0 {
		c.logger.Warn("negative capacity, using zero", log.Int("capacity", cfg.Capacity))
		c.cfg.Capacity = 0
	}
	if attractor == nil {
		c.logger.Warn("no attractor configured, inward expulsion aims at origin")
	}
	c.Update()
	return c
}

func (c *Collector) Count() int         { return c.count }
func (c *Collector) Capacity() int      { return c.cfg.Capacity }
func (c *Collector) IsAtCapacity() bool { return c.count >= c.cfg.Capacity }
func (c *Collector) IsCollecting() bool { return c.collecting }
func (c *Collector) Config() Config     { return c.cfg }

// Boosting reports whether the gravity multiplier is currently in effect.
func (c *Collector) Boosting() bool { return c.collecting && !c.IsAtCapacity() }

// SetCollecting sets the collect signal.
func (c *Collector) SetCollecting(on bool) {
	c.collecting = on
	c.Update()
}

// Update pushes the multiplier that matches the current signal and count.
// It depends only on that state, so calling it every frame never compounds.
func (c *Collector) Update() {
	if c.booster == nil {
		return
	}
	if c.Boosting() {
		c.booster.SetStrengthMultiplier(c.cfg.StrengthMultiplier)
	} else {
		c.booster.SetStrengthMultiplier(1)
	}
}

// HandleContact resolves a body touching the agent at agentPos: collected when
// collecting with room left, otherwise bounced away from the agent.
func (c *Collector) HandleContact(agentPos physics.Vec2, body Contact) Outcome {
	if body == nil {
		return OutcomeIgnored
	}
	if c.collecting && !c.IsAtCapacity() {
		body.Destroy()
		c.count++
		c.Update()
		return OutcomeCollected
	}
	c.bounce(agentPos, body)
	return OutcomeBounced
}

func (c *Collector) bounce(agentPos physics.Vec2, body Contact) {
	away := body.Position().Sub(agentPos).Normalize()
	if away.IsZero() {
		away = body.Velocity().Neg().Normalize()
		if away.IsZero() {
			away = physics.V(0, 1)
		}
	}
	factor := body.Variant().Coefficients().BounceFactor
	speed := math.Max(body.Velocity().Len()*factor, c.cfg.MinimumBounceSpeed)
	body.SetVelocity(away.Scale(speed))
	body.AddAngularImpulse(c.uniform(-c.cfg.TorqueImpulse, c.cfg.TorqueImpulse))
}

func (c *Collector) uniform(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + c.rng.Float64()*(hi-lo)
}

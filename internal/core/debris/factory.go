package debris

import (
	"math/rand/v2"

	"github.com/fermisquasar/Filling-the-Void/internal/core/systems/physics"
	"github.com/fermisquasar/Filling-the-Void/pkg/generic"
)

// SpinRange bounds the random spin given on spawn, in degrees per second.
const SpinRange = 90.0

// FactoryConfig tunes spawned bodies.
type FactoryConfig struct {
	SpeedMin float64
	SpeedMax float64
	// Weights selects variants for RandomVariant; missing or non-positive entries are never picked.
	Weights map[Variant]float64
}

// Factory creates bodies from a pool and randomises them per variant.
type Factory struct {
	cfg  FactoryConfig
	rng  *rand.Rand
	pool *generic.Pool[*Body]

	totalWeight float64
}

func NewFactory(cfg FactoryConfig, rng *rand.Rand) *Factory {
	f := &Factory{
		cfg: cfg,
		rng: rng,
		pool: generic.NewPool(
			func() *Body { return &Body{} },
			func(b *Body) { *b = Body{} },
		),
	}
	for _, v := range Variants {
		if w := cfg.Weights[v]; w > 0 {
			f.totalWeight += w
		}
	}
	return f
}

// Spawn creates a body of variant v at pos heading along dir with a random
// speed in [SpeedMin, SpeedMax], random spin and jittered mass and size.
func (f *Factory) Spawn(v Variant, pos, dir physics.Vec2) *Body {
	b := f.pool.Get()
	b.Init(v, SpawnParams{
		Position:  pos,
		Direction: dir,
		Speed:     f.uniform(f.cfg.SpeedMin, f.cfg.SpeedMax),
		Spin:      f.uniform(-SpinRange, SpinRange),
		MassScale: f.jitter(v),
		SizeScale: f.jitter(v),
	})
	return b
}

// SpawnWithImpulse creates a resting body at pos and applies impulse and an
// angular impulse to it.
func (f *Factory) SpawnWithImpulse(v Variant, pos, impulse physics.Vec2, spin float64) *Body {
	b := f.pool.Get()
	b.Init(v, SpawnParams{
		Position:  pos,
		MassScale: f.jitter(v),
		SizeScale: f.jitter(v),
	})
	b.AddImpulse(impulse)
	b.AddAngularImpulse(spin)
	return b
}

// Release returns a dead body to the pool. Live bodies are destroyed first.
func (f *Factory) Release(b *Body) {
	if b == nil {
		return
	}
	b.Destroy()
	f.pool.Put(b)
}

// RandomVariant picks a variant by weight, Standard when no weights are set.
func (f *Factory) RandomVariant() Variant {
	if f.totalWeight <= 0 {
		return Standard
	}
	r := f.rng.Float64() * f.totalWeight
	last := Standard
	for _, v := range Variants {
		w := f.cfg.Weights[v]
		if w <= 0 {
			continue
		}
		if r < w {
			return v
		}
		r -= w
		last = v
	}
	return last
}

func (f *Factory) jitter(v Variant) float64 {
	j := v.Coefficients().Jitter
	return 1 + f.uniform(-j, j)
}

func (f *Factory) uniform(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + f.rng.Float64()*(hi-lo)
}

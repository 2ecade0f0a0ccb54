package debris

import (
	"github.com/google/uuid"

	"github.com/fermisquasar/Filling-the-Void/internal/core/systems/physics"
)

// SpawnParams initialise a body. Scales multiply the variant's base mass and size.
type SpawnParams struct {
	Position  physics.Vec2
	Direction physics.Vec2
	Speed     float64
	Spin      float64 // degrees per second
	MassScale float64
	SizeScale float64
}

// Body is one piece of debris. A zero Body is dead; Init brings it to life
// with a fresh identity so pooled instances never alias an old one.
type Body struct {
	id      uuid.UUID
	variant Variant
	rb      physics.RigidBody
	size    float64
	alive   bool
}

// Init (re)spawns the body.
func (b *Body) Init(v Variant, p SpawnParams) {
	c := v.Coefficients()
	massScale, sizeScale := p.MassScale, p.SizeScale
	if massScale <= 0 {
		massScale = 1
	}
	if sizeScale <= 0 {
		sizeScale = 1
	}

	b.rb.Reset()
	b.id = uuid.New()
	b.variant = v
	b.size = c.SizeBase * sizeScale
	b.rb.Mass = c.MassBase * massScale
	b.rb.Position = p.Position
	b.rb.Velocity = p.Direction.Normalize().Scale(p.Speed)
	b.rb.AngularVelocity = p.Spin
	b.alive = true
}

func (b *Body) ID() uuid.UUID               { return b.id }
func (b *Body) Variant() Variant            { return b.variant }
func (b *Body) Alive() bool                 { return b.alive }
func (b *Body) Position() physics.Vec2      { return b.rb.Position }
func (b *Body) Velocity() physics.Vec2      { return b.rb.Velocity }
func (b *Body) SetVelocity(v physics.Vec2)  { b.rb.Velocity = v }
func (b *Body) Mass() float64               { return b.rb.Mass }
func (b *Body) Size() float64               { return b.size }
func (b *Body) Radius() float64             { return b.size / 2 }
func (b *Body) Rotation() float64           { return b.rb.Rotation }
func (b *Body) AngularVelocity() float64    { return b.rb.AngularVelocity }
func (b *Body) AddForce(f physics.Vec2)     { b.rb.AddForce(f) }
func (b *Body) AddImpulse(j physics.Vec2)   { b.rb.AddImpulse(j) }
func (b *Body) AddAngularImpulse(j float64) { b.rb.AddAngularImpulse(j) }

// Destroy marks the body dead. Holders prune it lazily.
func (b *Body) Destroy() { b.alive = false }

// GravityResponseFactor is k/mass: heavier bodies respond less per unit force.
func (b *Body) GravityResponseFactor() float64 {
	return b.variant.ResponseFactor(b.rb.Mass)
}

// Integrate advances the body one fixed step.
func (b *Body) Integrate(dt float64) {
	if !b.alive {
		return
	}
	b.rb.Integrate(dt)
}

// Tick destroys the body once it has left the field and reports whether it is
// still alive.
func (b *Body) Tick(field physics.Field) bool {
	if b.alive && !field.Contains(b.rb.Position) {
		b.Destroy()
	}
	return b.alive
}

// OnCollisionWith applies this body's side of a contact with other. normal is
// the unit contact normal pointing from this body toward other. Only knockable
// bodies react, and only to variants with a knockback scale; the reverse
// contact applies nothing. It reports whether an impulse was applied.
func (b *Body) OnCollisionWith(other *Body, normal physics.Vec2) bool {
	if !b.alive || other == nil || !other.alive {
		return false
	}
	self, them := b.variant.Coefficients(), other.variant.Coefficients()
	if !self.Knockable || them.KnockbackScale == 0 {
		return false
	}
	b.rb.AddImpulse(normal.Neg().Scale(them.KnockbackScale * other.rb.Mass))
	return true
}

package physics

// RigidBody holds the integrable state of a mobile body. Forces and torques
// accumulate between steps and are consumed by Integrate; impulses change
// velocity immediately.
//
// Rotation is in degrees and AngularVelocity in degrees per second.
type RigidBody struct {
	Position        Vec2
	Velocity        Vec2
	Rotation        float64
	AngularVelocity float64
	Mass            float64
	Inertia         float64

	force  Vec2
	torque float64
}

// AddForce accumulates a continuous force applied over the next step.
func (b *RigidBody) AddForce(f Vec2) { b.force = b.force.Add(f) }

// AddTorque accumulates a continuous torque applied over the next step.
func (b *RigidBody) AddTorque(t float64) { b.torque += t }

// AddImpulse changes velocity by j/m.
func (b *RigidBody) AddImpulse(j Vec2) {
	if b.Mass <= 0 {
		return
	}
	b.Velocity = b.Velocity.Add(j.Scale(1 / b.Mass))
}

// AddAngularImpulse changes angular velocity by j/I.
func (b *RigidBody) AddAngularImpulse(j float64) {
	if b.inertia() <= 0 {
		return
	}
	b.AngularVelocity += j / b.inertia()
}

// PendingForce returns the force accumulated since the last Integrate.
func (b *RigidBody) PendingForce() Vec2 { return b.force }

// Integrate advances the body with semi-implicit Euler: velocity first, then
// position from the new velocity. Accumulators are cleared afterwards.
func (b *RigidBody) Integrate(dt float64) {
	if b.Mass > 0 {
		b.Velocity = b.Velocity.Add(b.force.Scale(dt / b.Mass))
	}
	if b.inertia() > 0 {
		b.AngularVelocity += b.torque / b.inertia() * dt
	}
	b.Position = b.Position.Add(b.Velocity.Scale(dt))
	b.Rotation += b.AngularVelocity * dt

	b.force = Zero
	b.torque = 0
}

// Reset clears all state so the body can be reused.
func (b *RigidBody) Reset() { *b = RigidBody{} }

func (b *RigidBody) inertia() float64 {
	if b.Inertia > 0 {
		return b.Inertia
	}
	return b.Mass
}

package gravity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fermisquasar/Filling-the-Void/internal/core/systems/physics"
)

type fixedOrigin physics.Vec2

func (o fixedOrigin) Position() physics.Vec2 { return physics.Vec2(o) }

type fakeBody struct {
	id    uuid.UUID
	pos   physics.Vec2
	force physics.Vec2
	dead  bool
	calls int
}

func newFakeBody(x, y float64) *fakeBody {
	return &fakeBody{id: uuid.New(), pos: physics.V(x, y)}
}

func (b *fakeBody) ID() uuid.UUID           { return b.id }
func (b *fakeBody) Position() physics.Vec2  { return b.pos }
func (b *fakeBody) AddForce(f physics.Vec2) { b.force = b.force.Add(f); b.calls++ }
func (b *fakeBody) Alive() bool             { return !b.dead }

type respondingBody struct {
	*fakeBody
	factor float64
}

func (r respondingBody) GravityResponseFactor() float64 { return r.factor }

func newTestField() *Field {
	return NewField(fixedOrigin(physics.Zero), Config{InfluenceRadius: 4, GravitationalStrength: 10}, nil)
}

func TestStrengthFactor(t *testing.T) {
	assert.Equal(t, 1.0, StrengthFactor(0, 4))
	assert.Equal(t, 0.5, StrengthFactor(2, 4))
	assert.Equal(t, 0.0, StrengthFactor(4, 4))
	assert.Equal(t, 0.0, StrengthFactor(9, 4))
	assert.Equal(t, 0.0, StrengthFactor(1, 0))
}

func TestMembershipIsIdempotent(t *testing.T) {
	f := newTestField()
	b := newFakeBody(1, 0)

	f.AddMember(b)
	f.AddMember(b)
	f.ConfirmMember(b)
	assert.Equal(t, 1, f.MemberCount())
	assert.True(t, f.Contains(b))

	f.RemoveMember(b)
	f.RemoveMember(b)
	f.RemoveMember(newFakeBody(0, 0))
	assert.Equal(t, 0, f.MemberCount())
}

func TestStepAppliesRadialForce(t *testing.T) {
	f := newTestField()
	b := newFakeBody(2, 0)
	f.AddMember(b)

	applied := f.Step()
	assert.Equal(t, 1, applied)
	// direction (-1,0), strength 10, falloff 0.5, response 1
	assert.InDelta(t, -5, b.force.X, 1e-12)
	assert.InDelta(t, 0, b.force.Y, 1e-12)
}

func TestStepNoForceOutsideRadius(t *testing.T) {
	f := newTestField()
	onEdge := newFakeBody(0, 4)
	outside := newFakeBody(10, 10)
	f.AddMember(onEdge)
	f.AddMember(outside)

	assert.Equal(t, 0, f.Step())
	assert.Equal(t, physics.Zero, onEdge.force)
	assert.Equal(t, physics.Zero, outside.force)
	assert.Equal(t, 2, f.MemberCount(), "membership changes only through enter/exit")
}

func TestStepUsesResponseFactor(t *testing.T) {
	f := newTestField()
	b := respondingBody{fakeBody: newFakeBody(0, -2), factor: 0.25}
	f.AddMember(b)

	f.Step()
	assert.InDelta(t, 0, b.force.X, 1e-12)
	assert.InDelta(t, 1.25, b.force.Y, 1e-12)
}

func TestStepPrunesStaleMembers(t *testing.T) {
	f := newTestField()
	alive := newFakeBody(1, 0)
	dead := newFakeBody(0, 1)
	recycled := newFakeBody(-1, 0)
	f.AddMember(alive)
	f.AddMember(dead)
	f.AddMember(recycled)

	dead.dead = true
	recycled.id = uuid.New()

	assert.NotPanics(t, func() { f.Step() })
	assert.Equal(t, 1, f.MemberCount())
	assert.True(t, f.Contains(alive))
	assert.Equal(t, 0, dead.calls)
	assert.Equal(t, 0, recycled.calls)
}

func TestDeadBodiesAreNotAdded(t *testing.T) {
	f := newTestField()
	b := newFakeBody(1, 1)
	b.dead = true
	f.AddMember(b)
	assert.Equal(t, 0, f.MemberCount())
}

func TestStrengthMultiplierDoesNotCompound(t *testing.T) {
	f := newTestField()
	f.SetStrengthMultiplier(1.5)
	f.SetStrengthMultiplier(1.5)
	assert.Equal(t, 15.0, f.GravitationalStrength())
	assert.Equal(t, 10.0, f.BaseStrength())

	f.SetGravitationalStrength(20)
	assert.Equal(t, 30.0, f.GravitationalStrength())

	f.SetStrengthMultiplier(1)
	assert.Equal(t, 20.0, f.GravitationalStrength())
}

func TestLiveRadiusChange(t *testing.T) {
	f := newTestField()
	b := newFakeBody(3, 0)
	f.AddMember(b)

	f.SetInfluenceRadius(2)
	f.Step()
	assert.Equal(t, physics.Zero, b.force)

	f.SetInfluenceRadius(6)
	f.Step()
	assert.InDelta(t, -5, b.force.X, 1e-12)
}

func TestForcesUseEntrySnapshot(t *testing.T) {
	f := newTestField()
	bodies := []*fakeBody{newFakeBody(1, 0), newFakeBody(-1, 0), newFakeBody(0, 2)}
	for _, b := range bodies {
		f.AddMember(b)
	}
	require.Equal(t, 3, f.Step())

	for _, b := range bodies {
		want := f.ForceOn(b.pos, 1)
		assert.InDelta(t, want.X, b.force.X, 1e-12)
		assert.InDelta(t, want.Y, b.force.Y, 1e-12)
	}
}

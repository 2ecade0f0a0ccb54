// Package gravity applies a radial attraction to bodies inside a circular
// influence zone centred on a moving origin.
package gravity

import (
	"github.com/google/uuid"

	"github.com/fermisquasar/Filling-the-Void/internal/core/observability/log"
	"github.com/fermisquasar/Filling-the-Void/internal/core/systems/physics"
)

// Body is anything the field can pull on.
type Body interface {
	ID() uuid.UUID
	Position() physics.Vec2
	AddForce(f physics.Vec2)
	// Alive reports false once the body has been destroyed or released.
	Alive() bool
}

// Responder is the optional capability that scales the force a body receives.
type Responder interface {
	GravityResponseFactor() float64
}

// Origin supplies the zone center, normally the orbiting planet.
type Origin interface {
	Position() physics.Vec2
}

type member struct {
	id   uuid.UUID
	body Body
	// resolved once on entry; nil means factor 1
	responder Responder
}

// Field keeps the influence zone membership and applies forces each fixed step.
type Field struct {
	origin     Origin
	radius     float64
	strength   float64
	multiplier float64

	members []member
	index   map[uuid.UUID]int

	logger log.Log
}

// Config holds the live-tunable parameters of a Field.
type Config struct {
	InfluenceRadius       float64
	GravitationalStrength float64
}

func NewField(origin Origin, cfg Config, logger log.Log) *Field {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Field{
		origin:     origin,
		radius:     cfg.InfluenceRadius,
		strength:   cfg.GravitationalStrength,
		multiplier: 1,
		index:      make(map[uuid.UUID]int),
		logger:     logger.With(log.String("component", "gravity")),
	}
}

// AddMember registers a body entering the zone. Adding a present body is a no-op.
func (f *Field) AddMember(b Body) {
	if b == nil || !b.Alive() {
		return
	}
	if _, ok := f.index[b.ID()]; ok {
		return
	}
	m := member{id: b.ID(), body: b}
	if r, ok := b.(Responder); ok {
		m.responder = r
	}
	f.index[m.id] = len(f.members)
	f.members = append(f.members, m)
}

// ConfirmMember is called while a body keeps overlapping the zone.
func (f *Field) ConfirmMember(b Body) { f.AddMember(b) }

// RemoveMember unregisters a body leaving the zone. Absent bodies are ignored.
func (f *Field) RemoveMember(b Body) {
	if b == nil {
		return
	}
	f.removeID(b.ID())
}

func (f *Field) removeID(id uuid.UUID) {
	i, ok := f.index[id]
	if !ok {
		return
	}
	last := len(f.members) - 1
	if i != last {
		f.members[i] = f.members[last]
		f.index[f.members[i].id] = i
	}
	f.members[last] = member{}
	f.members = f.members[:last]
	delete(f.index, id)
}

// Contains reports whether the body is currently a member.
func (f *Field) Contains(b Body) bool {
	_, ok := f.index[b.ID()]
	return ok
}

func (f *Field) MemberCount() int { return len(f.members) }

// Step applies one fixed step of attraction to every member. All forces are
// computed from the positions as they are on entry; nothing moves here.
// Members that died or were recycled under a new id are pruned afterwards.
// It returns the number of bodies that received a force.
func (f *Field) Step() int {
	center := f.Center()
	strength := f.GravitationalStrength()

	var stale []uuid.UUID
	applied := 0
	for _, m := range f.members {
		if m.body == nil || !m.body.Alive() || m.body.ID() != m.id {
			stale = append(stale, m.id)
			continue
		}
		force := f.forceAt(center, strength, m.body.Position(), m.responder)
		if force.IsZero() {
			continue
		}
		m.body.AddForce(force)
		applied++
	}

	for _, id := range stale {
		f.removeID(id)
	}
	if len(stale) > 0 {
		f.logger.Debug("pruned stale zone members", log.Int("count", len(stale)))
	}
	return applied
}

// ForceOn returns the force a body at pos with the given response factor would
// receive this step.
func (f *Field) ForceOn(pos physics.Vec2, response float64) physics.Vec2 {
	return f.forceAt(f.Center(), f.GravitationalStrength(), pos, constResponder(response))
}

func (f *Field) forceAt(center physics.Vec2, strength float64, pos physics.Vec2, r Responder) physics.Vec2 {
	delta := center.Sub(pos)
	falloff := StrengthFactor(delta.Len(), f.radius)
	if falloff == 0 {
		return physics.Zero
	}
	response := 1.0
	if r != nil {
		response = r.GravityResponseFactor()
	}
	return delta.Normalize().Scale(strength * falloff * response)
}

// StrengthFactor is the linear falloff: 1 at the center, 0 at and beyond radius.
func StrengthFactor(distance, radius float64) float64 {
	if radius <= 0 {
		return 0
	}
	return physics.Clamp01(1 - distance/radius)
}

// Center is the current zone center.
func (f *Field) Center() physics.Vec2 {
	if f.origin == nil {
		return physics.Zero
	}
	return f.origin.Position()
}

func (f *Field) InfluenceRadius() float64 { return f.radius }

func (f *Field) SetInfluenceRadius(r float64) { f.radius = r }

// SetGravitationalStrength sets the base strength; any active multiplier still applies.
func (f *Field) SetGravitationalStrength(s float64) { f.strength = s }

// BaseStrength is the strength without the temporary multiplier.
func (f *Field) BaseStrength() float64 { return f.strength }

// GravitationalStrength is the currently active strength, multiplier included.
func (f *Field) GravitationalStrength() float64 { return f.strength * f.multiplier }

// SetStrengthMultiplier replaces the temporary multiplier. It never compounds.
func (f *Field) SetStrengthMultiplier(m float64) { f.multiplier = m }

func (f *Field) StrengthMultiplier() float64 { return f.multiplier }

type constResponder float64

func (c constResponder) GravityResponseFactor() float64 { return float64(c) }

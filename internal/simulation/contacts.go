package simulation

import (
	"bytes"

	"github.com/google/uuid"

	"github.com/fermisquasar/Filling-the-Void/internal/core/debris"
	"github.com/fermisquasar/Filling-the-Void/internal/core/systems/physics"
)

// Colliders is the static geometry contacts are tested against in one step.
type Colliders struct {
	Planet       physics.Vec2
	PlanetRadius float64
	ZoneRadius   float64
	// Attractor is nil when no attractor is configured.
	Attractor       *physics.Vec2
	AttractorRadius float64
}

// ContactListener receives the events found by a ContactDetector.
type ContactListener interface {
	ZoneEntered(b *debris.Body)
	ZoneStayed(b *debris.Body)
	ZoneExited(b *debris.Body)
	PlanetTouched(b *debris.Body)
	AttractorTouched(b *debris.Body)
	// DebrisTouched reports a new contact; normal points from a toward b.
	DebrisTouched(a, b *debris.Body, normal physics.Vec2)
}

type contactState struct {
	zone   bool
	planet bool
	seen   uint64
}

type pairKey [2]uuid.UUID

func makePair(a, b uuid.UUID) pairKey {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return pairKey{a, b}
}

// ContactDetector turns overlaps into enter, stay and exit transitions.
// Zone events fire every step; planet and debris contacts fire on enter only;
// attractor contacts fire on every overlapping step.
type ContactDetector struct {
	step   uint64
	states map[uuid.UUID]*contactState
	pairs  map[pairKey]uint64
}

func NewContactDetector() *ContactDetector {
	return &ContactDetector{
		states: make(map[uuid.UUID]*contactState),
		pairs:  make(map[pairKey]uint64),
	}
}

// Detect tests every live body and reports transitions to l. Bodies destroyed
// by a listener are skipped for the rest of the step. State for bodies that
// are no longer present is dropped without exit events.
func (d *ContactDetector) Detect(bodies []*debris.Body, c Colliders, l ContactListener) {
	d.step++

	for _, b := range bodies {
		if !b.Alive() {
			continue
		}
		st := d.state(b.ID())
		pos, r := b.Position(), b.Radius()

		inZone := physics.CirclesOverlap(c.Planet, c.ZoneRadius, pos, r)
		switch {
		case inZone && !st.zone:
			l.ZoneEntered(b)
		case inZone:
			l.ZoneStayed(b)
		case st.zone:
			l.ZoneExited(b)
		}
		st.zone = inZone

		touching := physics.CirclesOverlap(c.Planet, c.PlanetRadius, pos, r)
		if touching && !st.planet {
			l.PlanetTouched(b)
		}
		st.planet = touching
		if !b.Alive() {
			continue
		}

		if c.Attractor != nil && physics.CirclesOverlap(*c.Attractor, c.AttractorRadius, pos, r) {
			l.AttractorTouched(b)
		}
	}

	for i := 0; i < len(bodies); i++ {
		a := bodies[i]
		if !a.Alive() {
			continue
		}
		for j := i + 1; j < len(bodies); j++ {
			b := bodies[j]
			if !b.Alive() || !physics.CirclesOverlap(a.Position(), a.Radius(), b.Position(), b.Radius()) {
				continue
			}
			key := makePair(a.ID(), b.ID())
			if last, ok := d.pairs[key]; !ok || last != d.step-1 {
				normal := b.Position().Sub(a.Position()).Normalize()
				if normal.IsZero() {
					normal = physics.V(1, 0)
				}
				l.DebrisTouched(a, b, normal)
			}
			d.pairs[key] = d.step
		}
	}

	for id, st := range d.states {
		if st.seen != d.step {
			delete(d.states, id)
		}
	}
	for key, last := range d.pairs {
		if last != d.step {
			delete(d.pairs, key)
		}
	}
}

func (d *ContactDetector) state(id uuid.UUID) *contactState {
	st, ok := d.states[id]
	if !ok {
		st = &contactState{}
		d.states[id] = st
	}
	st.seen = d.step
	return st
}

// MarkTouching records the planet and debris overlaps that bodies already
// have where they were created, without reporting them. The next Detect then
// treats those contacts as ongoing, so only a later re-entry fires.
func (d *ContactDetector) MarkTouching(bodies []*debris.Body, c Colliders) {
	for i, b := range bodies {
		if !b.Alive() {
			continue
		}
		st := d.state(b.ID())
		st.planet = physics.CirclesOverlap(c.Planet, c.PlanetRadius, b.Position(), b.Radius())
		for _, o := range bodies[i+1:] {
			if o.Alive() && physics.CirclesOverlap(b.Position(), b.Radius(), o.Position(), o.Radius()) {
				d.pairs[makePair(b.ID(), o.ID())] = d.step
			}
		}
	}
}

// Forget drops all state for a body that is being released.
func (d *ContactDetector) Forget(id uuid.UUID) {
	delete(d.states, id)
}

// Tracked is the number of bodies with contact state.
func (d *ContactDetector) Tracked() int { return len(d.states) }

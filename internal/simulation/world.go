// Package simulation wires the core components into a frame-stepped world and
// plays the collaborator roles around them: spawning, contact detection,
// scoring and input.
package simulation

import (
	"fmt"
	"math/rand/v2"

	"github.com/fermisquasar/Filling-the-Void/internal/config"
	"github.com/fermisquasar/Filling-the-Void/internal/core/collection"
	"github.com/fermisquasar/Filling-the-Void/internal/core/debris"
	"github.com/fermisquasar/Filling-the-Void/internal/core/events/bus"
	"github.com/fermisquasar/Filling-the-Void/internal/core/gravity"
	"github.com/fermisquasar/Filling-the-Void/internal/core/observability/log"
	"github.com/fermisquasar/Filling-the-Void/internal/core/orbit"
	"github.com/fermisquasar/Filling-the-Void/internal/core/systems"
	"github.com/fermisquasar/Filling-the-Void/internal/core/systems/physics"
	"github.com/fermisquasar/Filling-the-Void/internal/core/trajectory"
)

// debrisRestitution is the bounciness of debris-debris contacts.
const debrisRestitution = 0.8

// World owns every component of one session. It is driven from a single
// goroutine: Apply, Update and FixedUpdate must not be called concurrently.
type World struct {
	cfg    config.Config
	logger log.Log
	rng    *rand.Rand
	bus    bus.EventBus

	field       physics.Field
	attractor   *physics.Vec2
	orbit       *orbit.Engine
	gravity     *gravity.Field
	planner     *trajectory.Planner
	factory     *debris.Factory
	collector   *collection.Collector
	spawner     *Spawner
	contacts    *ContactDetector
	scoreboard  *Scoreboard
	manager     *systems.Manager
	emitVariant debris.Variant

	bodies []*debris.Body
	time   float64
	steps  uint64
}

// NewWorld builds a session from a normalized config. A nil bus gets a private one.
func NewWorld(cfg config.Config, eventBus bus.EventBus, logger log.Log) (*World, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	if eventBus == nil {
		eventBus = bus.New()
	}
	emit, err := debris.ParseVariant(cfg.Collection.EmitVariant)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	direction, ok := orbit.ParseDirection(cfg.Orbit.Direction)
	if !ok {
		return nil, fmt.Errorf("%w: orbit direction %q", config.ErrInvalidConfig, cfg.Orbit.Direction)
	}

	w := &World{
		cfg:         cfg,
		logger:      logger.With(log.String("session", cfg.Seed)),
		rng:         NewRand(cfg.Seed),
		bus:         eventBus,
		field:       physics.NewField(physics.V(cfg.Field.CenterX, cfg.Field.CenterY), cfg.Field.Width, cfg.Field.Height),
		contacts:    NewContactDetector(),
		emitVariant: emit,
	}

	var plannerAttractor *trajectory.Attractor
	center := w.field.Center
	if cfg.Attractor.Enabled {
		pos := physics.V(cfg.Attractor.X, cfg.Attractor.Y)
		w.attractor = &pos
		center = pos
		plannerAttractor = &trajectory.Attractor{Position: pos, AvoidanceRadius: cfg.Attractor.AvoidanceRadius}
	} else {
		w.logger.Warn("attractor disabled, orbit centred on field")
	}

	w.orbit = orbit.NewEngine(orbit.Params{
		Center:       center,
		SemiMajor:    cfg.Orbit.SemiMajor,
		SemiMinor:    cfg.Orbit.SemiMinor,
		Speed:        cfg.Orbit.Speed,
		Direction:    direction,
		InitialAngle: cfg.Orbit.InitialAngle,
	})
	w.gravity = gravity.NewField(w.orbit, gravity.Config{
		InfluenceRadius:       cfg.Gravity.InfluenceRadius,
		GravitationalStrength: cfg.Gravity.Strength,
	}, w.logger)
	w.planner = trajectory.NewPlanner(w.field, plannerAttractor, trajectory.Config{
		SpawnPointsPerEdge: cfg.Spawner.PointsPerEdge,
		CurveMin:           cfg.Spawner.CurveMin,
		CurveMax:           cfg.Spawner.CurveMax,
	}, w.rng, w.logger)
	w.factory = debris.NewFactory(debris.FactoryConfig{
		SpeedMin: cfg.Spawner.SpeedMin,
		SpeedMax: cfg.Spawner.SpeedMax,
		Weights:  cfg.Spawner.SpawnWeights(),
	}, w.rng)
	w.collector = collection.New(collectionConfig(cfg.Collection, w.field.Center), w.gravity, w.attractor, w.rng, w.logger)
	w.spawner = NewSpawner(w.planner, w.factory, cfg.Spawner.Interval, cfg.Spawner.MaxActive, w.logger)

	if w.scoreboard, err = NewScoreboard(eventBus); err != nil {
		return nil, err
	}

	w.manager = systems.NewManager(w.logger)
	w.manager.OnSystemError(func(name string, pass systems.Pass, err error) {
		w.logger.Warn("system failed",
			log.String("system", name),
			log.Stringer("pass", pass),
			log.Error(err))
	})
	for _, s := range w.systemList() {
		if err := w.manager.Register(s); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func collectionConfig(c config.CollectionConfig, origin physics.Vec2) collection.Config {
	return collection.Config{
		Capacity:           c.Capacity,
		StrengthMultiplier: c.StrengthMultiplier,
		MinimumBounceSpeed: c.MinimumBounceSpeed,
		TorqueImpulse:      c.TorqueImpulse,
		BaseForce:          c.BaseForce,
		PerDebrisForce:     c.PerDebrisForce,
		Inward:             collection.Cone{Angle: c.InwardAngle, Weight: c.InwardWeight},
		Outward:            collection.Cone{Angle: c.OutwardAngle, Weight: c.OutwardWeight},
		SpawnCone:          c.SpawnCone,
		SpawnOffset:        c.SpawnOffset,
		Origin:             origin,
	}
}

// systemList returns the per-frame work. Variable pass: orbit then economy.
// Fixed pass: spawn, gravity from the pre-step snapshot, integrate, contacts,
// then bounds and release.
func (w *World) systemList() []systems.System {
	return []systems.System{
		systems.Func{ID: "orbit", Order: systems.PriorityHighest, OnUpdate: func(dt float64) error {
			w.orbit.Advance(dt)
			return nil
		}},
		systems.Func{ID: "economy", Order: systems.PriorityNormal, OnUpdate: func(float64) error {
			w.collector.Update()
			return nil
		}},
		systems.Func{ID: "spawner", Order: systems.PriorityHighest, OnFixedUpdate: func(dt float64) error {
			if b := w.spawner.Step(dt, w.ActiveDebris()); b != nil {
				w.bodies = append(w.bodies, b)
				w.publish(EventDebrisSpawned, sourceSpawner, debrisEvent(b, w.time))
			}
			return nil
		}},
		systems.Func{ID: "gravity", Order: systems.PriorityHigh, OnFixedUpdate: func(float64) error {
			w.gravity.Step()
			return nil
		}},
		systems.Func{ID: "integrate", Order: systems.PriorityNormal, OnFixedUpdate: func(dt float64) error {
			for _, b := range w.bodies {
				b.Integrate(dt)
			}
			return nil
		}},
		systems.Func{ID: "contacts", Order: systems.PriorityLow, OnFixedUpdate: func(float64) error {
			w.contacts.Detect(w.bodies, w.colliders(), worldContacts{w})
			return nil
		}},
		systems.Func{ID: "bounds", Order: systems.PriorityLowest, OnFixedUpdate: func(float64) error {
			w.sweep()
			return nil
		}},
	}
}

// Update runs the variable-timestep pass. Failures are logged, never returned.
func (w *World) Update(dt float64) {
	_ = w.manager.Update(dt)
}

// FixedUpdate runs one fixed physics step.
func (w *World) FixedUpdate(dt float64) {
	_ = w.manager.FixedUpdate(dt)
	w.time += dt
	w.steps++
}

// Apply executes an input command immediately.
func (w *World) Apply(cmd Command) {
	if cmd == nil {
		return
	}
	w.logger.Debug("command", log.Stringer("command", cmd), log.Float64("time", w.time))
	cmd.apply(w)
}

func (w *World) expel(mode collection.Mode) {
	planet := w.orbit.Position()
	emissions := w.collector.Expel(mode, planet)
	if len(emissions) == 0 {
		return
	}
	spawned := make([]*debris.Body, len(emissions))
	events := make([]bus.Event, 0, len(emissions)+1)
	for i, e := range emissions {
		b := w.factory.SpawnWithImpulse(w.emitVariant, e.Position, e.Impulse, e.Spin)
		spawned[i] = b
		events = append(events, bus.NewEvent(EventDebrisSpawned, sourceCollector, debrisEvent(b, w.time)))
	}
	// emitted bodies start inside the planet's reach and next to each other
	w.contacts.MarkTouching(spawned, w.colliders())
	w.bodies = append(w.bodies, spawned...)

	events = append(events, bus.NewEvent(EventDebrisExpelled, sourceCollector, ExpelledEvent{
		Mode:  mode,
		Count: len(emissions),
		Force: w.collector.TotalForce(len(emissions)),
		Time:  w.time,
	}))
	if err := w.bus.PublishBatch(events...); err != nil {
		w.logger.Warn("event handler failed", log.String("event", EventDebrisExpelled), log.Error(err))
	}
}

func (w *World) colliders() Colliders {
	return Colliders{
		Planet:          w.orbit.Position(),
		PlanetRadius:    w.cfg.Planet.Radius,
		ZoneRadius:      w.gravity.InfluenceRadius(),
		Attractor:       w.attractor,
		AttractorRadius: w.cfg.Attractor.ConsumeRadius,
	}
}

// sweep despawns bodies that left the field and releases every dead body.
func (w *World) sweep() {
	kept := w.bodies[:0]
	for _, b := range w.bodies {
		if b.Alive() && !b.Tick(w.field) {
			w.publish(EventDebrisDespawned, sourceBounds, debrisEvent(b, w.time))
		}
		if b.Alive() {
			kept = append(kept, b)
			continue
		}
		w.gravity.RemoveMember(b)
		w.contacts.Forget(b.ID())
		w.factory.Release(b)
	}
	clear(w.bodies[len(kept):])
	w.bodies = kept
}

func (w *World) publish(typ, source string, data any) {
	if err := w.bus.Publish(bus.NewEvent(typ, source, data)); err != nil {
		w.logger.Warn("event handler failed", log.String("event", typ), log.Error(err))
	}
}

// ActiveDebris counts live bodies.
func (w *World) ActiveDebris() int {
	n := 0
	for _, b := range w.bodies {
		if b.Alive() {
			n++
		}
	}
	return n
}

// Debris returns the live bodies. The slice is owned by the world.
func (w *World) Debris() []*debris.Body { return w.bodies }

func (w *World) Time() float64                    { return w.time }
func (w *World) Steps() uint64                    { return w.steps }
func (w *World) Config() config.Config            { return w.cfg }
func (w *World) Bus() bus.EventBus                { return w.bus }
func (w *World) Field() physics.Field             { return w.field }
func (w *World) Orbit() *orbit.Engine             { return w.orbit }
func (w *World) Gravity() *gravity.Field          { return w.gravity }
func (w *World) Planner() *trajectory.Planner     { return w.planner }
func (w *World) Collector() *collection.Collector { return w.collector }
func (w *World) Scoreboard() *Scoreboard          { return w.scoreboard }
func (w *World) Systems() *systems.Manager        { return w.manager }

// Close detaches the world's subscribers from the bus.
func (w *World) Close() error { return w.scoreboard.Close() }

// worldContacts routes contact transitions into the core components.
type worldContacts struct{ w *World }

func (c worldContacts) ZoneEntered(b *debris.Body) { c.w.gravity.AddMember(b) }
func (c worldContacts) ZoneStayed(b *debris.Body)  { c.w.gravity.ConfirmMember(b) }
func (c worldContacts) ZoneExited(b *debris.Body)  { c.w.gravity.RemoveMember(b) }

func (c worldContacts) PlanetTouched(b *debris.Body) {
	w := c.w
	switch w.collector.HandleContact(w.orbit.Position(), b) {
	case collection.OutcomeCollected:
		w.publish(EventDebrisCollected, sourceCollector, debrisEvent(b, w.time))
	case collection.OutcomeBounced:
		w.publish(EventDebrisBounced, sourceCollector, debrisEvent(b, w.time))
	}
}

func (c worldContacts) AttractorTouched(b *debris.Body) {
	w := c.w
	b.Destroy()
	w.publish(EventDebrisConsumed, sourceAttractor, ConsumedEvent{
		DebrisEvent: debrisEvent(b, w.time),
		Score:       b.Variant().Coefficients().Score,
	})
}

// DebrisTouched resolves the contact elastically, then lets each body apply
// its variant-specific reaction.
func (c worldContacts) DebrisTouched(a, b *debris.Body, normal physics.Vec2) {
	approach := a.Velocity().Sub(b.Velocity()).Dot(normal)
	if approach > 0 {
		j := (1 + debrisRestitution) * approach / (1/a.Mass() + 1/b.Mass())
		a.AddImpulse(normal.Scale(-j))
		b.AddImpulse(normal.Scale(j))
	}
	a.OnCollisionWith(b, normal)
	b.OnCollisionWith(a, normal.Neg())
}

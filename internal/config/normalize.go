package config

import (
	"fmt"
	"math"

	"github.com/fermisquasar/Filling-the-Void/internal/core/observability/log"
)

// Normalize repairs degenerate values in place so a session can always start.
// Every repair is logged at warn level and returned as a message.
func (c *Config) Normalize(logger log.Log) []string {
	if logger == nil {
		logger = log.NewNop()
	}
	d := Default()
	var fixes []string
	fix := func(key string, from, to any) {
		msg := fmt.Sprintf("%s: %v replaced by %v", key, from, to)
		fixes = append(fixes, msg)
		logger.Warn("config value repaired",
			log.String("key", key),
			log.Any("from", from),
			log.Any("to", to))
	}
	positive := func(key string, v *float64, def float64) {
		if !(*v > 0) || math.IsInf(*v, 0) {
			fix(key, *v, def)
			*v = def
		}
	}
	nonNegative := func(key string, v *float64) {
		if *v < 0 || math.IsNaN(*v) {
			fix(key, *v, 0.0)
			*v = 0
		}
	}
	unit := func(key string, v *float64) {
		if !(*v >= 0 && *v <= 1) {
			clamped := 0.0
			if *v > 1 {
				clamped = 1
			}
			fix(key, *v, clamped)
			*v = clamped
		}
	}
	ordered := func(key string, lo, hi *float64) {
		if *lo > *hi {
			fix(key, fmt.Sprintf("[%v, %v]", *lo, *hi), fmt.Sprintf("[%v, %v]", *hi, *lo))
			*lo, *hi = *hi, *lo
		}
	}

	positive("field.width", &c.Field.Width, d.Field.Width)
	positive("field.height", &c.Field.Height, d.Field.Height)

	nonNegative("attractor.avoidance_radius", &c.Attractor.AvoidanceRadius)
	nonNegative("attractor.consume_radius", &c.Attractor.ConsumeRadius)

	positive("orbit.semi_major", &c.Orbit.SemiMajor, d.Orbit.SemiMajor)
	positive("orbit.semi_minor", &c.Orbit.SemiMinor, d.Orbit.SemiMinor)
	if math.IsNaN(c.Orbit.Speed) || math.IsInf(c.Orbit.Speed, 0) {
		fix("orbit.speed", c.Orbit.Speed, d.Orbit.Speed)
		c.Orbit.Speed = d.Orbit.Speed
	}

	positive("planet.radius", &c.Planet.Radius, d.Planet.Radius)
	positive("gravity.influence_radius", &c.Gravity.InfluenceRadius, d.Gravity.InfluenceRadius)
	nonNegative("gravity.strength", &c.Gravity.Strength)

	if c.Spawner.PointsPerEdge < 1 {
		fix("spawner.points_per_edge", c.Spawner.PointsPerEdge, 1)
		c.Spawner.PointsPerEdge = 1
	}
	positive("spawner.interval", &c.Spawner.Interval, d.Spawner.Interval)
	if c.Spawner.MaxActive < 0 {
		fix("spawner.max_active", c.Spawner.MaxActive, 0)
		c.Spawner.MaxActive = 0
	}
	nonNegative("spawner.curve_min", &c.Spawner.CurveMin)
	nonNegative("spawner.curve_max", &c.Spawner.CurveMax)
	ordered("spawner.curve", &c.Spawner.CurveMin, &c.Spawner.CurveMax)
	nonNegative("spawner.speed_min", &c.Spawner.SpeedMin)
	nonNegative("spawner.speed_max", &c.Spawner.SpeedMax)
	ordered("spawner.speed", &c.Spawner.SpeedMin, &c.Spawner.SpeedMax)
	total := 0.0
	for _, w := range c.Spawner.Weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		fix("spawner.weights", c.Spawner.Weights, d.Spawner.Weights)
		c.Spawner.Weights = d.Spawner.Weights
	}

	if c.Collection.Capacity < 0 {
		fix("collection.capacity", c.Collection.Capacity, 0)
		c.Collection.Capacity = 0
	}
	positive("collection.strength_multiplier", &c.Collection.StrengthMultiplier, 1)
	nonNegative("collection.minimum_bounce_speed", &c.Collection.MinimumBounceSpeed)
	nonNegative("collection.torque_impulse", &c.Collection.TorqueImpulse)
	nonNegative("collection.base_force", &c.Collection.BaseForce)
	nonNegative("collection.per_debris_force", &c.Collection.PerDebrisForce)
	nonNegative("collection.spawn_offset", &c.Collection.SpawnOffset)
	unit("collection.inward_weight", &c.Collection.InwardWeight)
	unit("collection.outward_weight", &c.Collection.OutwardWeight)

	positive("runner.fixed_step", &c.Runner.FixedStep, d.Runner.FixedStep)
	positive("runner.frame_step", &c.Runner.FrameStep, d.Runner.FrameStep)
	nonNegative("runner.duration", &c.Runner.Duration)
	if c.Runner.MaxStepsPerFrame < 1 {
		fix("runner.max_steps_per_frame", c.Runner.MaxStepsPerFrame, d.Runner.MaxStepsPerFrame)
		c.Runner.MaxStepsPerFrame = d.Runner.MaxStepsPerFrame
	}

	positive("telemetry.broadcast_hz", &c.Telemetry.BroadcastHz, d.Telemetry.BroadcastHz)
	if c.Telemetry.Burst < 1 {
		fix("telemetry.burst", c.Telemetry.Burst, 1)
		c.Telemetry.Burst = 1
	}
	return fixes
}

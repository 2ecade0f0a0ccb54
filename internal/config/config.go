// Package config holds the tunables of a simulation session and loads them
// from YAML files, viper instances and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fermisquasar/Filling-the-Void/internal/core/debris"
	"github.com/fermisquasar/Filling-the-Void/internal/core/observability/log"
	"github.com/fermisquasar/Filling-the-Void/internal/core/orbit"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	// Seed names the session. Equal seeds replay the same spawns.
	Seed       string           `mapstructure:"seed" yaml:"seed"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	Field      FieldConfig      `mapstructure:"field" yaml:"field"`
	Attractor  AttractorConfig  `mapstructure:"attractor" yaml:"attractor"`
	Orbit      OrbitConfig      `mapstructure:"orbit" yaml:"orbit"`
	Planet     PlanetConfig     `mapstructure:"planet" yaml:"planet"`
	Gravity    GravityConfig    `mapstructure:"gravity" yaml:"gravity"`
	Spawner    SpawnerConfig    `mapstructure:"spawner" yaml:"spawner"`
	Collection CollectionConfig `mapstructure:"collection" yaml:"collection"`
	Runner     RunnerConfig     `mapstructure:"runner" yaml:"runner"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry" yaml:"telemetry"`
	Script     []ScriptStep     `mapstructure:"script" yaml:"script,omitempty"`
}

type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Encoding   string `mapstructure:"encoding" yaml:"encoding"`
	File       string `mapstructure:"file" yaml:"file,omitempty"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// Options converts to logger options. Unknown levels fall back to info.
func (l LogConfig) Options() log.Options {
	level, _ := log.ParseLevel(l.Level)
	return log.Options{
		Level:      level,
		Encoding:   l.Encoding,
		File:       l.File,
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAgeDays: l.MaxAgeDays,
		Compress:   l.Compress,
	}
}

type FieldConfig struct {
	CenterX float64 `mapstructure:"center_x" yaml:"center_x"`
	CenterY float64 `mapstructure:"center_y" yaml:"center_y"`
	Width   float64 `mapstructure:"width" yaml:"width"`
	Height  float64 `mapstructure:"height" yaml:"height"`
}

type AttractorConfig struct {
	Enabled         bool    `mapstructure:"enabled" yaml:"enabled"`
	X               float64 `mapstructure:"x" yaml:"x"`
	Y               float64 `mapstructure:"y" yaml:"y"`
	AvoidanceRadius float64 `mapstructure:"avoidance_radius" yaml:"avoidance_radius"`
	// ConsumeRadius is the contact radius inside which debris is destroyed.
	ConsumeRadius float64 `mapstructure:"consume_radius" yaml:"consume_radius"`
}

type OrbitConfig struct {
	SemiMajor    float64 `mapstructure:"semi_major" yaml:"semi_major"`
	SemiMinor    float64 `mapstructure:"semi_minor" yaml:"semi_minor"`
	Speed        float64 `mapstructure:"speed" yaml:"speed"`
	Direction    string  `mapstructure:"direction" yaml:"direction"`
	InitialAngle float64 `mapstructure:"initial_angle" yaml:"initial_angle"`
}

type PlanetConfig struct {
	Radius float64 `mapstructure:"radius" yaml:"radius"`
}

type GravityConfig struct {
	InfluenceRadius float64 `mapstructure:"influence_radius" yaml:"influence_radius"`
	Strength        float64 `mapstructure:"strength" yaml:"strength"`
}

type SpawnerConfig struct {
	PointsPerEdge int     `mapstructure:"points_per_edge" yaml:"points_per_edge"`
	Interval      float64 `mapstructure:"interval" yaml:"interval"`
	MaxActive     int     `mapstructure:"max_active" yaml:"max_active"`
	CurveMin      float64 `mapstructure:"curve_min" yaml:"curve_min"`
	CurveMax      float64 `mapstructure:"curve_max" yaml:"curve_max"`
	SpeedMin      float64 `mapstructure:"speed_min" yaml:"speed_min"`
	SpeedMax      float64 `mapstructure:"speed_max" yaml:"speed_max"`
	// Weights maps variant names to relative spawn weights.
	Weights map[string]float64 `mapstructure:"weights" yaml:"weights"`
}

type CollectionConfig struct {
	Capacity           int     `mapstructure:"capacity" yaml:"capacity"`
	StrengthMultiplier float64 `mapstructure:"strength_multiplier" yaml:"strength_multiplier"`
	MinimumBounceSpeed float64 `mapstructure:"minimum_bounce_speed" yaml:"minimum_bounce_speed"`
	TorqueImpulse      float64 `mapstructure:"torque_impulse" yaml:"torque_impulse"`
	BaseForce          float64 `mapstructure:"base_force" yaml:"base_force"`
	PerDebrisForce     float64 `mapstructure:"per_debris_force" yaml:"per_debris_force"`
	InwardAngle        float64 `mapstructure:"inward_angle" yaml:"inward_angle"`
	InwardWeight       float64 `mapstructure:"inward_weight" yaml:"inward_weight"`
	OutwardAngle       float64 `mapstructure:"outward_angle" yaml:"outward_angle"`
	OutwardWeight      float64 `mapstructure:"outward_weight" yaml:"outward_weight"`
	SpawnCone          float64 `mapstructure:"spawn_cone" yaml:"spawn_cone"`
	SpawnOffset        float64 `mapstructure:"spawn_offset" yaml:"spawn_offset"`
	// EmitVariant is the variant of bodies created by expulsion.
	EmitVariant string `mapstructure:"emit_variant" yaml:"emit_variant"`
}

type RunnerConfig struct {
	FixedStep        float64 `mapstructure:"fixed_step" yaml:"fixed_step"`
	FrameStep        float64 `mapstructure:"frame_step" yaml:"frame_step"`
	Duration         float64 `mapstructure:"duration" yaml:"duration"`
	Realtime         bool    `mapstructure:"realtime" yaml:"realtime"`
	MaxStepsPerFrame int     `mapstructure:"max_steps_per_frame" yaml:"max_steps_per_frame"`
}

type TelemetryConfig struct {
	Enabled        bool     `mapstructure:"enabled" yaml:"enabled"`
	Addr           string   `mapstructure:"addr" yaml:"addr"`
	BroadcastHz    float64  `mapstructure:"broadcast_hz" yaml:"broadcast_hz"`
	Burst          int      `mapstructure:"burst" yaml:"burst"`
	MaxClients     int      `mapstructure:"max_clients" yaml:"max_clients"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// ScriptStep is one timed input command. At is simulation time in seconds.
type ScriptStep struct {
	At      float64 `mapstructure:"at" yaml:"at"`
	Command string  `mapstructure:"command" yaml:"command"`
	Value   string  `mapstructure:"value" yaml:"value,omitempty"`
}

func Default() Config {
	return Config{
		Seed: "filling-the-void",
		Log: LogConfig{
			Level:      "info",
			Encoding:   "console",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
		Field: FieldConfig{Width: 32, Height: 18},
		Attractor: AttractorConfig{
			Enabled:         true,
			AvoidanceRadius: 3,
			ConsumeRadius:   0.8,
		},
		Orbit: OrbitConfig{
			SemiMajor: 6,
			SemiMinor: 4,
			Speed:     0.6,
			Direction: "ccw",
		},
		Planet:  PlanetConfig{Radius: 0.6},
		Gravity: GravityConfig{InfluenceRadius: 3, Strength: 10},
		Spawner: SpawnerConfig{
			PointsPerEdge: 5,
			Interval:      1,
			MaxActive:     40,
			CurveMin:      0.1,
			CurveMax:      0.4,
			SpeedMin:      1.5,
			SpeedMax:      3,
			Weights: map[string]float64{
				"standard": 0.55,
				"heavy":    0.2,
				"sticky":   0.15,
				"fragile":  0.1,
			},
		},
		Collection: CollectionConfig{
			Capacity:           5,
			StrengthMultiplier: 1.5,
			MinimumBounceSpeed: 2,
			TorqueImpulse:      5,
			BaseForce:          5,
			PerDebrisForce:     0.5,
			InwardAngle:        15,
			InwardWeight:       0.2,
			OutwardAngle:       30,
			OutwardWeight:      0.3,
			SpawnCone:          45,
			SpawnOffset:        0.75,
			EmitVariant:        "standard",
		},
		Runner: RunnerConfig{
			FixedStep:        0.02,
			FrameStep:        1.0 / 60,
			Duration:         60,
			MaxStepsPerFrame: 5,
		},
		Telemetry: TelemetryConfig{
			Addr:           ":8080",
			BroadcastHz:    10,
			Burst:          1,
			MaxClients:     16,
			AllowedOrigins: []string{"*"},
		},
	}
}

// LoadYAML decodes r on top of Default, normalizes and validates the result.
func LoadYAML(r io.Reader, logger log.Log) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	c.Normalize(logger)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load unmarshals a viper instance prepared with SetDefaults.
func Load(v *viper.Viper, logger log.Log) (*Config, error) {
	c := Default()
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	c.Normalize(logger)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save writes c as YAML.
func (c *Config) Save(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

// SetDefaults registers every key with viper so env overrides resolve.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("seed", d.Seed)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.encoding", d.Log.Encoding)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
	v.SetDefault("log.compress", d.Log.Compress)

	v.SetDefault("field.center_x", d.Field.CenterX)
	v.SetDefault("field.center_y", d.Field.CenterY)
	v.SetDefault("field.width", d.Field.Width)
	v.SetDefault("field.height", d.Field.Height)

	v.SetDefault("attractor.enabled", d.Attractor.Enabled)
	v.SetDefault("attractor.x", d.Attractor.X)
	v.SetDefault("attractor.y", d.Attractor.Y)
	v.SetDefault("attractor.avoidance_radius", d.Attractor.AvoidanceRadius)
	v.SetDefault("attractor.consume_radius", d.Attractor.ConsumeRadius)

	v.SetDefault("orbit.semi_major", d.Orbit.SemiMajor)
	v.SetDefault("orbit.semi_minor", d.Orbit.SemiMinor)
	v.SetDefault("orbit.speed", d.Orbit.Speed)
	v.SetDefault("orbit.direction", d.Orbit.Direction)
	v.SetDefault("orbit.initial_angle", d.Orbit.InitialAngle)

	v.SetDefault("planet.radius", d.Planet.Radius)

	v.SetDefault("gravity.influence_radius", d.Gravity.InfluenceRadius)
	v.SetDefault("gravity.strength", d.Gravity.Strength)

	v.SetDefault("spawner.points_per_edge", d.Spawner.PointsPerEdge)
	v.SetDefault("spawner.interval", d.Spawner.Interval)
	v.SetDefault("spawner.max_active", d.Spawner.MaxActive)
	v.SetDefault("spawner.curve_min", d.Spawner.CurveMin)
	v.SetDefault("spawner.curve_max", d.Spawner.CurveMax)
	v.SetDefault("spawner.speed_min", d.Spawner.SpeedMin)
	v.SetDefault("spawner.speed_max", d.Spawner.SpeedMax)
	v.SetDefault("spawner.weights", d.Spawner.Weights)

	v.SetDefault("collection.capacity", d.Collection.Capacity)
	v.SetDefault("collection.strength_multiplier", d.Collection.StrengthMultiplier)
	v.SetDefault("collection.minimum_bounce_speed", d.Collection.MinimumBounceSpeed)
	v.SetDefault("collection.torque_impulse", d.Collection.TorqueImpulse)
	v.SetDefault("collection.base_force", d.Collection.BaseForce)
	v.SetDefault("collection.per_debris_force", d.Collection.PerDebrisForce)
	v.SetDefault("collection.inward_angle", d.Collection.InwardAngle)
	v.SetDefault("collection.inward_weight", d.Collection.InwardWeight)
	v.SetDefault("collection.outward_angle", d.Collection.OutwardAngle)
	v.SetDefault("collection.outward_weight", d.Collection.OutwardWeight)
	v.SetDefault("collection.spawn_cone", d.Collection.SpawnCone)
	v.SetDefault("collection.spawn_offset", d.Collection.SpawnOffset)
	v.SetDefault("collection.emit_variant", d.Collection.EmitVariant)

	v.SetDefault("runner.fixed_step", d.Runner.FixedStep)
	v.SetDefault("runner.frame_step", d.Runner.FrameStep)
	v.SetDefault("runner.duration", d.Runner.Duration)
	v.SetDefault("runner.realtime", d.Runner.Realtime)
	v.SetDefault("runner.max_steps_per_frame", d.Runner.MaxStepsPerFrame)

	v.SetDefault("telemetry.enabled", d.Telemetry.Enabled)
	v.SetDefault("telemetry.addr", d.Telemetry.Addr)
	v.SetDefault("telemetry.broadcast_hz", d.Telemetry.BroadcastHz)
	v.SetDefault("telemetry.burst", d.Telemetry.Burst)
	v.SetDefault("telemetry.max_clients", d.Telemetry.MaxClients)
	v.SetDefault("telemetry.allowed_origins", d.Telemetry.AllowedOrigins)
}

// Validate reports values that cannot be repaired: unknown names.
func (c *Config) Validate() error {
	var errs []error
	if _, ok := log.ParseLevel(c.Log.Level); !ok {
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	switch c.Log.Encoding {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.encoding: want json or console, got %q", c.Log.Encoding))
	}
	if _, ok := orbit.ParseDirection(c.Orbit.Direction); !ok {
		errs = append(errs, fmt.Errorf("orbit.direction: unknown direction %q", c.Orbit.Direction))
	}
	if _, err := debris.ParseVariant(c.Collection.EmitVariant); err != nil {
		errs = append(errs, fmt.Errorf("collection.emit_variant: %w", err))
	}
	for name := range c.Spawner.Weights {
		if _, err := debris.ParseVariant(name); err != nil {
			errs = append(errs, fmt.Errorf("spawner.weights: %w", err))
		}
	}
	for i, step := range c.Script {
		if strings.TrimSpace(step.Command) == "" {
			errs = append(errs, fmt.Errorf("script[%d]: empty command", i))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// SpawnWeights resolves Weights to variants. Unknown names are skipped.
func (s SpawnerConfig) SpawnWeights() map[debris.Variant]float64 {
	out := make(map[debris.Variant]float64, len(s.Weights))
	for name, w := range s.Weights {
		v, err := debris.ParseVariant(name)
		if err != nil {
			continue
		}
		out[v] = w
	}
	return out
}

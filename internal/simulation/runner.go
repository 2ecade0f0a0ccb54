package simulation

import (
	"context"
	"time"

	"github.com/fermisquasar/Filling-the-Void/internal/config"
	"github.com/fermisquasar/Filling-the-Void/internal/core/observability/log"
)

// FrameObserver is called after every frame with a fresh snapshot.
type FrameObserver func(Snapshot)

// Runner drives a World with a fixed-timestep accumulator: one variable pass
// per frame followed by as many fixed passes as the accumulated time allows.
type Runner struct {
	world     *World
	cfg       config.RunnerConfig
	script    *Script
	logger    log.Log
	observers []FrameObserver
	detailed  bool

	accumulator float64
	frames      uint64
	dropped     float64
}

func NewRunner(world *World, cfg config.RunnerConfig, script *Script, logger log.Log) *Runner {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Runner{
		world:  world,
		cfg:    cfg,
		script: script,
		logger: logger.With(log.String("component", "runner")),
	}
}

// OnFrame registers an observer. detailed snapshots carry every body.
func (r *Runner) OnFrame(fn FrameObserver, detailed bool) {
	r.observers = append(r.observers, fn)
	r.detailed = r.detailed || detailed
}

// Frame advances the world by one rendered frame of dt seconds and returns the
// number of fixed steps taken. Backlog beyond MaxStepsPerFrame is dropped.
func (r *Runner) Frame(dt float64) int {
	for _, cmd := range r.script.Due(r.world.Time()) {
		r.world.Apply(cmd)
	}

	r.world.Update(dt)
	r.accumulator += dt
	steps := 0
	for r.accumulator >= r.cfg.FixedStep && steps < r.cfg.MaxStepsPerFrame {
		r.world.FixedUpdate(r.cfg.FixedStep)
		r.accumulator -= r.cfg.FixedStep
		steps++
	}
	if r.accumulator >= r.cfg.FixedStep {
		r.dropped += r.accumulator
		r.logger.Debug("frame backlog dropped", log.Float64("seconds", r.accumulator))
		r.accumulator = 0
	}
	r.frames++

	if len(r.observers) > 0 {
		snap := r.world.Snapshot(r.detailed)
		for _, fn := range r.observers {
			fn(snap)
		}
	}
	return steps
}

// Run drives frames until the configured duration of simulation time has
// passed or ctx is done. Headless runs step FrameStep as fast as possible;
// realtime runs follow the wall clock. A zero duration runs until ctx is done.
func (r *Runner) Run(ctx context.Context) (Snapshot, error) {
	r.logger.Info("run started",
		log.Bool("realtime", r.cfg.Realtime),
		log.Float64("duration", r.cfg.Duration),
		log.Float64("fixed_step", r.cfg.FixedStep))

	var err error
	if r.cfg.Realtime {
		err = r.runRealtime(ctx)
	} else {
		err = r.runHeadless(ctx)
	}

	final := r.world.Snapshot(false)
	r.logger.Info("run finished",
		log.Float64("time", final.Time),
		log.Uint64("frames", r.frames),
		log.Int("score", final.Stats.Score),
		log.Int("collected", final.Stats.Collected),
		log.Float64("dropped", r.dropped))
	return final, err
}

func (r *Runner) done() bool {
	return r.cfg.Duration > 0 && r.world.Time() >= r.cfg.Duration
}

func (r *Runner) runHeadless(ctx context.Context) error {
	for !r.done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.Frame(r.cfg.FrameStep)
	}
	return nil
}

func (r *Runner) runRealtime(ctx context.Context) error {
	ticker := time.NewTicker(time.Duration(r.cfg.FrameStep * float64(time.Second)))
	defer ticker.Stop()

	last := time.Now()
	for !r.done() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			r.Frame(now.Sub(last).Seconds())
			last = now
		}
	}
	return nil
}

// Frames is the number of frames run so far.
func (r *Runner) Frames() uint64 { return r.frames }

package simulation

import (
	"github.com/fermisquasar/Filling-the-Void/internal/core/debris"
	"github.com/fermisquasar/Filling-the-Void/internal/core/observability/log"
	"github.com/fermisquasar/Filling-the-Void/internal/core/trajectory"
)

// Spawner emits debris on a fixed-step countdown along planned trajectories.
type Spawner struct {
	planner   *trajectory.Planner
	factory   *debris.Factory
	interval  float64
	maxActive int
	countdown float64
	logger    log.Log
}

func NewSpawner(planner *trajectory.Planner, factory *debris.Factory, interval float64, maxActive int, logger log.Log) *Spawner {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Spawner{
		planner:   planner,
		factory:   factory,
		interval:  interval,
		maxActive: maxActive,
		countdown: interval,
		logger:    logger.With(log.String("component", "spawner")),
	}
}

// Step decrements the countdown by dt and returns a new body when it expires
// and the population is below the cap. A capped spawn is retried next step.
func (s *Spawner) Step(dt float64, active int) *debris.Body {
	s.countdown -= dt
	if s.countdown > 0 {
		return nil
	}
	if active >= s.maxActive {
		s.countdown = 0
		return nil
	}
	s.countdown += s.interval
	if s.countdown <= 0 {
		// a long step would otherwise queue a burst
		s.countdown = s.interval
	}

	point := s.planner.PickRandomSpawnPoint()
	dir := s.planner.ComputePathDirection(point)
	variant := s.factory.RandomVariant()
	b := s.factory.Spawn(variant, point, dir)
	s.logger.Debug("debris spawned",
		log.Stringer("variant", variant),
		log.Float64("x", point.X),
		log.Float64("y", point.Y))
	return b
}

// Countdown is the time left until the next spawn attempt.
func (s *Spawner) Countdown() float64 { return s.countdown }

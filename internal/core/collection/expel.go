package collection

import (
	"fmt"
	"strings"

	"github.com/fermisquasar/Filling-the-Void/internal/core/observability/log"
	"github.com/fermisquasar/Filling-the-Void/internal/core/systems/physics"
)

// Mode selects the expulsion direction.
type Mode uint8

const (
	ExpelInward Mode = iota
	ExpelOutward
)

func (m Mode) String() string {
	if m == ExpelOutward {
		return "outward"
	}
	return "inward"
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inward", "in":
		return ExpelInward, nil
	case "outward", "out":
		return ExpelOutward, nil
	default:
		return ExpelInward, fmt.Errorf("unknown expel mode %q", s)
	}
}

// Emission describes one body to create after an expulsion.
type Emission struct {
	Position  physics.Vec2
	Direction physics.Vec2
	Impulse   physics.Vec2
	Spin      float64
}

// TotalForce is the impulse magnitude each emitted body receives for count bodies.
func (c *Collector) TotalForce(count int) float64 {
	return c.cfg.BaseForce + c.cfg.PerDebrisForce*float64(count)
}

// Expel converts the held count into emissions around the agent at agentPos
// and resets the count. Nothing happens when the count is zero.
func (c *Collector) Expel(mode Mode, agentPos physics.Vec2) []Emission {
	if c.count == 0 {
		return nil
	}
	count := c.count
	total := c.TotalForce(count)

	var base physics.Vec2
	var cone Cone
	switch mode {
	case ExpelOutward:
		base = agentPos.Sub(c.cfg.Origin)
		cone = c.cfg.Outward
	default:
		target := c.cfg.Origin
		if c.attractor != nil {
			target = *c.attractor
		}
		base = target.Sub(agentPos)
		cone = c.cfg.Inward
	}
	base = base.Normalize()
	if base.IsZero() {
		base = physics.V(0, 1)
	}

	emissions := make([]Emission, count)
	for i := range emissions {
		dir := c.perturb(base, cone)
		scatter := base.Rotate(c.uniform(-c.cfg.SpawnCone, c.cfg.SpawnCone))
		emissions[i] = Emission{
			Position:  agentPos.Add(scatter.Scale(c.cfg.SpawnOffset)),
			Direction: dir,
			Impulse:   dir.Scale(total),
			Spin:      c.uniform(-c.cfg.TorqueImpulse, c.cfg.TorqueImpulse),
		}
	}

	c.count = 0
	c.Update()
	c.logger.Debug("expelled debris",
		log.Stringer("mode", mode),
		log.Int("count", count),
		log.Float64("force", total))
	return emissions
}

// perturb blends base toward a randomly rotated copy of itself and renormalizes.
func (c *Collector) perturb(base physics.Vec2, cone Cone) physics.Vec2 {
	rotated := base.Rotate(c.uniform(-cone.Angle, cone.Angle))
	dir := base.Lerp(rotated, cone.Weight).Normalize()
	if dir.IsZero() {
		return base
	}
	return dir
}

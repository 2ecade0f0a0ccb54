// Package orbit moves a body along a fixed ellipse around an attractor.
package orbit

import (
	"math"

	"github.com/fermisquasar/Filling-the-Void/internal/core/systems/physics"
)

const twoPi = 2 * math.Pi

// Direction is the sense of travel along the ellipse.
type Direction int

const (
	Clockwise        Direction = -1
	CounterClockwise Direction = 1
)

func (d Direction) String() string {
	if d == Clockwise {
		return "clockwise"
	}
	return "counter-clockwise"
}

// ParseDirection accepts "cw"/"clockwise"/"-1" and "ccw"/"counter-clockwise"/"1".
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "cw", "clockwise", "-1":
		return Clockwise, true
	case "ccw", "counter-clockwise", "counterclockwise", "1", "+1":
		return CounterClockwise, true
	default:
		return CounterClockwise, false
	}
}

// Params describes an ellipse and the initial motion along it.
type Params struct {
	Center       physics.Vec2
	SemiMajor    float64 // a, along X
	SemiMinor    float64 // b, along Y
	Speed        float64 // radians per second
	Direction    Direction
	InitialAngle float64 // radians
}

// Engine advances one orbiting body. Position and rotation are derived from
// the angle after every mutation so readers always see a consistent pose.
type Engine struct {
	center    physics.Vec2
	a, b      float64
	speed     float64
	direction Direction
	angle     float64

	position physics.Vec2
	rotation float64
}

func NewEngine(p Params) *Engine {
	e := &Engine{
		center:    p.Center,
		a:         p.SemiMajor,
		b:         p.SemiMinor,
		speed:     p.Speed,
		direction: CounterClockwise,
		angle:     WrapAngle(p.InitialAngle),
	}
	e.SetDirection(p.Direction)
	e.refresh()
	return e
}

// Advance moves the angle by direction*speed*dt, wraps it into [0, 2π) and
// recomputes the pose.
func (e *Engine) Advance(dt float64) {
	e.angle = WrapAngle(e.angle + float64(e.direction)*e.speed*dt)
	e.refresh()
}

// SetSpeed changes the angular speed for subsequent advances. No smoothing or clamping.
func (e *Engine) SetSpeed(speed float64) { e.speed = speed }

// SetDirection applies the sign of d. Zero leaves the current direction unchanged.
func (e *Engine) SetDirection(d Direction) {
	switch {
	case d > 0:
		e.direction = CounterClockwise
	case d < 0:
		e.direction = Clockwise
	}
}

// SetCenter moves the ellipse with its attractor.
func (e *Engine) SetCenter(c physics.Vec2) {
	e.center = c
	e.refresh()
}

// PositionAtAngle is the point on the ellipse at angle phi. It does not mutate state.
func (e *Engine) PositionAtAngle(phi float64) physics.Vec2 {
	s, c := math.Sincos(phi)
	return physics.Vec2{X: e.center.X + e.a*c, Y: e.center.Y + e.b*s}
}

// PredictPath samples n points ahead of the body, dt seconds apart.
func (e *Engine) PredictPath(n int, dt float64) []physics.Vec2 {
	if n <= 0 {
		return nil
	}
	path := make([]physics.Vec2, n)
	angle := e.angle
	for i := range path {
		angle = WrapAngle(angle + float64(e.direction)*e.speed*dt)
		path[i] = e.PositionAtAngle(angle)
	}
	return path
}

func (e *Engine) Angle() float64           { return e.angle }
func (e *Engine) Speed() float64           { return e.speed }
func (e *Engine) Direction() Direction     { return e.direction }
func (e *Engine) Center() physics.Vec2     { return e.center }
func (e *Engine) Position() physics.Vec2   { return e.position }
func (e *Engine) SemiAxes() (a, b float64) { return e.a, e.b }

// Rotation is the facing in degrees: angle-90 so the forward axis follows the
// direction of travel.
func (e *Engine) Rotation() float64 { return e.rotation }

func (e *Engine) refresh() {
	e.position = e.PositionAtAngle(e.angle)
	e.rotation = physics.Deg(e.angle) - 90
}

// WrapAngle maps any finite angle into [0, 2π).
func WrapAngle(theta float64) float64 {
	theta = math.Mod(theta, twoPi)
	if theta < 0 {
		theta += twoPi
	}
	if theta >= twoPi {
		theta = 0
	}
	return theta
}

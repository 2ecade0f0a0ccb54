package physics

import "math"

// Lightweight 2D math shared by every simulation package.

// Epsilon is the tolerance used for approximate comparisons of world coordinates.
const Epsilon = 1e-5

// Vec2 represents a 2D vector or point.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Zero is the zero vector.
var Zero = Vec2{}

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

func (v Vec2) Neg() Vec2 { return Vec2{-v.X, -v.Y} }

func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

func (v Vec2) LenSq() float64 { return v.X*v.X + v.Y*v.Y }

func (v Vec2) IsZero() bool { return v.LenSq() < Epsilon*Epsilon }

// Normalize returns the unit vector in the direction of v, or Zero when v has no length.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Zero
	}
	return Vec2{v.X / l, v.Y / l}
}

// WithLen rescales v to length l keeping its direction.
func (v Vec2) WithLen(l float64) Vec2 { return v.Normalize().Scale(l) }

// PerpCCW rotates v by +90 degrees.
func (v Vec2) PerpCCW() Vec2 { return Vec2{-v.Y, v.X} }

// PerpCW rotates v by -90 degrees.
func (v Vec2) PerpCW() Vec2 { return Vec2{v.Y, -v.X} }

// Rotate rotates v counter-clockwise by deg degrees.
func (v Vec2) Rotate(deg float64) Vec2 {
	s, c := math.Sincos(deg * math.Pi / 180)
	return Vec2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// Lerp interpolates linearly between v and o; t is not clamped.
func (v Vec2) Lerp(o Vec2, t float64) Vec2 {
	return Vec2{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t}
}

func (v Vec2) DistanceTo(o Vec2) float64 { return o.Sub(v).Len() }

// ApproxEqual compares componentwise within Epsilon.
func (v Vec2) ApproxEqual(o Vec2) bool {
	return Approx(v.X, o.X) && Approx(v.Y, o.Y)
}

// Approx reports whether a and b are equal within Epsilon scaled by their magnitude.
func Approx(a, b float64) bool {
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= Epsilon*scale
}

// Clamp01 clamps x into [0, 1].
func Clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}

// Deg converts radians to degrees.
func Deg(rad float64) float64 { return rad * 180 / math.Pi }

// Rad converts degrees to radians.
func Rad(deg float64) float64 { return deg * math.Pi / 180 }

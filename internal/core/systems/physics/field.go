package physics

// Field is an axis-aligned rectangle defined by its center and extent.
type Field struct {
	Center Vec2
	Width  float64
	Height float64
}

func NewField(center Vec2, width, height float64) Field {
	return Field{Center: center, Width: width, Height: height}
}

// Valid reports whether both extents are positive.
func (f Field) Valid() bool { return f.Width > 0 && f.Height > 0 }

func (f Field) Left() float64   { return f.Center.X - f.Width/2 }
func (f Field) Right() float64  { return f.Center.X + f.Width/2 }
func (f Field) Top() float64    { return f.Center.Y + f.Height/2 }
func (f Field) Bottom() float64 { return f.Center.Y - f.Height/2 }

func (f Field) Min() Vec2 { return Vec2{f.Left(), f.Bottom()} }
func (f Field) Max() Vec2 { return Vec2{f.Right(), f.Top()} }

// Contains reports whether p lies inside the field or on its perimeter.
func (f Field) Contains(p Vec2) bool {
	return p.X >= f.Left()-Epsilon && p.X <= f.Right()+Epsilon &&
		p.Y >= f.Bottom()-Epsilon && p.Y <= f.Top()+Epsilon
}

// CirclesOverlap reports whether two circles intersect or touch.
func CirclesOverlap(a Vec2, ra float64, b Vec2, rb float64) bool {
	r := ra + rb
	return a.Sub(b).LenSq() <= r*r
}

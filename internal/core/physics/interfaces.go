package physics

// Lightweight 2D geometry shared by the arena systems. Boxes are axis-aligned
// squares addressed by their top-left corner; circles by their center.

// Box is an axis-aligned square.
type Box struct {
	Min  Vec2
	Size float64
}

// Circle is a center and a radius.
type Circle struct {
	C      Vec2
	Radius float64
}

func (b Box) Center() Vec2    { return Vec2{b.Min.X + b.Size/2, b.Min.Y + b.Size/2} }
func (b Box) Max() Vec2       { return Vec2{b.Min.X + b.Size, b.Min.Y + b.Size} }
func (c Circle) Center() Vec2 { return c.C }

// Contains reports whether p lies inside the box, edges included.
func (b Box) Contains(p Vec2) bool {
	return b.Min.X <= p.X && p.X <= b.Min.X+b.Size &&
		b.Min.Y <= p.Y && p.Y <= b.Min.Y+b.Size
}

package physics

import "math"

type Vec2 struct{ X, Y float64 }

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

func (v Vec2) Scale(k float64) Vec2 {
	return Vec2{v.X * k, v.Y * k}
}

func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

func (v Vec2) DistanceTo(o Vec2) float64 {
	return Distance2(v.X, v.Y, o.X, o.Y)
}

// Distance2 computes Euclidean distance between two 2D points.
func Distance2(x1, y1, x2, y2 float64) float64 { return math.Hypot(x2-x1, y2-y1) }

// Clamp limits value to the range [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// ClosestPointOnBox clamps p into the box extent.
func ClosestPointOnBox(b Box, p Vec2) Vec2 {
	return Vec2{
		X: Clamp(p.X, b.Min.X, b.Min.X+b.Size),
		Y: Clamp(p.Y, b.Min.Y, b.Min.Y+b.Size),
	}
}

// BoxesOverlap is a strict AABB test: touching edges do not overlap.
func BoxesOverlap(a, b Box) bool {
	return a.Min.X < b.Min.X+b.Size &&
		a.Min.X+a.Size > b.Min.X &&
		a.Min.Y < b.Min.Y+b.Size &&
		a.Min.Y+a.Size > b.Min.Y
}

// BoxCircleOverlap reports whether the closest point of the box to the circle
// center lies strictly inside the circle.
func BoxCircleOverlap(b Box, c Circle) bool {
	closest := ClosestPointOnBox(b, c.C)
	return closest.DistanceTo(c.C) < c.Radius
}

// CirclesClose reports whether two centers are nearer than minDistance.
func CirclesClose(a, b Vec2, minDistance float64) bool {
	return a.DistanceTo(b) < minDistance
}

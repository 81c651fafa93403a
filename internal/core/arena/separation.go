package arena

import (
	"math"

	"github.com/zeusync/handarena/internal/core/physics"
)

// Jitter is the random source used when two centers coincide.
// *math/rand/v2.Rand satisfies it.
type Jitter interface {
	Float64() float64
}

// SeparationParams holds the push-apart tuning. The box-box and box-circle
// force multipliers differ on purpose; they are tuned, not derived.
type SeparationParams struct {
	RestMultiplier    float64 // rest distance = (sizeA+sizeB)*m, or radius + size*m
	BoxForce          float64
	CircleForce       float64
	CoincidentEpsilon float64
	JitterRange       float64 // jitter is uniform in [-range, range] on each axis
}

func DefaultSeparationParams() SeparationParams {
	return SeparationParams{
		RestMultiplier:    0.7,
		BoxForce:          0.5,
		CircleForce:       0.7,
		CoincidentEpsilon: 1e-5,
		JitterRange:       5,
	}
}

// separationAxis returns the unit push direction from a to b and the current
// center distance. Coincident centers get a jittered direction.
func separationAxis(a, b physics.Vec2, p SeparationParams, rng Jitter) (physics.Vec2, float64) {
	delta := b.Sub(a)
	current := delta.Len()
	if math.Abs(delta.X) < p.CoincidentEpsilon && math.Abs(delta.Y) < p.CoincidentEpsilon {
		delta = physics.Vec2{
			X: (rng.Float64()*2 - 1) * p.JitterRange,
			Y: (rng.Float64()*2 - 1) * p.JitterRange,
		}
	}
	length := math.Max(p.CoincidentEpsilon, delta.Len())
	return delta.Scale(1 / length), current
}

// ResolveBoxes pushes two overlapping boxes apart along the line between their
// centers so that, when neither is dragged, they end exactly at rest distance.
// It reports whether a correction was applied.
func ResolveBoxes(a, b *Entity, p SeparationParams, rng Jitter) bool {
	dir, current := separationAxis(a.Center(), b.Center(), p, rng)
	rest := (a.Size + b.Size) * p.RestMultiplier
	if current >= rest {
		return false
	}
	force := (rest - current) * p.BoxForce
	if !a.Dragging {
		a.translate(dir.Scale(-force))
	}
	if !b.Dragging {
		b.translate(dir.Scale(force))
	}
	return true
}

// ResolveBoxCircle pushes a box out of an immovable circle.
func ResolveBoxCircle(box *Entity, circle physics.Circle, p SeparationParams, rng Jitter) bool {
	dir, current := separationAxis(box.Center(), circle.C, p, rng)
	rest := circle.Radius + box.Size*p.RestMultiplier
	if current >= rest {
		return false
	}
	force := (rest - current) * p.CircleForce
	if !box.Dragging {
		box.translate(dir.Scale(-force))
	}
	return true
}

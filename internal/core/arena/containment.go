package arena

import "github.com/zeusync/handarena/internal/core/physics"

// Contain clamps a box into [0, width-size] x [0, height-size]. Circles are
// fixed by construction and left alone.
func Contain(e *Entity, width, height float64) {
	if !e.IsBox() {
		return
	}
	e.X = physics.Clamp(e.X, 0, width-e.Size)
	e.Y = physics.Clamp(e.Y, 0, height-e.Size)
}

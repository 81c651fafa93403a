package arena

import "github.com/zeusync/handarena/internal/core/physics"

// Steer advances e by its speed toward target unless it is dragged or already
// inside the arrival deadband.
func Steer(e *Entity, target physics.Vec2, deadband float64) bool {
	if e.Dragging {
		return false
	}
	delta := target.Sub(e.Center())
	distance := delta.Len()
	if distance < deadband {
		return false
	}
	if distance > 0 {
		delta = delta.Scale(1 / distance)
	}
	e.translate(delta.Scale(e.Pursuit.Speed))
	return true
}

// MoveTowardsTarget steers the pursuer at h toward its target's center. It
// returns false when h is not a pursuer, has no target, is dragged, or is
// within the deadband.
func (a *Arena) MoveTowardsTarget(h Handle) bool {
	e, ok := a.entity(h)
	if !ok || e.Kind != KindPursuer {
		return false
	}
	target, ok := a.entity(e.Pursuit.Target)
	if !ok {
		return false
	}
	return Steer(e, target.Center(), a.cfg.Deadband)
}

package arena

import "github.com/zeusync/handarena/internal/core/physics"

// EntityView is the read-only render record of one entity.
type EntityView struct {
	Handle   Handle
	Kind     Kind
	Role     string
	X, Y     float64
	Size     float64
	Radius   float64
	Color    Color
	Dragging bool
	Speed    float64
}

// Snapshot is everything a renderer needs for one frame.
type Snapshot struct {
	RoundID       string
	State         State
	Width, Height float64
	Entities      []EntityView
	Pointer       physics.Vec2 // normalized
	Gesture       Gesture
	HandDetected  bool
	Dragged       Handle
	Trail         []TrailPoint
	ActiveSeconds int
	Speed         float64
	Samples       uint64
}

func (s Snapshot) Paused() bool { return s.State == StatePaused }
func (s Snapshot) Ended() bool  { return s.State == StateEnded }

// Snapshot copies the current arena state.
func (a *Arena) Snapshot() Snapshot {
	views := make([]EntityView, len(a.entities))
	for i := range a.entities {
		e := &a.entities[i]
		views[i] = EntityView{
			Handle:   Handle(i),
			Kind:     e.Kind,
			Role:     e.Role,
			X:        e.X,
			Y:        e.Y,
			Size:     e.Size,
			Radius:   e.Radius,
			Color:    e.Color,
			Dragging: e.Dragging,
			Speed:    e.Pursuit.Speed,
		}
	}
	return Snapshot{
		RoundID:       a.roundID,
		State:         a.state,
		Width:         a.cfg.Width,
		Height:        a.cfg.Height,
		Entities:      views,
		Pointer:       a.pointer,
		Gesture:       a.gesture,
		HandDetected:  a.handDetected,
		Dragged:       a.dragged,
		Trail:         a.trail.Points(),
		ActiveSeconds: a.activeSeconds,
		Speed:         a.Speed(),
		Samples:       a.samples,
	}
}

package arena

import (
	"github.com/zeusync/handarena/internal/core/observability/log"
	"github.com/zeusync/handarena/internal/core/physics"
)

// updateDrag applies one sample to the drag slot. abs is the pointer in arena
// units.
func (a *Arena) updateDrag(abs physics.Vec2, g Gesture) {
	if g != GestureClosed {
		a.releaseDrag()
		return
	}

	if e, ok := a.entity(a.dragged); ok {
		a.centerOn(e, abs)
		Contain(e, a.cfg.Width, a.cfg.Height)
		return
	}

	for i := range a.entities {
		e := &a.entities[i]
		if !e.Draggable() || !e.Box().Contains(abs) {
			continue
		}
		a.dragged = Handle(i)
		e.Dragging = true
		a.centerOn(e, abs)
		a.logger.Debug("Drag bound",
			log.String("role", e.Role),
			log.Float64("x", abs.X),
			log.Float64("y", abs.Y))
		a.publish(EventDragBound, DragChanged{Handle: Handle(i), Role: e.Role})
		return
	}
}

// releaseDrag clears the drag slot and the bound entity's flag.
func (a *Arena) releaseDrag() {
	e, ok := a.entity(a.dragged)
	if !ok {
		a.dragged = NoHandle
		return
	}
	h := a.dragged
	e.Dragging = false
	a.dragged = NoHandle
	a.logger.Debug("Drag released", log.String("role", e.Role))
	a.publish(EventDragReleased, DragChanged{Handle: h, Role: e.Role})
}

func (a *Arena) centerOn(e *Entity, abs physics.Vec2) {
	e.X = abs.X - e.Size/2
	e.Y = abs.Y - e.Size/2
}

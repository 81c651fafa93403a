package arena

import "github.com/zeusync/handarena/internal/core/physics"

// Kind tags the entity variant. Geometry code only reads the shared fields;
// pursuit and drag logic switch on Kind.
type Kind uint8

const (
	KindBlock Kind = iota
	KindPursuer
	KindGoal
)

func (k Kind) String() string {
	switch k {
	case KindBlock:
		return "block"
	case KindPursuer:
		return "pursuer"
	case KindGoal:
		return "goal"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for _, k := range []Kind{KindBlock, KindPursuer, KindGoal} {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Handle is a stable index into the arena's entity table.
type Handle int

// NoHandle marks an absent reference.
const NoHandle Handle = -1

// Color is opaque to the simulation; it is carried for renderers.
type Color struct {
	R, G, B uint8
}

// Pursuit is the payload carried by pursuers.
type Pursuit struct {
	Speed  float64
	Target Handle
}

// Entity is one record of the arena table. X, Y is the top-left corner for
// boxes and the center for circles.
type Entity struct {
	Kind     Kind
	Role     string
	X, Y     float64
	Size     float64
	Radius   float64
	Color    Color
	Dragging bool
	Pursuit  Pursuit
}

// IsBox reports whether the entity is an axis-aligned square.
func (e Entity) IsBox() bool {
	return e.Kind == KindBlock || e.Kind == KindPursuer
}

// Draggable reports whether the pointer may bind the entity.
func (e Entity) Draggable() bool {
	return e.IsBox()
}

func (e Entity) Box() physics.Box {
	return physics.Box{Min: physics.Vec2{X: e.X, Y: e.Y}, Size: e.Size}
}

func (e Entity) Circle() physics.Circle {
	return physics.Circle{C: physics.Vec2{X: e.X, Y: e.Y}, Radius: e.Radius}
}

func (e Entity) Center() physics.Vec2 {
	switch e.Kind {
	case KindGoal:
		return physics.Vec2{X: e.X, Y: e.Y}
	default:
		return e.Box().Center()
	}
}

// HalfExtent is the size used by the end-of-round proximity test.
func (e Entity) HalfExtent() float64 {
	if e.Kind == KindGoal {
		return e.Radius
	}
	return e.Size / 2
}

func (e *Entity) translate(d physics.Vec2) {
	e.X += d.X
	e.Y += d.Y
}

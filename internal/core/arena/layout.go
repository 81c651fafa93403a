package arena

import "fmt"

// Placement is one row of the initial layout table.
type Placement struct {
	Role   string
	Kind   Kind
	X, Y   float64
	Size   float64
	Radius float64
	Color  Color
	// Target names the role a pursuer steers toward.
	Target string
}

// DefaultLayout mirrors the stock 800x800 playfield: two blocks, two beetles
// in opposite corners and the goal in the middle.
func DefaultLayout() []Placement {
	return []Placement{
		{Role: "block-blue", Kind: KindBlock, X: 100, Y: 100, Size: 100, Color: Color{65, 105, 225}},
		{Role: "block-pink", Kind: KindBlock, X: 300, Y: 100, Size: 100, Color: Color{255, 105, 180}},
		{Role: "goal", Kind: KindGoal, X: 400, Y: 400, Radius: 50, Color: Color{50, 205, 50}},
		{Role: "beetle-1", Kind: KindPursuer, X: 20, Y: 740, Size: 40, Color: Color{220, 20, 60}, Target: "goal"},
		{Role: "beetle-2", Kind: KindPursuer, X: 740, Y: 20, Size: 40, Color: Color{255, 140, 0}, Target: "goal"},
	}
}

// buildEntities instantiates the table and wires pursuer targets by role.
func buildEntities(layout []Placement, width, height, baseSpeed float64) ([]Entity, error) {
	if len(layout) == 0 {
		return nil, ErrEmptyLayout
	}
	roles := make(map[string]Handle, len(layout))
	for i, p := range layout {
		if p.Role == "" {
			return nil, fmt.Errorf("%w: placement %d has no role", ErrInvalidLayout, i)
		}
		if _, dup := roles[p.Role]; dup {
			return nil, fmt.Errorf("%w: duplicate role %q", ErrInvalidLayout, p.Role)
		}
		roles[p.Role] = Handle(i)
	}

	entities := make([]Entity, len(layout))
	for i, p := range layout {
		e := Entity{Kind: p.Kind, Role: p.Role, X: p.X, Y: p.Y, Size: p.Size, Radius: p.Radius, Color: p.Color}
		switch p.Kind {
		case KindGoal:
			if p.Radius <= 0 {
				return nil, fmt.Errorf("%w: goal %q needs a positive radius", ErrInvalidLayout, p.Role)
			}
		case KindBlock, KindPursuer:
			if p.Size <= 0 || p.Size > width || p.Size > height {
				return nil, fmt.Errorf("%w: %s %q size %.1f does not fit the arena", ErrInvalidLayout, p.Kind, p.Role, p.Size)
			}
		default:
			return nil, fmt.Errorf("%w: %q has unknown kind %d", ErrInvalidLayout, p.Role, p.Kind)
		}

		e.Pursuit = Pursuit{Target: NoHandle}
		if p.Kind == KindPursuer {
			e.Pursuit.Speed = baseSpeed
			if p.Target != "" {
				h, ok := roles[p.Target]
				if !ok {
					return nil, fmt.Errorf("%w: %q targets unknown role %q", ErrInvalidLayout, p.Role, p.Target)
				}
				if h == Handle(i) {
					return nil, fmt.Errorf("%w: %q targets itself", ErrInvalidLayout, p.Role)
				}
				e.Pursuit.Target = h
			}
		}
		entities[i] = e
	}
	return entities, nil
}

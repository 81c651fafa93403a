package arena

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/handarena/internal/core/events/bus"
	"github.com/zeusync/handarena/internal/core/physics"
)

const testSeed = 42

func testConfig(width, height float64, layout ...Placement) Config {
	cfg := DefaultConfig()
	cfg.Width = width
	cfg.Height = height
	cfg.Layout = layout
	return cfg
}

func newTestArena(t *testing.T, cfg Config, opts ...Option) *Arena {
	t.Helper()
	a, err := New(cfg, append([]Option{WithSeed(testSeed)}, opts...)...)
	require.NoError(t, err)
	return a
}

// recorder collects every bus event by type.
type recorder struct {
	events []bus.Event
}

func newRecorder(t *testing.T) (*recorder, bus.EventBus) {
	t.Helper()
	b := bus.New()
	r := &recorder{}
	_, err := b.SubscribeAll(func(e bus.Event) error {
		r.events = append(r.events, e)
		return nil
	})
	require.NoError(t, err)
	return r, b
}

func (r *recorder) ofType(typ string) []bus.Event {
	var out []bus.Event
	for _, e := range r.events {
		if e.Type() == typ {
			out = append(out, e)
		}
	}
	return out
}

func block(role string, x, y, size float64) Placement {
	return Placement{Role: role, Kind: KindBlock, X: x, Y: y, Size: size}
}

func beetle(role string, x, y, size float64, target string) Placement {
	return Placement{Role: role, Kind: KindPursuer, X: x, Y: y, Size: size, Target: target}
}

func goal(role string, x, y, radius float64) Placement {
	return Placement{Role: role, Kind: KindGoal, X: x, Y: y, Radius: radius}
}

func boxEntity(x, y, size float64) *Entity {
	return &Entity{Kind: KindBlock, X: x, Y: y, Size: size, Pursuit: Pursuit{Target: NoHandle}}
}

func centerDistance(a, b *Entity) float64 {
	return a.Center().DistanceTo(b.Center())
}

func mustLookup(t *testing.T, a *Arena, role string) Handle {
	t.Helper()
	h, ok := a.Lookup(role)
	require.True(t, ok, "role %q", role)
	return h
}

func mustEntity(t *testing.T, a *Arena, role string) Entity {
	t.Helper()
	e, ok := a.Entity(mustLookup(t, a, role))
	require.True(t, ok)
	return e
}

func pos(e Entity) physics.Vec2 {
	return physics.Vec2{X: e.X, Y: e.Y}
}

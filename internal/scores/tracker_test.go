package scores

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/handarena/internal/core/arena"
	"github.com/zeusync/handarena/internal/core/events/bus"
	"github.com/zeusync/handarena/internal/core/observability/log"
)

type failingStore struct {
	best int
	err  error
}

func (f *failingStore) Best() (int, error)     { return f.best, f.err }
func (f *failingStore) Save(seconds int) error { return f.err }

func publish(t *testing.T, b bus.EventBus, typ string, data any) error {
	t.Helper()
	return b.Publish(bus.NewEvent(typ, arena.EventSource, data))
}

func TestTracker_RecordsOnlyImprovements(t *testing.T) {
	store := &MemoryStore{}
	require.NoError(t, store.Save(10))
	b := bus.New()
	tr := NewTracker(store, log.NewNop())
	require.NoError(t, tr.Attach(b))
	assert.Equal(t, 10, tr.Best())

	require.NoError(t, publish(t, b, arena.EventRoundEnded, arena.RoundEnded{ActiveSeconds: 8}))
	assert.Equal(t, 10, tr.Best())
	assert.Equal(t, 8, tr.Last())

	require.NoError(t, publish(t, b, arena.EventRoundEnded, arena.RoundEnded{ActiveSeconds: 15}))
	assert.Equal(t, 15, tr.Best())
	saved, _ := store.Best()
	assert.Equal(t, 15, saved)
}

func TestTracker_RestartCountsButTimerResetDoesNot(t *testing.T) {
	store := &MemoryStore{}
	b := bus.New()
	tr := NewTracker(store, log.NewNop())
	require.NoError(t, tr.Attach(b))

	require.NoError(t, publish(t, b, arena.EventRoundReset, arena.RoundReset{ActiveSeconds: 30, Reason: arena.ResetTimer}))
	assert.Zero(t, tr.Best())

	require.NoError(t, publish(t, b, arena.EventRoundReset, arena.RoundReset{ActiveSeconds: 30, Reason: arena.ResetRestart}))
	assert.Equal(t, 30, tr.Best())
}

func TestTracker_Detach(t *testing.T) {
	b := bus.New()
	tr := NewTracker(&MemoryStore{}, log.NewNop())
	require.NoError(t, tr.Attach(b))
	tr.Detach()

	require.NoError(t, publish(t, b, arena.EventRoundEnded, arena.RoundEnded{ActiveSeconds: 99}))
	assert.Zero(t, tr.Best())
}

func TestTracker_StoreFailures(t *testing.T) {
	boom := errors.New("disk gone")
	b := bus.New()
	tr := NewTracker(&failingStore{best: 5, err: boom}, log.NewNop())

	require.NoError(t, tr.Attach(b), "unreadable best is not fatal")
	assert.Zero(t, tr.Best())

	err := publish(t, b, arena.EventRoundEnded, arena.RoundEnded{ActiveSeconds: 3})
	assert.ErrorIs(t, err, boom)
}

func TestTracker_WithArena(t *testing.T) {
	cfg := arena.DefaultConfig()
	cfg.Layout = []arena.Placement{
		{Role: "goal", Kind: arena.KindGoal, X: 200, Y: 200, Radius: 50},
		{Role: "bug", Kind: arena.KindPursuer, X: 400, Y: 400, Size: 40, Target: "goal"},
	}
	b := bus.New()
	tr := NewTracker(&MemoryStore{}, log.NewNop())
	require.NoError(t, tr.Attach(b))

	a, err := arena.New(cfg, arena.WithBus(b), arena.WithSeed(1))
	require.NoError(t, err)
	a.Start()
	a.OnSample(0.9, 0.9, arena.GestureOpen)
	for i := 0; i < 4; i++ {
		a.OnClockTick()
	}
	for i := 0; i < 400 && !a.Ended(); i++ {
		a.OnSample(0.9, 0.9, arena.GestureOpen)
	}
	require.True(t, a.Ended())
	assert.Equal(t, 4, tr.Best())
}

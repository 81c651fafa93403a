package term

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/handarena/internal/core/arena"
	"github.com/zeusync/handarena/internal/core/observability/log"
	"github.com/zeusync/handarena/internal/core/physics"
	"github.com/zeusync/handarena/internal/driver"
)

type sample struct {
	x, y float64
	g    arena.Gesture
}

type control struct {
	action driver.Action
	speed  float64
}

type fakeEngine struct {
	mu       sync.Mutex
	samples  []sample
	controls []control
	lost     int
	listener driver.Listener
}

func (f *fakeEngine) Sample(x, y float64, g arena.Gesture) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.samples = append(f.samples, sample{x, y, g})
	return nil
}

func (f *fakeEngine) HandLost(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lost++
	return nil
}

func (f *fakeEngine) Control(_ context.Context, action driver.Action, speed float64) (arena.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.controls = append(f.controls, control{action, speed})
	return arena.StateRunning, nil
}

func (f *fakeEngine) Listen(l driver.Listener) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listener = l
	return func() {}
}

func (f *fakeEngine) currentListener() driver.Listener {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listener
}

type countingPlayer struct{ plays int }

func (p *countingPlayer) Play() { p.plays++ }

type fixedBest int

func (b fixedBest) Best() int { return int(b) }

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(80, 25)
	t.Cleanup(screen.Fini)
	return screen
}

func defaultSnapshot(t *testing.T) arena.Snapshot {
	t.Helper()
	a, err := arena.New(arena.DefaultConfig(), arena.WithSeed(1))
	require.NoError(t, err)
	a.OnSample(0.9, 0.9, arena.GestureClosed)
	return a.Snapshot()
}

func row(screen tcell.SimulationScreen, y, cols int) string {
	var b strings.Builder
	for x := 0; x < cols; x++ {
		r, _, _, _ := screen.GetContent(x, y)
		b.WriteRune(r)
	}
	return b.String()
}

func TestGrid(t *testing.T) {
	g := newGrid(80, 25, 800, 800)
	assert.Equal(t, 80, g.cols)
	assert.Equal(t, 24, g.rows)

	x, y := g.cell(physics.Vec2{X: 150, Y: 150})
	assert.Equal(t, 15, x)
	assert.Equal(t, 5, y, "arena rows start below the status line")

	x, y = g.cell(physics.Vec2{X: 800, Y: -10})
	assert.Equal(t, 79, x, "points on the far edge clamp into the grid")
	assert.Equal(t, 1, y)

	nx, ny := g.normalized(40, 13)
	assert.InDelta(t, 40.5/80, nx, 1e-9)
	assert.InDelta(t, 12.5/24, ny, 1e-9)

	nx, ny = g.normalized(0, 0)
	assert.GreaterOrEqual(t, nx, 0.0)
	assert.Equal(t, 0.0, ny, "the status row clamps to the top edge")
}

func TestViewer_MouseSamples(t *testing.T) {
	screen := newScreen(t)
	eng := &fakeEngine{}
	v := New(screen, eng, log.NewNop())
	ctx := context.Background()

	// Nothing is known about the arena yet.
	assert.True(t, v.handleEvent(ctx, tcell.NewEventMouse(40, 13, tcell.Button1, tcell.ModNone)))
	assert.Empty(t, eng.samples)

	v.observe(defaultSnapshot(t))
	v.handleEvent(ctx, tcell.NewEventMouse(40, 13, tcell.Button1, tcell.ModNone))
	v.handleEvent(ctx, tcell.NewEventMouse(0, 24, tcell.ButtonNone, tcell.ModNone))
	v.handleEvent(ctx, tcell.NewEventMouse(10, 0, tcell.ButtonNone, tcell.ModNone))

	require.Len(t, eng.samples, 2, "the status row is not part of the arena")
	assert.InDelta(t, 40.5/80, eng.samples[0].x, 1e-9)
	assert.InDelta(t, 12.5/24, eng.samples[0].y, 1e-9)
	assert.Equal(t, arena.GestureClosed, eng.samples[0].g)
	assert.Equal(t, arena.GestureOpen, eng.samples[1].g)
	assert.InDelta(t, 23.5/24, eng.samples[1].y, 1e-9)
}

func TestViewer_Keys(t *testing.T) {
	screen := newScreen(t)
	eng := &fakeEngine{}
	v := New(screen, eng, log.NewNop())
	v.observe(defaultSnapshot(t))
	ctx := context.Background()

	for _, r := range " r+-h" {
		assert.True(t, v.handleEvent(ctx, tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)))
	}
	assert.Equal(t, []control{
		{driver.ActionToggle, 0},
		{driver.ActionRestart, 0},
		{driver.ActionSpeed, 2},
		{driver.ActionSpeed, 1},
	}, eng.controls)
	assert.Equal(t, 1, eng.lost)

	assert.False(t, v.handleEvent(ctx, tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
	assert.False(t, v.handleEvent(ctx, tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
	assert.False(t, v.handleEvent(ctx, tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModNone)))
}

func TestViewer_Draw(t *testing.T) {
	screen := newScreen(t)
	v := New(screen, &fakeEngine{}, log.NewNop(), WithBest(fixedBest(12)))
	s := defaultSnapshot(t)

	v.draw(s)
	screen.Show()

	status := row(screen, 0, 80)
	assert.Contains(t, status, "paused")
	assert.Contains(t, status, "best  12s")

	r, _, _, _ := screen.GetContent(15, 5)
	assert.Equal(t, blockRune, r, "block-blue center")
	r, _, _, _ = screen.GetContent(40, 13)
	assert.Equal(t, goalRune, r, "goal center")
	r, _, _, _ = screen.GetContent(4, 23)
	assert.Equal(t, pursuerRune, r, "beetle-1 center")
	r, _, _, _ = screen.GetContent(72, 22)
	assert.Equal(t, cursorRune, r, "closed-hand cursor")
}

func TestViewer_ChimeOnRoundEnd(t *testing.T) {
	p := &countingPlayer{}
	v := New(nil, &fakeEngine{}, log.NewNop(), WithChime(p))

	for _, st := range []arena.State{arena.StatePaused, arena.StateRunning, arena.StateEnded, arena.StateEnded} {
		v.observe(arena.Snapshot{State: st})
	}
	assert.Equal(t, 1, p.plays)

	v.observe(arena.Snapshot{State: arena.StatePaused})
	v.observe(arena.Snapshot{State: arena.StateEnded})
	assert.Equal(t, 2, p.plays)
}

func TestViewer_Run(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	eng := &fakeEngine{}
	v := New(screen, eng, log.NewNop())

	done := make(chan error, 1)
	go func() { done <- v.Run(context.Background()) }()
	require.Eventually(t, func() bool { return eng.currentListener() != nil }, 2*time.Second, 5*time.Millisecond)

	screen.SetSize(80, 25)
	eng.currentListener()(defaultSnapshot(t))
	require.Eventually(t, func() bool {
		return strings.Contains(row(screen, 0, 80), "paused")
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, screen.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("viewer did not quit")
	}
}

func TestViewer_RunWithoutScreen(t *testing.T) {
	v := New(nil, &fakeEngine{}, log.NewNop())
	assert.ErrorIs(t, v.Run(context.Background()), ErrNoScreen)
}

func TestChimeGenerator(t *testing.T) {
	want := sampleRate.N(chimeLength)
	s := beep.Take(want, newChimeGenerator(sampleRate))

	buf := make([][2]float64, 512)
	total, peak := 0, 0.0
	for {
		n, ok := s.Stream(buf)
		for _, smp := range buf[:n] {
			peak = max(peak, smp[0], -smp[0])
			assert.Equal(t, smp[0], smp[1])
		}
		total += n
		if !ok || n == 0 {
			break
		}
	}
	assert.Equal(t, want, total)
	assert.LessOrEqual(t, peak, 0.25)
	assert.Greater(t, peak, 0.1)
}

func TestChime_PlayWithoutSpeaker(t *testing.T) {
	c := NewChime()
	assert.NotPanics(t, func() {
		c.Play()
		c.Close()
	})
}

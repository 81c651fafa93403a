// Package term renders the arena in a terminal and turns the mouse into a
// gesture source: the pointer follows the mouse and holding the left button
// is a closed hand.
package term

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"

	"github.com/zeusync/handarena/internal/core/arena"
	"github.com/zeusync/handarena/internal/core/observability/log"
	"github.com/zeusync/handarena/internal/core/physics"
	"github.com/zeusync/handarena/internal/driver"
)

const controlTimeout = time.Second

const (
	blockRune   = '█'
	pursuerRune = '▓'
	goalRune    = '●'
	trailRune   = '·'
	cursorRune  = '+'
)

// Engine is the part of the driver the viewer drives.
type Engine interface {
	Sample(x, y float64, g arena.Gesture) error
	HandLost(ctx context.Context) error
	Control(ctx context.Context, action driver.Action, speed float64) (arena.State, error)
	Listen(l driver.Listener) (cancel func())
}

type BestTimes interface {
	Best() int
}

// Player plays the round-ended cue.
type Player interface {
	Play()
}

type Option func(*Viewer)

func WithBest(b BestTimes) Option {
	return func(v *Viewer) { v.best = b }
}

func WithChime(p Player) Option {
	return func(v *Viewer) { v.chime = p }
}

// Viewer owns a tcell screen for the lifetime of Run.
type Viewer struct {
	screen tcell.Screen
	engine Engine
	best   BestTimes
	chime  Player
	logger log.Log

	last    arena.Snapshot
	hasLast bool
}

func New(screen tcell.Screen, engine Engine, logger log.Log, opts ...Option) *Viewer {
	v := &Viewer{
		screen: screen,
		engine: engine,
		logger: logger.With(log.String("component", "term")),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Run initializes the screen and renders until ctx ends or the user quits.
func (v *Viewer) Run(ctx context.Context) error {
	if v.screen == nil {
		return ErrNoScreen
	}
	if err := v.screen.Init(); err != nil {
		return errors.Wrap(err, "init screen")
	}
	defer v.screen.Fini()
	v.screen.EnableMouse()
	v.screen.HideCursor()

	snaps := make(chan arena.Snapshot, 1)
	cancel := v.engine.Listen(func(s arena.Snapshot) {
		select {
		case <-snaps:
		default:
		}
		select {
		case snaps <- s:
		default:
		}
	})
	defer cancel()

	events := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	defer close(quit)
	go v.poll(events, quit)

	v.logger.Info("Terminal viewer started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !v.handleEvent(ctx, ev) {
				v.logger.Info("Terminal viewer closed by user")
				return nil
			}
		case s := <-snaps:
			v.observe(s)
			v.draw(s)
			v.screen.Show()
		}
	}
}

// poll forwards screen events until the screen is finalized.
func (v *Viewer) poll(events chan<- tcell.Event, quit <-chan struct{}) {
	for {
		ev := v.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-quit:
			return
		}
	}
}

// handleEvent reacts to one input event and reports whether to keep running.
func (v *Viewer) handleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			return v.handleRune(ctx, ev.Rune())
		}
	case *tcell.EventMouse:
		v.handleMouse(ev)
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

func (v *Viewer) handleRune(ctx context.Context, r rune) bool {
	switch r {
	case 'q':
		return false
	case ' ':
		v.control(ctx, driver.ActionToggle, 0)
	case 'r':
		v.control(ctx, driver.ActionRestart, 0)
	case '+', '=':
		v.control(ctx, driver.ActionSpeed, v.last.Speed+1)
	case '-':
		v.control(ctx, driver.ActionSpeed, max(v.last.Speed-1, 1))
	case 'h':
		cctx, cancel := context.WithTimeout(ctx, controlTimeout)
		defer cancel()
		if err := v.engine.HandLost(cctx); err != nil {
			v.logger.Warn("Hand loss not delivered", log.Error(err))
		}
	}
	return true
}

func (v *Viewer) handleMouse(ev *tcell.EventMouse) {
	if !v.hasLast {
		return
	}
	cols, rows := v.screen.Size()
	x, y := ev.Position()
	if y < statusRows {
		return
	}
	g := arena.GestureOpen
	if ev.Buttons()&tcell.Button1 != 0 {
		g = arena.GestureClosed
	}
	nx, ny := newGrid(cols, rows, v.last.Width, v.last.Height).normalized(x, y)
	if err := v.engine.Sample(nx, ny, g); err != nil && !errors.Is(err, driver.ErrInboxFull) {
		v.logger.Debug("Sample dropped", log.Error(err))
	}
}

func (v *Viewer) control(ctx context.Context, action driver.Action, speed float64) {
	cctx, cancel := context.WithTimeout(ctx, controlTimeout)
	defer cancel()
	state, err := v.engine.Control(cctx, action, speed)
	if err != nil {
		v.logger.Warn("Control failed", log.String("action", action.String()), log.Error(err))
		return
	}
	v.logger.Debug("Control applied", log.String("action", action.String()), log.String("state", state.String()))
}

// observe tracks state transitions across snapshots.
func (v *Viewer) observe(s arena.Snapshot) {
	ended := s.State == arena.StateEnded && (!v.hasLast || v.last.State != arena.StateEnded)
	v.last, v.hasLast = s, true
	if ended && v.chime != nil {
		v.chime.Play()
	}
}

func (v *Viewer) draw(s arena.Snapshot) {
	v.screen.Clear()
	cols, rows := v.screen.Size()
	g := newGrid(cols, rows, s.Width, s.Height)

	best := 0
	if v.best != nil {
		best = v.best.Best()
	}
	status := fmt.Sprintf(" %-7s time %3ds  best %3ds  speed %2.0f   space:start/pause r:restart +/-:speed q:quit",
		s.State, s.ActiveSeconds, best, s.Speed)
	v.text(0, 0, status, tcell.StyleDefault.Reverse(true), cols)

	for _, p := range s.Trail {
		style := tcell.StyleDefault.Foreground(tcell.ColorGray)
		if p.Gesture == arena.GestureClosed {
			style = tcell.StyleDefault.Foreground(tcell.ColorYellow)
		}
		x, y := g.cell(physics.Vec2{X: p.X, Y: p.Y})
		v.screen.SetContent(x, y, trailRune, nil, style)
	}

	// Goal first so boxes resting on it stay visible.
	for _, kind := range []arena.Kind{arena.KindGoal, arena.KindBlock, arena.KindPursuer} {
		for _, e := range s.Entities {
			if e.Kind == kind {
				v.entity(g, e)
			}
		}
	}

	if s.HandDetected {
		style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
		if s.Gesture == arena.GestureClosed {
			style = tcell.StyleDefault.Foreground(tcell.ColorRed).Reverse(true)
		}
		x, y := g.cell(physics.Vec2{X: s.Pointer.X * s.Width, Y: s.Pointer.Y * s.Height})
		v.screen.SetContent(x, y, cursorRune, nil, style)
	}
}

func (v *Viewer) entity(g grid, e arena.EntityView) {
	style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(e.Color.R), int32(e.Color.G), int32(e.Color.B)))
	if e.Dragging {
		style = style.Bold(true).Underline(true)
	}

	r := blockRune
	var covers func(p physics.Vec2) bool
	var center physics.Vec2
	switch e.Kind {
	case arena.KindGoal:
		r = goalRune
		center = physics.Vec2{X: e.X, Y: e.Y}
		covers = func(p physics.Vec2) bool { return p.DistanceTo(center) <= e.Radius }
	default:
		if e.Kind == arena.KindPursuer {
			r = pursuerRune
		}
		box := physics.Box{Min: physics.Vec2{X: e.X, Y: e.Y}, Size: e.Size}
		center = box.Center()
		covers = box.Contains
	}

	for y := statusRows; y < statusRows+g.rows; y++ {
		for x := 0; x < g.cols; x++ {
			if covers(g.center(x, y)) {
				v.screen.SetContent(x, y, r, nil, style)
			}
		}
	}
	// Entities smaller than a cell still get one.
	x, y := g.cell(center)
	v.screen.SetContent(x, y, r, nil, style)
}

func (v *Viewer) text(x, y int, s string, style tcell.Style, limit int) {
	for _, r := range s {
		if x >= limit {
			return
		}
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

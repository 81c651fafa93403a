package driver

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/zeusync/handarena/internal/core/arena"
	"github.com/zeusync/handarena/internal/core/events/bus"
	"github.com/zeusync/handarena/internal/core/observability/log"
)

// Config holds the loop timing.
type Config struct {
	ClockPeriod time.Duration // arena clock tick
	FramePeriod time.Duration // snapshot fan-out to listeners
	EndedDelay  time.Duration // pause after a round ends before the reset
	InboxSize   int
}

func DefaultConfig() Config {
	return Config{
		ClockPeriod: time.Second,
		FramePeriod: 33 * time.Millisecond,
		EndedDelay:  3 * time.Second,
		InboxSize:   256,
	}
}

// Listener receives a snapshot on every frame tick. It runs on the driver
// goroutine and must not block.
type Listener func(arena.Snapshot)

// Driver owns an Arena and serializes every access to it through one
// goroutine. Other goroutines talk to it through the inbox.
type Driver struct {
	arena  *arena.Arena
	cfg    Config
	logger log.Log

	inbox   chan any
	ended   chan struct{}
	done    chan struct{}
	running atomic.Bool
	subs    []bus.Subscription

	listenersMu sync.RWMutex
	listeners   map[string]Listener

	// Owned by the Run goroutine.
	endedTimer *time.Timer
}

// New wires a driver to a. b must be the bus a publishes on.
func New(a *arena.Arena, b bus.EventBus, cfg Config, logger log.Log) (*Driver, error) {
	def := DefaultConfig()
	if cfg.ClockPeriod <= 0 {
		cfg.ClockPeriod = def.ClockPeriod
	}
	if cfg.FramePeriod <= 0 {
		cfg.FramePeriod = def.FramePeriod
	}
	if cfg.EndedDelay <= 0 {
		cfg.EndedDelay = def.EndedDelay
	}
	if cfg.InboxSize <= 0 {
		cfg.InboxSize = def.InboxSize
	}

	d := &Driver{
		arena:     a,
		cfg:       cfg,
		logger:    logger.With(log.String("component", "driver")),
		inbox:     make(chan any, cfg.InboxSize),
		ended:     make(chan struct{}, 1),
		done:      make(chan struct{}),
		listeners: make(map[string]Listener),
	}

	sub, err := b.Subscribe(arena.EventRoundEnded, func(bus.Event) error {
		select {
		case d.ended <- struct{}{}:
		default:
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "subscribe to round end")
	}
	d.subs = append(d.subs, sub)
	return d, nil
}

// Run drives the arena until ctx is canceled. It may be called once.
func (d *Driver) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(d.done)
	defer func() {
		for _, s := range d.subs {
			_ = s.Cancel()
		}
	}()

	clock := time.NewTicker(d.cfg.ClockPeriod)
	defer clock.Stop()
	frame := time.NewTicker(d.cfg.FramePeriod)
	defer frame.Stop()
	defer d.disarm()

	d.logger.Info("Driver started",
		log.Duration("clock", d.cfg.ClockPeriod),
		log.Duration("frame", d.cfg.FramePeriod),
		log.Duration("ended_delay", d.cfg.EndedDelay))

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Driver stopped")
			return nil
		case cmd := <-d.inbox:
			d.handle(cmd)
		case <-clock.C:
			d.arena.OnClockTick()
		case <-frame.C:
			d.emit()
		case <-d.ended:
			d.arm()
		case <-d.endedC():
			d.endedTimer = nil
			d.arena.OnEndedTimerFired()
			d.emit()
		}
	}
}

func (d *Driver) handle(cmd any) {
	switch c := cmd.(type) {
	case sampleCmd:
		d.arena.OnSample(c.x, c.y, c.gesture)
	case handLostCmd:
		d.arena.OnHandLost()
		c.reply <- struct{}{}
	case controlCmd:
		switch c.action {
		case ActionStart:
			d.arena.Start()
		case ActionPause:
			d.arena.Pause()
		case ActionToggle:
			d.arena.Toggle()
		case ActionRestart:
			// A round that ended earlier in this inbox batch must not arm the
			// timer after the reset.
			select {
			case <-d.ended:
			default:
			}
			d.disarm()
			d.arena.Restart()
		case ActionSpeed:
			d.arena.SetPursuitSpeed(c.speed)
		}
		c.reply <- d.arena.State()
	case snapshotCmd:
		c.reply <- d.arena.Snapshot()
	default:
		d.logger.Warn("Unknown driver command")
	}
}

func (d *Driver) arm() {
	d.disarm()
	if d.arena.State() != arena.StateEnded {
		return
	}
	d.endedTimer = time.NewTimer(d.cfg.EndedDelay)
	d.logger.Debug("Ended timer armed", log.Duration("delay", d.cfg.EndedDelay))
}

func (d *Driver) disarm() {
	if d.endedTimer != nil {
		d.endedTimer.Stop()
		d.endedTimer = nil
	}
}

// endedC is nil, and so never ready, while no timer is armed.
func (d *Driver) endedC() <-chan time.Time {
	if d.endedTimer == nil {
		return nil
	}
	return d.endedTimer.C
}

func (d *Driver) emit() {
	d.listenersMu.RLock()
	listeners := make([]Listener, 0, len(d.listeners))
	for _, l := range d.listeners {
		listeners = append(listeners, l)
	}
	d.listenersMu.RUnlock()
	if len(listeners) == 0 {
		return
	}
	snap := d.arena.Snapshot()
	for _, l := range listeners {
		l(snap)
	}
}

// Listen registers l for frame snapshots and returns its cancel func.
func (d *Driver) Listen(l Listener) (cancel func()) {
	id := uuid.NewString()
	d.listenersMu.Lock()
	d.listeners[id] = l
	d.listenersMu.Unlock()
	return func() {
		d.listenersMu.Lock()
		delete(d.listeners, id)
		d.listenersMu.Unlock()
	}
}

// Done is closed once Run has returned.
func (d *Driver) Done() <-chan struct{} {
	return d.done
}

// Sample queues a pointer sample. Samples are dropped, not queued behind a
// full inbox: the tracker will send a fresher one.
func (d *Driver) Sample(x, y float64, g arena.Gesture) error {
	select {
	case <-d.done:
		return ErrStopped
	default:
	}
	select {
	case d.inbox <- sampleCmd{x: x, y: y, gesture: g}:
		return nil
	default:
		return ErrInboxFull
	}
}

// HandLost reports that the tracker no longer sees a hand.
func (d *Driver) HandLost(ctx context.Context) error {
	reply := make(chan struct{}, 1)
	if err := d.send(ctx, handLostCmd{reply: reply}); err != nil {
		return err
	}
	_, err := wait(ctx, d.done, reply)
	return err
}

// Control applies a lifecycle action and returns the resulting state. speed
// is only read by ActionSpeed.
func (d *Driver) Control(ctx context.Context, action Action, speed float64) (arena.State, error) {
	if _, ok := ParseAction(action.String()); !ok {
		return 0, errors.Wrapf(ErrUnknownAction, "%d", action)
	}
	reply := make(chan arena.State, 1)
	if err := d.send(ctx, controlCmd{action: action, speed: speed, reply: reply}); err != nil {
		return 0, err
	}
	return wait(ctx, d.done, reply)
}

func (d *Driver) Start(ctx context.Context) (arena.State, error) {
	return d.Control(ctx, ActionStart, 0)
}

func (d *Driver) Pause(ctx context.Context) (arena.State, error) {
	return d.Control(ctx, ActionPause, 0)
}

func (d *Driver) Toggle(ctx context.Context) (arena.State, error) {
	return d.Control(ctx, ActionToggle, 0)
}

func (d *Driver) Restart(ctx context.Context) (arena.State, error) {
	return d.Control(ctx, ActionRestart, 0)
}

func (d *Driver) SetSpeed(ctx context.Context, v float64) (arena.State, error) {
	return d.Control(ctx, ActionSpeed, v)
}

// Snapshot returns a copy of the arena taken on the driver goroutine.
func (d *Driver) Snapshot(ctx context.Context) (arena.Snapshot, error) {
	reply := make(chan arena.Snapshot, 1)
	if err := d.send(ctx, snapshotCmd{reply: reply}); err != nil {
		return arena.Snapshot{}, err
	}
	return wait(ctx, d.done, reply)
}

func (d *Driver) send(ctx context.Context, cmd any) error {
	select {
	case <-d.done:
		return ErrStopped
	default:
	}
	select {
	case d.inbox <- cmd:
		return nil
	case <-d.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func wait[T any](ctx context.Context, done <-chan struct{}, reply <-chan T) (T, error) {
	var zero T
	select {
	case v := <-reply:
		return v, nil
	case <-done:
		return zero, ErrStopped
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

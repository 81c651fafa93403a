package arena

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/handarena/internal/core/events/bus"
	"github.com/zeusync/handarena/internal/core/observability/log"
	"github.com/zeusync/handarena/internal/core/physics"
)

// Arena is the simulation core. It is not safe for concurrent use: every call
// must come from the single goroutine that owns it.
type Arena struct {
	cfg      Config
	entities []Entity
	initial  []Entity
	goals    []Handle
	pursuers []Handle

	pointer      physics.Vec2
	gesture      Gesture
	handDetected bool
	dragged      Handle

	state         State
	trail         *Trail
	activeSeconds int
	rampTicks     int
	samples       uint64
	roundID       string

	rng    Jitter
	bus    bus.EventBus
	logger log.Log
}

type Option func(*Arena)

func WithLogger(l log.Log) Option {
	return func(a *Arena) { a.logger = l.With(log.String("component", "arena")) }
}

// WithBus makes the arena publish its events on b.
func WithBus(b bus.EventBus) Option {
	return func(a *Arena) { a.bus = b }
}

// WithJitter sets the random source for coincident-center separation.
func WithJitter(j Jitter) Option {
	return func(a *Arena) { a.rng = j }
}

// WithSeed seeds a PCG source for the jitter fallback.
func WithSeed(seed uint64) Option {
	return func(a *Arena) { a.rng = NewJitter(seed) }
}

// NewJitter returns a deterministic source for the given seed.
func NewJitter(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// New builds an arena from cfg in the Paused state.
func New(cfg Config, opts ...Option) (*Arena, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	entities, err := buildEntities(cfg.Layout, cfg.Width, cfg.Height, cfg.BaseSpeed)
	if err != nil {
		return nil, err
	}

	a := &Arena{
		cfg:      cfg,
		entities: entities,
		initial:  append([]Entity(nil), entities...),
		pointer:  physics.Vec2{X: 0.5, Y: 0.5},
		dragged:  NoHandle,
		state:    StatePaused,
		trail:    NewTrail(cfg.TrailLength),
		roundID:  newRoundID(),
		logger:   log.NewNop(),
	}
	for i := range entities {
		switch entities[i].Kind {
		case KindGoal:
			a.goals = append(a.goals, Handle(i))
		case KindPursuer:
			a.pursuers = append(a.pursuers, Handle(i))
		}
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.rng == nil {
		a.rng = NewJitter(uint64(time.Now().UnixNano()))
	}

	a.logger.Info("Arena created",
		log.Float64("width", cfg.Width),
		log.Float64("height", cfg.Height),
		log.Int("entities", len(entities)),
		log.String("round", a.roundID))
	return a, nil
}

// OnSample consumes one pointer sample. x and y are normalized to [0,1].
// Outside Running only the pointer, gesture and trail are updated.
func (a *Arena) OnSample(x, y float64, g Gesture) {
	if math.IsNaN(x) || math.IsNaN(y) {
		return
	}
	a.samples++
	a.pointer = physics.Vec2{X: x, Y: y}
	a.gesture = g
	a.handDetected = true
	abs := a.absolute()
	a.trail.Push(TrailPoint{X: abs.X, Y: abs.Y, Gesture: g})

	if a.state != StateRunning {
		return
	}

	// Separation reads the drag flags left by the previous sample.
	a.resolveSeparation()
	a.updateDrag(abs, g)
	if g == GestureOpen {
		for _, h := range a.pursuers {
			a.MoveTowardsTarget(h)
		}
	}
	a.checkRoundEnd()
	a.containAll()
}

// OnHandLost releases any active drag and marks the hand as missing.
func (a *Arena) OnHandLost() {
	a.handDetected = false
	a.releaseDrag()
}

// OnClockTick is the coarse periodic tick. While running it accumulates
// active seconds and steps the difficulty ramp, both only when the hand is
// detected and open.
func (a *Arena) OnClockTick() {
	if a.state != StateRunning {
		return
	}
	live := a.handDetected && a.gesture == GestureOpen
	if live {
		a.activeSeconds++
	}
	a.rampTicks++
	if a.cfg.RampEveryTicks > 0 && a.rampTicks%a.cfg.RampEveryTicks == 0 && live {
		a.rampSpeed()
	}
}

// SetPursuitSpeed overrides every pursuer's speed, clamped to
// [BaseSpeed, MaxManualSpeed].
func (a *Arena) SetPursuitSpeed(v float64) {
	v = physics.Clamp(v, a.cfg.BaseSpeed, a.cfg.MaxManualSpeed)
	a.setSpeed(v, false)
}

func (a *Arena) rampSpeed() {
	current := a.Speed()
	if current >= a.cfg.SpeedCap {
		return
	}
	a.setSpeed(math.Min(current+1, a.cfg.SpeedCap), true)
}

func (a *Arena) setSpeed(v float64, ramp bool) {
	if len(a.pursuers) == 0 || v == a.Speed() {
		return
	}
	for _, h := range a.pursuers {
		a.entities[h].Pursuit.Speed = v
	}
	a.logger.Debug("Pursuit speed changed", log.Float64("speed", v), log.Bool("ramp", ramp))
	a.publish(EventSpeedChanged, SpeedChanged{Speed: v, Ramp: ramp})
}

func (a *Arena) resolveSeparation() {
	p := a.cfg.Separation
	for i := range a.entities {
		ei := &a.entities[i]
		if !ei.IsBox() {
			continue
		}
		for j := i + 1; j < len(a.entities); j++ {
			ej := &a.entities[j]
			if !ej.IsBox() || (ei.Kind == KindPursuer && ej.Kind == KindPursuer) {
				continue
			}
			if physics.BoxesOverlap(ei.Box(), ej.Box()) {
				ResolveBoxes(ei, ej, p, a.rng)
			}
		}
	}
	for i := range a.entities {
		e := &a.entities[i]
		if e.Kind != KindBlock {
			continue
		}
		for _, g := range a.goals {
			circle := a.entities[g].Circle()
			if physics.BoxCircleOverlap(e.Box(), circle) {
				ResolveBoxCircle(e, circle, p, a.rng)
			}
		}
	}
}

func (a *Arena) checkRoundEnd() {
	for _, h := range a.pursuers {
		p := &a.entities[h]
		for _, g := range a.goals {
			goal := &a.entities[g]
			threshold := p.HalfExtent() + goal.Radius
			if physics.CirclesClose(p.Center(), goal.Center(), threshold) {
				a.endRound(p, p.Center().DistanceTo(goal.Center()))
				return
			}
		}
	}
}

func (a *Arena) containAll() {
	for i := range a.entities {
		Contain(&a.entities[i], a.cfg.Width, a.cfg.Height)
	}
}

func (a *Arena) absolute() physics.Vec2 {
	return physics.Vec2{X: a.pointer.X * a.cfg.Width, Y: a.pointer.Y * a.cfg.Height}
}

func (a *Arena) entity(h Handle) (*Entity, bool) {
	if h < 0 || int(h) >= len(a.entities) {
		return nil, false
	}
	return &a.entities[h], true
}

func (a *Arena) publish(typ string, data any) {
	if a.bus == nil {
		return
	}
	if err := a.bus.Publish(bus.NewEvent(typ, EventSource, data)); err != nil {
		a.logger.Warn("Event handler failed", log.String("event", typ), log.Error(err))
	}
}

func newRoundID() string {
	return uuid.NewString()
}

// Read-only accessors for renderers and tests.

func (a *Arena) State() State          { return a.state }
func (a *Arena) Paused() bool          { return a.state == StatePaused }
func (a *Arena) Ended() bool           { return a.state == StateEnded }
func (a *Arena) Dragged() Handle       { return a.dragged }
func (a *Arena) ActiveSeconds() int    { return a.activeSeconds }
func (a *Arena) RoundID() string       { return a.roundID }
func (a *Arena) Config() Config        { return a.cfg }
func (a *Arena) HandDetected() bool    { return a.handDetected }
func (a *Arena) Gesture() Gesture      { return a.gesture }
func (a *Arena) Pointer() physics.Vec2 { return a.pointer }
func (a *Arena) Trail() []TrailPoint   { return a.trail.Points() }
func (a *Arena) Len() int              { return len(a.entities) }

// Entity returns a copy of the entity at h.
func (a *Arena) Entity(h Handle) (Entity, bool) {
	e, ok := a.entity(h)
	if !ok {
		return Entity{}, false
	}
	return *e, true
}

// Lookup finds an entity handle by role.
func (a *Arena) Lookup(role string) (Handle, bool) {
	for i := range a.entities {
		if a.entities[i].Role == role {
			return Handle(i), true
		}
	}
	return NoHandle, false
}

// Speed is the current pursuer speed, or the base speed without pursuers.
func (a *Arena) Speed() float64 {
	if len(a.pursuers) == 0 {
		return a.cfg.BaseSpeed
	}
	return a.entities[a.pursuers[0]].Pursuit.Speed
}

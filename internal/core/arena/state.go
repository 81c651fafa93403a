package arena

import "github.com/zeusync/handarena/internal/core/observability/log"

type State uint8

const (
	StatePaused State = iota
	StateRunning
	StateEnded
)

func (s State) String() string {
	switch s {
	case StatePaused:
		return "paused"
	case StateRunning:
		return "running"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Gesture is the binary hand pose reported by the input source. The numeric
// values match the classifier labels: 0 palm, 1 fist.
type Gesture uint8

const (
	GestureOpen Gesture = iota
	GestureClosed
)

func (g Gesture) String() string {
	if g == GestureClosed {
		return "closed"
	}
	return "open"
}

// ResetReason says why a round was reset.
type ResetReason string

const (
	ResetRestart ResetReason = "restart"
	ResetTimer   ResetReason = "ended_timer"
)

// Start resumes a paused round. It is a no-op while running or ended.
func (a *Arena) Start() {
	if a.state != StatePaused {
		return
	}
	a.rampTicks = 0
	a.setState(StateRunning)
}

// Pause suspends updates without clearing anything.
func (a *Arena) Pause() {
	if a.state != StateRunning {
		return
	}
	a.setState(StatePaused)
}

// Toggle flips between running and paused.
func (a *Arena) Toggle() {
	switch a.state {
	case StatePaused:
		a.Start()
	case StateRunning:
		a.Pause()
	}
}

// Restart resets every entity and re-enters Paused from any state.
func (a *Arena) Restart() {
	a.reset(ResetRestart)
}

// OnEndedTimerFired is the post-end alarm. It only acts while Ended.
func (a *Arena) OnEndedTimerFired() {
	if a.state != StateEnded {
		return
	}
	a.reset(ResetTimer)
}

func (a *Arena) setState(to State) {
	from := a.state
	if from == to {
		return
	}
	a.state = to
	a.logger.Info("State changed",
		log.String("from", from.String()),
		log.String("to", to.String()),
		log.String("round", a.roundID))
	a.publish(EventStateChanged, StateChanged{From: from, To: to, RoundID: a.roundID})
}

func (a *Arena) endRound(pursuer *Entity, distance float64) {
	a.setState(StateEnded)
	a.publish(EventRoundEnded, RoundEnded{
		RoundID:       a.roundID,
		ActiveSeconds: a.activeSeconds,
		Pursuer:       pursuer.Role,
		Distance:      distance,
	})
}

func (a *Arena) reset(reason ResetReason) {
	previous := a.roundID
	active := a.activeSeconds

	copy(a.entities, a.initial)
	a.dragged = NoHandle
	a.trail.Clear()
	a.activeSeconds = 0
	a.rampTicks = 0
	a.roundID = newRoundID()

	a.setState(StatePaused)
	a.logger.Info("Round reset",
		log.String("reason", string(reason)),
		log.String("previous_round", previous),
		log.Int("active_seconds", active))
	a.publish(EventRoundReset, RoundReset{
		RoundID:         a.roundID,
		PreviousRoundID: previous,
		ActiveSeconds:   active,
		Reason:          reason,
	})
}

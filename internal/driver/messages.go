package driver

import "github.com/zeusync/handarena/internal/core/arena"

// Action is a lifecycle or tuning command.
type Action uint8

const (
	ActionStart Action = iota + 1
	ActionPause
	ActionToggle
	ActionRestart
	ActionSpeed
)

func (a Action) String() string {
	switch a {
	case ActionStart:
		return "start"
	case ActionPause:
		return "pause"
	case ActionToggle:
		return "toggle"
	case ActionRestart:
		return "restart"
	case ActionSpeed:
		return "speed"
	default:
		return "unknown"
	}
}

// ParseAction maps a wire action name onto an Action.
func ParseAction(s string) (Action, bool) {
	for _, a := range []Action{ActionStart, ActionPause, ActionToggle, ActionRestart, ActionSpeed} {
		if a.String() == s {
			return a, true
		}
	}
	return 0, false
}

// Inbox commands. Only the owner goroutine touches the arena.
type (
	sampleCmd struct {
		x, y    float64
		gesture arena.Gesture
	}

	handLostCmd struct {
		reply chan<- struct{}
	}

	controlCmd struct {
		action Action
		speed  float64
		reply  chan<- arena.State
	}

	snapshotCmd struct {
		reply chan<- arena.Snapshot
	}
)

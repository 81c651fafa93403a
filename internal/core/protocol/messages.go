package protocol

import (
	"math"

	"github.com/pkg/errors"

	"github.com/zeusync/handarena/internal/core/arena"
)

// Gesture names on the wire.
const (
	GestureOpen   = "open"
	GestureClosed = "closed"
)

// Control actions.
const (
	ActionStart   = "start"
	ActionPause   = "pause"
	ActionToggle  = "toggle"
	ActionRestart = "restart"
	ActionSpeed   = "speed"
)

// Sample is one pointer reading from the hand tracker, normalized to [0,1].
type Sample struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Gesture string  `json:"gesture"`
}

type Control struct {
	Action string  `json:"action"`
	Speed  float64 `json:"speed,omitempty"`
}

// Ack confirms a control message and carries the resulting state.
type Ack struct {
	Action string `json:"action"`
	State  string `json:"state"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

// Input is a decoded message from the input socket. Exactly one of Sample or
// Control is set for those types; hand_lost carries neither.
type Input struct {
	Type    MessageType
	Sample  Sample
	Gesture arena.Gesture
	Control Control
}

// DecodeInput parses and validates one input message.
func DecodeInput(b []byte) (Input, error) {
	env, err := DecodeEnvelope(b)
	if err != nil {
		return Input{}, err
	}
	in := Input{Type: env.T}
	switch env.T {
	case TypeSample:
		if in.Sample, err = DecodePayload[Sample](env); err != nil {
			return Input{}, err
		}
		if in.Gesture, err = in.Sample.Validate(); err != nil {
			return Input{}, err
		}
	case TypeHandLost:
	case TypeControl:
		if in.Control, err = DecodePayload[Control](env); err != nil {
			return Input{}, err
		}
		if err = in.Control.Validate(); err != nil {
			return Input{}, err
		}
	default:
		return Input{}, errors.Wrapf(ErrUnknownType, "%q", env.T)
	}
	return in, nil
}

// Validate checks the coordinates and returns the parsed gesture.
// Coordinates outside [0,1] are allowed; the arena clamps what it moves.
func (s Sample) Validate() (arena.Gesture, error) {
	if math.IsNaN(s.X) || math.IsNaN(s.Y) || math.IsInf(s.X, 0) || math.IsInf(s.Y, 0) {
		return 0, errors.Wrapf(ErrInvalidSample, "non-finite coordinates (%v, %v)", s.X, s.Y)
	}
	return ParseGesture(s.Gesture)
}

func (c Control) Validate() error {
	switch c.Action {
	case ActionStart, ActionPause, ActionToggle, ActionRestart:
		return nil
	case ActionSpeed:
		if c.Speed <= 0 || math.IsNaN(c.Speed) || math.IsInf(c.Speed, 0) {
			return errors.Wrapf(ErrInvalidMessage, "speed %v", c.Speed)
		}
		return nil
	default:
		return errors.Wrapf(ErrUnknownAction, "%q", c.Action)
	}
}

func ParseGesture(s string) (arena.Gesture, error) {
	switch s {
	case GestureOpen:
		return arena.GestureOpen, nil
	case GestureClosed:
		return arena.GestureClosed, nil
	default:
		return 0, errors.Wrapf(ErrInvalidSample, "gesture %q", s)
	}
}

func GestureName(g arena.Gesture) string {
	if g == arena.GestureClosed {
		return GestureClosed
	}
	return GestureOpen
}

package protocol

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// MessageType is the "t" field of an envelope.
type MessageType string

const (
	TypeSample   MessageType = "sample"
	TypeHandLost MessageType = "hand_lost"
	TypeControl  MessageType = "control"
	TypeAck      MessageType = "ack"
	TypeError    MessageType = "error"
)

// Envelope is the JSON frame used on the input socket: {"t": type, "p": payload}.
type Envelope struct {
	T MessageType     `json:"t"`
	P json.RawMessage `json:"p,omitempty"`
}

// Encode wraps payload in an envelope. A nil payload leaves "p" out.
func Encode(t MessageType, payload any) ([]byte, error) {
	if t == "" {
		return nil, errors.Wrap(ErrInvalidMessage, "empty envelope type")
	}
	env := Envelope{T: t}
	if payload != nil {
		pb, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrapf(err, "encode %s payload", t)
		}
		env.P = pb
	}
	return json.Marshal(env)
}

func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, ErrEmptyMessage
	}
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, errors.Wrapf(ErrInvalidMessage, "envelope: %v", err)
	}
	if env.T == "" {
		return Envelope{}, errors.Wrap(ErrInvalidMessage, "missing type")
	}
	return env, nil
}

// DecodePayload unmarshals the payload of env into a T.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 || string(env.P) == "null" {
		return out, errors.Wrapf(ErrEmptyPayload, "type %q", env.T)
	}
	if err := json.Unmarshal(env.P, &out); err != nil {
		return out, errors.Wrapf(ErrInvalidMessage, "%s payload: %v", env.T, err)
	}
	return out, nil
}

package protocol

import (
	"bytes"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/zeusync/handarena/internal/core/arena"
	"github.com/zeusync/handarena/pkg/generic"
)

// Frame is the render view sent to viewers. It is msgpack-encoded on the view
// socket and JSON-encoded by the state endpoint.
type Frame struct {
	Round    string        `msgpack:"r" json:"round"`
	State    string        `msgpack:"s" json:"state"`
	Width    float64       `msgpack:"w" json:"width"`
	Height   float64       `msgpack:"h" json:"height"`
	Entities []EntityFrame `msgpack:"e" json:"entities"`
	Pointer  [2]float64    `msgpack:"p" json:"pointer"`
	Gesture  string        `msgpack:"g" json:"gesture"`
	Hand     bool          `msgpack:"hd" json:"hand_detected"`
	Dragged  string        `msgpack:"d,omitempty" json:"dragged,omitempty"`
	Trail    []TrailFrame  `msgpack:"t" json:"trail"`
	Active   int           `msgpack:"a" json:"active_seconds"`
	Speed    float64       `msgpack:"v" json:"speed"`
	Best     int           `msgpack:"b" json:"best_seconds"`
}

type EntityFrame struct {
	Kind     string   `msgpack:"k" json:"kind"`
	Role     string   `msgpack:"id" json:"role"`
	X        float64  `msgpack:"x" json:"x"`
	Y        float64  `msgpack:"y" json:"y"`
	Size     float64  `msgpack:"sz,omitempty" json:"size,omitempty"`
	Radius   float64  `msgpack:"rd,omitempty" json:"radius,omitempty"`
	Color    [3]uint8 `msgpack:"c" json:"color"`
	Dragging bool     `msgpack:"dr,omitempty" json:"dragging,omitempty"`
}

type TrailFrame struct {
	X      float64 `msgpack:"x" json:"x"`
	Y      float64 `msgpack:"y" json:"y"`
	Closed bool    `msgpack:"c,omitempty" json:"closed,omitempty"`
}

// NewFrame converts an arena snapshot. best is the best time known to the caller.
func NewFrame(s arena.Snapshot, best int) Frame {
	f := Frame{
		Round:    s.RoundID,
		State:    s.State.String(),
		Width:    s.Width,
		Height:   s.Height,
		Entities: make([]EntityFrame, len(s.Entities)),
		Pointer:  [2]float64{s.Pointer.X, s.Pointer.Y},
		Gesture:  GestureName(s.Gesture),
		Hand:     s.HandDetected,
		Trail:    make([]TrailFrame, len(s.Trail)),
		Active:   s.ActiveSeconds,
		Speed:    s.Speed,
		Best:     best,
	}
	for i, e := range s.Entities {
		f.Entities[i] = EntityFrame{
			Kind:     e.Kind.String(),
			Role:     e.Role,
			X:        e.X,
			Y:        e.Y,
			Size:     e.Size,
			Radius:   e.Radius,
			Color:    [3]uint8{e.Color.R, e.Color.G, e.Color.B},
			Dragging: e.Dragging,
		}
		if e.Handle == s.Dragged {
			f.Dragged = e.Role
		}
	}
	for i, p := range s.Trail {
		f.Trail[i] = TrailFrame{X: p.X, Y: p.Y, Closed: p.Gesture == arena.GestureClosed}
	}
	return f
}

var bufferPool = generic.NewPool(func() *bytes.Buffer { return new(bytes.Buffer) }, (*bytes.Buffer).Reset)

// EncodeFrame returns the msgpack encoding of f.
func EncodeFrame(f *Frame) ([]byte, error) {
	buf := bufferPool.Get()
	defer bufferPool.Put(buf)

	if err := msgpack.NewEncoder(buf).Encode(f); err != nil {
		return nil, errors.Wrap(err, "encode frame")
	}
	return bytes.Clone(buf.Bytes()), nil
}

func DecodeFrame(b []byte) (Frame, error) {
	var f Frame
	if len(b) == 0 {
		return f, ErrEmptyMessage
	}
	if err := msgpack.Unmarshal(b, &f); err != nil {
		return Frame{}, errors.Wrap(err, "decode frame")
	}
	return f, nil
}

// Digest fingerprints an encoded frame so unchanged frames can be skipped.
func Digest(b []byte) uint64 {
	return xxhash.Sum64(b)
}

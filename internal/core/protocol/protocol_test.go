package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/handarena/internal/core/arena"
)

func TestEncode(t *testing.T) {
	b, err := Encode(TypeSample, Sample{X: 0.25, Y: 0.5, Gesture: GestureClosed})
	require.NoError(t, err)
	assert.JSONEq(t, `{"t":"sample","p":{"x":0.25,"y":0.5,"gesture":"closed"}}`, string(b))

	b, err = Encode(TypeHandLost, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"t":"hand_lost"}`, string(b))

	_, err = Encode("", Sample{})
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestDecodeInput(t *testing.T) {
	in, err := DecodeInput([]byte(`{"t":"sample","p":{"x":0.1,"y":0.9,"gesture":"closed"}}`))
	require.NoError(t, err)
	assert.Equal(t, TypeSample, in.Type)
	assert.Equal(t, arena.GestureClosed, in.Gesture)
	assert.Equal(t, 0.9, in.Sample.Y)

	in, err = DecodeInput([]byte(`{"t":"hand_lost"}`))
	require.NoError(t, err)
	assert.Equal(t, TypeHandLost, in.Type)

	in, err = DecodeInput([]byte(`{"t":"control","p":{"action":"speed","speed":4}}`))
	require.NoError(t, err)
	assert.Equal(t, Control{Action: ActionSpeed, Speed: 4}, in.Control)
}

func TestDecodeInput_Errors(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want error
	}{
		{"empty", ``, ErrEmptyMessage},
		{"not json", `{"t":`, ErrInvalidMessage},
		{"missing type", `{"p":{}}`, ErrInvalidMessage},
		{"unknown type", `{"t":"wave"}`, ErrUnknownType},
		{"sample without payload", `{"t":"sample"}`, ErrEmptyPayload},
		{"sample null payload", `{"t":"sample","p":null}`, ErrEmptyPayload},
		{"bad gesture", `{"t":"sample","p":{"x":0,"y":0,"gesture":"peace"}}`, ErrInvalidSample},
		{"wrong field type", `{"t":"sample","p":{"x":"left"}}`, ErrInvalidMessage},
		{"unknown action", `{"t":"control","p":{"action":"dance"}}`, ErrUnknownAction},
		{"zero speed", `{"t":"control","p":{"action":"speed"}}`, ErrInvalidMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeInput([]byte(tc.raw))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestGestureNames(t *testing.T) {
	for _, g := range []arena.Gesture{arena.GestureOpen, arena.GestureClosed} {
		parsed, err := ParseGesture(GestureName(g))
		require.NoError(t, err)
		assert.Equal(t, g, parsed)
	}
}

func TestFrame(t *testing.T) {
	a, err := arena.New(arena.DefaultConfig(), arena.WithSeed(1))
	require.NoError(t, err)
	a.Start()
	a.OnSample(150.0/800, 150.0/800, arena.GestureClosed)

	f := NewFrame(a.Snapshot(), 12)
	assert.Equal(t, "running", f.State)
	assert.Equal(t, "block-blue", f.Dragged)
	assert.Equal(t, "closed", f.Gesture)
	assert.Equal(t, 12, f.Best)
	require.Len(t, f.Entities, 5)
	assert.True(t, f.Entities[0].Dragging)
	assert.Equal(t, "goal", f.Entities[2].Kind)
	assert.Equal(t, [3]uint8{65, 105, 225}, f.Entities[0].Color)
	require.Len(t, f.Trail, 1)
	assert.True(t, f.Trail[0].Closed)

	b, err := EncodeFrame(&f)
	require.NoError(t, err)
	got, err := DecodeFrame(b)
	require.NoError(t, err)
	assert.Equal(t, f, got)

	again, err := EncodeFrame(&f)
	require.NoError(t, err)
	assert.Equal(t, Digest(b), Digest(again), "encoding is deterministic")

	a.OnSample(0.5, 0.5, arena.GestureOpen)
	next := NewFrame(a.Snapshot(), 12)
	nb, err := EncodeFrame(&next)
	require.NoError(t, err)
	assert.NotEqual(t, Digest(b), Digest(nb))

	_, err = DecodeFrame(nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

package arena

// Event types published on the bus. Payloads are the structs below.
const (
	EventStateChanged = "arena.state_changed"
	EventRoundEnded   = "arena.round_ended"
	EventRoundReset   = "arena.round_reset"
	EventDragBound    = "arena.drag_bound"
	EventDragReleased = "arena.drag_released"
	EventSpeedChanged = "arena.speed_changed"
)

// EventSource is the Source() of every event the arena publishes.
const EventSource = "arena"

type StateChanged struct {
	From, To State
	RoundID  string
}

type RoundEnded struct {
	RoundID       string
	ActiveSeconds int
	Pursuer       string
	Distance      float64
}

type RoundReset struct {
	RoundID         string
	PreviousRoundID string
	ActiveSeconds   int
	Reason          ResetReason
}

type DragChanged struct {
	Handle Handle
	Role   string
}

type SpeedChanged struct {
	Speed float64
	Ramp  bool
}

package arena

// TrailPoint is one absolute pointer sample kept for the cursor trail.
type TrailPoint struct {
	X, Y    float64
	Gesture Gesture
}

// Trail is a fixed-capacity ring of recent pointer samples.
type Trail struct {
	points []TrailPoint
	start  int
	count  int
}

func NewTrail(capacity int) *Trail {
	return &Trail{points: make([]TrailPoint, capacity)}
}

func (t *Trail) Push(p TrailPoint) {
	if len(t.points) == 0 {
		return
	}
	if t.count < len(t.points) {
		t.points[(t.start+t.count)%len(t.points)] = p
		t.count++
		return
	}
	t.points[t.start] = p
	t.start = (t.start + 1) % len(t.points)
}

// Points returns the samples oldest first.
func (t *Trail) Points() []TrailPoint {
	out := make([]TrailPoint, t.count)
	for i := 0; i < t.count; i++ {
		out[i] = t.points[(t.start+i)%len(t.points)]
	}
	return out
}

func (t *Trail) Len() int { return t.count }

func (t *Trail) Clear() {
	t.start = 0
	t.count = 0
}

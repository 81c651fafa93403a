package term

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Chime plays a short two-note cue when a round ends.
type Chime struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

func NewChime() *Chime {
	return &Chime{mixer: &beep.Mixer{}}
}

// Initialize opens the speaker. Calling it again is a no-op.
func (c *Chime) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(c.mixer)
	c.initialized = true
	return nil
}

// Play queues the chime. Without an initialized speaker it does nothing.
func (c *Chime) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return
	}
	speaker.Lock()
	c.mixer.Add(beep.Take(sampleRate.N(chimeLength), newChimeGenerator(sampleRate)))
	speaker.Unlock()
}

func (c *Chime) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	c.initialized = false
}

const chimeLength = 450 * time.Millisecond

// chimeGenerator is a falling fifth (E5 then A4) with an exponential decay
// per note.
type chimeGenerator struct {
	sr    beep.SampleRate
	pos   int
	split int
}

func newChimeGenerator(sr beep.SampleRate) *chimeGenerator {
	return &chimeGenerator{sr: sr, split: sr.N(chimeLength / 3)}
}

func (g *chimeGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		freq, start := 659.25, 0
		if g.pos >= g.split {
			freq, start = 440.0, g.split
		}
		t := float64(g.pos) / float64(g.sr)
		local := float64(g.pos-start) / float64(g.sr)
		val := 0.25 * math.Exp(-6*local) * math.Sin(2*math.Pi*freq*t)
		samples[i][0] = val
		samples[i][1] = val
		g.pos++
	}
	return len(samples), true
}

func (g *chimeGenerator) Err() error { return nil }

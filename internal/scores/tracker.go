package scores

import (
	"sync"

	"github.com/zeusync/handarena/internal/core/arena"
	"github.com/zeusync/handarena/internal/core/events/bus"
	"github.com/zeusync/handarena/internal/core/observability/log"
)

// Tracker listens for finished rounds and records new best times.
type Tracker struct {
	store  Store
	logger log.Log

	mu   sync.RWMutex
	best int
	last int
	subs []bus.Subscription
}

func NewTracker(store Store, logger log.Log) *Tracker {
	return &Tracker{store: store, logger: logger.With(log.String("component", "scores"))}
}

// Attach loads the stored best and subscribes to round events on b.
func (t *Tracker) Attach(b bus.EventBus) error {
	best, err := t.store.Best()
	if err != nil {
		t.logger.Warn("Best time unreadable, starting from zero", log.Error(err))
		best = 0
	}
	t.mu.Lock()
	t.best = best
	t.mu.Unlock()

	ended, err := b.Subscribe(arena.EventRoundEnded, func(e bus.Event) error {
		if ev, ok := e.Data().(arena.RoundEnded); ok {
			return t.Record(ev.ActiveSeconds)
		}
		return nil
	})
	if err != nil {
		return err
	}
	// A manual restart also counts the interrupted round.
	reset, err := b.Subscribe(arena.EventRoundReset, func(e bus.Event) error {
		if ev, ok := e.Data().(arena.RoundReset); ok && ev.Reason == arena.ResetRestart {
			return t.Record(ev.ActiveSeconds)
		}
		return nil
	})
	if err != nil {
		_ = ended.Cancel()
		return err
	}
	t.subs = append(t.subs, ended, reset)
	t.logger.Info("Best time loaded", log.Int("best_seconds", best))
	return nil
}

// Detach cancels the bus subscriptions.
func (t *Tracker) Detach() {
	for _, s := range t.subs {
		_ = s.Cancel()
	}
	t.subs = nil
}

// Record stores seconds when it beats the current best.
func (t *Tracker) Record(seconds int) error {
	t.mu.Lock()
	t.last = seconds
	if seconds <= t.best {
		t.mu.Unlock()
		return nil
	}
	previous := t.best
	t.best = seconds
	t.mu.Unlock()

	if err := t.store.Save(seconds); err != nil {
		t.logger.Error("Saving best time failed", log.Int("seconds", seconds), log.Error(err))
		return err
	}
	t.logger.Info("New best time",
		log.Int("seconds", seconds),
		log.Int("previous", previous))
	return nil
}

// Best is the best time seen so far, in seconds.
func (t *Tracker) Best() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.best
}

// Last is the active time of the most recently finished round.
func (t *Tracker) Last() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

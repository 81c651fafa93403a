package bus

import (
	"errors"
	"testing"
	"time"
)

type testObserver struct {
	publishCount   int
	deliveredCount int
	lastErr        error
}

func (o *testObserver) OnPublish(_ string, _ Event) {
	o.publishCount++
}

func (o *testObserver) OnDelivered(_ string, handlers int, err error, _ time.Duration) {
	o.deliveredCount += handlers
	o.lastErr = err
}

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got Event
	_, err := b.Subscribe("round.ended", func(e Event) error {
		got = e
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err = b.Publish(NewEvent("round.ended", "arena", 42)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got == nil {
		t.Fatal("handler not called")
	}
	if got.Data() != 42 || got.Source() != "arena" {
		t.Fatalf("unexpected event: %+v", got)
	}
}

func TestDeliveryOrderFollowsSubscription(t *testing.T) {
	b := New()
	var order []string
	_, _ = b.SubscribeAll(func(Event) error { order = append(order, "all"); return nil })
	_, _ = b.Subscribe("x", func(Event) error { order = append(order, "first"); return nil })
	_, _ = b.Subscribe("x", func(Event) error { order = append(order, "second"); return nil })

	_ = b.Publish(NewEvent("x", "src", nil))

	want := []string{"first", "second", "all"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestHandlerErrorsAreJoined(t *testing.T) {
	b := New()
	errA := errors.New("a")
	errB := errors.New("b")
	_, _ = b.Subscribe("x", func(Event) error { return errA })
	_, _ = b.Subscribe("x", func(Event) error { return errB })

	err := b.Publish(NewEvent("x", "src", nil))
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("expected joined error, got %v", err)
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	b := New()
	count := 0
	sub, _ := b.Subscribe("x", func(Event) error { count++; return nil })
	_ = b.Publish(NewEvent("x", "src", nil))
	if err := b.Unsubscribe(sub); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if err := sub.Cancel(); err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	_ = b.Publish(NewEvent("x", "src", nil))
	if count != 1 {
		t.Fatalf("expected 1 delivery, got %d", count)
	}
	if sub.IsActive() {
		t.Fatal("subscription still active")
	}
	if err := b.Unsubscribe(nil); err != nil {
		t.Fatalf("nil unsubscribe: %v", err)
	}
}

func TestPublishFromHandler(t *testing.T) {
	b := New()
	got := false
	_, _ = b.Subscribe("outer", func(Event) error {
		return b.Publish(NewEvent("inner", "src", nil))
	})
	_, _ = b.Subscribe("inner", func(Event) error { got = true; return nil })

	if err := b.Publish(NewEvent("outer", "src", nil)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !got {
		t.Fatal("nested publish not delivered")
	}
}

func TestInvalidSubscriptions(t *testing.T) {
	b := New()
	if _, err := b.Subscribe("", func(Event) error { return nil }); !errors.Is(err, ErrEmptyEventType) {
		t.Fatalf("expected ErrEmptyEventType, got %v", err)
	}
	if _, err := b.Subscribe("x", nil); !errors.Is(err, ErrNilHandler) {
		t.Fatalf("expected ErrNilHandler, got %v", err)
	}
	if err := b.Publish(nil); !errors.Is(err, ErrNilEvent) {
		t.Fatalf("expected ErrNilEvent, got %v", err)
	}
}

func TestFiltersDropSilently(t *testing.T) {
	b := New()
	obs := &testObserver{}
	b.AddObserver(obs)
	count := 0
	_, _ = b.Subscribe("x", func(Event) error { count++; return nil })

	err := b.PublishWithFilters(NewEvent("x", "src", nil), func(Event) bool { return false })
	if err != nil || count != 0 {
		t.Fatalf("filtered event delivered: err=%v count=%d", err, count)
	}
	if b.GetMetrics().DroppedByFilters != 1 {
		t.Fatalf("drop not counted: %+v", b.GetMetrics())
	}
}

func TestObserverMetricsOptional(t *testing.T) {
	b := New()
	_, _ = b.Subscribe("e", func(e Event) error { return nil })
	_ = b.Publish(NewEvent("e", "s", nil))
	m := b.GetMetrics()
	if m.Published != 0 || m.DeliveredHandlers != 0 {
		t.Fatalf("metrics should be zero without observers: %+v", m)
	}

	obs := &testObserver{}
	b.AddObserver(obs)
	_ = b.PublishBatch(NewEvent("e", "s", nil), NewEvent("e", "s", nil))
	m2 := b.GetMetrics()
	if m2.Published != 2 || m2.DeliveredHandlers != 2 || m2.SubscribersActive != 1 {
		t.Fatalf("metrics should update with observer: %+v", m2)
	}
	if obs.publishCount != 2 || obs.deliveredCount != 2 {
		t.Fatalf("observer not called: %+v", obs)
	}

	b.RemoveObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil))
	if obs.publishCount != 2 {
		t.Fatalf("removed observer still notified: %+v", obs)
	}
}

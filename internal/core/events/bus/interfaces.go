package bus

import "time"

// EventBus is an in-process pub/sub bus used to fan arena events out to the
// driver, the best-time tracker and the transport layer.
//
// Key characteristics:
// - Type-based fan-out: handlers subscribe by Event.Type() string, or to every
//   type with SubscribeAll.
// - Synchronous delivery: Publish calls handlers in the caller goroutine, in
//   subscription order.
// - Error aggregation: handler errors are joined and returned from Publish.
// - Optional observability: metrics are produced only when observers are registered.
//
// Handlers may publish or subscribe from inside a handler; the bus does not hold
// its lock while delivering.
type EventBus interface {
	// Publish delivers the event synchronously to all active subscribers of
	// event.Type() and to catch-all subscribers.
	Publish(event Event) error
	// PublishWithFilters drops the event silently if any filter returns false.
	PublishWithFilters(event Event, filters ...EventFilter) error
	// PublishBatch publishes events sequentially and aggregates errors.
	PublishBatch(events ...Event) error

	// Subscribe registers a handler for a specific event type.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// SubscribeAll registers a handler receiving every event.
	SubscribeAll(handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. Nil is a no-op.
	Unsubscribe(Subscription) error

	AddObserver(obs EventBusObserver)
	RemoveObserver(obs EventBusObserver)
	// GetMetrics returns a snapshot of the counters. They only move while at
	// least one observer is registered.
	GetMetrics() EventBusMetrics
}

// Event is an immutable message transported by the EventBus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

type (
	// EventHandler is invoked per delivered event.
	EventHandler func(event Event) error
	// EventFilter decides whether an event should be delivered.
	EventFilter func(event Event) bool
)

// Subscription represents a registered handler bound to an event type.
type Subscription interface {
	ID() string
	// EventType returns the subscribed type, or AllEvents for catch-all handlers.
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// AllEvents is the event type reported by catch-all subscriptions.
const AllEvents = "*"

// EventBusObserver is notified about deliveries. Observers should return quickly.
type EventBusObserver interface {
	OnPublish(eventType string, event Event)
	OnDelivered(eventType string, handlers int, err error, duration time.Duration)
}

type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	DroppedByFilters  uint64
	SubscribersActive uint64
}

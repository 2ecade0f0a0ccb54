package bus

import "time"

// EventBus is an in-process pub/sub bus connecting the simulation to its
// collaborators. Delivery is synchronous: Publish returns after every handler
// of the event type ran, in the order they subscribed, and joins their errors.
// All methods are safe for concurrent use.
type EventBus interface {
	Publish(event Event) error
	// PublishBatch publishes events in order and joins errors across them.
	PublishBatch(events ...Event) error
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels sub. A nil sub is ignored.
	Unsubscribe(sub Subscription) error
}

// Event is an immutable message transported by the EventBus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

// EventHandler is invoked once per delivered event.
type EventHandler func(event Event) error

// Subscription is a handler registered for one event type.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel removes the handler. Repeated calls are no-ops.
	Cancel() error
}

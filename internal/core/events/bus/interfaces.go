package bus

import "time"

// EventBus is an in-process pub/sub bus.
//
// Delivery is synchronous in the publisher's goroutine and follows
// subscription order. Handler errors are joined and returned from Publish.
// Handlers subscribed to Wildcard receive every event.
type EventBus interface {
	// Publish delivers event to the subscribers of event.Type() and of Wildcard.
	Publish(event Event) error
	// Subscribe registers handler for eventType.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels sub. A nil sub is ignored.
	Unsubscribe(sub Subscription) error

	AddObserver(obs EventBusObserver)
}

// Wildcard subscribes to every event type.
const Wildcard = "*"

// Event is a read-only message carried by the bus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

type EventHandler func(event Event) error

// Subscription is a registered handler.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// EventBusObserver is notified around each delivery.
type EventBusObserver interface {
	OnPublish(eventType string, event Event)
	OnDelivered(eventType string, handlers int, err error, took time.Duration)
}

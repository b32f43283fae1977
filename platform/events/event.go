// Package events is the bus infrastructure the domain modules publish over.
// Event payloads live with the modules that emit them; this package only
// knows names, timestamps, and handlers.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event.
type Event interface {
	// EventName identifies the event type. Subscriptions key on this value.
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent carries the timestamp so event structs only add their payload.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps the event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler consumes events. A handler error is the handler's problem to
// report; the bus never retries.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function into a Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes domain events to subscribed handlers.
type Bus interface {
	// Publish delivers the event to every handler subscribed to its name.
	// Delivery is asynchronous; the caller does not wait.
	Publish(ctx context.Context, event Event)

	// PublishSync delivers the event and waits for every handler,
	// returning the first handler error.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler under an Event.EventName value.
	Subscribe(eventName string, handler Handler)
}

// Package events carries the in-process event bus the modules use to talk
// to each other without importing one another, such as the campaign worker
// notifying the lead pool that a recipient was contacted.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event.
type Event interface {
	// EventName identifies the event type, e.g. "campaigns.lead.contacted".
	EventName() string
	// OccurredAt returns when the event happened.
	OccurredAt() time.Time
}

// BaseEvent supplies the timestamp shared by all events.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps a base event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler consumes events of one type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function into a Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes domain events to subscribed handlers. Delivery is
// asynchronous and best-effort; publishers never learn whether a handler
// ran, so side effects driven by events must tolerate missing ones.
type Bus interface {
	// Publish hands the event to every handler subscribed to its name.
	Publish(ctx context.Context, event Event)

	// Subscribe registers a handler for the given event name, matching
	// the value returned by Event.EventName.
	Subscribe(eventName string, handler Handler)
}

// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leadmarket_backend/platform/events"
	"leadmarket_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// LeadContacted is published by the campaign batch worker after a successful
// send so the source record can be stamped with a last-contacted timestamp.
// Delivery is best-effort: subscribers must tolerate missing events.
type LeadContacted struct {
	BaseEvent
	SessionID  uuid.UUID `json:"sessionId"`
	TenantID   uuid.UUID `json:"tenantId"`
	TargetID   uuid.UUID `json:"targetId"`
	SourceType string    `json:"sourceType"`
	Channel    string    `json:"channel"`
}

func (e LeadContacted) EventName() string { return "campaigns.lead.contacted" }

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Campaign session statuses.
const (
	StatusQueued    = "queued"
	StatusScheduled = "scheduled"
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Outreach channels.
const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

// Recipient source types. The session records where its targets live so the
// worker resolves each recipient from the right store.
const (
	SourceImported = "imported"
	SourceTenant   = "tenant"
	SourcePool     = "pool"
)

// Delivery outcomes.
const (
	OutcomeDelivered = "delivered"
	OutcomeFailed    = "failed"
)

// Session is one bulk-outreach campaign: an immutable target snapshot plus
// mutable pointer, counters and status.
type Session struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	Status         string
	Channel        string
	SourceType     string
	Template       string
	TargetIDs      []uuid.UUID
	CurrentPointer int
	Processed      int
	Succeeded      int
	Failed         int
	ScheduledAt    *time.Time
	FailureReason  *string
	RetryOfID      *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Delivery is the per-(session, target) outcome record and idempotency guard.
type Delivery struct {
	ID          uuid.UUID
	SessionID   uuid.UUID
	TargetID    uuid.UUID
	Recipient   string
	Outcome     string
	ErrorDetail *string
	CreatedAt   time.Time
}

// Recipient is the resolved contact data for one campaign target.
type Recipient struct {
	ID       uuid.UUID
	FullName string
	Phone    *string
	Email    *string
}

// SessionRepository persists campaign sessions.
type SessionRepository interface {
	Create(ctx context.Context, session Session) (Session, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (Session, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]Session, int, error)

	// UpdateStatus flips the status when the current status is in allowedFrom
	// (empty means unconditional). Returns false when the guard rejected it.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, allowedFrom []string) (bool, error)
	// MarkFailed is terminal: infrastructure failures that stop the session
	// from self-resuming land here with a diagnostic.
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	// AdvancePointer moves the pointer forward (never backward) and sets the
	// post-slice status in the same write.
	AdvancePointer(ctx context.Context, id uuid.UUID, pointer int, status string) error
	// IncrementProgress atomically bumps processed plus succeeded or failed.
	IncrementProgress(ctx context.Context, id uuid.UUID, success bool) error
}

// DeliveryRepository persists delivery log entries.
type DeliveryRepository interface {
	Exists(ctx context.Context, sessionID, targetID uuid.UUID) (bool, error)
	Insert(ctx context.Context, delivery Delivery) error
	ListFailed(ctx context.Context, sessionID uuid.UUID) ([]Delivery, error)
}

// RecipientSource resolves a campaign target to contact data based on the
// session's recorded source type.
type RecipientSource interface {
	Get(ctx context.Context, tenantID uuid.UUID, sourceType string, id uuid.UUID) (Recipient, error)
}

// BlockRepository is the do-not-contact registry.
type BlockRepository interface {
	IsBlocked(ctx context.Context, tenantID uuid.UUID, identity string) (bool, error)
}

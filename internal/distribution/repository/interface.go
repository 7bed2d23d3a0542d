package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PoolLead is a shared-pool candidate record, the unit of allocation.
type PoolLead struct {
	ID               uuid.UUID
	FullName         string
	Phone            *string
	Email            *string
	UnavailableUntil *time.Time
	LastAssignedTo   *uuid.UUID
	VisitedTenantIDs []uuid.UUID
	PoolStatus       *string
	LastContactedAt  *time.Time
}

// TenantLead is a tenant-private copy referencing a pool lead.
type TenantLead struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	SourceLeadID    uuid.UUID
	FullName        string
	Phone           *string
	Email           *string
	Status          string
	AssignedUserID  *uuid.UUID
	ContactAttempts int
	Notes           *string
	PlatformSourced bool
	AssignedAt      *time.Time
}

// Tenant holds the distribution-relevant tenant configuration.
// This data is read-only here; admin tooling owns mutations.
type Tenant struct {
	ID            uuid.UUID
	Name          string
	PlanTier      string
	QuotaOverride *int
	ForceRotate   bool
	IsActive      bool
}

// Repository is the persistence boundary for the distribution context.
type Repository interface {
	GetTenant(ctx context.Context, id uuid.UUID) (Tenant, error)
	ListActiveTenants(ctx context.Context) ([]Tenant, error)

	// ListPlatformLeads streams a tenant's platform-sourced lead copies.
	ListPlatformLeads(ctx context.Context, tenantID uuid.UUID) ([]TenantLead, error)
	// CountPlatformLeads returns how many platform-sourced leads a tenant holds.
	CountPlatformLeads(ctx context.Context, tenantID uuid.UUID) (int, error)
	DeleteTenantLead(ctx context.Context, tenantID, id uuid.UUID) error
	HarvestNotes(ctx context.Context, sourceLeadID, tenantID uuid.UUID, notes string) error

	// ClearLeadLock releases an expired lead fully back into the pool.
	ClearLeadLock(ctx context.Context, leadID uuid.UUID) error
	// MarkLeadTerminal clears the lock but tags pool_status so the lead's
	// history stays visible; the lead becomes available to other tenants.
	MarkLeadTerminal(ctx context.Context, leadID, tenantID uuid.UUID, status string) error

	// ListUnlockedCandidates returns leads with no lock at all, excluding
	// leads the tenant already holds a live platform-sourced copy of.
	ListUnlockedCandidates(ctx context.Context, tenantID uuid.UUID, limit int) ([]PoolLead, error)
	// ListExpiredCandidates returns leads whose lock has lapsed.
	ListExpiredCandidates(ctx context.Context, tenantID uuid.UUID, now time.Time, limit int) ([]PoolLead, error)

	// AssignLead atomically re-reads the lead, verifies its lock, writes the
	// tenant copy and locks the lead until lockUntil. Returns false when the
	// lead is gone or another tenant won the race; the caller skips it.
	AssignLead(ctx context.Context, leadID, tenantID uuid.UUID, lockUntil time.Time) (bool, error)

	// ApplyOutcomeLock writes the outcome-driven lock in a single-row update.
	ApplyOutcomeLock(ctx context.Context, leadID, tenantID uuid.UUID, poolStatus string, until time.Time) error

	// TouchLastContacted stamps the pool lead after a successful outreach send.
	TouchLastContacted(ctx context.Context, leadID uuid.UUID, at time.Time) error
	// TouchLastContactedByCopy resolves a tenant copy to its source lead first.
	TouchLastContactedByCopy(ctx context.Context, tenantLeadID uuid.UUID, at time.Time) error
}

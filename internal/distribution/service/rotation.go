package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"leadmarket_backend/internal/distribution/repository"
	"leadmarket_backend/platform/logger"
)

// Lead copy statuses the rotation sweep cares about. Status values are
// free-text workflow state owned by the tenant; these sets pick out the ones
// with distribution semantics.
var (
	defaultEngagedStatuses   = []string{"engaged_interest", "contacted_replied", "interviewing", "offer_sent"}
	defaultTerminalStatuses  = []string{"rejected", "disqualified", "wrong_number", "not_interested"}
	defaultProtectedStatuses = []string{"hired"}
)

// RotationConfig carries the expiry windows and status classifications.
type RotationConfig struct {
	ShortExpiryWindow time.Duration
	LongExpiryWindow  time.Duration
	EngagedStatuses   []string
	TerminalStatuses  []string
	ProtectedStatuses []string
}

// RotationManager reclaims tenant-held leads back into the shared pool.
type RotationManager struct {
	repo repository.Repository
	cfg  RotationConfig
	log  *logger.Logger
	now  func() time.Time
}

// NewRotationManager creates a rotation manager. Empty status sets fall back
// to the defaults.
func NewRotationManager(repo repository.Repository, cfg RotationConfig, log *logger.Logger) *RotationManager {
	if len(cfg.EngagedStatuses) == 0 {
		cfg.EngagedStatuses = defaultEngagedStatuses
	}
	if len(cfg.TerminalStatuses) == 0 {
		cfg.TerminalStatuses = defaultTerminalStatuses
	}
	if len(cfg.ProtectedStatuses) == 0 {
		cfg.ProtectedStatuses = defaultProtectedStatuses
	}

	return &RotationManager{repo: repo, cfg: cfg, log: log, now: time.Now}
}

// releaseReason classifies why a copy leaves the tenant's book.
type releaseReason int

const (
	keepLead releaseReason = iota
	releaseTerminal
	releaseForceRotate
	releaseLongExpiry
	releaseShortExpiry
	releaseOrphaned
)

// Sweep walks the tenant's platform-sourced copies, releases the stale ones
// and returns how many leads the tenant still holds. A single bad record
// never aborts the sweep; per-lead errors are logged and swallowed.
func (m *RotationManager) Sweep(ctx context.Context, tenantID uuid.UUID, forceRotate bool) (int, error) {
	copies, err := m.repo.ListPlatformLeads(ctx, tenantID)
	if err != nil {
		return 0, err
	}

	working := 0
	for _, tl := range copies {
		reason := m.classify(tl, forceRotate)
		if reason == keepLead {
			working++
			continue
		}

		m.release(ctx, tl, reason)
	}

	m.log.Info("rotation sweep finished",
		"tenant_id", tenantID, "scanned", len(copies), "working", working, "released", len(copies)-working)

	return working, nil
}

// classify applies the release triggers in priority order.
func (m *RotationManager) classify(tl repository.TenantLead, forceRotate bool) releaseReason {
	if contains(m.cfg.TerminalStatuses, tl.Status) {
		return releaseTerminal
	}

	engaged := contains(m.cfg.EngagedStatuses, tl.Status)
	if forceRotate && !engaged {
		return releaseForceRotate
	}

	if tl.AssignedAt == nil {
		// Corrupt or orphaned copy: no assignment timestamp to age against.
		return releaseOrphaned
	}

	age := m.now().Sub(*tl.AssignedAt)
	if age > m.cfg.LongExpiryWindow && !contains(m.cfg.ProtectedStatuses, tl.Status) {
		return releaseLongExpiry
	}
	if age > m.cfg.ShortExpiryWindow && !engaged {
		return releaseShortExpiry
	}

	return keepLead
}

func (m *RotationManager) release(ctx context.Context, tl repository.TenantLead, reason releaseReason) {
	// Harvest tenant-private notes into the shared history before the copy
	// disappears. Best-effort: a failed harvest never blocks the release.
	if tl.Notes != nil && *tl.Notes != "" {
		if err := m.repo.HarvestNotes(ctx, tl.SourceLeadID, tl.TenantID, *tl.Notes); err != nil {
			m.log.Warn("note harvest failed", "tenant_lead_id", tl.ID, "error", err)
		}
	}

	if err := m.repo.DeleteTenantLead(ctx, tl.TenantID, tl.ID); err != nil {
		m.log.Warn("tenant lead release failed", "tenant_lead_id", tl.ID, "error", err)
		return
	}

	if reason == releaseTerminal {
		// Terminal from this tenant's perspective: the pool keeps the status
		// tag, but the lock is cleared so other tenants are not blocked.
		if err := m.repo.MarkLeadTerminal(ctx, tl.SourceLeadID, tl.TenantID, tl.Status); err != nil {
			m.log.Warn("terminal release failed", "lead_id", tl.SourceLeadID, "error", err)
		}
		return
	}

	if err := m.repo.ClearLeadLock(ctx, tl.SourceLeadID); err != nil {
		m.log.Warn("lead unlock failed", "lead_id", tl.SourceLeadID, "error", err)
	}
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

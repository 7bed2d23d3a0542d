package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"leadmarket_backend/internal/distribution/repository"
	"leadmarket_backend/platform/apperr"
	"leadmarket_backend/platform/logger"
)

// Outcomes that indicate the lead was hired, here or elsewhere. These earn
// the long lock; everything else gets the short cool-off.
var hiredOutcomes = []string{"hired", "hired_elsewhere", "placed"}

// OutcomeLockManager applies cool-off and hired locks based on tenant-reported
// outcomes. Single-row writes only: a stricter lock overwriting a looser one
// is harmless.
type OutcomeLockManager struct {
	repo        repository.Repository
	hiredLock   time.Duration
	coolOffLock time.Duration
	log         *logger.Logger
	now         func() time.Time
}

// NewOutcomeLockManager creates an outcome lock manager.
func NewOutcomeLockManager(repo repository.Repository, hiredLock, coolOffLock time.Duration, log *logger.Logger) *OutcomeLockManager {
	return &OutcomeLockManager{
		repo:        repo,
		hiredLock:   hiredLock,
		coolOffLock: coolOffLock,
		log:         log,
		now:         time.Now,
	}
}

// Report records a tenant-reported outcome and returns the resulting lock expiry.
func (m *OutcomeLockManager) Report(ctx context.Context, leadID, tenantID uuid.UUID, outcome string) (time.Time, error) {
	outcome = strings.TrimSpace(strings.ToLower(outcome))
	if outcome == "" {
		return time.Time{}, apperr.Validation("outcome is required")
	}

	duration := m.coolOffLock
	if isHiredOutcome(outcome) {
		duration = m.hiredLock
	}

	until := m.now().Add(duration)
	if err := m.repo.ApplyOutcomeLock(ctx, leadID, tenantID, outcome, until); err != nil {
		return time.Time{}, err
	}

	m.log.Info("outcome lock applied",
		"lead_id", leadID, "tenant_id", tenantID, "outcome", outcome, "until", until)

	return until, nil
}

func isHiredOutcome(outcome string) bool {
	for _, h := range hiredOutcomes {
		if strings.Contains(outcome, h) {
			return true
		}
	}
	return false
}

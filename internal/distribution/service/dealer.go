package service

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"leadmarket_backend/internal/distribution/repository"
	"leadmarket_backend/platform/logger"
)

// DealSummary reports the result of a distribution pass for one tenant.
type DealSummary struct {
	TenantID     uuid.UUID `json:"tenantId"`
	Quota        int       `json:"quota"`
	WorkingCount int       `json:"workingCount"`
	Added        int       `json:"added"`
	Full         bool      `json:"full"`
}

// Dealer runs the per-tenant allocation pass: rotation first, then candidate
// selection and transactional assignment until the quota is met or the
// candidate buffer runs out. Best-effort fill: contention losses are skipped.
type Dealer struct {
	repo     repository.Repository
	quota    *QuotaResolver
	rotation *RotationManager
	lockTTL  time.Duration
	log      *logger.Logger
	now      func() time.Time
	shuffle  func(n int, swap func(i, j int))
}

// NewDealer creates a dealer with the configured assignment lock TTL.
func NewDealer(repo repository.Repository, quota *QuotaResolver, rotation *RotationManager, lockTTL time.Duration, log *logger.Logger) *Dealer {
	return &Dealer{
		repo:     repo,
		quota:    quota,
		rotation: rotation,
		lockTTL:  lockTTL,
		log:      log,
		now:      time.Now,
		shuffle:  rand.Shuffle,
	}
}

// Deal executes one allocation pass for the tenant.
func (d *Dealer) Deal(ctx context.Context, tenantID uuid.UUID, forceRotate bool) (DealSummary, error) {
	tenant, err := d.repo.GetTenant(ctx, tenantID)
	if err != nil {
		return DealSummary{}, err
	}

	quota := d.quota.Resolve(tenant)

	working, err := d.rotation.Sweep(ctx, tenantID, forceRotate || tenant.ForceRotate)
	if err != nil {
		return DealSummary{}, err
	}

	summary := DealSummary{TenantID: tenantID, Quota: quota, WorkingCount: working}

	needed := quota - working
	if needed <= 0 {
		summary.Full = true
		d.log.Info("tenant at quota", "tenant_id", tenantID, "working", working, "quota", quota)
		return summary, nil
	}

	candidates, err := d.collectCandidates(ctx, tenantID, needed)
	if err != nil {
		return DealSummary{}, err
	}

	// Uniform shuffle so allocation does not systematically favor low ids.
	d.shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	lockUntil := d.now().Add(d.lockTTL)
	for _, candidate := range candidates {
		if summary.Added >= needed {
			break
		}

		ok, err := d.repo.AssignLead(ctx, candidate.ID, tenantID, lockUntil)
		if err != nil {
			// Data-integrity failures are logged and skipped, never fatal to the pass.
			d.log.Warn("assignment failed", "lead_id", candidate.ID, "tenant_id", tenantID, "error", err)
			continue
		}
		if !ok {
			// Raced by another tenant or ghost record: skip, do not retry.
			continue
		}

		summary.Added++
	}

	d.log.Info("deal finished",
		"tenant_id", tenantID, "quota", quota, "working", working, "added", summary.Added,
		"candidates", len(candidates))

	return summary, nil
}

// collectCandidates builds a 1.5x oversized buffer: never-locked leads first,
// topped up with expired-lock leads when supply is short.
func (d *Dealer) collectCandidates(ctx context.Context, tenantID uuid.UUID, needed int) ([]repository.PoolLead, error) {
	bufferSize := (needed*3 + 1) / 2

	candidates, err := d.repo.ListUnlockedCandidates(ctx, tenantID, bufferSize)
	if err != nil {
		return nil, err
	}

	if len(candidates) < bufferSize {
		expired, err := d.repo.ListExpiredCandidates(ctx, tenantID, d.now(), bufferSize-len(candidates))
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, expired...)
	}

	return candidates, nil
}

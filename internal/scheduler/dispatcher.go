package scheduler

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"leadmarket_backend/internal/config"
	"leadmarket_backend/internal/distribution/repository"
	"leadmarket_backend/platform/logger"
)

// DistributionDispatcher periodically fans out one allocation task per active
// tenant. Tasks run through the same queue as ad-hoc admin triggers, so the
// dealer's own guards handle overlap.
type DistributionDispatcher struct {
	client   *Client
	repo     repository.Repository
	interval time.Duration
	log      *logger.Logger
}

func NewDistributionDispatcher(cfg *config.Config, client *Client, repo repository.Repository, log *logger.Logger) *DistributionDispatcher {
	interval := cfg.DistributionInterval
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	return &DistributionDispatcher{
		client:   client,
		repo:     repo,
		interval: interval,
		log:      log,
	}
}

func (d *DistributionDispatcher) Run(ctx context.Context) {
	if d == nil || d.client == nil || d.repo == nil {
		return
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		d.dispatch(ctx)
	}
}

func (d *DistributionDispatcher) dispatch(ctx context.Context) {
	tenants, err := d.repo.ListActiveTenants(ctx)
	if err != nil {
		d.log.Warn("tenant listing failed", "error", err)
		return
	}
	if len(tenants) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	enqueued := 0
	for _, tenant := range tenants {
		if !tenant.IsActive {
			continue
		}
		enqueued++
		tenantID := tenant.ID
		g.Go(func() error {
			if err := d.client.EnqueueTenantDistribution(gctx, tenantID, false); err != nil {
				d.log.Warn("distribution enqueue failed", "tenant_id", tenantID, "error", err)
			}
			return nil
		})
	}

	_ = g.Wait()
	d.log.Info("distribution cycle dispatched", "tenants", enqueued)
}

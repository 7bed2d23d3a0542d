package scheduler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	campaignsvc "leadmarket_backend/internal/campaigns/service"
	"leadmarket_backend/internal/config"
	distsvc "leadmarket_backend/internal/distribution/service"
	"leadmarket_backend/platform/apperr"
	"leadmarket_backend/platform/logger"
)

// Worker consumes distribution and campaign tasks from the asynq queue.
type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	dealer  *distsvc.Dealer
	batches *campaignsvc.Worker
	log     *logger.Logger
}

func NewWorker(cfg *config.Config, dealer *distsvc.Dealer, batches *campaignsvc.Worker, log *logger.Logger) (*Worker, error) {
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.AsynqQueue
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.AsynqConcurrency
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:  server,
		mux:     mux,
		dealer:  dealer,
		batches: batches,
		log:     log,
	}

	mux.HandleFunc(TaskTenantDistribution, w.handleTenantDistribution)
	mux.HandleFunc(TaskCampaignBatch, w.handleCampaignBatch)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleTenantDistribution(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseTenantDistributionPayload(task)
	if err != nil {
		return err
	}

	tenantID, err := uuid.Parse(payload.TenantID)
	if err != nil {
		return err
	}

	summary, err := w.dealer.Deal(ctx, tenantID, payload.ForceRotate)
	if err != nil {
		// A vanished tenant is not worth retrying.
		if apperr.GetKind(err) == apperr.KindNotFound {
			w.log.Warn("distribution task for unknown tenant dropped", "tenant_id", tenantID)
			return nil
		}
		return err
	}

	w.log.Info("distribution pass finished",
		"tenant_id", tenantID, "quota", summary.Quota,
		"working", summary.WorkingCount, "added", summary.Added, "full", summary.Full)
	return nil
}

func (w *Worker) handleCampaignBatch(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCampaignBatchPayload(task)
	if err != nil {
		return err
	}

	sessionID, err := uuid.Parse(payload.SessionID)
	if err != nil {
		return err
	}

	tenantID, err := uuid.Parse(payload.TenantID)
	if err != nil {
		return err
	}

	return w.batches.ProcessSlice(ctx, tenantID, sessionID)
}

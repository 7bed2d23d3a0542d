package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"leadmarket_backend/internal/config"
)

// Client enqueues distribution and campaign tasks onto the asynq queue.
// A nil client is safe to call but every enqueue fails, so callers report
// the missing queue instead of claiming work was dispatched.
type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg *config.Config) (*Client, error) {
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

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueTenantDistribution queues one allocation pass for a tenant.
func (c *Client) EnqueueTenantDistribution(ctx context.Context, tenantID uuid.UUID, forceRotate bool) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("task queue not configured")
	}

	task, err := NewTenantDistributionTask(TenantDistributionPayload{
		TenantID:    tenantID.String(),
		ForceRotate: forceRotate,
	})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue))
	return err
}

// EnqueueCampaignBatch queues one batch worker invocation, optionally delayed.
func (c *Client) EnqueueCampaignBatch(ctx context.Context, sessionID, tenantID uuid.UUID, delay time.Duration) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("task queue not configured")
	}

	task, err := NewCampaignBatchTask(CampaignBatchPayload{
		SessionID: sessionID.String(),
		TenantID:  tenantID.String(),
	})
	if err != nil {
		return err
	}

	opts := []asynq.Option{asynq.Queue(c.queue)}
	if delay > 0 {
		opts = append(opts, asynq.ProcessIn(delay))
	}

	_, err = c.client.EnqueueContext(ctx, task, opts...)
	return err
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}

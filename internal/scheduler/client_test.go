package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	"leadmarket_backend/internal/config"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client, err := NewClient(&config.Config{
		RedisURL:   "redis://" + srv.Addr(),
		AsynqQueue: "test",
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return client, srv
}

func TestClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(&config.Config{}); err == nil {
		t.Error("NewClient() without redis url should fail")
	}
}

func TestEnqueueTenantDistribution(t *testing.T) {
	client, srv := newTestClient(t)

	err := client.EnqueueTenantDistribution(context.Background(), uuid.New(), true)
	if err != nil {
		t.Fatalf("EnqueueTenantDistribution() error = %v", err)
	}

	if len(srv.Keys()) == 0 {
		t.Error("no task landed in redis")
	}
}

func TestEnqueueCampaignBatchImmediate(t *testing.T) {
	client, srv := newTestClient(t)

	err := client.EnqueueCampaignBatch(context.Background(), uuid.New(), uuid.New(), 0)
	if err != nil {
		t.Fatalf("EnqueueCampaignBatch() error = %v", err)
	}

	if len(srv.Keys()) == 0 {
		t.Error("no task landed in redis")
	}
}

func TestEnqueueCampaignBatchDelayed(t *testing.T) {
	client, srv := newTestClient(t)

	err := client.EnqueueCampaignBatch(context.Background(), uuid.New(), uuid.New(), 5*time.Second)
	if err != nil {
		t.Fatalf("EnqueueCampaignBatch() error = %v", err)
	}

	found := false
	for _, key := range srv.Keys() {
		if key == "asynq:{test}:scheduled" {
			found = true
		}
	}
	if !found {
		t.Errorf("delayed task should land in the scheduled set, keys = %v", srv.Keys())
	}
}

func TestNilClientBehavior(t *testing.T) {
	var client *Client

	// Both paths must fail loudly. A silent no-op would let an admin
	// distribution run report tenants as enqueued while nothing was queued.
	if err := client.EnqueueTenantDistribution(context.Background(), uuid.New(), false); err == nil {
		t.Error("nil client distribution enqueue should error")
	}
	if err := client.EnqueueCampaignBatch(context.Background(), uuid.New(), uuid.New(), 0); err == nil {
		t.Error("nil client campaign enqueue should error")
	}
}

func TestTaskPayloadRoundTrip(t *testing.T) {
	payload := CampaignBatchPayload{SessionID: uuid.New().String(), TenantID: uuid.New().String()}

	task, err := NewCampaignBatchTask(payload)
	if err != nil {
		t.Fatalf("NewCampaignBatchTask() error = %v", err)
	}
	if task.Type() != TaskCampaignBatch {
		t.Errorf("task type = %q, want %q", task.Type(), TaskCampaignBatch)
	}

	parsed, err := ParseCampaignBatchPayload(task)
	if err != nil {
		t.Fatalf("ParseCampaignBatchPayload() error = %v", err)
	}
	if parsed != payload {
		t.Errorf("parsed = %+v, want %+v", parsed, payload)
	}
}

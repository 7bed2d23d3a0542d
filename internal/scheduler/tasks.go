package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskTenantDistribution = "distribution.tenant.deal"

const TaskCampaignBatch = "campaigns.session.batch"

type TenantDistributionPayload struct {
	TenantID    string `json:"tenantId"`
	ForceRotate bool   `json:"forceRotate"`
}

type CampaignBatchPayload struct {
	SessionID string `json:"sessionId"`
	TenantID  string `json:"tenantId"`
}

func NewTenantDistributionTask(payload TenantDistributionPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTenantDistribution, data), nil
}

func ParseTenantDistributionPayload(task *asynq.Task) (TenantDistributionPayload, error) {
	var payload TenantDistributionPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return TenantDistributionPayload{}, err
	}
	return payload, nil
}

func NewCampaignBatchTask(payload CampaignBatchPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCampaignBatch, data), nil
}

func ParseCampaignBatchPayload(task *asynq.Task) (CampaignBatchPayload, error) {
	var payload CampaignBatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CampaignBatchPayload{}, err
	}
	return payload, nil
}

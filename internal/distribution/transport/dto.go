package transport

import "time"

// ReportOutcomeRequest is the payload for tenant-reported lead outcomes.
type ReportOutcomeRequest struct {
	Outcome string `json:"outcome" validate:"required,max=64"`
}

// ReportOutcomeResponse echoes the applied lock.
type ReportOutcomeResponse struct {
	LeadID           string    `json:"leadId"`
	Outcome          string    `json:"outcome"`
	UnavailableUntil time.Time `json:"unavailableUntil"`
}

// RunDistributionRequest triggers an allocation pass. With a tenant ID only
// that tenant is dealt; without one every active tenant is enqueued.
type RunDistributionRequest struct {
	TenantID    *string `json:"tenantId,omitempty" validate:"omitempty,uuid"`
	ForceRotate bool    `json:"forceRotate"`
}

// RunDistributionResponse reports how many tenant passes were enqueued.
type RunDistributionResponse struct {
	Enqueued int `json:"enqueued"`
}

// TenantSummaryResponse reports a tenant's standing against its quota.
type TenantSummaryResponse struct {
	TenantID     string `json:"tenantId"`
	Quota        int    `json:"quota"`
	WorkingCount int    `json:"workingCount"`
	Full         bool   `json:"full"`
}

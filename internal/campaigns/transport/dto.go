package transport

import "time"

// CreateSessionRequest starts a new bulk-outreach campaign. The target list
// is snapshotted at creation and never changes afterwards.
type CreateSessionRequest struct {
	Channel     string     `json:"channel" validate:"required,oneof=sms email"`
	SourceType  string     `json:"sourceType" validate:"required,oneof=imported tenant pool"`
	Template    string     `json:"template" validate:"required,max=2000"`
	TargetIDs   []string   `json:"targetIds" validate:"required,min=1,dive,uuid"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
}

// ListSessionsRequest pages through a tenant's campaign sessions.
type ListSessionsRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"pageSize"`
}

// SessionResponse is the external view of a campaign session.
type SessionResponse struct {
	ID             string     `json:"id"`
	Status         string     `json:"status"`
	Channel        string     `json:"channel"`
	SourceType     string     `json:"sourceType"`
	Template       string     `json:"template"`
	TargetCount    int        `json:"targetCount"`
	CurrentPointer int        `json:"currentPointer"`
	Processed      int        `json:"processed"`
	Succeeded      int        `json:"succeeded"`
	Failed         int        `json:"failed"`
	ScheduledAt    *time.Time `json:"scheduledAt,omitempty"`
	FailureReason  *string    `json:"failureReason,omitempty"`
	RetryOfID      *string    `json:"retryOfId,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// SessionListResponse is a paginated list of sessions.
type SessionListResponse struct {
	Items      []SessionResponse `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"leadmarket_backend/internal/campaigns/repository"
	"leadmarket_backend/internal/campaigns/transport"
	"leadmarket_backend/platform/apperr"
	"leadmarket_backend/platform/logger"
)

// BatchEnqueuer dispatches a batch worker invocation for a session onto the
// task queue, optionally delayed.
type BatchEnqueuer interface {
	EnqueueCampaignBatch(ctx context.Context, sessionID, tenantID uuid.UUID, delay time.Duration) error
}

// Service manages campaign session lifecycle: create, pause, resume, cancel
// and retry-of-failures. Slice processing itself lives in the Worker.
type Service struct {
	sessions   repository.SessionRepository
	deliveries repository.DeliveryRepository
	classifier *Classifier
	enqueuer   BatchEnqueuer
	log        *logger.Logger
	now        func() time.Time
}

// New creates a new campaign session service.
func New(sessions repository.SessionRepository, deliveries repository.DeliveryRepository, classifier *Classifier, enqueuer BatchEnqueuer, log *logger.Logger) *Service {
	return &Service{
		sessions:   sessions,
		deliveries: deliveries,
		classifier: classifier,
		enqueuer:   enqueuer,
		log:        log,
		now:        time.Now,
	}
}

// Create snapshots the target list, persists the session and hands off the
// first batch to the task queue. A future start time schedules the session.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req transport.CreateSessionRequest) (transport.SessionResponse, error) {
	targetIDs, err := parseTargetIDs(req.TargetIDs)
	if err != nil {
		return transport.SessionResponse{}, err
	}

	status := repository.StatusQueued
	var delay time.Duration
	if req.ScheduledAt != nil && req.ScheduledAt.After(s.now()) {
		status = repository.StatusScheduled
		delay = req.ScheduledAt.Sub(s.now())
	}

	session, err := s.sessions.Create(ctx, repository.Session{
		TenantID:    tenantID,
		Status:      status,
		Channel:     req.Channel,
		SourceType:  req.SourceType,
		Template:    req.Template,
		TargetIDs:   targetIDs,
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		return transport.SessionResponse{}, err
	}

	if err := s.enqueueOrFail(ctx, session.ID, tenantID, delay, "enqueue first batch"); err != nil {
		return transport.SessionResponse{}, err
	}

	s.log.Info("campaign session created",
		"session_id", session.ID, "tenant_id", tenantID, "channel", session.Channel,
		"targets", len(session.TargetIDs), "status", session.Status)

	return toResponse(session), nil
}

// GetByID retrieves one session scoped to the tenant.
func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID) (transport.SessionResponse, error) {
	session, err := s.sessions.GetByID(ctx, tenantID, id)
	if err != nil {
		return transport.SessionResponse{}, err
	}
	return toResponse(session), nil
}

// List retrieves a tenant's sessions with pagination.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, req transport.ListSessionsRequest) (transport.SessionListResponse, error) {
	page := req.Page
	pageSize := req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	items, total, err := s.sessions.List(ctx, tenantID, pageSize, (page-1)*pageSize)
	if err != nil {
		return transport.SessionListResponse{}, err
	}

	responses := make([]transport.SessionResponse, len(items))
	for i, item := range items {
		responses[i] = toResponse(item)
	}

	totalPages := (total + pageSize - 1) / pageSize

	return transport.SessionListResponse{
		Items:      responses,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Pause flips the session to paused. Only queued, scheduled or active
// sessions can pause; the worker stops cooperatively at the next slice check.
func (s *Service) Pause(ctx context.Context, tenantID, id uuid.UUID) (transport.SessionResponse, error) {
	if _, err := s.sessions.GetByID(ctx, tenantID, id); err != nil {
		return transport.SessionResponse{}, err
	}

	ok, err := s.sessions.UpdateStatus(ctx, id, repository.StatusPaused, []string{
		repository.StatusActive, repository.StatusQueued, repository.StatusScheduled,
	})
	if err != nil {
		return transport.SessionResponse{}, err
	}
	if !ok {
		return transport.SessionResponse{}, apperr.Conflict("session cannot be paused in its current status")
	}

	s.log.Info("campaign session paused", "session_id", id, "tenant_id", tenantID)
	return s.GetByID(ctx, tenantID, id)
}

// Resume reactivates a session and immediately re-triggers the batch worker.
func (s *Service) Resume(ctx context.Context, tenantID, id uuid.UUID) (transport.SessionResponse, error) {
	session, err := s.sessions.GetByID(ctx, tenantID, id)
	if err != nil {
		return transport.SessionResponse{}, err
	}
	if session.Status == repository.StatusCompleted {
		return transport.SessionResponse{}, apperr.Conflict("completed session cannot be resumed")
	}

	if _, err := s.sessions.UpdateStatus(ctx, id, repository.StatusActive, nil); err != nil {
		return transport.SessionResponse{}, err
	}

	if err := s.enqueueOrFail(ctx, id, tenantID, 0, "enqueue resumed batch"); err != nil {
		return transport.SessionResponse{}, err
	}

	s.log.Info("campaign session resumed", "session_id", id, "tenant_id", tenantID)
	return s.GetByID(ctx, tenantID, id)
}

// Cancel stops the session unconditionally. The worker finishes the current
// slice before it observes the cancellation.
func (s *Service) Cancel(ctx context.Context, tenantID, id uuid.UUID) (transport.SessionResponse, error) {
	if _, err := s.sessions.GetByID(ctx, tenantID, id); err != nil {
		return transport.SessionResponse{}, err
	}

	if _, err := s.sessions.UpdateStatus(ctx, id, repository.StatusCancelled, nil); err != nil {
		return transport.SessionResponse{}, err
	}

	s.log.Info("campaign session cancelled", "session_id", id, "tenant_id", tenantID)
	return s.GetByID(ctx, tenantID, id)
}

// RetryFailed creates a fresh session targeting only the retryable failures
// of an earlier session. Permanent failures (per the classifier) are dropped,
// and the new session inherits channel, template and source type.
func (s *Service) RetryFailed(ctx context.Context, tenantID, id uuid.UUID) (transport.SessionResponse, error) {
	original, err := s.sessions.GetByID(ctx, tenantID, id)
	if err != nil {
		return transport.SessionResponse{}, err
	}

	failed, err := s.deliveries.ListFailed(ctx, id)
	if err != nil {
		return transport.SessionResponse{}, err
	}

	seen := make(map[uuid.UUID]bool)
	var targets []uuid.UUID
	for _, delivery := range failed {
		if delivery.ErrorDetail != nil && s.classifier.Permanent(*delivery.ErrorDetail) {
			continue
		}
		if seen[delivery.TargetID] {
			continue
		}
		seen[delivery.TargetID] = true
		targets = append(targets, delivery.TargetID)
	}

	if len(targets) == 0 {
		return transport.SessionResponse{}, apperr.Validation("no retryable failed deliveries")
	}

	retry, err := s.sessions.Create(ctx, repository.Session{
		TenantID:   tenantID,
		Status:     repository.StatusQueued,
		Channel:    original.Channel,
		SourceType: original.SourceType,
		Template:   original.Template,
		TargetIDs:  targets,
		RetryOfID:  &original.ID,
	})
	if err != nil {
		return transport.SessionResponse{}, err
	}

	if err := s.enqueueOrFail(ctx, retry.ID, tenantID, 0, "enqueue retry batch"); err != nil {
		return transport.SessionResponse{}, err
	}

	s.log.Info("campaign retry session created",
		"session_id", retry.ID, "retry_of", original.ID, "targets", len(targets),
		"dropped_permanent", len(failed)-len(targets))

	return toResponse(retry), nil
}

// enqueueOrFail hands a batch to the task queue. Enqueue failure is fatal to
// the session: without the queue entry it would hang forever, so it is forced
// into the failed state with a diagnostic.
func (s *Service) enqueueOrFail(ctx context.Context, sessionID, tenantID uuid.UUID, delay time.Duration, op string) error {
	err := s.enqueuer.EnqueueCampaignBatch(ctx, sessionID, tenantID, delay)
	if err == nil {
		return nil
	}

	reason := op + ": " + err.Error()
	if markErr := s.sessions.MarkFailed(ctx, sessionID, reason); markErr != nil {
		s.log.Error("failed to mark session failed", "session_id", sessionID, "error", markErr)
	}

	s.log.Error("batch enqueue failed", "session_id", sessionID, "error", err)
	return apperr.Wrap(apperr.KindInternal, "campaign could not be scheduled", err)
}

func parseTargetIDs(raw []string) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool, len(raw))
	targets := make([]uuid.UUID, 0, len(raw))
	for _, value := range raw {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, apperr.Validation("invalid target ID: " + value)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		targets = append(targets, id)
	}
	return targets, nil
}

func toResponse(session repository.Session) transport.SessionResponse {
	var retryOf *string
	if session.RetryOfID != nil {
		value := session.RetryOfID.String()
		retryOf = &value
	}

	return transport.SessionResponse{
		ID:             session.ID.String(),
		Status:         session.Status,
		Channel:        session.Channel,
		SourceType:     session.SourceType,
		Template:       session.Template,
		TargetCount:    len(session.TargetIDs),
		CurrentPointer: session.CurrentPointer,
		Processed:      session.Processed,
		Succeeded:      session.Succeeded,
		Failed:         session.Failed,
		ScheduledAt:    session.ScheduledAt,
		FailureReason:  session.FailureReason,
		RetryOfID:      retryOf,
		CreatedAt:      session.CreatedAt,
		UpdatedAt:      session.UpdatedAt,
	}
}

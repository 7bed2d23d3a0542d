package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"leadmarket_backend/internal/campaigns/repository"
	"leadmarket_backend/internal/events"
	"leadmarket_backend/internal/outreach"
	"leadmarket_backend/platform/apperr"
	"leadmarket_backend/platform/logger"
	"leadmarket_backend/platform/phone"
)

// ChannelResolver resolves the outbound adapter for a campaign channel.
type ChannelResolver interface {
	Resolve(channel string) (outreach.Sender, error)
}

// WorkerConfig tunes batch slicing and pacing.
type WorkerConfig struct {
	// BatchSize is the number of targets processed per worker invocation.
	BatchSize int
	// SendDelay is the minimum interval between consecutive sends.
	SendDelay time.Duration
	// RequeueDelay is the gap before the next slice is picked up.
	RequeueDelay time.Duration
}

// Worker processes one slice of a campaign session per invocation. Each run
// sends at most BatchSize messages, advances the pointer and re-enqueues
// itself until the target list is exhausted. The delivery log makes a
// re-delivered invocation harmless.
type Worker struct {
	sessions   repository.SessionRepository
	deliveries repository.DeliveryRepository
	recipients repository.RecipientSource
	blocks     repository.BlockRepository
	channels   ChannelResolver
	enqueuer   BatchEnqueuer
	bus        events.Bus
	cfg        WorkerConfig
	pace       *rate.Limiter
	log        *logger.Logger
}

// NewWorker creates a batch worker.
func NewWorker(
	sessions repository.SessionRepository,
	deliveries repository.DeliveryRepository,
	recipients repository.RecipientSource,
	blocks repository.BlockRepository,
	channels ChannelResolver,
	enqueuer BatchEnqueuer,
	bus events.Bus,
	cfg WorkerConfig,
	log *logger.Logger,
) *Worker {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 20
	}

	limit := rate.Inf
	if cfg.SendDelay > 0 {
		limit = rate.Every(cfg.SendDelay)
	}

	return &Worker{
		sessions:   sessions,
		deliveries: deliveries,
		recipients: recipients,
		blocks:     blocks,
		channels:   channels,
		enqueuer:   enqueuer,
		bus:        bus,
		cfg:        cfg,
		pace:       rate.NewLimiter(limit, 1),
		log:        log,
	}
}

// ProcessSlice runs one batch of the session. Safe to call with stale queue
// entries: paused, cancelled, completed and failed sessions are a no-op, and
// already delivered targets are skipped via the delivery log.
func (w *Worker) ProcessSlice(ctx context.Context, tenantID, sessionID uuid.UUID) error {
	session, err := w.sessions.GetByID(ctx, tenantID, sessionID)
	if err != nil {
		if apperr.GetKind(err) == apperr.KindNotFound {
			w.log.Warn("batch for unknown session dropped", "session_id", sessionID)
			return nil
		}
		return fmt.Errorf("load session: %w", err)
	}

	switch session.Status {
	case repository.StatusPaused, repository.StatusCancelled, repository.StatusCompleted, repository.StatusFailed:
		w.log.Debug("batch skipped", "session_id", sessionID, "status", session.Status)
		return nil
	case repository.StatusQueued, repository.StatusScheduled:
		if _, err := w.sessions.UpdateStatus(ctx, sessionID, repository.StatusActive, []string{
			repository.StatusQueued, repository.StatusScheduled,
		}); err != nil {
			return fmt.Errorf("activate session: %w", err)
		}
		session.Status = repository.StatusActive
	}

	if session.CurrentPointer >= len(session.TargetIDs) {
		if _, err := w.sessions.UpdateStatus(ctx, sessionID, repository.StatusCompleted, nil); err != nil {
			return fmt.Errorf("complete session: %w", err)
		}
		w.log.Info("campaign session completed", "session_id", sessionID,
			"processed", session.Processed, "succeeded", session.Succeeded, "failed", session.Failed)
		return nil
	}

	sender, senderErr := w.channels.Resolve(session.Channel)

	start := session.CurrentPointer
	end := start + w.cfg.BatchSize
	if end > len(session.TargetIDs) {
		end = len(session.TargetIDs)
	}

	for _, targetID := range session.TargetIDs[start:end] {
		if err := w.processTarget(ctx, session, targetID, sender, senderErr); err != nil {
			return err
		}
	}

	// Pause and cancel land mid-slice but only take effect here. Leaving the
	// pointer untouched is safe: the delivery log skips re-sends on resume.
	current, err := w.sessions.GetByID(ctx, tenantID, sessionID)
	if err != nil {
		return fmt.Errorf("reload session: %w", err)
	}
	if current.Status == repository.StatusPaused || current.Status == repository.StatusCancelled {
		w.log.Info("campaign slice halted", "session_id", sessionID, "status", current.Status)
		return nil
	}

	nextStatus := repository.StatusActive
	done := end >= len(session.TargetIDs)
	if done {
		nextStatus = repository.StatusCompleted
	}
	if err := w.sessions.AdvancePointer(ctx, sessionID, end, nextStatus); err != nil {
		return fmt.Errorf("advance pointer: %w", err)
	}

	if done {
		w.log.Info("campaign session completed", "session_id", sessionID, "targets", len(session.TargetIDs))
		return nil
	}

	if err := w.enqueuer.EnqueueCampaignBatch(ctx, sessionID, tenantID, w.cfg.RequeueDelay); err != nil {
		// Returning the error would retry this slice and re-run sends; mark
		// the session failed and stop instead.
		w.log.Error("next batch enqueue failed", "session_id", sessionID, "error", err)
		if markErr := w.sessions.MarkFailed(ctx, sessionID, "enqueue next batch: "+err.Error()); markErr != nil {
			w.log.Error("failed to mark session failed", "session_id", sessionID, "error", markErr)
		}
		return nil
	}

	return nil
}

// processTarget handles one target: skip if already logged, resolve the
// recipient, check blocks, pace, send and record the outcome.
func (w *Worker) processTarget(ctx context.Context, session repository.Session, targetID uuid.UUID, sender outreach.Sender, senderErr error) error {
	exists, err := w.deliveries.Exists(ctx, session.ID, targetID)
	if err != nil {
		return fmt.Errorf("check delivery log: %w", err)
	}
	if exists {
		return nil
	}

	recipient, err := w.recipients.Get(ctx, session.TenantID, session.SourceType, targetID)
	if err != nil {
		if apperr.GetKind(err) == apperr.KindNotFound {
			w.recordFailure(ctx, session, targetID, "", "recipient not found")
			return nil
		}
		return fmt.Errorf("resolve recipient: %w", err)
	}

	identity, ok := recipientIdentity(session.Channel, recipient)
	if !ok {
		w.recordFailure(ctx, session, targetID, "", "recipient has no "+session.Channel+" contact")
		return nil
	}

	blocked, err := w.blocks.IsBlocked(ctx, session.TenantID, identity)
	if err != nil {
		return fmt.Errorf("check block list: %w", err)
	}
	if blocked {
		w.recordFailure(ctx, session, targetID, identity, "recipient on do-not-contact list")
		return nil
	}

	if senderErr != nil {
		w.recordFailure(ctx, session, targetID, identity, senderErr.Error())
		return nil
	}

	if err := w.pace.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	body := RenderTemplate(session.Template, recipient)
	if sendErr := sender.Send(ctx, identity, body); sendErr != nil {
		w.log.Warn("campaign send failed",
			"session_id", session.ID, "target_id", targetID, "error", sendErr)
		w.recordFailure(ctx, session, targetID, identity, sendErr.Error())
		return nil
	}

	w.recordOutcome(ctx, session, targetID, identity, repository.OutcomeDelivered, nil)

	w.bus.Publish(ctx, events.LeadContacted{
		BaseEvent:  events.NewBaseEvent(),
		SessionID:  session.ID,
		TenantID:   session.TenantID,
		TargetID:   targetID,
		SourceType: session.SourceType,
		Channel:    session.Channel,
	})

	return nil
}

func (w *Worker) recordFailure(ctx context.Context, session repository.Session, targetID uuid.UUID, identity, detail string) {
	w.recordOutcome(ctx, session, targetID, identity, repository.OutcomeFailed, &detail)
}

// recordOutcome writes the delivery log entry and bumps the session counters.
// Both writes are best-effort: a failed write is logged and the slice keeps
// going. Aborting here would retry the slice and re-send to targets whose log
// entry did land.
func (w *Worker) recordOutcome(ctx context.Context, session repository.Session, targetID uuid.UUID, identity, outcome string, detail *string) {
	err := w.deliveries.Insert(ctx, repository.Delivery{
		SessionID:   session.ID,
		TargetID:    targetID,
		Recipient:   identity,
		Outcome:     outcome,
		ErrorDetail: detail,
	})
	if err != nil {
		w.log.Error("delivery log write failed",
			"session_id", session.ID, "target_id", targetID, "error", err)
	}

	if err := w.sessions.IncrementProgress(ctx, session.ID, outcome == repository.OutcomeDelivered); err != nil {
		w.log.Error("progress counter update failed",
			"session_id", session.ID, "target_id", targetID, "error", err)
	}
}

// recipientIdentity returns the channel-specific contact identity. Phone
// numbers are normalized so block entries and delivery logs share one form.
func recipientIdentity(channel string, recipient repository.Recipient) (string, bool) {
	switch channel {
	case repository.ChannelSMS:
		if recipient.Phone == nil || *recipient.Phone == "" {
			return "", false
		}
		return phone.NormalizeE164(*recipient.Phone), true
	case repository.ChannelEmail:
		if recipient.Email == nil || *recipient.Email == "" {
			return "", false
		}
		return *recipient.Email, true
	default:
		return "", false
	}
}

package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"leadmarket_backend/internal/campaigns/repository"
	"leadmarket_backend/internal/events"
	"leadmarket_backend/internal/outreach"
	"leadmarket_backend/platform/apperr"
)

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*repository.Session
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: make(map[uuid.UUID]*repository.Session)}
}

func (f *fakeSessions) add(s repository.Session) *repository.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	session := s
	f.sessions[s.ID] = &session
	return &session
}

func (f *fakeSessions) get(id uuid.UUID) repository.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.sessions[id]
}

func (f *fakeSessions) Create(_ context.Context, session repository.Session) (repository.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session.ID = uuid.New()
	session.CreatedAt = time.Now()
	session.UpdatedAt = session.CreatedAt
	stored := session
	f.sessions[session.ID] = &stored
	return session, nil
}

func (f *fakeSessions) GetByID(_ context.Context, tenantID, id uuid.UUID) (repository.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok || s.TenantID != tenantID {
		return repository.Session{}, apperr.NotFound("campaign session not found")
	}
	return *s, nil
}

func (f *fakeSessions) List(_ context.Context, tenantID uuid.UUID, limit, offset int) ([]repository.Session, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []repository.Session
	for _, s := range f.sessions {
		if s.TenantID == tenantID {
			all = append(all, *s)
		}
	}
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (f *fakeSessions) UpdateStatus(_ context.Context, id uuid.UUID, status string, allowedFrom []string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return false, nil
	}
	if len(allowedFrom) > 0 {
		allowed := false
		for _, from := range allowedFrom {
			if s.Status == from {
				allowed = true
				break
			}
		}
		if !allowed {
			return false, nil
		}
	}
	s.Status = status
	s.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeSessions) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return apperr.NotFound("campaign session not found")
	}
	s.Status = repository.StatusFailed
	s.FailureReason = &reason
	return nil
}

func (f *fakeSessions) AdvancePointer(_ context.Context, id uuid.UUID, pointer int, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return apperr.NotFound("campaign session not found")
	}
	if pointer > s.CurrentPointer {
		s.CurrentPointer = pointer
	}
	s.Status = status
	return nil
}

func (f *fakeSessions) IncrementProgress(_ context.Context, id uuid.UUID, success bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return apperr.NotFound("campaign session not found")
	}
	s.Processed++
	if success {
		s.Succeeded++
	} else {
		s.Failed++
	}
	return nil
}

var _ repository.SessionRepository = (*fakeSessions)(nil)

type deliveryKey struct {
	sessionID uuid.UUID
	targetID  uuid.UUID
}

type fakeDeliveries struct {
	mu      sync.Mutex
	entries map[deliveryKey]repository.Delivery
}

func newFakeDeliveries() *fakeDeliveries {
	return &fakeDeliveries{entries: make(map[deliveryKey]repository.Delivery)}
}

func (f *fakeDeliveries) Exists(_ context.Context, sessionID, targetID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[deliveryKey{sessionID, targetID}]
	return ok, nil
}

func (f *fakeDeliveries) Insert(_ context.Context, delivery repository.Delivery) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := deliveryKey{delivery.SessionID, delivery.TargetID}
	if _, ok := f.entries[key]; ok {
		return nil
	}
	delivery.ID = uuid.New()
	delivery.CreatedAt = time.Now()
	f.entries[key] = delivery
	return nil
}

func (f *fakeDeliveries) ListFailed(_ context.Context, sessionID uuid.UUID) ([]repository.Delivery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []repository.Delivery
	for key, d := range f.entries {
		if key.sessionID == sessionID && d.Outcome == repository.OutcomeFailed {
			results = append(results, d)
		}
	}
	return results, nil
}

func (f *fakeDeliveries) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

var _ repository.DeliveryRepository = (*fakeDeliveries)(nil)

type fakeRecipients struct {
	mu   sync.Mutex
	byID map[uuid.UUID]repository.Recipient
}

func newFakeRecipients() *fakeRecipients {
	return &fakeRecipients{byID: make(map[uuid.UUID]repository.Recipient)}
}

func (f *fakeRecipients) add(r repository.Recipient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[r.ID] = r
}

func (f *fakeRecipients) Get(_ context.Context, _ uuid.UUID, _ string, id uuid.UUID) (repository.Recipient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[id]
	if !ok {
		return repository.Recipient{}, apperr.NotFound("recipient not found")
	}
	return r, nil
}

var _ repository.RecipientSource = (*fakeRecipients)(nil)

type fakeBlocks struct {
	mu      sync.Mutex
	blocked map[string]bool
}

func newFakeBlocks() *fakeBlocks {
	return &fakeBlocks{blocked: make(map[string]bool)}
}

func (f *fakeBlocks) block(identity string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blocked[identity] = true
}

func (f *fakeBlocks) IsBlocked(_ context.Context, _ uuid.UUID, identity string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blocked[identity], nil
}

var _ repository.BlockRepository = (*fakeBlocks)(nil)

type enqueuedBatch struct {
	sessionID uuid.UUID
	tenantID  uuid.UUID
	delay     time.Duration
}

type fakeEnqueuer struct {
	mu      sync.Mutex
	batches []enqueuedBatch
	err     error
}

func (f *fakeEnqueuer) EnqueueCampaignBatch(_ context.Context, sessionID, tenantID uuid.UUID, delay time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, enqueuedBatch{sessionID: sessionID, tenantID: tenantID, delay: delay})
	return nil
}

func (f *fakeEnqueuer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

var _ BatchEnqueuer = (*fakeEnqueuer)(nil)

// fakeSender records sends and fails recipients listed in failWith.
type fakeSender struct {
	mu       sync.Mutex
	sent     []string
	failWith map[string]string
}

func newFakeSender() *fakeSender {
	return &fakeSender{failWith: make(map[string]string)}
}

func (f *fakeSender) Send(_ context.Context, recipient, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if detail, ok := f.failWith[recipient]; ok {
		return fmt.Errorf("%s", detail)
	}
	f.sent = append(f.sent, recipient)
	return nil
}

func (f *fakeSender) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeResolver struct {
	sender outreach.Sender
	err    error
}

func (f *fakeResolver) Resolve(string) (outreach.Sender, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sender, nil
}

var _ ChannelResolver = (*fakeResolver)(nil)

type fakeBus struct {
	mu        sync.Mutex
	published []events.Event
}

func (f *fakeBus) Publish(_ context.Context, event events.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, event)
}

func (f *fakeBus) Subscribe(string, events.Handler) {}

func (f *fakeBus) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

var _ events.Bus = (*fakeBus)(nil)

package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"leadmarket_backend/internal/distribution/repository"
	"leadmarket_backend/platform/apperr"
)

// fakeRepo is an in-memory Repository for service tests. All maps are guarded
// so concurrent deal passes can share one instance.
type fakeRepo struct {
	mu sync.Mutex

	tenants     map[uuid.UUID]repository.Tenant
	poolLeads   map[uuid.UUID]*repository.PoolLead
	tenantLeads map[uuid.UUID]*repository.TenantLead

	harvested     []string
	terminalMarks map[uuid.UUID]string
	outcomeLocks  map[uuid.UUID]time.Time
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		tenants:       make(map[uuid.UUID]repository.Tenant),
		poolLeads:     make(map[uuid.UUID]*repository.PoolLead),
		tenantLeads:   make(map[uuid.UUID]*repository.TenantLead),
		terminalMarks: make(map[uuid.UUID]string),
		outcomeLocks:  make(map[uuid.UUID]time.Time),
	}
}

func (f *fakeRepo) addTenant(t repository.Tenant) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tenants[t.ID] = t
}

func (f *fakeRepo) addPoolLead(pl repository.PoolLead) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead := pl
	f.poolLeads[pl.ID] = &lead
}

func (f *fakeRepo) addTenantLead(tl repository.TenantLead) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead := tl
	f.tenantLeads[tl.ID] = &lead
}

func (f *fakeRepo) GetTenant(_ context.Context, id uuid.UUID) (repository.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tenants[id]
	if !ok {
		return repository.Tenant{}, apperr.NotFound("tenant not found")
	}
	return t, nil
}

func (f *fakeRepo) ListActiveTenants(_ context.Context) ([]repository.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []repository.Tenant
	for _, t := range f.tenants {
		if t.IsActive {
			results = append(results, t)
		}
	}
	return results, nil
}

func (f *fakeRepo) ListPlatformLeads(_ context.Context, tenantID uuid.UUID) ([]repository.TenantLead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []repository.TenantLead
	for _, tl := range f.tenantLeads {
		if tl.TenantID == tenantID && tl.PlatformSourced {
			results = append(results, *tl)
		}
	}
	return results, nil
}

func (f *fakeRepo) CountPlatformLeads(_ context.Context, tenantID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, tl := range f.tenantLeads {
		if tl.TenantID == tenantID && tl.PlatformSourced {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) DeleteTenantLead(_ context.Context, tenantID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tl, ok := f.tenantLeads[id]
	if !ok || tl.TenantID != tenantID {
		return apperr.NotFound("tenant lead not found")
	}
	delete(f.tenantLeads, id)
	return nil
}

func (f *fakeRepo) HarvestNotes(_ context.Context, _, _ uuid.UUID, notes string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.harvested = append(f.harvested, notes)
	return nil
}

func (f *fakeRepo) ClearLeadLock(_ context.Context, leadID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pl, ok := f.poolLeads[leadID]; ok {
		pl.UnavailableUntil = nil
		pl.LastAssignedTo = nil
	}
	return nil
}

func (f *fakeRepo) MarkLeadTerminal(_ context.Context, leadID, _ uuid.UUID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terminalMarks[leadID] = status
	if pl, ok := f.poolLeads[leadID]; ok {
		pl.UnavailableUntil = nil
		pl.LastAssignedTo = nil
		s := status
		pl.PoolStatus = &s
	}
	return nil
}

func (f *fakeRepo) ListUnlockedCandidates(_ context.Context, tenantID uuid.UUID, limit int) ([]repository.PoolLead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []repository.PoolLead
	for _, pl := range f.poolLeads {
		if len(results) >= limit {
			break
		}
		if pl.UnavailableUntil == nil && !f.heldLocked(tenantID, pl.ID) {
			results = append(results, *pl)
		}
	}
	return results, nil
}

func (f *fakeRepo) ListExpiredCandidates(_ context.Context, tenantID uuid.UUID, now time.Time, limit int) ([]repository.PoolLead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []repository.PoolLead
	for _, pl := range f.poolLeads {
		if len(results) >= limit {
			break
		}
		if pl.UnavailableUntil != nil && !pl.UnavailableUntil.After(now) && !f.heldLocked(tenantID, pl.ID) {
			results = append(results, *pl)
		}
	}
	return results, nil
}

// heldLocked reports whether the tenant already holds a platform copy.
// Callers must hold f.mu.
func (f *fakeRepo) heldLocked(tenantID, leadID uuid.UUID) bool {
	for _, tl := range f.tenantLeads {
		if tl.TenantID == tenantID && tl.SourceLeadID == leadID && tl.PlatformSourced {
			return true
		}
	}
	return false
}

func (f *fakeRepo) AssignLead(_ context.Context, leadID, tenantID uuid.UUID, lockUntil time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pl, ok := f.poolLeads[leadID]
	if !ok {
		return false, nil
	}
	if pl.UnavailableUntil != nil && pl.UnavailableUntil.After(time.Now()) {
		return false, nil
	}

	until := lockUntil
	pl.UnavailableUntil = &until
	tid := tenantID
	pl.LastAssignedTo = &tid
	visited := false
	for _, v := range pl.VisitedTenantIDs {
		if v == tenantID {
			visited = true
			break
		}
	}
	if !visited {
		pl.VisitedTenantIDs = append(pl.VisitedTenantIDs, tenantID)
	}

	now := time.Now()
	id := uuid.New()
	f.tenantLeads[id] = &repository.TenantLead{
		ID:              id,
		TenantID:        tenantID,
		SourceLeadID:    leadID,
		FullName:        pl.FullName,
		Phone:           pl.Phone,
		Email:           pl.Email,
		Status:          "new",
		PlatformSourced: true,
		AssignedAt:      &now,
	}

	return true, nil
}

func (f *fakeRepo) ApplyOutcomeLock(_ context.Context, leadID, tenantID uuid.UUID, poolStatus string, until time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	pl, ok := f.poolLeads[leadID]
	if !ok {
		return apperr.NotFound("lead not found")
	}
	u := until
	pl.UnavailableUntil = &u
	tid := tenantID
	pl.LastAssignedTo = &tid
	s := poolStatus
	pl.PoolStatus = &s
	f.outcomeLocks[leadID] = until
	return nil
}

func (f *fakeRepo) TouchLastContacted(_ context.Context, leadID uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pl, ok := f.poolLeads[leadID]; ok {
		t := at
		pl.LastContactedAt = &t
	}
	return nil
}

func (f *fakeRepo) TouchLastContactedByCopy(_ context.Context, tenantLeadID uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tl, ok := f.tenantLeads[tenantLeadID]
	if !ok {
		return nil
	}
	if pl, ok := f.poolLeads[tl.SourceLeadID]; ok {
		t := at
		pl.LastContactedAt = &t
	}
	return nil
}

var _ repository.Repository = (*fakeRepo)(nil)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func timePtr(t time.Time) *time.Time { return &t }

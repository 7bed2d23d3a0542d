package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"leadmarket_backend/internal/distribution/repository"
	"leadmarket_backend/platform/apperr"
	"leadmarket_backend/platform/logger"
)

func newTestOutcomes(repo repository.Repository) *OutcomeLockManager {
	m := NewOutcomeLockManager(repo, 60*24*time.Hour, 7*24*time.Hour, logger.New("test"))
	m.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return m
}

func TestReportHiredOutcomeAppliesLongLock(t *testing.T) {
	repo := newFakeRepo()
	leadID := uuid.New()
	tenantID := uuid.New()
	repo.addPoolLead(repository.PoolLead{ID: leadID, FullName: "Lead"})

	manager := newTestOutcomes(repo)

	for _, outcome := range []string{"hired", "Hired_Elsewhere", "placed", "candidate placed externally"} {
		until, err := manager.Report(context.Background(), leadID, tenantID, outcome)
		if err != nil {
			t.Fatalf("Report(%q) error = %v", outcome, err)
		}

		want := manager.now().Add(60 * 24 * time.Hour)
		if !until.Equal(want) {
			t.Errorf("Report(%q) until = %v, want %v", outcome, until, want)
		}
	}
}

func TestReportOtherOutcomeAppliesCoolOff(t *testing.T) {
	repo := newFakeRepo()
	leadID := uuid.New()
	tenantID := uuid.New()
	repo.addPoolLead(repository.PoolLead{ID: leadID, FullName: "Lead"})

	manager := newTestOutcomes(repo)

	until, err := manager.Report(context.Background(), leadID, tenantID, "  Not_Interested ")
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	want := manager.now().Add(7 * 24 * time.Hour)
	if !until.Equal(want) {
		t.Errorf("until = %v, want %v", until, want)
	}

	pl := repo.poolLeads[leadID]
	if pl.PoolStatus == nil || *pl.PoolStatus != "not_interested" {
		t.Errorf("pool status = %v, want normalized not_interested", pl.PoolStatus)
	}
	if pl.LastAssignedTo == nil || *pl.LastAssignedTo != tenantID {
		t.Error("reporting tenant should be recorded on the lock")
	}
}

func TestReportEmptyOutcomeIsValidationError(t *testing.T) {
	manager := newTestOutcomes(newFakeRepo())

	_, err := manager.Report(context.Background(), uuid.New(), uuid.New(), "   ")
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Errorf("error kind = %v, want validation", apperr.GetKind(err))
	}
}

func TestReportUnknownLeadIsNotFound(t *testing.T) {
	manager := newTestOutcomes(newFakeRepo())

	_, err := manager.Report(context.Background(), uuid.New(), uuid.New(), "rejected")
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Errorf("error kind = %v, want not found", apperr.GetKind(err))
	}
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"leadmarket_backend/internal/distribution/repository"
	"leadmarket_backend/internal/distribution/service"
	"leadmarket_backend/internal/distribution/transport"
	"leadmarket_backend/platform/httpkit"
	"leadmarket_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidLeadID    = "invalid lead ID"
	msgInvalidTenantID  = "invalid tenant ID"
)

// DistributionEnqueuer dispatches per-tenant allocation passes onto the task queue.
type DistributionEnqueuer interface {
	EnqueueTenantDistribution(ctx context.Context, tenantID uuid.UUID, forceRotate bool) error
}

// Handler handles HTTP requests for the distribution context.
type Handler struct {
	repo     repository.Repository
	quota    *service.QuotaResolver
	outcomes *service.OutcomeLockManager
	enqueuer DistributionEnqueuer
	val      *validator.Validator
}

// New creates a new distribution handler.
func New(repo repository.Repository, quota *service.QuotaResolver, outcomes *service.OutcomeLockManager, enqueuer DistributionEnqueuer, val *validator.Validator) *Handler {
	return &Handler{repo: repo, quota: quota, outcomes: outcomes, enqueuer: enqueuer, val: val}
}

// ReportOutcome records a tenant-reported outcome for a pool lead.
// POST /api/v1/leads/:id/outcome
func (h *Handler) ReportOutcome(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return
	}

	var req transport.ReportOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	until, err := h.outcomes.Report(c.Request.Context(), leadID, tenantID, req.Outcome)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ReportOutcomeResponse{
		LeadID:           leadID.String(),
		Outcome:          req.Outcome,
		UnavailableUntil: until,
	})
}

// RunDistribution enqueues allocation passes, for one tenant or for all.
// POST /api/v1/admin/distribution/run
func (h *Handler) RunDistribution(c *gin.Context) {
	var req transport.RunDistributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	ctx := c.Request.Context()

	var tenants []repository.Tenant
	if req.TenantID != nil {
		tenantID, err := uuid.Parse(*req.TenantID)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidTenantID, nil)
			return
		}
		tenant, err := h.repo.GetTenant(ctx, tenantID)
		if httpkit.HandleError(c, err) {
			return
		}
		tenants = []repository.Tenant{tenant}
	} else {
		all, err := h.repo.ListActiveTenants(ctx)
		if httpkit.HandleError(c, err) {
			return
		}
		tenants = all
	}

	enqueued := 0
	for _, tenant := range tenants {
		if !tenant.IsActive {
			continue
		}
		if err := h.enqueuer.EnqueueTenantDistribution(ctx, tenant.ID, req.ForceRotate); httpkit.HandleError(c, err) {
			return
		}
		enqueued++
	}

	httpkit.OK(c, transport.RunDistributionResponse{Enqueued: enqueued})
}

// TenantSummary reports a tenant's working lead count against its quota.
// GET /api/v1/admin/distribution/tenants/:id/summary
func (h *Handler) TenantSummary(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidTenantID, nil)
		return
	}

	ctx := c.Request.Context()

	tenant, err := h.repo.GetTenant(ctx, tenantID)
	if httpkit.HandleError(c, err) {
		return
	}

	working, err := h.repo.CountPlatformLeads(ctx, tenantID)
	if httpkit.HandleError(c, err) {
		return
	}

	quota := h.quota.Resolve(tenant)

	httpkit.OK(c, transport.TenantSummaryResponse{
		TenantID:     tenantID.String(),
		Quota:        quota,
		WorkingCount: working,
		Full:         working >= quota,
	})
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"leadmarket_backend/internal/campaigns/service"
	"leadmarket_backend/internal/campaigns/transport"
	"leadmarket_backend/platform/httpkit"
	"leadmarket_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidSessionID = "invalid session ID"
)

// Handler handles HTTP requests for the campaigns context.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new campaigns handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Create starts a new campaign session.
// POST /api/v1/campaigns
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateSessionRequest
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

	session, err := h.svc.Create(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, session)
}

// List pages through the tenant's campaign sessions.
// GET /api/v1/campaigns
func (h *Handler) List(c *gin.Context) {
	var req transport.ListSessionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	list, err := h.svc.List(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, list)
}

// Get retrieves one campaign session.
// GET /api/v1/campaigns/:id
func (h *Handler) Get(c *gin.Context) {
	h.withSession(c, h.svc.GetByID)
}

// Pause pauses an in-flight session.
// POST /api/v1/campaigns/:id/pause
func (h *Handler) Pause(c *gin.Context) {
	h.withSession(c, h.svc.Pause)
}

// Resume reactivates a paused session.
// POST /api/v1/campaigns/:id/resume
func (h *Handler) Resume(c *gin.Context) {
	h.withSession(c, h.svc.Resume)
}

// Cancel stops a session permanently.
// POST /api/v1/campaigns/:id/cancel
func (h *Handler) Cancel(c *gin.Context) {
	h.withSession(c, h.svc.Cancel)
}

// RetryFailed spawns a follow-up session for the retryable failures.
// POST /api/v1/campaigns/:id/retry-failed
func (h *Handler) RetryFailed(c *gin.Context) {
	h.withSession(c, h.svc.RetryFailed)
}

type sessionOp func(ctx context.Context, tenantID, id uuid.UUID) (transport.SessionResponse, error)

func (h *Handler) withSession(c *gin.Context, op sessionOp) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidSessionID, nil)
		return
	}

	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	session, err := op(c.Request.Context(), tenantID, id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, session)
}

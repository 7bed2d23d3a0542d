// Package campaigns provides the bulk-outreach bounded context: campaign
// session lifecycle, resumable batch delivery and failure classification.
package campaigns

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"leadmarket_backend/internal/campaigns/handler"
	"leadmarket_backend/internal/campaigns/repository"
	"leadmarket_backend/internal/campaigns/service"
	"leadmarket_backend/internal/config"
	"leadmarket_backend/internal/events"
	apphttp "leadmarket_backend/internal/http"
	"leadmarket_backend/internal/outreach"
	"leadmarket_backend/platform/logger"
	"leadmarket_backend/platform/validator"
)

// Module is the campaigns bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	svc     *service.Service
	worker  *service.Worker
	log     *logger.Logger
}

// NewModule creates and initializes the campaigns module with all its dependencies.
func NewModule(pool *pgxpool.Pool, cfg *config.Config, enqueuer service.BatchEnqueuer, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	sessions := repository.NewSessionRepo(pool)
	deliveries := repository.NewDeliveryRepo(pool)
	recipients := repository.NewRecipientRepo(pool)
	blocks := repository.NewBlockRepo(pool)

	classifier := service.NewClassifier(nil)
	svc := service.New(sessions, deliveries, classifier, enqueuer, log)

	resolver := outreach.NewResolver(
		outreach.NewSMSClient(cfg.SMSAPIURL, cfg.SMSAPIKey, log),
		outreach.NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword,
			cfg.EmailFromAddress, cfg.EmailFromName, cfg.EmailSubject),
	)

	worker := service.NewWorker(sessions, deliveries, recipients, blocks, resolver, enqueuer, bus, service.WorkerConfig{
		BatchSize:    cfg.BatchSize,
		SendDelay:    cfg.SendDelay,
		RequeueDelay: cfg.BatchRequeueDelay,
	}, log)

	h := handler.New(svc, val)

	return &Module{
		handler: h,
		svc:     svc,
		worker:  worker,
		log:     log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "campaigns"
}

// Worker returns the batch worker for the scheduler process.
func (m *Module) Worker() *service.Worker {
	return m.worker
}

// Service returns the session manager for direct access if needed.
func (m *Module) Service() *service.Service {
	return m.svc
}

// RegisterRoutes mounts campaign routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Tenant.Group("/campaigns")
	group.POST("", m.handler.Create)
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.Get)
	group.POST("/:id/pause", m.handler.Pause)
	group.POST("/:id/resume", m.handler.Resume)
	group.POST("/:id/cancel", m.handler.Cancel)
	group.POST("/:id/retry-failed", m.handler.RetryFailed)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

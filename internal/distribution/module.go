// Package distribution provides the lead distribution bounded context: quota
// resolution, pool rotation, the per-tenant dealer and outcome locking.
package distribution

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"leadmarket_backend/internal/config"
	"leadmarket_backend/internal/distribution/handler"
	"leadmarket_backend/internal/distribution/repository"
	"leadmarket_backend/internal/distribution/service"
	"leadmarket_backend/internal/events"
	apphttp "leadmarket_backend/internal/http"
	"leadmarket_backend/platform/logger"
	"leadmarket_backend/platform/validator"
)

// Module is the distribution bounded context module implementing http.Module.
type Module struct {
	handler  *handler.Handler
	repo     repository.Repository
	dealer   *service.Dealer
	outcomes *service.OutcomeLockManager
	log      *logger.Logger
}

// NewModule creates and initializes the distribution module with all its dependencies.
// The enqueuer may be nil in processes that never trigger distribution over HTTP.
func NewModule(pool *pgxpool.Pool, cfg *config.Config, enqueuer handler.DistributionEnqueuer, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)

	quota := service.NewQuotaResolver(cfg.QuotaBaseline, cfg.QuotaElevated)
	rotation := service.NewRotationManager(repo, service.RotationConfig{
		ShortExpiryWindow: cfg.ShortExpiryWindow,
		LongExpiryWindow:  cfg.LongExpiryWindow,
	}, log)
	dealer := service.NewDealer(repo, quota, rotation, cfg.AssignmentLockTTL, log)
	outcomes := service.NewOutcomeLockManager(repo, cfg.HiredLockDuration, cfg.CoolOffLockDuration, log)

	h := handler.New(repo, quota, outcomes, enqueuer, val)

	return &Module{
		handler:  h,
		repo:     repo,
		dealer:   dealer,
		outcomes: outcomes,
		log:      log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "distribution"
}

// Dealer returns the allocation engine for the scheduler worker.
func (m *Module) Dealer() *service.Dealer {
	return m.dealer
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts distribution routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Tenant.POST("/leads/:id/outcome", m.handler.ReportOutcome)

	adminGroup := ctx.Admin.Group("/distribution")
	adminGroup.POST("/run", m.handler.RunDistribution)
	adminGroup.GET("/tenants/:id/summary", m.handler.TenantSummary)
}

// RegisterHandlers subscribes to domain events from other modules.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.LeadContacted{}.EventName(), m)
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadContacted:
		return m.stampLastContacted(ctx, e)
	default:
		return nil
	}
}

// stampLastContacted records the outreach timestamp on the source pool lead.
// Best-effort by contract: the bus logs and drops errors.
func (m *Module) stampLastContacted(ctx context.Context, e events.LeadContacted) error {
	switch e.SourceType {
	case "pool":
		return m.repo.TouchLastContacted(ctx, e.TargetID, e.OccurredAt())
	case "tenant":
		return m.repo.TouchLastContactedByCopy(ctx, e.TargetID, e.OccurredAt())
	default:
		// Imported recipients have no pool record to stamp.
		return nil
	}
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

package router

import (
	"context"
	"net/http"

	"leadmarket_backend/internal/config"
	apphttp "leadmarket_backend/internal/http"
	"leadmarket_backend/platform/httpkit"
	"leadmarket_backend/platform/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// New builds the gin engine and mounts every registered module.
func New(cfg *config.Config, log *logger.Logger, health HealthChecker, modules []apphttp.Module) *gin.Engine {
	if !gin.IsDebugging() || cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestLogger(log))

	corsConfig := cors.DefaultConfig()
	if cfg.CORSAllowAll {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, httpkit.TenantHeader)
	engine.Use(cors.New(corsConfig))

	limiter := httpkit.NewIPRateLimiter(rate.Limit(50), 100, log)
	engine.Use(limiter.Middleware())

	engine.GET("/api/health", func(c *gin.Context) {
		if health != nil {
			if err := health.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/api/v1")
	tenant := v1.Group("")
	tenant.Use(httpkit.TenantMiddleware())
	admin := v1.Group("/admin")

	ctx := &apphttp.RouterContext{
		Engine: engine,
		V1:     v1,
		Tenant: tenant,
		Admin:  admin,
	}

	for _, module := range modules {
		module.RegisterRoutes(ctx)
		log.Info("module routes registered", "module", module.Name())
	}

	return engine
}

package router

import (
	"context"
	"net/http"

	"github.com/condo/backend/internal/infrastructure/logger"
	"github.com/condo/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineConfig configures the gin engine and its middleware chain
type EngineConfig struct {
	Mode           string // gin mode: debug, release, test
	ServiceName    string
	TracingEnabled bool
	MaxBodySize    int64
	TrustedProxies []string
	Meter          metric.Meter // nil disables HTTP metrics
}

// HealthCheck reports whether a dependency is reachable
type HealthCheck func(ctx context.Context) error

// NewEngine builds a gin engine with the standard middleware chain and a
// /health endpoint backed by check.
func NewEngine(cfg EngineConfig, check HealthCheck, log *zap.Logger) (*gin.Engine, error) {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(middleware.Tracing(cfg.ServiceName, cfg.TracingEnabled))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.SpanEnricher())
	engine.Use(middleware.HTTPMetrics(cfg.Meter))
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	engine.GET("/health", healthHandler(check))
	return engine, nil
}

func healthHandler(check HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			if err := check(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":   "unhealthy",
					"database": "disconnected",
					"error":    err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"database": "connected",
		})
	}
}

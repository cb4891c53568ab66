package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/guttosm/k4bridge/internal/middleware"
)

// RouterConfig carries the request limits applied by NewRouter.
type RouterConfig struct {
	RateLimitPerMinute int
	MaxUploadBytes     int64
	RequestTimeout     time.Duration
}

const defaultRequestTimeout = 60 * time.Second

// NewRouter creates a Gin engine with routes configured.
// It receives a Handler instance with all business logic already injected.
//
// Responsibilities:
//   - Registers global middlewares (RequestID, Logger, Recovery, ErrorHandler, RateLimiter).
//   - Adds request timeout handling (RequestTimeout, 60s by default, long enough for PDF rendering).
//   - Limits the upload size on the conversion endpoint.
//   - Mounts Swagger docs (/swagger/*any).
//   - Configures API v1 routes (/api/v1).
//
// Note:
//   - Health and readiness endpoints (/healthz, /readyz) are registered in app.InitializeApp().
func NewRouter(handler *Handler, cfg RouterConfig) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RecoveryMiddleware(),
		middleware.ErrorHandler,
		middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute),
	)

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/conversions", middleware.MaxBodySize(cfg.MaxUploadBytes), handler.CreateConversion)
		v1.GET("/conversions/:id", handler.GetConversion)
		v1.DELETE("/conversions/:id", handler.DeleteConversion)
		v1.GET("/conversions/:id/artifacts/:kind/:format", handler.DownloadArtifact)
	}

	return router
}

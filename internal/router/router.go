package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"llmbroker/internal/config"
	"llmbroker/internal/handler"
	"llmbroker/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware. When auth
// is configured every /api/v1 route needs a bearer token and cache
// invalidation needs the admin role.
func Setup(
	cfg *config.Config,
	logger *slog.Logger,
	brokerH *handler.BrokerHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	invalidate := []gin.HandlerFunc{brokerH.InvalidateCache}
	if cfg.Auth.Enabled() {
		v1.Use(middleware.JWTAuth(&cfg.Auth))
		invalidate = append([]gin.HandlerFunc{middleware.RequireRole(middleware.RoleAdmin)}, invalidate...)
	}

	v1.POST("/responses", brokerH.GetResponse)
	v1.GET("/schema", brokerH.Schema)
	v1.DELETE("/cache", invalidate...)

	return r
}

package server

import (
	"github.com/gin-gonic/gin"

	"docchat-backend/internal/chat"
	"docchat-backend/internal/documents"
	"docchat-backend/internal/services/health"
	"docchat-backend/internal/shared/config"
	"docchat-backend/internal/shared/metrics"
	"docchat-backend/internal/shared/server/middleware"
	"docchat-backend/internal/users"
)

// RouterDeps carries the handlers mounted by NewRouter.
type RouterDeps struct {
	Config          config.Config
	Verifier        middleware.TokenVerifier
	Health          *health.Service
	DocumentHandler *documents.Handler
	ChatHandler     *chat.Handler
	UserHandler     *users.Handler
	RateLimiter     *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}
	registerProbeRoutes(r, healthSvc)
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	registerProbeRoutes(api, healthSvc)
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterAuthRoutes(api)
	}

	protected := api.Group("")
	protected.Use(
		middleware.Auth(deps.Verifier),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				chat.RateLimitGroup: middleware.PerMinute(deps.Config.ChatRatePerMinute),
			},
			GroupFor: chat.RateLimitGroupFor,
			Limiter:  deps.RateLimiter,
		}),
	)
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(protected)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(protected)
	}
	if deps.ChatHandler != nil {
		deps.ChatHandler.RegisterRoutes(protected)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}

package handlers

import (
	"time"

	"github.com/SscSPs/chat_backend/cmd/docs"
	portssvc "github.com/SscSPs/chat_backend/internal/core/ports/services"
	"github.com/SscSPs/chat_backend/internal/middleware"
	"github.com/SscSPs/chat_backend/internal/platform/config"
	"github.com/SscSPs/chat_backend/internal/utils"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouteDeps carries the optional collaborators of the HTTP layer.
type RouteDeps struct {
	// AuthLimit guards register, login, forgot-password and reset-password. Nil disables it.
	AuthLimit gin.HandlerFunc
	Posthog   *utils.PosthogClientWrapper
	Now       func() time.Time
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	deps RouteDeps,
) {
	if deps.AuthLimit == nil {
		deps.AuthLimit = func(c *gin.Context) { c.Next() }
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	registerHealthRoutes(r, deps.Now)

	authMW := middleware.AuthMiddleware(services.Auth)
	authHandler := NewAuthHandler(services.Auth, deps.Posthog)
	googleHandler := NewGoogleOAuthHandler(services.GoogleOAuthHandler, services.Auth, deps.Posthog, cfg.ClientURL, cfg.IsProduction)

	// Both prefixes are served; the web client uses /api/auth.
	registerAuthRoutes(r.Group("/auth"), authHandler, googleHandler, authMW, deps.AuthLimit)
	registerAuthRoutes(r.Group("/api/auth"), authHandler, googleHandler, authMW, deps.AuthLimit)

	setupAPIV1Routes(r, authMW, services)

	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(r *gin.Engine, authMW gin.HandlerFunc, services *portssvc.ServiceContainer) {
	v1 := r.Group("/api/v1", authMW)

	registerUserRoutes(v1, services.User)
	registerStatsRoutes(v1, services.User)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

package services

import (
	portsrepo "github.com/SscSPs/chat_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/chat_backend/internal/core/ports/services"
	"github.com/SscSPs/chat_backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, notifier portssvc.NotificationSvc) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Session issuer first since the auth service depends on it
	container.Session = NewSessionService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiryDuration)

	container.Auth = NewAuthService(
		repos.UserRepo,
		container.Session,
		notifier,
		WithResetTokenTTL(cfg.ResetTokenTTL),
	)
	container.User = NewUserService(repos.UserRepo)
	container.GoogleOAuthHandler = NewGoogleOAuthHandlerService(cfg)

	return container
}

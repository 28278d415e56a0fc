package services

import (
	"context"
	"time"

	"github.com/SscSPs/chat_backend/internal/core/domain"
	"github.com/SscSPs/chat_backend/internal/dto"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

// SessionSvc mints and verifies stateless session credentials.
type SessionSvc interface {
	// Issue signs a credential for userID and returns it with its expiry.
	Issue(ctx context.Context, userID string) (string, time.Time, error)
	// Verify returns the user id asserted by a credential, or apperrors.ErrInvalidCredential.
	Verify(ctx context.Context, token string) (string, error)
}

// PasswordAuthSvc defines the password based flows.
type PasswordAuthSvc interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResult, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResult, error)
}

// PasswordResetSvc defines the forgot/reset password flows.
type PasswordResetSvc interface {
	// ForgotPassword returns the same message whether or not the email is known.
	ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) (string, error)
	ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) (*dto.AuthResult, error)
}

// SessionAuthSvc resolves session credentials to users.
type SessionAuthSvc interface {
	// VerifySession returns the active user behind a credential, or apperrors.ErrUnauthenticated.
	VerifySession(ctx context.Context, token string) (*domain.User, error)
	Logout(ctx context.Context, userID string) error
}

// ExternalAuthSvc bridges external identity provider logins into sessions.
type ExternalAuthSvc interface {
	CompleteExternalLogin(ctx context.Context, profile domain.ExternalProfile) (*dto.AuthResult, error)
}

// AuthSvcFacade combines all authentication service interfaces.
type AuthSvcFacade interface {
	PasswordAuthSvc
	PasswordResetSvc
	SessionAuthSvc
	ExternalAuthSvc
}

// GoogleOAuthHandlerSvcFacade defines the interface for Google OAuth operations.
type GoogleOAuthHandlerSvcFacade interface {
	// IsConfigured reports whether client id, secret and redirect URL are set.
	IsConfigured() bool
	// GenerateStateString creates a secure random string to be used as a CSRF token for OAuth flow.
	GenerateStateString(ctx context.Context) (string, error)
	// GetGoogleLoginURL returns the URL to redirect the user to for Google login.
	GetGoogleLoginURL(ctx context.Context, state string) string
	// ExchangeCodeForToken exchanges an OAuth authorization code for a token.
	ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error)
	// GetUserInfo uses the access token to get user information from Google.
	GetUserInfo(ctx context.Context, token *oauth2.Token) (*domain.GoogleUserInfo, error)
	// ValidateGoogleIDToken validates an ID token string from Google and returns its payload.
	ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*idtoken.Payload, error)
	// FetchProfile runs the code exchange and returns the verified external profile.
	FetchProfile(ctx context.Context, code string) (*domain.ExternalProfile, error)
}

// NotificationSvc delivers account emails.
type NotificationSvc interface {
	// SendPasswordReset delivers the reset link synchronously.
	SendPasswordReset(ctx context.Context, email, name, resetToken string) error
	// QueueWelcome schedules a welcome email; delivery errors are logged, never returned.
	QueueWelcome(email, name string)
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/chat_backend/internal/apperrors"
	portssvc "github.com/SscSPs/chat_backend/internal/core/ports/services"
	"github.com/SscSPs/chat_backend/internal/utils"
)

// sessionService signs and verifies HS256 session credentials. It holds no state
// beyond its key, so any replica with the same secret verifies any credential.
type sessionService struct {
	BaseService
	secret string
	issuer string
	ttl    time.Duration
}

// SessionOption configures the session service.
type SessionOption func(*sessionService)

// WithSessionClock overrides the clock used for issuing and verifying.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *sessionService) {
		s.now = now
	}
}

// NewSessionService creates a session issuer. ttl is the credential lifetime.
func NewSessionService(secret, issuer string, ttl time.Duration, options ...SessionOption) portssvc.SessionSvc {
	svc := &sessionService{secret: secret, issuer: issuer, ttl: ttl}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.SessionSvc = (*sessionService)(nil)

func (s *sessionService) Issue(ctx context.Context, userID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, fmt.Errorf("cannot issue session credential: %w", apperrors.ErrValidation)
	}
	token, expiresAt, err := utils.GenerateJWT(userID, s.secret, s.issuer, s.Now(), s.ttl)
	if err != nil {
		s.LogError(ctx, err, "Failed to sign session credential")
		return "", time.Time{}, fmt.Errorf("failed to sign session credential: %w", err)
	}
	return token, expiresAt, nil
}

func (s *sessionService) Verify(ctx context.Context, token string) (string, error) {
	claims, err := utils.ParseAndValidateJWT(token, s.secret, s.issuer, s.Now)
	if err != nil {
		s.LogDebug(ctx, "Session credential rejected", "reason", err.Error())
		return "", apperrors.ErrInvalidCredential
	}
	return claims.Subject, nil
}

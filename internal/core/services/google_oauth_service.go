package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/SscSPs/chat_backend/internal/apperrors"
	"github.com/SscSPs/chat_backend/internal/core/domain"
	portssvc "github.com/SscSPs/chat_backend/internal/core/ports/services"
	"github.com/SscSPs/chat_backend/internal/platform/config"
	"github.com/SscSPs/chat_backend/internal/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// googleOAuthHandlerService implements the GoogleOAuthHandlerSvcFacade.
type googleOAuthHandlerService struct {
	BaseService
	cfg *config.Config
	// oauth2Config is configured at initialization time
	oauth2Config *oauth2.Config
	userInfoURL  string
	validateID   func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)
}

// GoogleOAuthOption configures the Google OAuth service.
type GoogleOAuthOption func(*googleOAuthHandlerService)

// WithGoogleEndpoint points the code exchange and userinfo calls at another server.
func WithGoogleEndpoint(endpoint oauth2.Endpoint, userInfoURL string) GoogleOAuthOption {
	return func(s *googleOAuthHandlerService) {
		s.oauth2Config.Endpoint = endpoint
		s.userInfoURL = userInfoURL
	}
}

// WithIDTokenValidator replaces idtoken.Validate.
func WithIDTokenValidator(fn func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)) GoogleOAuthOption {
	return func(s *googleOAuthHandlerService) {
		s.validateID = fn
	}
}

// NewGoogleOAuthHandlerService creates a new instance of googleOAuthHandlerService.
func NewGoogleOAuthHandlerService(cfg *config.Config, options ...GoogleOAuthOption) portssvc.GoogleOAuthHandlerSvcFacade {
	svc := &googleOAuthHandlerService{
		cfg: cfg,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       cfg.GoogleAuthScopes,
			Endpoint:     google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
		validateID:  idtoken.Validate,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.GoogleOAuthHandlerSvcFacade = (*googleOAuthHandlerService)(nil)

func (s *googleOAuthHandlerService) IsConfigured() bool {
	return s.cfg.GoogleOAuthConfigured()
}

// GenerateStateString creates a secure random string to be used as a CSRF token for OAuth flow.
func (s *googleOAuthHandlerService) GenerateStateString(ctx context.Context) (string, error) {
	// 16 bytes -> 32 char hex string
	state, err := utils.GenerateSecureRandomString(16)
	if err != nil {
		return "", fmt.Errorf("failed to generate state string for OAuth: %w", err)
	}
	return state, nil
}

// GetGoogleLoginURL returns the URL to redirect the user to for Google login.
// The account chooser is always shown.
func (s *googleOAuthHandlerService) GetGoogleLoginURL(ctx context.Context, state string) string {
	return s.oauth2Config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// ExchangeCodeForToken exchanges an OAuth authorization code for a token.
func (s *googleOAuthHandlerService) ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code for token: %w", err)
	}
	return token, nil
}

// GetUserInfo uses the access token to get user information from Google.
func (s *googleOAuthHandlerService) GetUserInfo(ctx context.Context, token *oauth2.Token) (*domain.GoogleUserInfo, error) {
	client := s.oauth2Config.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build userinfo request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info from google: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google api returned non-200 status for userinfo: %s", resp.Status)
	}

	var userInfo domain.GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("failed to decode user info from google: %w", err)
	}

	return &userInfo, nil
}

// ValidateGoogleIDToken validates an ID token received from Google and returns the payload if valid.
func (s *googleOAuthHandlerService) ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*idtoken.Payload, error) {
	if s.cfg.GoogleClientID == "" {
		return nil, errors.New("google client ID is not configured in the application")
	}

	payload, err := s.validateID(ctx, idTokenString, s.cfg.GoogleClientID)
	if err != nil {
		return nil, fmt.Errorf("google ID token validation failed: %w", err)
	}
	return payload, nil
}

// FetchProfile exchanges code, then reads the profile from the userinfo endpoint.
// When Google returned an ID token its subject must match the userinfo id.
func (s *googleOAuthHandlerService) FetchProfile(ctx context.Context, code string) (*domain.ExternalProfile, error) {
	if !s.IsConfigured() {
		return nil, fmt.Errorf("google oauth is not configured: %w", apperrors.ErrValidation)
	}
	token, err := s.ExchangeCodeForToken(ctx, code)
	if err != nil {
		return nil, err
	}
	info, err := s.GetUserInfo(ctx, token)
	if err != nil {
		return nil, err
	}
	if info.ID == "" {
		return nil, errors.New("google userinfo response has no id")
	}

	if raw, ok := token.Extra("id_token").(string); ok && raw != "" {
		payload, err := s.ValidateGoogleIDToken(ctx, raw)
		if err != nil {
			return nil, err
		}
		if payload.Subject != info.ID {
			return nil, errors.New("google id token subject does not match userinfo id")
		}
	}

	return &domain.ExternalProfile{
		Provider:      domain.ProviderGoogle,
		Subject:       info.ID,
		Email:         info.Email,
		Name:          info.Name,
		Picture:       info.Picture,
		EmailVerified: info.VerifiedEmail,
	}, nil
}

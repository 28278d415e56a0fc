package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/chat_backend/internal/apperrors"
	"github.com/SscSPs/chat_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/chat_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/chat_backend/internal/core/ports/services"
	"github.com/SscSPs/chat_backend/internal/dto"
	"github.com/SscSPs/chat_backend/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ForgotPasswordMessage is returned for every accepted forgot-password request,
// whether or not the email belongs to an account.
const ForgotPasswordMessage = "If an account with that email exists, a password reset link has been sent."

const (
	msgRegisterMissing = "Please provide all required fields"
	msgLoginMissing    = "Please provide email and password"
	msgForgotMissing   = "Please provide email address"
	msgResetMissing    = "Please provide token and new password"
	msgPasswordShort   = "Password must be at least 6 characters"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// checkRequest runs the validate tags of req. A failed "min" rule reports the password
// length message, anything else reports missingMsg.
func checkRequest(req any, missingMsg string) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				return apperrors.NewValidationError(missingMsg)
			}
		}
		for _, fe := range verrs {
			if fe.Tag() == "min" {
				return apperrors.NewValidationError(msgPasswordShort)
			}
		}
	}
	return apperrors.NewValidationError(missingMsg)
}

// authService implements AuthSvcFacade.
type authService struct {
	BaseService
	userRepo      portsrepo.UserRepositoryFacade
	sessions      portssvc.SessionSvc
	notifier      portssvc.NotificationSvc
	resetTokenTTL time.Duration
}

// AuthOption is a functional option for configuring the auth service
type AuthOption func(*authService)

// WithAuthClock overrides the clock used for reset expiry and login timestamps.
func WithAuthClock(now func() time.Time) AuthOption {
	return func(s *authService) {
		s.now = now
	}
}

// WithResetTokenTTL overrides the one hour reset token lifetime.
func WithResetTokenTTL(ttl time.Duration) AuthOption {
	return func(s *authService) {
		if ttl > 0 {
			s.resetTokenTTL = ttl
		}
	}
}

// NewAuthService creates the auth service.
func NewAuthService(userRepo portsrepo.UserRepositoryFacade, sessions portssvc.SessionSvc, notifier portssvc.NotificationSvc, options ...AuthOption) portssvc.AuthSvcFacade {
	svc := &authService{
		userRepo:      userRepo,
		sessions:      sessions,
		notifier:      notifier,
		resetTokenTTL: time.Hour,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.AuthSvcFacade = (*authService)(nil)

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = domain.NormalizeEmail(req.Email)
	if err := checkRequest(req, msgRegisterMissing); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindUserByEmail(ctx, req.Email); err == nil {
		return nil, apperrors.ErrConflict
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check existing user during registration")
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password during registration")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.Now()
	user := domain.User{
		UserID:       uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: &hash,
		AvatarURL:    domain.DefaultAvatarURL(req.Name),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.ErrConflict
		}
		s.LogError(ctx, err, "Failed to save user during registration")
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	result, err := s.newAuthResult(ctx, &user)
	if err != nil {
		return nil, err
	}

	s.notifier.QueueWelcome(user.Email, user.Name)
	s.LogInfo(ctx, "User registered", slog.String("user_id", user.UserID))
	return result, nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResult, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := checkRequest(req, msgLoginMissing); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			utils.BurnPasswordCheck(req.Password)
			return nil, apperrors.ErrInvalidCredentials
		}
		s.LogError(ctx, err, "Failed to look up user during login")
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.IsActive || !user.HasPassword() {
		utils.BurnPasswordCheck(req.Password)
		return nil, apperrors.ErrInvalidCredentials
	}
	if !utils.CheckPasswordHash(req.Password, *user.PasswordHash) {
		s.LogWarn(ctx, "Password mismatch on login", slog.String("user_id", user.UserID))
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.touchLastLogin(ctx, user); err != nil {
		return nil, err
	}
	return s.newAuthResult(ctx, user)
}

func (s *authService) ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) (string, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := checkRequest(req, msgForgotMissing); err != nil {
		return "", err
	}

	user, err := s.userRepo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return ForgotPasswordMessage, nil
		}
		s.LogError(ctx, err, "Failed to look up user for password reset")
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.IsActive {
		return ForgotPasswordMessage, nil
	}

	resetToken := utils.GenerateResetToken()
	now := s.Now()
	user.SetResetToken(utils.DigestResetToken(resetToken), now.Add(s.resetTokenTTL))
	user.UpdatedAt = now
	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		s.LogError(ctx, err, "Failed to store reset token", slog.String("user_id", user.UserID))
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.notifier.SendPasswordReset(ctx, user.Email, user.Name, resetToken); err != nil {
		s.LogError(ctx, err, "Failed to send password reset email", slog.String("user_id", user.UserID))
		user.ClearResetToken()
		user.UpdatedAt = s.Now()
		if rbErr := s.userRepo.UpdateUser(ctx, *user); rbErr != nil {
			s.LogError(ctx, rbErr, "Failed to clear reset token after dispatch failure", slog.String("user_id", user.UserID))
		}
		return "", fmt.Errorf("%w: %v", apperrors.ErrNotificationDispatch, err)
	}

	s.LogInfo(ctx, "Password reset requested", slog.String("user_id", user.UserID))
	return ForgotPasswordMessage, nil
}

func (s *authService) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) (*dto.AuthResult, error) {
	req.Token = strings.TrimSpace(req.Token)
	if err := checkRequest(req, msgResetMissing); err != nil {
		return nil, err
	}

	now := s.Now()
	user, err := s.userRepo.FindUserByResetDigest(ctx, utils.DigestResetToken(req.Token), now)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidOrExpiredToken
		}
		s.LogError(ctx, err, "Failed to look up reset token")
		return nil, fmt.Errorf("failed to look up reset token: %w", err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrInvalidOrExpiredToken
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password during reset")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = &hash
	user.ClearResetToken()
	user.UpdatedAt = now
	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		s.LogError(ctx, err, "Failed to store new password", slog.String("user_id", user.UserID))
		return nil, fmt.Errorf("failed to store new password: %w", err)
	}

	s.LogInfo(ctx, "Password reset completed", slog.String("user_id", user.UserID))
	return s.newAuthResult(ctx, user)
}

func (s *authService) CompleteExternalLogin(ctx context.Context, profile domain.ExternalProfile) (*dto.AuthResult, error) {
	if profile.Subject == "" {
		return nil, apperrors.NewValidationError("external profile has no subject")
	}
	email := domain.NormalizeEmail(profile.Email)

	user, err := s.userRepo.FindUserByExternalID(ctx, profile.Subject)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrNotFound):
		user, err = s.createExternalUser(ctx, profile, email)
		if err != nil {
			return nil, err
		}
	default:
		s.LogError(ctx, err, "Failed to look up external user", slog.String("provider", string(profile.Provider)))
		return nil, fmt.Errorf("failed to look up external user: %w", err)
	}

	if !user.IsActive {
		return nil, apperrors.ErrUnauthenticated
	}
	if err := s.touchLastLogin(ctx, user); err != nil {
		return nil, err
	}
	return s.newAuthResult(ctx, user)
}

func (s *authService) createExternalUser(ctx context.Context, profile domain.ExternalProfile, email string) (*domain.User, error) {
	if email == "" {
		return nil, apperrors.NewValidationError("external profile has no email")
	}
	if _, err := s.userRepo.FindUserByEmail(ctx, email); err == nil {
		s.LogWarn(ctx, "External login email belongs to another account", slog.String("provider", string(profile.Provider)))
		return nil, apperrors.ErrConflict
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check email for external login")
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	avatar := profile.Picture
	if avatar == "" {
		avatar = domain.DefaultAvatarURL(name)
	}
	subject := profile.Subject
	now := s.Now()
	user := domain.User{
		UserID:     uuid.NewString(),
		Email:      email,
		Name:       name,
		ExternalID: &subject,
		AvatarURL:  avatar,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.ErrConflict
		}
		s.LogError(ctx, err, "Failed to save external user")
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	s.LogInfo(ctx, "User created from external login", slog.String("user_id", user.UserID), slog.String("provider", string(profile.Provider)))
	s.notifier.QueueWelcome(user.Email, user.Name)
	return &user, nil
}

func (s *authService) VerifySession(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.sessions.Verify(ctx, token)
	if err != nil {
		return nil, apperrors.ErrUnauthenticated
	}
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load session user", slog.String("user_id", userID))
			return nil, fmt.Errorf("failed to load session user: %w", err)
		}
		return nil, apperrors.ErrUnauthenticated
	}
	if !user.IsActive {
		return nil, apperrors.ErrUnauthenticated
	}
	return user, nil
}

// Logout only records the event. Issued credentials stay valid until they expire.
func (s *authService) Logout(ctx context.Context, userID string) error {
	s.LogInfo(ctx, "User logged out", slog.String("user_id", userID))
	return nil
}

func (s *authService) touchLastLogin(ctx context.Context, user *domain.User) error {
	now := s.Now()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		s.LogError(ctx, err, "Failed to update last login", slog.String("user_id", user.UserID))
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

func (s *authService) newAuthResult(ctx context.Context, user *domain.User) (*dto.AuthResult, error) {
	token, expiresAt, err := s.sessions.Issue(ctx, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}
	return &dto.AuthResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.ToUserResponse(user),
	}, nil
}

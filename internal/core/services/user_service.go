package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/chat_backend/internal/apperrors"
	"github.com/SscSPs/chat_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/chat_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/chat_backend/internal/core/ports/services"
	"github.com/SscSPs/chat_backend/internal/dto"
)

const (
	msgNameBlank  = "Name cannot be empty"
	msgEmailBlank = "Email cannot be empty"
	msgEmailTaken = "Email already in use"
)

type userService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
}

// NewUserService creates the profile and statistics service.
func NewUserService(userRepo portsrepo.UserRepositoryFacade) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID in service: %w", err)
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of req. A request that changes nothing is not persisted.
func (s *userService) UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*domain.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	changed := false
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.NewValidationError(msgNameBlank)
		}
		if name != user.Name {
			user.Name = name
			changed = true
		}
	}
	if req.Email != nil {
		email := domain.NormalizeEmail(*req.Email)
		if email == "" {
			return nil, apperrors.NewValidationError(msgEmailBlank)
		}
		if email != user.Email {
			existing, err := s.userRepo.FindUserByEmail(ctx, email)
			switch {
			case err == nil && existing.UserID != user.UserID:
				return nil, apperrors.NewValidationError(msgEmailTaken)
			case err != nil && !errors.Is(err, apperrors.ErrNotFound):
				s.LogError(ctx, err, "Failed to check email availability")
				return nil, fmt.Errorf("failed to check email availability: %w", err)
			}
			user.Email = email
			changed = true
		}
	}

	if !changed {
		return user, nil
	}

	user.UpdatedAt = s.Now()
	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.NewValidationError(msgEmailTaken)
		}
		s.LogError(ctx, err, "Failed to update profile", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	s.LogInfo(ctx, "Profile updated", slog.String("user_id", userID))
	return user, nil
}

func (s *userService) GetUserStats(ctx context.Context) (domain.UserStats, error) {
	stats, err := s.userRepo.CountUsers(ctx, s.Now())
	if err != nil {
		s.LogError(ctx, err, "Failed to count users")
		return domain.UserStats{}, fmt.Errorf("failed to count users: %w", err)
	}
	return stats, nil
}

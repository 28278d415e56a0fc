package services

import (
	"context"

	"github.com/SscSPs/chat_backend/internal/core/domain"
	"github.com/SscSPs/chat_backend/internal/dto"
)

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}

// UserWriterSvc defines write operations for user data
type UserWriterSvc interface {
	// UpdateProfile changes the caller's name and/or email.
	UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*domain.User, error)
}

// UserStatsSvc defines admin statistics over users.
type UserStatsSvc interface {
	GetUserStats(ctx context.Context) (domain.UserStats, error)
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
	UserStatsSvc
}

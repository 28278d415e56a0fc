package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/chat_backend/internal/core/domain"
)

// UserReader defines read operations for user data.
// Lookups that find nothing return apperrors.ErrNotFound.
type UserReader interface {
	// FindUserByID retrieves a specific user by their ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail retrieves a user by an already normalized email.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindUserByExternalID retrieves a user by their external identity provider subject.
	FindUserByExternalID(ctx context.Context, externalID string) (*domain.User, error)

	// FindUserByResetDigest retrieves the user whose reset token digest equals digest
	// and whose reset token expires strictly after now.
	FindUserByResetDigest(ctx context.Context, digest string, now time.Time) (*domain.User, error)
}

// UserWriter defines write operations for user data.
// Unique violations (email, external id) return apperrors.ErrDuplicate.
type UserWriter interface {
	// SaveUser persists a new user.
	SaveUser(ctx context.Context, user domain.User) error

	// UpdateUser persists all mutable fields of an existing user.
	UpdateUser(ctx context.Context, user domain.User) error
}

// UserStatsReader aggregates user counts.
type UserStatsReader interface {
	CountUsers(ctx context.Context, now time.Time) (domain.UserStats, error)
}

// UserRepositoryFacade combines all user-related repository interfaces
// This is a facade for clients that need access to all operations
type UserRepositoryFacade interface {
	UserReader
	UserWriter
	UserStatsReader
}

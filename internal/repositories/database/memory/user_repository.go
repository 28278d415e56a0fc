// Package memory is an in-process credential store used for local development and tests.
// It enforces the same uniqueness rules as the Postgres schema.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SscSPs/chat_backend/internal/apperrors"
	"github.com/SscSPs/chat_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/chat_backend/internal/core/ports/repositories"
)

// UserRepository keeps users in maps guarded by a RWMutex. Callers always receive copies.
type UserRepository struct {
	mu         sync.RWMutex
	byID       map[string]domain.User
	byEmail    map[string]string
	byExternal map[string]string
}

// NewUserRepository creates an empty store.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:       make(map[string]domain.User),
		byEmail:    make(map[string]string),
		byExternal: make(map[string]string),
	}
}

var _ portsrepo.UserRepositoryFacade = (*UserRepository)(nil)

// NewRepositoryProvider wires a fresh memory store.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{UserRepo: NewUserRepository()}
}

func cloneUser(u domain.User) *domain.User {
	c := u
	if u.PasswordHash != nil {
		v := *u.PasswordHash
		c.PasswordHash = &v
	}
	if u.ExternalID != nil {
		v := *u.ExternalID
		c.ExternalID = &v
	}
	if u.ResetTokenDigest != nil {
		v := *u.ResetTokenDigest
		c.ResetTokenDigest = &v
	}
	if u.ResetTokenExpiresAt != nil {
		v := *u.ResetTokenExpiresAt
		c.ResetTokenExpiresAt = &v
	}
	if u.LastLoginAt != nil {
		v := *u.LastLoginAt
		c.LastLoginAt = &v
	}
	return &c
}

func (r *UserRepository) FindUserByID(_ context.Context, userID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	r.mu.RUnlock()
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return r.FindUserByID(ctx, id)
}

func (r *UserRepository) FindUserByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	r.mu.RLock()
	id, ok := r.byExternal[externalID]
	r.mu.RUnlock()
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return r.FindUserByID(ctx, id)
}

func (r *UserRepository) FindUserByResetDigest(_ context.Context, digest string, now time.Time) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byID {
		if u.ResetTokenDigest != nil && *u.ResetTokenDigest == digest && u.HasPendingReset(now) {
			return cloneUser(u), nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *UserRepository) SaveUser(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[user.UserID]; exists {
		return fmt.Errorf("user id %s: %w", user.UserID, apperrors.ErrDuplicate)
	}
	if err := r.checkUnique(user); err != nil {
		return err
	}
	r.put(user)
	return nil
}

func (r *UserRepository) UpdateUser(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, exists := r.byID[user.UserID]
	if !exists {
		return fmt.Errorf("user not found: %w", apperrors.ErrNotFound)
	}
	if err := r.checkUnique(user); err != nil {
		return err
	}
	delete(r.byEmail, domain.NormalizeEmail(old.Email))
	if old.ExternalID != nil {
		delete(r.byExternal, *old.ExternalID)
	}
	r.put(user)
	return nil
}

func (r *UserRepository) CountUsers(_ context.Context, now time.Time) (domain.UserStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var stats domain.UserStats
	for _, u := range r.byID {
		stats.TotalUsers++
		if u.IsActive {
			stats.ActiveUsers++
		}
		if u.ExternalID != nil {
			stats.ExternalUsers++
		}
		if u.HasPendingReset(now) {
			stats.PendingResets++
		}
	}
	return stats, nil
}

// checkUnique must be called with the write lock held.
func (r *UserRepository) checkUnique(user domain.User) error {
	if id, ok := r.byEmail[domain.NormalizeEmail(user.Email)]; ok && id != user.UserID {
		return fmt.Errorf("email: %w", apperrors.ErrDuplicate)
	}
	if user.ExternalID != nil {
		if id, ok := r.byExternal[*user.ExternalID]; ok && id != user.UserID {
			return fmt.Errorf("external id: %w", apperrors.ErrDuplicate)
		}
	}
	return nil
}

func (r *UserRepository) put(user domain.User) {
	stored := cloneUser(user)
	r.byID[user.UserID] = *stored
	r.byEmail[domain.NormalizeEmail(user.Email)] = user.UserID
	if user.ExternalID != nil {
		r.byExternal[*user.ExternalID] = user.UserID
	}
}

package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/chat_backend/internal/apperrors"
	"github.com/SscSPs/chat_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/chat_backend/internal/core/ports/repositories"
	"github.com/SscSPs/chat_backend/internal/models"
	"github.com/SscSPs/chat_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `user_id, email, name, password_hash, external_id, avatar_url, is_active, is_admin,
	reset_token_digest, reset_token_expires_at, last_login_at, created_at, updated_at`

type PgxUserRepository struct {
	BaseRepository
}

func newPgxUserRepository(db *pgxpool.Pool) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{BaseRepository{Pool: db}}
}

// Ensure PgxUserRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

func scanUser(row pgx.Row) (*domain.User, error) {
	var m models.User
	err := row.Scan(
		&m.UserID,
		&m.Email,
		&m.Name,
		&m.PasswordHash,
		&m.ExternalID,
		&m.AvatarURL,
		&m.IsActive,
		&m.IsAdmin,
		&m.ResetTokenDigest,
		&m.ResetTokenExpiresAt,
		&m.LastLoginAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d := mapping.ToDomainUser(m)
	return &d, nil
}

func (r *PgxUserRepository) findOne(ctx context.Context, what, where string, args ...any) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where + `;`
	user, err := scanUser(r.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by %s: %w", what, err)
	}
	return user, nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return r.findOne(ctx, "ID", `user_id = $1`, userID)
}

func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email", `lower(email) = lower($1)`, email)
}

func (r *PgxUserRepository) FindUserByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	return r.findOne(ctx, "external ID", `external_id = $1`, externalID)
}

func (r *PgxUserRepository) FindUserByResetDigest(ctx context.Context, digest string, now time.Time) (*domain.User, error) {
	return r.findOne(ctx, "reset digest", `reset_token_digest = $1 AND reset_token_expires_at > $2`, digest, now)
}

func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	m := mapping.ToModelUser(user)
	query := `
        INSERT INTO users (` + userColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
    `
	_, err := r.Pool.Exec(ctx, query,
		m.UserID,
		m.Email,
		m.Name,
		m.PasswordHash,
		m.ExternalID,
		m.AvatarURL,
		m.IsActive,
		m.IsAdmin,
		m.ResetTokenDigest,
		m.ResetTokenExpiresAt,
		m.LastLoginAt,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", mapError(err))
	}
	return nil
}

func (r *PgxUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	m := mapping.ToModelUser(user)
	query := `
        UPDATE users
        SET email = $1, name = $2, password_hash = $3, external_id = $4, avatar_url = $5,
            is_active = $6, is_admin = $7, reset_token_digest = $8, reset_token_expires_at = $9,
            last_login_at = $10, updated_at = $11
        WHERE user_id = $12;
    `
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.Email,
		m.Name,
		m.PasswordHash,
		m.ExternalID,
		m.AvatarURL,
		m.IsActive,
		m.IsAdmin,
		m.ResetTokenDigest,
		m.ResetTokenExpiresAt,
		m.LastLoginAt,
		m.UpdatedAt,
		m.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to execute update user query: %w", mapError(err))
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxUserRepository) CountUsers(ctx context.Context, now time.Time) (domain.UserStats, error) {
	query := `
        SELECT count(*),
               count(*) FILTER (WHERE is_active),
               count(*) FILTER (WHERE external_id IS NOT NULL),
               count(*) FILTER (WHERE reset_token_expires_at > $1)
        FROM users;
    `
	var stats domain.UserStats
	err := r.Pool.QueryRow(ctx, query, now).Scan(
		&stats.TotalUsers,
		&stats.ActiveUsers,
		&stats.ExternalUsers,
		&stats.PendingResets,
	)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("failed to count users: %w", err)
	}
	return stats, nil
}

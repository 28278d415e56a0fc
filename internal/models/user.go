package models

import (
	"database/sql"
	"time"
)

// User is the row shape of the users table.
type User struct {
	UserID       string         `db:"user_id"`
	Email        string         `db:"email"`
	Name         string         `db:"name"`
	PasswordHash sql.NullString `db:"password_hash"`
	ExternalID   sql.NullString `db:"external_id"`
	AvatarURL    string         `db:"avatar_url"`
	IsActive     bool           `db:"is_active"`
	IsAdmin      bool           `db:"is_admin"`

	// Password reset fields, null together
	ResetTokenDigest    sql.NullString `db:"reset_token_digest"`
	ResetTokenExpiresAt sql.NullTime   `db:"reset_token_expires_at"`

	LastLoginAt sql.NullTime `db:"last_login_at"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
}

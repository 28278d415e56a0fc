package domain

import (
	"net/url"
	"strings"
	"time"
)

// MinPasswordLength is the shortest password accepted on registration and reset.
const MinPasswordLength = 6

// User represents a user of the application in the domain.
type User struct {
	UserID       string
	Email        string // always stored lowercase, see NormalizeEmail
	Name         string
	PasswordHash *string // nil for accounts created through an external identity provider
	ExternalID   *string // provider subject, set by OAuth login
	AvatarURL    string
	IsActive     bool
	IsAdmin      bool

	// Outstanding password reset. Both set or both nil.
	ResetTokenDigest    *string
	ResetTokenExpiresAt *time.Time

	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NormalizeEmail trims and lowercases an email so that lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasPassword reports whether the user can log in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// SetResetToken records the digest of a newly issued reset token and its expiry.
func (u *User) SetResetToken(digest string, expiresAt time.Time) {
	u.ResetTokenDigest = &digest
	u.ResetTokenExpiresAt = &expiresAt
}

// ClearResetToken drops any outstanding reset token.
func (u *User) ClearResetToken() {
	u.ResetTokenDigest = nil
	u.ResetTokenExpiresAt = nil
}

// HasPendingReset reports whether a reset token is outstanding and not yet expired at now.
func (u *User) HasPendingReset(now time.Time) bool {
	return u.ResetTokenDigest != nil && u.ResetTokenExpiresAt != nil && u.ResetTokenExpiresAt.After(now)
}

// ExternalProfile is the identity asserted by an external identity provider after login.
type ExternalProfile struct {
	Provider      AuthProvider
	Subject       string
	Email         string
	Name          string
	Picture       string
	EmailVerified bool
}

// AuthProvider names an external identity provider.
type AuthProvider string

const (
	ProviderGoogle AuthProvider = "google"
)

// GoogleUserInfo is the payload of Google's userinfo endpoint.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// UserStats holds aggregate user counts for the admin dashboard.
type UserStats struct {
	TotalUsers    int64
	ActiveUsers   int64
	ExternalUsers int64
	PendingResets int64
}

// DefaultAvatarURL returns the generated placeholder avatar for a display name.
func DefaultAvatarURL(name string) string {
	return "https://ui-avatars.com/api/?background=random&name=" + url.QueryEscape(strings.TrimSpace(name))
}

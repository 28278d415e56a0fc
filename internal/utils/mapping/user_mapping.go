package mapping

import (
	"database/sql"
	"time"

	"github.com/SscSPs/chat_backend/internal/core/domain"
	"github.com/SscSPs/chat_backend/internal/models"
)

// ToModelUser converts a domain User to a model User
func ToModelUser(d domain.User) models.User {
	return models.User{
		UserID:              d.UserID,
		Email:               d.Email,
		Name:                d.Name,
		PasswordHash:        nullString(d.PasswordHash),
		ExternalID:          nullString(d.ExternalID),
		AvatarURL:           d.AvatarURL,
		IsActive:            d.IsActive,
		IsAdmin:             d.IsAdmin,
		ResetTokenDigest:    nullString(d.ResetTokenDigest),
		ResetTokenExpiresAt: nullTime(d.ResetTokenExpiresAt),
		LastLoginAt:         nullTime(d.LastLoginAt),
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
}

// ToDomainUser converts a model User to a domain User
func ToDomainUser(m models.User) domain.User {
	return domain.User{
		UserID:              m.UserID,
		Email:               m.Email,
		Name:                m.Name,
		PasswordHash:        stringPtr(m.PasswordHash),
		ExternalID:          stringPtr(m.ExternalID),
		AvatarURL:           m.AvatarURL,
		IsActive:            m.IsActive,
		IsAdmin:             m.IsAdmin,
		ResetTokenDigest:    stringPtr(m.ResetTokenDigest),
		ResetTokenExpiresAt: timePtr(m.ResetTokenExpiresAt),
		LastLoginAt:         timePtr(m.LastLoginAt),
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

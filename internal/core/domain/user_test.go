package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/chat_backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{name: "already normalized", email: "a@x.com", want: "a@x.com"},
		{name: "mixed case", email: "Alice@Example.COM", want: "alice@example.com"},
		{name: "surrounding whitespace", email: "  bob@x.com\t", want: "bob@x.com"},
		{name: "empty", email: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.NormalizeEmail(tt.email))
		})
	}
}

func TestUser_ResetTokenFieldsMoveTogether(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	u := &domain.User{}

	assert.False(t, u.HasPendingReset(now))

	u.SetResetToken("digest", now.Add(time.Hour))
	assert.NotNil(t, u.ResetTokenDigest)
	assert.NotNil(t, u.ResetTokenExpiresAt)
	assert.True(t, u.HasPendingReset(now))
	assert.False(t, u.HasPendingReset(now.Add(time.Hour)), "expiry is exclusive")

	u.ClearResetToken()
	assert.Nil(t, u.ResetTokenDigest)
	assert.Nil(t, u.ResetTokenExpiresAt)
	assert.False(t, u.HasPendingReset(now))
}

func TestUser_HasPassword(t *testing.T) {
	empty := ""
	hash := "$2a$10$abc"

	assert.False(t, (&domain.User{}).HasPassword())
	assert.False(t, (&domain.User{PasswordHash: &empty}).HasPassword())
	assert.True(t, (&domain.User{PasswordHash: &hash}).HasPassword())
}

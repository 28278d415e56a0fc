package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/chat_backend/internal/apperrors"
	"github.com/SscSPs/chat_backend/internal/core/services"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func TestSessionService_RoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	svc := services.NewSessionService(testSecret, "chat-backend", 7*24*time.Hour, services.WithSessionClock(clock.Now))
	ctx := context.Background()

	token, expiresAt, err := svc.Issue(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(7*24*time.Hour), expiresAt)

	userID, err := svc.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestSessionService_RejectsTamperedSignature(t *testing.T) {
	svc := services.NewSessionService(testSecret, "chat-backend", time.Hour)
	ctx := context.Background()

	token, _, err := svc.Issue(ctx, "user-1")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = svc.Verify(ctx, tampered)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredential)
}

func TestSessionService_RejectsExpired(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	svc := services.NewSessionService(testSecret, "chat-backend", time.Hour, services.WithSessionClock(clock.Now))
	ctx := context.Background()

	token, _, err := svc.Issue(ctx, "user-1")
	require.NoError(t, err)

	clock.Advance(time.Hour + time.Second)
	_, err = svc.Verify(ctx, token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredential)
}

func TestSessionService_RejectsForeignCredentials(t *testing.T) {
	svc := services.NewSessionService(testSecret, "chat-backend", time.Hour)
	other := services.NewSessionService("another-secret", "chat-backend", time.Hour)
	otherIssuer := services.NewSessionService(testSecret, "someone-else", time.Hour)
	ctx := context.Background()

	foreign, _, err := other.Issue(ctx, "user-1")
	require.NoError(t, err)
	wrongIssuer, _, err := otherIssuer.Issue(ctx, "user-1")
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "chat-backend",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"wrong key":    foreign,
		"wrong issuer": wrongIssuer,
		"alg none":     unsigned,
		"garbage":      "not-a-token",
		"empty":        "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Verify(ctx, token)
			assert.ErrorIs(t, err, apperrors.ErrInvalidCredential)
		})
	}
}

func TestSessionService_IssueRequiresUserID(t *testing.T) {
	svc := services.NewSessionService(testSecret, "chat-backend", time.Hour)
	_, _, err := svc.Issue(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

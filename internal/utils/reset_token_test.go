package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateResetToken_Shape(t *testing.T) {
	token := GenerateResetToken()

	assert.Len(t, token, ResetTokenLength)
	assert.True(t, IsWellFormedResetToken(token), "generated token should pass the client-side shape check")
}

func TestGenerateResetToken_NoCollisions(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		token := GenerateResetToken()
		_, dup := seen[token]
		require.False(t, dup, "duplicate token after %d draws", i)
		seen[token] = struct{}{}
	}
}

func TestDigestResetToken_Deterministic(t *testing.T) {
	token := GenerateResetToken()

	first := DigestResetToken(token)
	second := DigestResetToken(token)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
	assert.NotEqual(t, token, first, "digest must not be the token itself")
	assert.NotEqual(t, first, DigestResetToken(GenerateResetToken()))
}

func TestDigestResetToken_KnownVector(t *testing.T) {
	// sha256("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", DigestResetToken("abc"))
}

func TestIsWellFormedResetToken(t *testing.T) {
	valid := strings.Repeat("a1", 32)

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{name: "valid", token: valid, want: true},
		{name: "empty", token: "", want: false},
		{name: "too short", token: valid[:63], want: false},
		{name: "too long", token: valid + "0", want: false},
		{name: "uppercase hex", token: strings.ToUpper(valid), want: false},
		{name: "non hex", token: strings.Repeat("zz", 32), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWellFormedResetToken(tt.token))
		})
	}
}

func TestGenerateSecureRandomString(t *testing.T) {
	s, err := GenerateSecureRandomString(16)
	require.NoError(t, err)
	assert.Len(t, s, 32)

	_, err = GenerateSecureRandomString(0)
	assert.Error(t, err)
}

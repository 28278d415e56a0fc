package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

const (
	// ResetTokenBytes is the entropy of a password reset token (256 bits).
	ResetTokenBytes = 32
	// ResetTokenLength is the length of the hex-encoded reset token handed to users.
	ResetTokenLength = ResetTokenBytes * 2
)

// GenerateResetToken returns a fresh 64-character lowercase hex reset token.
func GenerateResetToken() string {
	b := make([]byte, ResetTokenBytes)
	// crypto/rand.Read never returns an error and always fills b.
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// DigestResetToken returns the SHA-256 hex digest under which a reset token is stored.
func DigestResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// IsWellFormedResetToken reports whether token has the length and charset of a generated token.
func IsWellFormedResetToken(token string) bool {
	if len(token) != ResetTokenLength {
		return false
	}
	for i := 0; i < len(token); i++ {
		c := token[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

package dto

import "time"

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest is the body of POST /auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

// ResetPasswordRequest is the body of POST /auth/reset-password.
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthResult is what a successful authentication produces inside the server.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      UserResponse
}

// AuthResponse is returned by register, login and reset-password.
type AuthResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

// MessageResponse is the body of generic successes and of every error.
type MessageResponse struct {
	Message string `json:"message"`
}

// MeResponse is returned by GET /auth/me.
type MeResponse struct {
	User UserResponse `json:"user"`
}

// ToAuthResponse converts an AuthResult to the wire format.
func ToAuthResponse(message string, res *AuthResult) AuthResponse {
	return AuthResponse{
		Message: message,
		Token:   res.Token,
		User:    res.User,
	}
}

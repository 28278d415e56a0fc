package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
// Returned by the stores on unique constraint violations.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict is returned by the services when an email (or external identity) is already taken.
var ErrConflict = errors.New("user already exists with this email")

// ErrInvalidCredentials covers unknown email, inactive account and wrong password alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidOrExpiredToken covers unknown, expired and already used reset tokens alike.
var ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token")

// ErrInvalidCredential is returned by the session issuer for any credential that fails verification.
var ErrInvalidCredential = errors.New("invalid session credential")

// ErrUnauthenticated covers invalid credential, missing user and inactive user alike.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrForbidden indicates that the authenticated user may not perform the action.
var ErrForbidden = errors.New("forbidden")

// ErrNotificationDispatch indicates that an email could not be delivered.
var ErrNotificationDispatch = errors.New("notification dispatch failed")

// AppError carries an HTTP status and a client-safe message alongside the underlying error.
type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewValidationError creates a 400 AppError that matches ErrValidation.
func NewValidationError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, ErrValidation)
}

// NewBadRequestError creates a 400 AppError.
func NewBadRequestError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, nil)
}

// NewInternalServerError creates a 500 AppError.
func NewInternalServerError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, message, nil)
}

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/chat_backend/internal/apperrors"
	"github.com/SscSPs/chat_backend/internal/dto"
	"github.com/SscSPs/chat_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

const (
	msgInvalidBody        = "Invalid request body"
	msgConflict           = "User already exists with this email"
	msgInvalidCredentials = "Invalid credentials"
	msgInvalidResetToken  = "Invalid or expired reset token"
	msgUnauthenticated    = "Token is not valid"
	msgForbidden          = "Access denied"
	msgUserNotFound       = "User not found"
	msgResetEmailFailed   = "Error sending password reset email. Please try again."
)

// respondError writes the {"message": ...} body for err. Errors that are not part of the
// client-facing taxonomy are logged and answered with fallback and a 500.
func respondError(c *gin.Context, err error, fallback string) {
	status, message := classifyError(err)
	if status == http.StatusInternalServerError && message == "" {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error(fallback, slog.String("error", err.Error()))
		message = fallback
	}
	c.JSON(status, dto.MessageResponse{Message: message})
}

func classifyError(err error) (int, string) {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr.Code, appErr.Message
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusBadRequest, msgConflict
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, msgInvalidCredentials
	case errors.Is(err, apperrors.ErrInvalidOrExpiredToken):
		return http.StatusBadRequest, msgInvalidResetToken
	case errors.Is(err, apperrors.ErrUnauthenticated), errors.Is(err, apperrors.ErrInvalidCredential):
		return http.StatusUnauthorized, msgUnauthenticated
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, msgForbidden
	case errors.Is(err, apperrors.ErrNotificationDispatch):
		return http.StatusInternalServerError, msgResetEmailFailed
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, msgUserNotFound
	default:
		return http.StatusInternalServerError, ""
	}
}

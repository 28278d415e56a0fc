package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	portssvc "github.com/SscSPs/chat_backend/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

const (
	msgNoToken      = "No token, authorization denied"
	msgInvalidToken = "Token is not valid"
	msgAdminOnly    = "Admin access required"
)

// AuthMiddleware creates a Gin middleware handler that resolves the Bearer session
// credential to an active user. Every failure is a uniform 401.
func AuthMiddleware(authSvc portssvc.SessionAuthSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msgNoToken})
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			logger.Warn("Authorization header format invalid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msgInvalidToken})
			return
		}

		user, err := authSvc.VerifySession(c.Request.Context(), parts[1])
		if err != nil {
			logger.Warn("Session verification failed", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msgInvalidToken})
			return
		}

		// Store the user ID in the context (using standard context)
		ctxWithUser := context.WithValue(c.Request.Context(), userIDKey, user.UserID)

		// Add user ID to the logger
		enrichedLogger := logger.With(slog.String("user_id", user.UserID))
		c.Request = c.Request.WithContext(WithLogger(ctxWithUser, enrichedLogger))

		c.Set(string(userIDKey), user.UserID)
		c.Set(string(userKey), user)
		c.Set(string(loggerKey), enrichedLogger)

		c.Next()
	}
}

// RequireAdmin rejects authenticated users without the admin flag. It must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUserFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msgInvalidToken})
			return
		}
		if !user.IsAdmin {
			GetLoggerFromCtx(c.Request.Context()).Warn("Non-admin user attempted admin route")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": msgAdminOnly})
			return
		}
		c.Next()
	}
}

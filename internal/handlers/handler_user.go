package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/chat_backend/internal/core/ports/services"
	"github.com/SscSPs/chat_backend/internal/dto"
	"github.com/SscSPs/chat_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

const msgProfileUpdated = "Profile updated successfully"

// userHandler handles HTTP requests related to the caller's own profile.
type userHandler struct {
	userService portssvc.UserSvcFacade
}

// newUserHandler creates a new userHandler.
func newUserHandler(us portssvc.UserSvcFacade) *userHandler {
	return &userHandler{
		userService: us,
	}
}

// registerUserRoutes registers all user-related routes.
func registerUserRoutes(rg *gin.RouterGroup, userService portssvc.UserSvcFacade) {
	h := newUserHandler(userService)

	user := rg.Group("/user")
	{
		user.GET("/profile", h.getProfile)
		user.PUT("/profile", h.updateProfile)
	}
}

// getProfile godoc
// @Summary Get own profile
// @Description Retrieves the profile of the logged-in user
// @Tags users
// @Produce  json
// @Success 200 {object} dto.MeResponse
// @Failure 401 {object} dto.MessageResponse "Unauthorized"
// @Failure 404 {object} dto.MessageResponse "User not found"
// @Failure 500 {object} dto.MessageResponse "Failed to retrieve user"
// @Security BearerAuth
// @Router /api/v1/user/profile [get]
func (h *userHandler) getProfile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, dto.MessageResponse{Message: msgUnauthenticated})
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve user")
		return
	}

	c.JSON(http.StatusOK, dto.MeResponse{User: dto.ToUserResponse(user)})
}

// updateProfile godoc
// @Summary Update own profile
// @Description Updates the name and/or email of the logged-in user
// @Tags users
// @Accept  json
// @Produce  json
// @Param   profile body dto.UpdateProfileRequest true "Fields to update"
// @Success 200 {object} dto.ProfileResponse
// @Failure 400 {object} dto.MessageResponse "Invalid input or email already in use"
// @Failure 401 {object} dto.MessageResponse "Unauthorized"
// @Failure 404 {object} dto.MessageResponse "User not found"
// @Failure 500 {object} dto.MessageResponse "Failed to update profile"
// @Security BearerAuth
// @Router /api/v1/user/profile [put]
func (h *userHandler) updateProfile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateProfile", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: msgInvalidBody})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, dto.MessageResponse{Message: msgUnauthenticated})
		return
	}

	logger.Info("Received request to update profile")

	updated, err := h.userService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "Failed to update profile")
		return
	}

	logger.Info("Profile updated successfully")
	c.JSON(http.StatusOK, dto.ProfileResponse{Message: msgProfileUpdated, User: dto.ToUserResponse(updated)})
}

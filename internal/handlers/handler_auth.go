package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/chat_backend/internal/core/ports/services"
	"github.com/SscSPs/chat_backend/internal/dto"
	"github.com/SscSPs/chat_backend/internal/middleware"
	"github.com/SscSPs/chat_backend/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	msgRegistered    = "User registered successfully"
	msgLoggedIn      = "Login successful"
	msgPasswordReset = "Password reset successful"
	msgLoggedOut     = "Logout successful"
)

// AuthHandler handles authentication related requests.
type AuthHandler struct {
	authService portssvc.AuthSvcFacade
	posthog     *utils.PosthogClientWrapper
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService portssvc.AuthSvcFacade, posthog *utils.PosthogClientWrapper) *AuthHandler {
	return &AuthHandler{authService: authService, posthog: posthog}
}

// registerAuthRoutes sets up the authentication routes under group. limit is applied to the
// credential-guessing endpoints.
func registerAuthRoutes(group *gin.RouterGroup, h *AuthHandler, g *GoogleOAuthHandler, authMW, limit gin.HandlerFunc) {
	group.POST("/register", limit, h.Register)
	group.POST("/login", limit, h.Login)
	group.POST("/forgot-password", limit, h.ForgotPassword)
	group.POST("/reset-password", limit, h.ResetPassword)
	group.GET("/me", authMW, h.Me)
	group.POST("/logout", authMW, h.Logout)

	group.GET("/google", g.LoginGoogle)
	group.GET("/google/callback", g.CallbackGoogle)
}

// Register godoc
// @Summary Register new user
// @Description Creates a password account and returns a session token.
// @Tags auth
// @Accept json
// @Produce json
// @Param register body dto.RegisterRequest true "User Registration Info"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} dto.MessageResponse "Missing fields, short password or email taken"
// @Failure 500 {object} dto.MessageResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: msgInvalidBody})
		return
	}

	res, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Server error during registration")
		return
	}

	middleware.PosthogEvent(c, h.posthog, res.User.ID, "user_registered", map[string]any{"provider": res.User.AuthProvider})
	c.JSON(http.StatusCreated, dto.ToAuthResponse(msgRegistered, res))
}

// Login godoc
// @Summary User login
// @Description Authenticates a user with email and password and returns a session token.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.MessageResponse
// @Failure 401 {object} dto.MessageResponse
// @Failure 500 {object} dto.MessageResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: msgInvalidBody})
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Server error during login")
		return
	}

	middleware.PosthogEvent(c, h.posthog, res.User.ID, "user_logged_in", map[string]any{"provider": res.User.AuthProvider})
	c.JSON(http.StatusOK, dto.ToAuthResponse(msgLoggedIn, res))
}

// ForgotPassword godoc
// @Summary Request a password reset email
// @Description Always answers with the same message whether or not the email is registered.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequest true "Account email"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.MessageResponse
// @Failure 500 {object} dto.MessageResponse "Email could not be sent"
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: msgInvalidBody})
		return
	}

	message, err := h.authService.ForgotPassword(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Server error during password reset request")
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: message})
}

// ResetPassword godoc
// @Summary Reset password with an emailed token
// @Description Consumes a reset token, sets the new password and returns a session token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ResetPasswordRequest true "Reset token and new password"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.MessageResponse "Invalid or expired reset token"
// @Failure 500 {object} dto.MessageResponse
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: msgInvalidBody})
		return
	}

	res, err := h.authService.ResetPassword(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Server error during password reset")
		return
	}

	middleware.PosthogEvent(c, h.posthog, res.User.ID, "password_reset", nil)
	c.JSON(http.StatusOK, dto.ToAuthResponse(msgPasswordReset, res))
}

// Me godoc
// @Summary Current user
// @Description Returns the user behind the session token.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.MeResponse
// @Failure 401 {object} dto.MessageResponse
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.MessageResponse{Message: msgUnauthenticated})
		return
	}
	c.JSON(http.StatusOK, dto.MeResponse{User: dto.ToUserResponse(user)})
}

// Logout godoc
// @Summary Log out
// @Description Records the logout. The client discards its token.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} dto.MessageResponse
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	if err := h.authService.Logout(c.Request.Context(), userID); err != nil {
		respondError(c, err, "Server error during logout")
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: msgLoggedOut})
}

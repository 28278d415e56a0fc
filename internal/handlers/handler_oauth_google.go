package handlers

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"net/url"

	portssvc "github.com/SscSPs/chat_backend/internal/core/ports/services"
	"github.com/SscSPs/chat_backend/internal/middleware"
	"github.com/SscSPs/chat_backend/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 600 // seconds
)

// GoogleOAuthHandler drives the browser redirect flow of Google login.
// Every outcome of the callback is a redirect back to the web client.
type GoogleOAuthHandler struct {
	googleOAuthService portssvc.GoogleOAuthHandlerSvcFacade
	authService        portssvc.ExternalAuthSvc
	posthog            *utils.PosthogClientWrapper
	clientURL          string
	secureCookies      bool
}

// NewGoogleOAuthHandler creates a new instance of GoogleOAuthHandler.
func NewGoogleOAuthHandler(
	googleOAuthService portssvc.GoogleOAuthHandlerSvcFacade,
	authService portssvc.ExternalAuthSvc,
	posthog *utils.PosthogClientWrapper,
	clientURL string,
	secureCookies bool,
) *GoogleOAuthHandler {
	return &GoogleOAuthHandler{
		googleOAuthService: googleOAuthService,
		authService:        authService,
		posthog:            posthog,
		clientURL:          clientURL,
		secureCookies:      secureCookies,
	}
}

func (h *GoogleOAuthHandler) errorURL() string {
	return h.clientURL + "/auth/error"
}

func (h *GoogleOAuthHandler) successURL(token string) string {
	return h.clientURL + "/auth/success?token=" + url.QueryEscape(token)
}

// LoginGoogle godoc
// @Summary Start Google login
// @Description Redirects to Google's account chooser. Redirects to the client error page when Google login is not configured.
// @Tags oauth
// @Success 302
// @Router /auth/google [get]
func (h *GoogleOAuthHandler) LoginGoogle(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	if !h.googleOAuthService.IsConfigured() {
		logger.Warn("Google login requested but Google OAuth is not configured")
		c.Redirect(http.StatusFound, h.errorURL())
		return
	}

	state, err := h.googleOAuthService.GenerateStateString(ctx)
	if err != nil {
		logger.Error("Failed to generate OAuth state", slog.String("error", err.Error()))
		c.Redirect(http.StatusFound, h.errorURL())
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, oauthStateMaxAge, "/", "", h.secureCookies, true)
	c.Redirect(http.StatusFound, h.googleOAuthService.GetGoogleLoginURL(ctx, state))
}

// CallbackGoogle godoc
// @Summary Google login callback
// @Description Completes Google login and redirects to the client with a session token.
// @Tags oauth
// @Param state query string true "OAuth state"
// @Param code query string true "Authorization code"
// @Success 302
// @Router /auth/google/callback [get]
func (h *GoogleOAuthHandler) CallbackGoogle(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	expected, cookieErr := c.Cookie(oauthStateCookie)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, "", -1, "/", "", h.secureCookies, true)

	if providerErr := c.Query("error"); providerErr != "" {
		logger.Warn("Google returned an error to the callback", slog.String("error", providerErr))
		c.Redirect(http.StatusFound, h.errorURL())
		return
	}

	state := c.Query("state")
	if cookieErr != nil || state == "" || subtle.ConstantTimeCompare([]byte(state), []byte(expected)) != 1 {
		logger.Warn("OAuth state mismatch")
		c.Redirect(http.StatusFound, h.errorURL())
		return
	}

	code := c.Query("code")
	if code == "" {
		logger.Warn("Authorization code missing in Google callback")
		c.Redirect(http.StatusFound, h.errorURL())
		return
	}

	profile, err := h.googleOAuthService.FetchProfile(ctx, code)
	if err != nil {
		logger.Error("Failed to fetch Google profile", slog.String("error", err.Error()))
		c.Redirect(http.StatusFound, h.errorURL())
		return
	}

	res, err := h.authService.CompleteExternalLogin(ctx, *profile)
	if err != nil {
		logger.Warn("External login rejected", slog.String("error", err.Error()))
		c.Redirect(http.StatusFound, h.errorURL())
		return
	}

	middleware.PosthogEvent(c, h.posthog, res.User.ID, "user_logged_in", map[string]any{"provider": res.User.AuthProvider})
	c.Redirect(http.StatusFound, h.successURL(res.Token))
}

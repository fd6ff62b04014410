package handlers

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/SscSPs/explit/internal/apperrors"
	portssvc "github.com/SscSPs/explit/internal/core/ports/services"
	"github.com/SscSPs/explit/internal/middleware"
	"github.com/SscSPs/explit/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	oauthStateCookie = "explit_oauth_state"
	oauthStateMaxAge = 10 * 60
)

// googleOAuthHandler signs users in with their Google account.
type googleOAuthHandler struct {
	googleOAuthService portssvc.GoogleOAuthHandlerSvcFacade
	userService        portssvc.UserSvcFacade
	sessionService     portssvc.SessionSvc
	cookie             middleware.SessionCookie
	posthog            *utils.PosthogClientWrapper
}

// registerGoogleOAuthRoutes registers the Google sign-in routes when Google OAuth is configured.
func registerGoogleOAuthRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer, cookie middleware.SessionCookie, posthog *utils.PosthogClientWrapper) {
	if services.GoogleOAuth == nil || !services.GoogleOAuth.Enabled() {
		return
	}
	h := &googleOAuthHandler{
		googleOAuthService: services.GoogleOAuth,
		userService:        services.User,
		sessionService:     services.Session,
		cookie:             cookie,
		posthog:            posthog,
	}
	googleRoutes := rg.Group("/auth/google")
	{
		googleRoutes.GET("/login", h.login)
		googleRoutes.GET("/callback", h.callback)
	}
}

// login redirects to Google's consent page, remembering a random state value in a cookie.
func (h *googleOAuthHandler) login(c *gin.Context) {
	ctx := c.Request.Context()
	state, err := h.googleOAuthService.GenerateStateString(ctx)
	if err != nil {
		renderError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, oauthStateMaxAge, "/auth/google", "", h.cookie.Secure, true)
	c.Redirect(http.StatusTemporaryRedirect, h.googleOAuthService.GetGoogleLoginURL(ctx, state))
}

func (h *googleOAuthHandler) callback(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	expected, err := c.Cookie(oauthStateCookie)
	c.SetCookie(oauthStateCookie, "", -1, "/auth/google", "", h.cookie.Secure, true)
	if err != nil || expected == "" || c.Query("state") != expected {
		logger.Warn("Google callback with invalid state")
		h.backToLogin(c, "Google sign-in expired, please try again")
		return
	}
	if errMsg := c.Query("error"); errMsg != "" {
		logger.Info("Google sign-in cancelled", slog.String("reason", errMsg))
		h.backToLogin(c, "Google sign-in was cancelled")
		return
	}

	token, err := h.googleOAuthService.ExchangeCodeForToken(ctx, c.Query("code"))
	if err != nil {
		logger.Error("Failed to exchange Google authorization code", slog.String("error", err.Error()))
		h.backToLogin(c, "Could not reach Google, please try again")
		return
	}
	info, err := h.googleOAuthService.GetUserInfo(ctx, token)
	if err != nil {
		logger.Error("Failed to read Google profile", slog.String("error", err.Error()))
		h.backToLogin(c, "Could not read your Google profile")
		return
	}

	user, err := h.userService.AuthenticateGoogleUser(ctx, *info)
	if err != nil {
		if statusFromError(err) == http.StatusUnauthorized {
			h.backToLogin(c, apperrors.Message(err, "Google sign-in failed"))
			return
		}
		renderError(c, err)
		return
	}

	if !issueSessionCookie(c, h.sessionService, h.cookie, user) {
		return
	}
	logger.Info("User logged in with Google", slog.String("user_id", user.UserID))
	trackUser(h.posthog, user, "user_logged_in", map[string]any{"provider": "google"})
	c.Redirect(http.StatusSeeOther, "/expenses")
}

func (h *googleOAuthHandler) backToLogin(c *gin.Context, message string) {
	c.Redirect(http.StatusSeeOther, "/login?error="+url.QueryEscape(message))
}

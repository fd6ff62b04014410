package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/explit/internal/core/domain"
	portssvc "github.com/SscSPs/explit/internal/core/ports/services"
	"github.com/SscSPs/explit/internal/dto"
	"github.com/SscSPs/explit/internal/middleware"
	"github.com/SscSPs/explit/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

// authHandler serves the login, sign-in and logout pages.
type authHandler struct {
	userService    portssvc.UserSvcFacade
	sessionService portssvc.SessionSvc
	cookie         middleware.SessionCookie
	posthog        *utils.PosthogClientWrapper
	googleEnabled  bool
}

func newAuthHandler(services *portssvc.ServiceContainer, cookie middleware.SessionCookie, posthog *utils.PosthogClientWrapper) *authHandler {
	return &authHandler{
		userService:    services.User,
		sessionService: services.Session,
		cookie:         cookie,
		posthog:        posthog,
		googleEnabled:  services.GoogleOAuth != nil && services.GoogleOAuth.Enabled(),
	}
}

// registerAuthRoutes sets up the public authentication pages. Login attempts are
// rate limited per client IP when loginLimiter is set.
func registerAuthRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer, cookie middleware.SessionCookie, loginLimiter *limiter.Limiter, posthog *utils.PosthogClientWrapper) {
	h := newAuthHandler(services, cookie, posthog)

	guest := middleware.RedirectIfAuthenticated("/expenses")
	loginPost := []gin.HandlerFunc{}
	if loginLimiter != nil {
		loginPost = append(loginPost, middleware.RateLimit(loginLimiter))
	}
	loginPost = append(loginPost, h.login)

	rg.GET("/login", guest, h.showLogin)
	rg.POST("/login", loginPost...)
	rg.GET("/signin", guest, h.showSignin)
	rg.POST("/signin", h.signin)
	rg.POST("/logout", h.logout)
}

func (h *authHandler) showLogin(c *gin.Context) {
	render(c, http.StatusOK, "login", gin.H{
		"Title":         "Login",
		"RedirectTo":    c.Query("redirectTo"),
		"FormError":     c.Query("error"),
		"GoogleEnabled": h.googleEnabled,
	})
}

func (h *authHandler) login(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.LoginRequest
	data := gin.H{"Title": "Login", "GoogleEnabled": h.googleEnabled}
	if err := c.ShouldBind(&req); err != nil {
		data["Fields"] = map[string]string{"username": req.Username}
		data["RedirectTo"] = req.RedirectTo
		renderForm(c, "login", bindingFieldErrors(err), data)
		return
	}
	data["Fields"] = map[string]string{"username": req.Username}
	data["RedirectTo"] = req.RedirectTo

	if err := req.Validate(); err != nil {
		renderForm(c, "login", err, data)
		return
	}

	user, err := h.userService.AuthenticateUser(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		renderForm(c, "login", err, data)
		return
	}

	if !issueSessionCookie(c, h.sessionService, h.cookie, user) {
		return
	}
	logger.Info("User logged in", slog.String("user_id", user.UserID))
	trackUser(h.posthog, user, "user_logged_in", map[string]any{"provider": "password"})
	c.Redirect(http.StatusSeeOther, dto.SafeRedirect(req.RedirectTo, "/expenses"))
}

func (h *authHandler) showSignin(c *gin.Context) {
	render(c, http.StatusOK, "signin", gin.H{
		"Title":      "Sign in",
		"RedirectTo": c.Query("redirectTo"),
	})
}

func (h *authHandler) signin(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RegisterRequest
	bindErr := c.ShouldBind(&req)
	data := gin.H{
		"Title":      "Sign in",
		"RedirectTo": req.RedirectTo,
		"Fields": map[string]string{
			"username":  req.Username,
			"icon":      req.Icon,
			"teamId":    req.TeamID,
			"avgIncome": req.AvgIncome,
		},
	}
	if bindErr != nil {
		renderForm(c, "signin", bindingFieldErrors(bindErr), data)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		renderForm(c, "signin", err, data)
		return
	}

	if !issueSessionCookie(c, h.sessionService, h.cookie, user) {
		return
	}
	logger.Info("User signed in", slog.String("user_id", user.UserID), slog.String("team_id", user.TeamID))
	trackUser(h.posthog, user, "user_registered", nil)
	c.Redirect(http.StatusSeeOther, dto.SafeRedirect(req.RedirectTo, "/expenses"))
}

func (h *authHandler) logout(c *gin.Context) {
	h.cookie.Clear(c)
	c.Redirect(http.StatusSeeOther, "/login")
}

// issueSessionCookie starts a session for user. It renders the error page and
// returns false when no token could be issued.
func issueSessionCookie(c *gin.Context, sessions portssvc.SessionSvc, cookie middleware.SessionCookie, user *domain.User) bool {
	token, _, err := sessions.IssueSession(c.Request.Context(), user)
	if err != nil {
		renderError(c, err)
		return false
	}
	cookie.Set(c, token)
	return true
}

// trackUser sends an analytics event for a user that has no session yet.
func trackUser(posthog *utils.PosthogClientWrapper, user *domain.User, event string, props map[string]any) {
	if !posthog.IsInitialized() {
		return
	}
	if props == nil {
		props = map[string]any{}
	}
	props["team_id"] = user.TeamID
	posthog.Enqueue(user.UserID, event, props)
}

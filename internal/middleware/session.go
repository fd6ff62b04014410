package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/SscSPs/explit/internal/apperrors"
	portssvc "github.com/SscSPs/explit/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// SessionCookie describes the cookie holding the session token.
type SessionCookie struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// Set writes token into the session cookie.
func (sc SessionCookie) Set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, token, int(sc.MaxAge.Seconds()), "/", "", sc.Secure, true)
}

// Clear expires the session cookie.
func (sc SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, "", -1, "/", "", sc.Secure, true)
}

// SessionMiddleware resolves the user behind the session cookie, if any, and stores it
// in the request context together with a logger carrying user_id and team_id.
// Requests without a valid session pass through anonymously; stale cookies are cleared.
func SessionMiddleware(cookie SessionCookie, sessions portssvc.SessionSvc, users portssvc.UserReaderSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		logger := GetLoggerFromCtx(ctx)

		token, err := c.Cookie(cookie.Name)
		if err != nil || token == "" {
			c.Next()
			return
		}

		userID, err := sessions.ParseSession(ctx, token)
		if err != nil {
			logger.Warn("Invalid session cookie", slog.String("error", err.Error()))
			cookie.Clear(c)
			c.Next()
			return
		}

		user, err := users.GetUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				logger.Warn("Session refers to a deleted user", slog.String("user_id", userID))
				cookie.Clear(c)
			} else {
				logger.Error("Failed to load session user", slog.String("user_id", userID), slog.String("error", err.Error()))
			}
			c.Next()
			return
		}

		enrichedLogger := logger.With(slog.String("user_id", user.UserID), slog.String("team_id", user.TeamID))
		ctx = WithLogger(WithUser(ctx, user), enrichedLogger)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireUser redirects anonymous page requests to the login page, remembering
// where they were headed.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUserIDFromContext(c); ok {
			c.Next()
			return
		}
		GetLoggerFromCtx(c.Request.Context()).Info("Anonymous request to protected page, redirecting to login")
		target := "/login?redirectTo=" + url.QueryEscape(c.Request.URL.RequestURI())
		c.Redirect(http.StatusSeeOther, target)
		c.Abort()
	}
}

// RequireAPIUser rejects anonymous API requests with 401.
func RequireAPIUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUserIDFromContext(c); ok {
			c.Next()
			return
		}
		GetLoggerFromCtx(c.Request.Context()).Warn("Anonymous API request rejected")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
}

// RedirectIfAuthenticated sends users that already have a session away from the
// login and sign-in pages.
func RedirectIfAuthenticated(target string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUserIDFromContext(c); ok && c.Request.Method == http.MethodGet {
			c.Redirect(http.StatusSeeOther, target)
			c.Abort()
			return
		}
		c.Next()
	}
}

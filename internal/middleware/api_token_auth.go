package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/explit/internal/apperrors"
	portssvc "github.com/SscSPs/explit/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// APIKeyHeader carries an API token on /api/v1 requests.
const APIKeyHeader = "x-api-key"

// authMethodKey is the gin context key telling how the request was authenticated.
const authMethodKey = "authMethod"

const (
	AuthMethodSession  = "session"
	AuthMethodAPIToken = "api_token"
)

// APITokenAuth authenticates requests carrying an x-api-key header. It runs after
// SessionMiddleware and before RequireAPIUser; a valid key replaces any session user.
// A key that does not authenticate is rejected outright instead of falling back to the cookie.
func APITokenAuth(tokens portssvc.APITokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(APIKeyHeader)
		if key == "" || tokens == nil {
			if _, ok := GetUserIDFromContext(c); ok {
				c.Set(authMethodKey, AuthMethodSession)
			}
			c.Next()
			return
		}

		ctx := c.Request.Context()
		logger := GetLoggerFromCtx(ctx)

		user, err := tokens.ValidateToken(ctx, key)
		if err != nil {
			if errors.Is(err, apperrors.ErrUnauthorized) {
				logger.Warn("API key rejected", slog.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": apperrors.Message(err, "Unauthorized")})
				return
			}
			logger.Error("Failed to validate API key", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": http.StatusText(http.StatusInternalServerError)})
			return
		}

		enrichedLogger := logger.With(
			slog.String("user_id", user.UserID),
			slog.String("team_id", user.TeamID),
			slog.String("auth_method", AuthMethodAPIToken))
		c.Request = c.Request.WithContext(WithLogger(WithUser(ctx, user), enrichedLogger))
		c.Set(authMethodKey, AuthMethodAPIToken)
		c.Next()
	}
}

// GetAuthMethod returns AuthMethodSession or AuthMethodAPIToken for authenticated API requests.
func GetAuthMethod(c *gin.Context) string {
	return c.GetString(authMethodKey)
}

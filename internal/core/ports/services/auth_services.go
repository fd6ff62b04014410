package services

import (
	"context"
	"time"

	"github.com/SscSPs/explit/internal/core/domain"
	"golang.org/x/oauth2"
)

// SessionSvc issues and verifies the signed session tokens kept in the session cookie.
type SessionSvc interface {
	// IssueSession creates a session token for the user and returns its expiry.
	IssueSession(ctx context.Context, user *domain.User) (string, time.Time, error)

	// ParseSession validates a session token and returns the user id it carries.
	ParseSession(ctx context.Context, token string) (string, error)
}

// GoogleOAuthHandlerSvcFacade defines the interface for Google OAuth operations.
type GoogleOAuthHandlerSvcFacade interface {
	// Enabled reports whether Google sign-in is configured.
	Enabled() bool
	// GenerateStateString creates a secure random string to be used as a CSRF token for OAuth flow.
	GenerateStateString(ctx context.Context) (string, error)
	// GetGoogleLoginURL returns the URL to redirect the user to for Google login.
	GetGoogleLoginURL(ctx context.Context, state string) string
	// ExchangeCodeForToken exchanges an OAuth authorization code for a token.
	ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error)
	// GetUserInfo uses the access token to get user information from Google.
	GetUserInfo(ctx context.Context, token *oauth2.Token) (*domain.GoogleUserInfo, error)
}

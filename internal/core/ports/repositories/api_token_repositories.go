package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/explit/internal/core/domain"
)

// APITokenReader defines read operations for API tokens
type APITokenReader interface {
	// FindAPITokenByID retrieves a token, or apperrors.ErrNotFound.
	FindAPITokenByID(ctx context.Context, tokenID string) (*domain.APIToken, error)

	// ListAPITokensByUser retrieves the tokens of a user, newest first.
	ListAPITokensByUser(ctx context.Context, userID string) ([]domain.APIToken, error)
}

// APITokenWriter defines write operations for API tokens
type APITokenWriter interface {
	SaveAPIToken(ctx context.Context, token domain.APIToken) error

	// TouchAPIToken records that the token authenticated a request at usedAt.
	TouchAPIToken(ctx context.Context, tokenID string, usedAt time.Time) error

	// DeleteAPIToken removes a token, or returns apperrors.ErrNotFound.
	DeleteAPIToken(ctx context.Context, tokenID string) error

	// DeleteAPITokensByUser removes every token of a user and returns how many were removed.
	DeleteAPITokensByUser(ctx context.Context, userID string) (int64, error)
}

// APITokenRepositoryFacade combines all API token repository interfaces
type APITokenRepositoryFacade interface {
	APITokenReader
	APITokenWriter
}

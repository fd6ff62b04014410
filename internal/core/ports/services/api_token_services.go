package services

import (
	"context"

	"github.com/SscSPs/explit/internal/core/domain"
	"github.com/SscSPs/explit/internal/dto"
)

// APITokenValidator resolves the user behind an x-api-key header.
type APITokenValidator interface {
	// ValidateToken returns the owner of a live token and records its use.
	// Unknown, expired or tampered tokens yield apperrors.ErrUnauthorized.
	ValidateToken(ctx context.Context, token string) (*domain.User, error)
}

// APITokenSvc defines operations for API token management
type APITokenSvc interface {
	APITokenValidator

	// CreateToken issues a token for userID. The plaintext token is returned only here.
	CreateToken(ctx context.Context, userID string, req dto.CreateAPITokenRequest) (string, *domain.APIToken, error)

	// ListTokens returns the tokens of userID, newest first.
	ListTokens(ctx context.Context, userID string) ([]domain.APIToken, error)

	// RevokeToken deletes one of the caller's tokens.
	RevokeToken(ctx context.Context, userID, tokenID string) error

	// RevokeAllTokens deletes every token of userID and returns how many there were.
	RevokeAllTokens(ctx context.Context, userID string) (int64, error)
}

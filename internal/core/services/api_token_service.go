package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/explit/internal/apperrors"
	"github.com/SscSPs/explit/internal/core/domain"
	portsrepo "github.com/SscSPs/explit/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/explit/internal/core/ports/services"
	"github.com/SscSPs/explit/internal/dto"
	"github.com/SscSPs/explit/internal/utils"
	"github.com/google/uuid"
)

const (
	// MsgAPITokenNotFound is returned when revoking a token that is missing or belongs to someone else.
	MsgAPITokenNotFound = "API token not found"
	// MsgAPITokenInvalid is returned for any x-api-key that does not authenticate.
	MsgAPITokenInvalid = "Invalid API key"
)

const (
	apiTokenPrefix      = "xpl_"
	apiTokenSecretBytes = 32
)

// apiTokenService issues tokens of the form "xpl_<token id>.<secret>". The id locates
// the row and the secret is checked against its bcrypt hash.
type apiTokenService struct {
	BaseService
	tokenRepo portsrepo.APITokenRepositoryFacade
	userRepo  portsrepo.UserReader
	now       func() time.Time
}

// APITokenServiceOption configures an apiTokenService.
type APITokenServiceOption func(*apiTokenService)

// WithAPITokenClock overrides the clock used for expiry and last use.
func WithAPITokenClock(now func() time.Time) APITokenServiceOption {
	return func(s *apiTokenService) {
		s.now = now
	}
}

// NewAPITokenService creates a new API token service.
func NewAPITokenService(tokenRepo portsrepo.APITokenRepositoryFacade, userRepo portsrepo.UserReader, options ...APITokenServiceOption) portssvc.APITokenSvc {
	svc := &apiTokenService{
		BaseService: BaseService{UserReader: userRepo},
		tokenRepo:   tokenRepo,
		userRepo:    userRepo,
		now:         time.Now,
	}
	for _, opt := range options {
		opt(svc)
	}
	return svc
}

var _ portssvc.APITokenSvc = (*apiTokenService)(nil)

func (s *apiTokenService) CreateToken(ctx context.Context, userID string, req dto.CreateAPITokenRequest) (string, *domain.APIToken, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return "", nil, err
	}
	if _, err := s.CurrentUser(ctx, userID); err != nil {
		return "", nil, err
	}

	secret, err := utils.GenerateSecureRandomString(apiTokenSecretBytes)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate API token secret")
		return "", nil, err
	}
	hash, err := utils.HashPassword(secret)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash API token secret")
		return "", nil, fmt.Errorf("failed to hash API token: %w", err)
	}

	now := s.now().UTC()
	token := domain.APIToken{
		TokenID:   uuid.NewString(),
		UserID:    userID,
		Name:      req.Name,
		TokenHash: hash,
		ExpiresAt: req.ExpiresAt(now),
		CreatedAt: now,
	}
	if err := s.tokenRepo.SaveAPIToken(ctx, token); err != nil {
		s.LogError(ctx, err, "Failed to save API token", slog.String("user_id", userID))
		return "", nil, err
	}

	s.LogInfo(ctx, "API token created", slog.String("token_id", token.TokenID), slog.String("name", token.Name))
	return apiTokenPrefix + token.TokenID + "." + secret, &token, nil
}

func (s *apiTokenService) ListTokens(ctx context.Context, userID string) ([]domain.APIToken, error) {
	tokens, err := s.tokenRepo.ListAPITokensByUser(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list API tokens", slog.String("user_id", userID))
		return nil, err
	}
	return tokens, nil
}

func (s *apiTokenService) RevokeToken(ctx context.Context, userID, tokenID string) error {
	token, err := s.tokenRepo.FindAPITokenByID(ctx, tokenID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NewNotFoundError(MsgAPITokenNotFound)
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to find API token", slog.String("token_id", tokenID))
		return err
	}
	if !token.IsOwnedBy(userID) {
		s.LogWarn(ctx, "Attempt to revoke someone else's API token", slog.String("token_id", tokenID))
		return apperrors.NewNotFoundError(MsgAPITokenNotFound)
	}

	if err := s.tokenRepo.DeleteAPIToken(ctx, tokenID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError(MsgAPITokenNotFound)
		}
		s.LogError(ctx, err, "Failed to revoke API token", slog.String("token_id", tokenID))
		return err
	}
	s.LogInfo(ctx, "API token revoked", slog.String("token_id", tokenID))
	return nil
}

func (s *apiTokenService) RevokeAllTokens(ctx context.Context, userID string) (int64, error) {
	removed, err := s.tokenRepo.DeleteAPITokensByUser(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to revoke API tokens", slog.String("user_id", userID))
		return 0, err
	}
	s.LogInfo(ctx, "API tokens revoked", slog.Int64("count", removed))
	return removed, nil
}

func (s *apiTokenService) ValidateToken(ctx context.Context, raw string) (*domain.User, error) {
	invalid := apperrors.NewUnauthorizedError(MsgAPITokenInvalid)

	tokenID, secret, ok := splitAPIToken(raw)
	if !ok {
		return nil, invalid
	}
	token, err := s.tokenRepo.FindAPITokenByID(ctx, tokenID)
	if errors.Is(err, apperrors.ErrNotFound) {
		s.LogWarn(ctx, "Unknown API token", slog.String("token_id", tokenID))
		return nil, invalid
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to load API token", slog.String("token_id", tokenID))
		return nil, err
	}
	if !utils.CheckPasswordHash(secret, token.TokenHash) {
		s.LogWarn(ctx, "API token secret mismatch", slog.String("token_id", tokenID))
		return nil, invalid
	}

	now := s.now().UTC()
	if token.IsExpired(now) {
		s.LogInfo(ctx, "Expired API token used, removing it", slog.String("token_id", tokenID))
		if err := s.tokenRepo.DeleteAPIToken(ctx, tokenID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to remove expired API token", slog.String("token_id", tokenID))
		}
		return nil, invalid
	}

	user, err := s.userRepo.FindUserByID(ctx, token.UserID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to load API token owner", slog.String("user_id", token.UserID))
		return nil, err
	}

	if err := s.tokenRepo.TouchAPIToken(ctx, tokenID, now); err != nil {
		s.LogWarn(ctx, "Failed to record API token use",
			slog.String("token_id", tokenID),
			slog.String("error", err.Error()))
	}
	return user, nil
}

// splitAPIToken extracts the id and secret of "xpl_<id>.<secret>".
func splitAPIToken(raw string) (tokenID, secret string, ok bool) {
	rest, found := strings.CutPrefix(strings.TrimSpace(raw), apiTokenPrefix)
	if !found {
		return "", "", false
	}
	tokenID, secret, found = strings.Cut(rest, ".")
	if !found || secret == "" {
		return "", "", false
	}
	if _, err := uuid.Parse(tokenID); err != nil {
		return "", "", false
	}
	return tokenID, secret, true
}

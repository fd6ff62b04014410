package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/explit/internal/apperrors"
	"github.com/SscSPs/explit/internal/core/domain"
	portsrepo "github.com/SscSPs/explit/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAPITokenRepository struct {
	BaseRepository
}

// newPgxAPITokenRepository creates a new repository for API tokens.
func newPgxAPITokenRepository(pool *pgxpool.Pool) portsrepo.APITokenRepositoryFacade {
	return &PgxAPITokenRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.APITokenRepositoryFacade = (*PgxAPITokenRepository)(nil)

const apiTokenSelectQuery = `
SELECT
	api_token_id, user_id, name, token_hash, last_used_at, expires_at, created_at
FROM api_tokens
`

func (r *PgxAPITokenRepository) getAPITokens(ctx context.Context, filterQuery string, args ...any) ([]domain.APIToken, error) {
	rows, err := r.Pool.Query(ctx, apiTokenSelectQuery+filterQuery, args...)
	if err != nil {
		return nil, internalError("failed to query API tokens", err)
	}
	defer rows.Close()
	tokens, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.APIToken])
	if err != nil {
		return nil, internalError("failed to collect API token rows", err)
	}
	return tokens, nil
}

func (r *PgxAPITokenRepository) FindAPITokenByID(ctx context.Context, tokenID string) (*domain.APIToken, error) {
	tokens, err := r.getAPITokens(ctx, `WHERE api_token_id = $1;`, tokenID)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &tokens[0], nil
}

func (r *PgxAPITokenRepository) ListAPITokensByUser(ctx context.Context, userID string) ([]domain.APIToken, error) {
	return r.getAPITokens(ctx, `WHERE user_id = $1 ORDER BY created_at DESC, api_token_id;`, userID)
}

func (r *PgxAPITokenRepository) SaveAPIToken(ctx context.Context, token domain.APIToken) error {
	query := `
		INSERT INTO api_tokens (api_token_id, user_id, name, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.Pool.Exec(ctx, query,
		token.TokenID,
		token.UserID,
		token.Name,
		token.TokenHash,
		token.ExpiresAt,
		token.CreatedAt,
	)
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgForeignKeyViolation {
			return apperrors.ErrNotFound
		}
		return internalError("failed to save API token "+token.TokenID, err)
	}
	return nil
}

func (r *PgxAPITokenRepository) TouchAPIToken(ctx context.Context, tokenID string, usedAt time.Time) error {
	cmdTag, err := r.Pool.Exec(ctx, `UPDATE api_tokens SET last_used_at = $1 WHERE api_token_id = $2;`, usedAt, tokenID)
	if err != nil {
		return internalError("failed to update API token "+tokenID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxAPITokenRepository) DeleteAPIToken(ctx context.Context, tokenID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM api_tokens WHERE api_token_id = $1;`, tokenID)
	if err != nil {
		return internalError("failed to delete API token "+tokenID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxAPITokenRepository) DeleteAPITokensByUser(ctx context.Context, userID string) (int64, error) {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM api_tokens WHERE user_id = $1;`, userID)
	if err != nil {
		return 0, internalError("failed to delete API tokens of user "+userID, err)
	}
	return cmdTag.RowsAffected(), nil
}

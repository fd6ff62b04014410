package pgsql

import (
	"context"

	"github.com/SscSPs/explit/internal/apperrors"
	"github.com/SscSPs/explit/internal/core/domain"
	portsrepo "github.com/SscSPs/explit/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxTeamRepository struct {
	BaseRepository
}

// newPgxTeamRepository creates a new repository for team data.
func newPgxTeamRepository(pool *pgxpool.Pool) portsrepo.TeamRepositoryFacade {
	return &PgxTeamRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxTeamRepository implements portsrepo.TeamRepositoryFacade
var _ portsrepo.TeamRepositoryFacade = (*PgxTeamRepository)(nil)

const fullTeamSelectQuery = `
SELECT
	t.team_id, t.icon, t.description, t.balance_by_income, t.created_at, t.last_updated_at
FROM teams t
WHERE t.team_id = $1
`

// findTeam loads a team and its members through q.
func findTeam(ctx context.Context, q querier, teamID string) (*domain.Team, error) {
	rows, err := q.Query(ctx, fullTeamSelectQuery, teamID)
	if err != nil {
		return nil, internalError("failed to query team "+teamID, err)
	}
	teams, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Team])
	if err != nil {
		return nil, internalError("failed to collect team rows", err)
	}
	if len(teams) == 0 {
		return nil, apperrors.ErrNotFound
	}

	team := teams[0]
	team.Members, err = findTeamMembers(ctx, q, teamID)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func findTeamMembers(ctx context.Context, q querier, teamID string) ([]domain.User, error) {
	return getUsers(ctx, q, `WHERE u.team_id = $1 ORDER BY u.username;`, teamID)
}

func (r *PgxTeamRepository) FindTeamByID(ctx context.Context, teamID string) (*domain.Team, error) {
	return findTeam(ctx, r.Pool, teamID)
}

func (r *PgxTeamRepository) FindTeamMembers(ctx context.Context, teamID string) ([]domain.User, error) {
	return findTeamMembers(ctx, r.Pool, teamID)
}

func (r *PgxTeamRepository) UpdateTeam(ctx context.Context, team domain.Team) error {
	query := `
		UPDATE teams
		SET icon = $1, description = $2, balance_by_income = $3, last_updated_at = $4
		WHERE team_id = $5;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		team.Icon,
		team.Description,
		team.BalanceByIncome,
		team.LastUpdatedAt,
		team.TeamID,
	)
	if err != nil {
		return internalError("failed to update team "+team.TeamID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/explit/internal/apperrors"
	"github.com/SscSPs/explit/internal/core/domain"
	portsrepo "github.com/SscSPs/explit/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxUserRepository struct {
	BaseRepository
}

func newPgxUserRepository(pool *pgxpool.Pool) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxUserRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

const fullUserSelectQuery = `
SELECT
	u.user_id, u.username, u.icon, u.avg_income, u.team_id, u.password_hash,
	u.theme, u.google_id, u.created_at, u.last_updated_at
FROM users u
`

func getUsers(ctx context.Context, q querier, filterQuery string, args ...any) ([]domain.User, error) {
	rows, err := q.Query(ctx, fullUserSelectQuery+filterQuery, args...)
	if err != nil {
		return nil, internalError("failed to query users", err)
	}
	defer rows.Close()
	users, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.User])
	if err != nil {
		return nil, internalError("failed to collect user rows", err)
	}
	return users, nil
}

func (r *PgxUserRepository) findOne(ctx context.Context, filterQuery string, arg string) (*domain.User, error) {
	users, err := getUsers(ctx, r.Pool, filterQuery, arg)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &users[0], nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return r.findOne(ctx, `WHERE u.user_id = $1`, userID)
}

func (r *PgxUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, `WHERE u.username = $1`, username)
}

func (r *PgxUserRepository) FindUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	return r.findOne(ctx, `WHERE u.google_id = $1`, googleID)
}

// ensureTeam creates team unless a team with the same id already exists.
func ensureTeam(ctx context.Context, tx pgx.Tx, team domain.Team) error {
	query := `
		INSERT INTO teams (team_id, icon, description, balance_by_income, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (team_id) DO NOTHING;
	`
	_, err := tx.Exec(ctx, query,
		team.TeamID,
		team.Icon,
		team.Description,
		team.BalanceByIncome,
		team.CreatedAt,
		team.LastUpdatedAt,
	)
	if err != nil {
		return internalError("failed to create team "+team.TeamID, err)
	}
	return nil
}

// deleteEmptyTeamQuery removes a team once it has neither members nor expenses.
// Expenses recorded by members who later moved away keep the team alive.
const deleteEmptyTeamQuery = `
	DELETE FROM teams t
	WHERE t.team_id = $1
		AND NOT EXISTS (SELECT 1 FROM users u WHERE u.team_id = t.team_id)
		AND NOT EXISTS (SELECT 1 FROM expenses e WHERE e.team_id = t.team_id);
`

// deleteTeamIfEmpty removes teamID when no user and no expense belongs to it any more.
func deleteTeamIfEmpty(ctx context.Context, tx pgx.Tx, teamID string) error {
	if _, err := tx.Exec(ctx, deleteEmptyTeamQuery, teamID); err != nil {
		return internalError("failed to delete empty team "+teamID, err)
	}
	return nil
}

func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User, team *domain.Team) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if team != nil {
		if err := ensureTeam(ctx, tx, *team); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO users (
			user_id, username, icon, avg_income, team_id, password_hash,
			theme, google_id, created_at, last_updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err = tx.Exec(ctx, query,
		user.UserID,
		user.Username,
		user.Icon,
		user.AvgIncome,
		user.TeamID,
		user.PasswordHash,
		user.Theme,
		user.GoogleID,
		user.CreatedAt,
		user.LastUpdatedAt,
	)
	if err != nil {
		switch code, _ := pgErrorCode(err); code {
		case pgUniqueViolation:
			return apperrors.NewConflictError(fmt.Sprintf("User with username %s already exists", user.Username))
		case pgForeignKeyViolation:
			return apperrors.NewValidationFailedError("team " + user.TeamID + " does not exist")
		}
		return internalError("failed to save user "+user.Username, err)
	}

	return r.Commit(ctx, tx)
}

func (r *PgxUserRepository) UpdateUser(ctx context.Context, user domain.User, team *domain.Team) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var previousTeamID string
	err = tx.QueryRow(ctx, `SELECT team_id FROM users WHERE user_id = $1 FOR UPDATE;`, user.UserID).Scan(&previousTeamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return internalError("failed to lock user "+user.UserID, err)
	}

	if team != nil {
		if err := ensureTeam(ctx, tx, *team); err != nil {
			return err
		}
	}

	query := `
		UPDATE users
		SET icon = $1, avg_income = $2, team_id = $3, password_hash = $4, last_updated_at = $5
		WHERE user_id = $6;
	`
	_, err = tx.Exec(ctx, query,
		user.Icon,
		user.AvgIncome,
		user.TeamID,
		user.PasswordHash,
		user.LastUpdatedAt,
		user.UserID,
	)
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgForeignKeyViolation {
			return apperrors.NewValidationFailedError("team " + user.TeamID + " does not exist")
		}
		return internalError("failed to update user "+user.UserID, err)
	}

	if previousTeamID != user.TeamID {
		if err := deleteTeamIfEmpty(ctx, tx, previousTeamID); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}

func (r *PgxUserRepository) UpdateTheme(ctx context.Context, userID string, theme domain.Theme) error {
	cmdTag, err := r.Pool.Exec(ctx, `UPDATE users SET theme = $1, last_updated_at = NOW() WHERE user_id = $2;`, theme, userID)
	if err != nil {
		return internalError("failed to update theme of user "+userID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxUserRepository) LinkGoogleAccount(ctx context.Context, userID, googleID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `UPDATE users SET google_id = $1, last_updated_at = NOW() WHERE user_id = $2;`, googleID, userID)
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgUniqueViolation {
			return apperrors.NewConflictError("Google account already linked to another user")
		}
		return internalError("failed to link google account of user "+userID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteUser removes the user, their expenses and the other half of any transfer
// they took part in, then their team if it has no members and no expenses left.
func (r *PgxUserRepository) DeleteUser(ctx context.Context, userID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var teamID string
	err = tx.QueryRow(ctx, `SELECT team_id FROM users WHERE user_id = $1 FOR UPDATE;`, userID).Scan(&teamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return internalError("failed to lock user "+userID, err)
	}

	deleteExpenses := `
		DELETE FROM expenses
		WHERE user_id = $1
			OR transfer_id IN (
				SELECT transfer_id FROM expenses WHERE user_id = $1 AND transfer_id IS NOT NULL
			);
	`
	if _, err := tx.Exec(ctx, deleteExpenses, userID); err != nil {
		return internalError("failed to delete expenses of user "+userID, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM users WHERE user_id = $1;`, userID); err != nil {
		return internalError("failed to delete user "+userID, err)
	}
	if err := deleteTeamIfEmpty(ctx, tx, teamID); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

package pgsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/explit/internal/apperrors"
	"github.com/SscSPs/explit/internal/core/domain"
	portsrepo "github.com/SscSPs/explit/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxExpenseRepository struct {
	BaseRepository
}

// newPgxExpenseRepository creates a new repository for expense data.
func newPgxExpenseRepository(pool *pgxpool.Pool) portsrepo.ExpenseRepositoryFacade {
	return &PgxExpenseRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxExpenseRepository implements portsrepo.ExpenseRepositoryFacade
var _ portsrepo.ExpenseRepositoryFacade = (*PgxExpenseRepository)(nil)

const fullExpenseSelectQuery = `
SELECT
	e.expense_id, e.amount, e.description, e.user_id, e.team_id, e.transfer_id, e.created_at,
	u.username, u.icon AS user_icon
FROM expenses e
JOIN users u ON u.user_id = e.user_id
`

const expenseOrder = ` ORDER BY e.created_at DESC, e.expense_id DESC`

func (r *PgxExpenseRepository) getExpenses(ctx context.Context, filterQuery string, args ...any) ([]domain.Expense, error) {
	rows, err := r.Pool.Query(ctx, fullExpenseSelectQuery+filterQuery, args...)
	if err != nil {
		return nil, internalError("failed to query expenses", err)
	}
	defer rows.Close()
	expenses, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Expense])
	if err != nil {
		return nil, internalError("failed to collect expense rows", err)
	}
	return expenses, nil
}

// escapeLike escapes the LIKE wildcards in s so it matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// expenseFilterClause builds the WHERE clause selecting a team's expenses matching filter.
func expenseFilterClause(teamID string, filter domain.ExpenseFilter) (string, []any) {
	conditions := []string{"e.team_id = $1"}
	args := []any{teamID}

	if filter.Description != "" {
		args = append(args, "%"+escapeLike(filter.Description)+"%")
		conditions = append(conditions, fmt.Sprintf("e.description ILIKE $%d", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("e.user_id = $%d", len(args)))
	}
	if filter.Window.From != nil {
		args = append(args, *filter.Window.From)
		conditions = append(conditions, fmt.Sprintf("e.created_at >= $%d", len(args)))
	}
	if filter.Window.To != nil {
		args = append(args, *filter.Window.To)
		conditions = append(conditions, fmt.Sprintf("e.created_at < $%d", len(args)))
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func (r *PgxExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	expenses, err := r.getExpenses(ctx, `WHERE e.expense_id = $1`, expenseID)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &expenses[0], nil
}

func (r *PgxExpenseRepository) ListExpenses(ctx context.Context, teamID string, filter domain.ExpenseFilter, limit, offset int) ([]domain.Expense, error) {
	where, args := expenseFilterClause(teamID, filter)
	args = append(args, limit, offset)
	query := fmt.Sprintf("%s%s LIMIT $%d OFFSET $%d", where, expenseOrder, len(args)-1, len(args))
	return r.getExpenses(ctx, query, args...)
}

func (r *PgxExpenseRepository) CountExpenses(ctx context.Context, teamID string, filter domain.ExpenseFilter) (int, error) {
	where, args := expenseFilterClause(teamID, filter)
	var count int
	if err := r.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM expenses e "+where, args...).Scan(&count); err != nil {
		return 0, internalError("failed to count expenses of team "+teamID, err)
	}
	return count, nil
}

func (r *PgxExpenseRepository) ListRecentExpenses(ctx context.Context, teamID string, limit, offset int) ([]domain.Expense, error) {
	return r.getExpenses(ctx, `WHERE e.team_id = $1`+expenseOrder+` LIMIT $2 OFFSET $3`, teamID, limit, offset)
}

// SaveExpenses inserts all expenses in one transaction; the halves of a transfer
// are stored together or not at all.
func (r *PgxExpenseRepository) SaveExpenses(ctx context.Context, expenses ...domain.Expense) error {
	if len(expenses) == 0 {
		return nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		INSERT INTO expenses (expense_id, amount, description, user_id, team_id, transfer_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	batch := &pgx.Batch{}
	for _, e := range expenses {
		batch.Queue(query, e.ExpenseID, e.Amount, e.Description, e.UserID, e.TeamID, e.TransferID, e.CreatedAt)
	}
	results := tx.SendBatch(ctx, batch)
	for _, e := range expenses {
		if _, err := results.Exec(); err != nil {
			results.Close()
			switch code, _ := pgErrorCode(err); code {
			case pgForeignKeyViolation:
				return apperrors.NewValidationFailedError("user or team of expense does not exist")
			case pgUniqueViolation:
				return apperrors.NewConflictError("expense " + e.ExpenseID + " already exists")
			}
			return internalError("failed to save expense "+e.ExpenseID, err)
		}
	}
	if err := results.Close(); err != nil {
		return internalError("failed to save expenses", err)
	}

	return r.Commit(ctx, tx)
}

// deleteExpensesQuery removes the rows matched by %s and returns them in listing shape.
const deleteExpensesQuery = `
WITH e AS (
	DELETE FROM expenses WHERE %s = $1
	RETURNING expense_id, amount, description, user_id, team_id, transfer_id, created_at
)
SELECT
	e.expense_id, e.amount, e.description, e.user_id, e.team_id, e.transfer_id, e.created_at,
	u.username, u.icon AS user_icon
FROM e
JOIN users u ON u.user_id = e.user_id
ORDER BY e.amount DESC;
`

func (r *PgxExpenseRepository) DeleteExpense(ctx context.Context, expense domain.Expense) ([]domain.Expense, error) {
	column, arg := "expense_id", expense.ExpenseID
	if expense.TransferID != nil {
		column, arg = "transfer_id", *expense.TransferID
	}
	rows, err := r.Pool.Query(ctx, fmt.Sprintf(deleteExpensesQuery, column), arg)
	if err != nil {
		return nil, internalError("failed to delete expense "+expense.ExpenseID, err)
	}
	defer rows.Close()
	removed, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Expense])
	if err != nil {
		return nil, internalError("failed to delete expense "+expense.ExpenseID, err)
	}
	if len(removed) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return removed, nil
}

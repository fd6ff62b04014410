package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/explit/internal/core/domain"
	portsrepo "github.com/SscSPs/explit/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(db *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

func aggregateExpenses(ctx context.Context, q querier, teamID string, window domain.DateWindow) (map[string]domain.ExpenseAggregate, error) {
	where, args := expenseFilterClause(teamID, domain.ExpenseFilter{Window: window})
	query := `
		SELECT e.user_id, COUNT(*), COALESCE(SUM(e.amount), 0)
		FROM expenses e
	` + where + `
		GROUP BY e.user_id
	`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying expense aggregates: %w", err)
	}
	defer rows.Close()

	result := make(map[string]domain.ExpenseAggregate)
	for rows.Next() {
		var (
			userID string
			agg    domain.ExpenseAggregate
			total  decimal.Decimal
		)
		if err := rows.Scan(&userID, &agg.Count, &total); err != nil {
			return nil, fmt.Errorf("error scanning expense aggregate row: %w", err)
		}
		agg.TotalAmount = total
		result[userID] = agg
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense aggregate rows: %w", err)
	}
	return result, nil
}

func (r *reportingRepository) AggregateExpensesByMember(ctx context.Context, teamID string, window domain.DateWindow) (map[string]domain.ExpenseAggregate, error) {
	result, err := aggregateExpenses(ctx, r.Pool, teamID, window)
	if err != nil {
		return nil, internalError("failed to aggregate expenses of team "+teamID, err)
	}
	return result, nil
}

func (r *reportingRepository) LoadBalanceSnapshot(ctx context.Context, teamID string, window domain.DateWindow) (*domain.Team, map[string]domain.ExpenseAggregate, error) {
	tx, err := r.BeginSnapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer r.Rollback(ctx, tx)

	team, err := findTeam(ctx, tx, teamID)
	if err != nil {
		return nil, nil, err
	}
	aggregates, err := aggregateExpenses(ctx, tx, teamID, window)
	if err != nil {
		return nil, nil, internalError("failed to aggregate expenses of team "+teamID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, nil, err
	}
	return team, aggregates, nil
}

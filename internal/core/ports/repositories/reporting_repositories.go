package repositories

import (
	"context"

	"github.com/SscSPs/explit/internal/core/domain"
)

// ReportingRepository defines the aggregate reads behind balances and statistics.
type ReportingRepository interface {
	// AggregateExpensesByMember returns count and sum of amounts per member of the
	// team within window. Members without expenses are absent from the map.
	AggregateExpensesByMember(ctx context.Context, teamID string, window domain.DateWindow) (map[string]domain.ExpenseAggregate, error)

	// LoadBalanceSnapshot reads the team with its members and the per-member
	// aggregates inside one read-only repeatable-read transaction.
	LoadBalanceSnapshot(ctx context.Context, teamID string, window domain.DateWindow) (*domain.Team, map[string]domain.ExpenseAggregate, error)
}

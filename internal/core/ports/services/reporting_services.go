package services

import (
	"context"

	"github.com/SscSPs/explit/internal/core/domain"
)

// ReportingService defines operations for generating team reports
type ReportingService interface {
	// TeamBalanceReport computes what each member of the caller's team owes or is owed
	// within window. A team asking for an income-weighted split that cannot be honoured
	// gets an even split with WeightedFallback set.
	TeamBalanceReport(ctx context.Context, userID string, window domain.DateWindow) (*domain.BalanceReport, error)

	// TeamStatistics summarises the spending of the caller's team within window.
	TeamStatistics(ctx context.Context, userID string, label string, window domain.DateWindow) (*domain.TeamStatistics, error)
}

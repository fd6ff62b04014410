package services

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/explit/internal/apperrors"
	"github.com/SscSPs/explit/internal/core/domain"
	portsrepo "github.com/SscSPs/explit/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/explit/internal/core/ports/services"
	"github.com/SscSPs/explit/internal/platform/metrics"
	"github.com/SscSPs/explit/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// MsgEmptyTeam is shown instead of balances when a team has no members.
const MsgEmptyTeam = "Your team has no members yet"

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
	teamRepo      portsrepo.TeamReader
	metrics       *metrics.Metrics
}

// ReportingServiceOption is a function that configures a reportingService
type ReportingServiceOption func(*reportingService)

// WithReportingMetrics observes balance computation time.
func WithReportingMetrics(m *metrics.Metrics) ReportingServiceOption {
	return func(s *reportingService) {
		s.metrics = m
	}
}

// NewReportingService creates a new reporting service
func NewReportingService(reportingRepo portsrepo.ReportingRepository, teamRepo portsrepo.TeamReader, userRepo portsrepo.UserReader, options ...ReportingServiceOption) portssvc.ReportingService {
	svc := &reportingService{
		BaseService:   BaseService{UserReader: userRepo},
		reportingRepo: reportingRepo,
		teamRepo:      teamRepo,
	}
	for _, opt := range options {
		opt(svc)
	}
	return svc
}

var _ portssvc.ReportingService = (*reportingService)(nil)

func (s *reportingService) TeamBalanceReport(ctx context.Context, userID string, window domain.DateWindow) (*domain.BalanceReport, error) {
	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	team, aggregates, err := s.reportingRepo.LoadBalanceSnapshot(ctx, user.TeamID, window)
	if err != nil {
		s.LogError(ctx, err, "Failed to load balance snapshot", slog.String("team_id", user.TeamID))
		return nil, err
	}

	report := &domain.BalanceReport{TeamID: team.TeamID, Weighted: team.BalanceByIncome}
	balances, err := s.computeBalances(team.Members, aggregates, team.BalanceByIncome)
	if errors.Is(err, accounting.ErrMissingIncome) {
		s.LogWarn(ctx, "Income-weighted balance unavailable, falling back to an even split",
			slog.String("team_id", team.TeamID),
			slog.String("reason", err.Error()))
		report.Weighted = false
		report.WeightedFallback = true
		balances, err = s.computeBalances(team.Members, aggregates, false)
	}
	if err != nil {
		if errors.Is(err, accounting.ErrEmptyTeam) {
			return nil, apperrors.NewAppError(http.StatusUnprocessableEntity, MsgEmptyTeam, err)
		}
		s.LogError(ctx, err, "Failed to compute balances", slog.String("team_id", team.TeamID))
		return nil, err
	}

	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b.TotalAmount)
	}
	report.TotalSpent = total
	report.Balances = balances

	s.LogDebug(ctx, "Balance report computed",
		slog.String("team_id", team.TeamID),
		slog.Bool("weighted", report.Weighted),
		slog.Bool("all_time", window.IsOpen()),
		slog.String("total_spent", total.String()))
	return report, nil
}

func (s *reportingService) computeBalances(members []domain.User, aggregates map[string]domain.ExpenseAggregate, weighted bool) ([]domain.MemberBalance, error) {
	start := time.Now()
	balances, err := accounting.ComputeBalances(members, aggregates, weighted)
	if s.metrics != nil && err == nil {
		mode := "even"
		if weighted {
			mode = "weighted"
		}
		s.metrics.BalanceComputation.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	}
	return balances, err
}

func (s *reportingService) TeamStatistics(ctx context.Context, userID string, label string, window domain.DateWindow) (*domain.TeamStatistics, error) {
	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	members, err := s.teamRepo.FindTeamMembers(ctx, user.TeamID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load team members", slog.String("team_id", user.TeamID))
		return nil, err
	}
	aggregates, err := s.reportingRepo.AggregateExpensesByMember(ctx, user.TeamID, window)
	if err != nil {
		s.LogError(ctx, err, "Failed to aggregate expenses", slog.String("team_id", user.TeamID))
		return nil, err
	}

	stats := &domain.TeamStatistics{Label: label, TotalAmount: decimal.Zero, Members: make([]domain.MemberStatistics, 0, len(members))}
	for _, m := range members {
		agg := aggregates[m.UserID]
		row := domain.MemberStatistics{
			UserID:      m.UserID,
			Username:    m.Username,
			Icon:        m.DisplayIcon(),
			Count:       agg.Count,
			TotalAmount: agg.TotalAmount,
			Average:     decimal.Zero,
		}
		if agg.Count > 0 {
			row.Average = agg.TotalAmount.Div(decimal.NewFromInt(int64(agg.Count)))
		}
		stats.Count += agg.Count
		stats.TotalAmount = stats.TotalAmount.Add(agg.TotalAmount)
		stats.Members = append(stats.Members, row)
	}
	return stats, nil
}

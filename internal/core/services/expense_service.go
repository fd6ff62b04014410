package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/explit/internal/apperrors"
	"github.com/SscSPs/explit/internal/core/domain"
	portsrepo "github.com/SscSPs/explit/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/explit/internal/core/ports/services"
	"github.com/SscSPs/explit/internal/dto"
	"github.com/SscSPs/explit/internal/platform/metrics"
	"github.com/SscSPs/explit/internal/utils/pagination"
	"github.com/google/uuid"
)

// Messages returned when an expense cannot be read or changed.
const (
	MsgExpenseNotFound = "What an expense! Not found."
	MsgExpenseNotOwned = "Pssh, nice try. That's not your expense"
)

// expenseService implements the ExpenseSvcFacade interface
type expenseService struct {
	BaseService
	expenseRepo portsrepo.ExpenseRepositoryFacade
	publisher   portssvc.ExpenseEventPublisher
	metrics     *metrics.Metrics
	now         func() time.Time
}

// ExpenseServiceOption is a function that configures an expenseService
type ExpenseServiceOption func(*expenseService)

// WithEventPublisher announces created and deleted expenses through publisher.
func WithEventPublisher(publisher portssvc.ExpenseEventPublisher) ExpenseServiceOption {
	return func(s *expenseService) {
		s.publisher = publisher
	}
}

// WithExpenseMetrics counts created expenses and failed event publishes.
func WithExpenseMetrics(m *metrics.Metrics) ExpenseServiceOption {
	return func(s *expenseService) {
		s.metrics = m
	}
}

// WithExpenseClock overrides the clock used for creation timestamps.
func WithExpenseClock(now func() time.Time) ExpenseServiceOption {
	return func(s *expenseService) {
		s.now = now
	}
}

// NewExpenseService creates a new expense service with the provided dependencies
func NewExpenseService(expenseRepo portsrepo.ExpenseRepositoryFacade, userRepo portsrepo.UserReader, options ...ExpenseServiceOption) portssvc.ExpenseSvcFacade {
	svc := &expenseService{
		BaseService: BaseService{UserReader: userRepo},
		expenseRepo: expenseRepo,
		now:         time.Now,
	}
	for _, opt := range options {
		opt(svc)
	}
	return svc
}

var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

func (s *expenseService) GetExpense(ctx context.Context, expenseID string, userID string) (*domain.Expense, error) {
	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(MsgExpenseNotFound)
		}
		s.LogError(ctx, err, "Failed to find expense", slog.String("expense_id", expenseID))
		return nil, err
	}
	// Expenses of other teams are reported as missing.
	if expense.TeamID != user.TeamID {
		s.LogWarn(ctx, "Expense requested from another team", slog.String("expense_id", expenseID))
		return nil, apperrors.NewNotFoundError(MsgExpenseNotFound)
	}
	return expense, nil
}

func (s *expenseService) ListExpenses(ctx context.Context, userID string, filter domain.ExpenseFilter, page int) (*domain.ExpensePage, error) {
	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	total, err := s.expenseRepo.CountExpenses(ctx, user.TeamID, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to count expenses", slog.String("team_id", user.TeamID))
		return nil, err
	}
	p := pagination.NewPage(page, pagination.DefaultPageSize).Clamp(total)

	expenses := []domain.Expense{}
	if total > 0 {
		expenses, err = s.expenseRepo.ListExpenses(ctx, user.TeamID, filter, p.Limit(), p.Offset())
		if err != nil {
			s.LogError(ctx, err, "Failed to list expenses", slog.String("team_id", user.TeamID))
			return nil, err
		}
	}

	s.LogDebug(ctx, "Expenses listed",
		slog.String("team_id", user.TeamID),
		slog.Int("page", p.Number),
		slog.Int("count", len(expenses)),
		slog.Int("total", total))
	return &domain.ExpensePage{
		Expenses:   expenses,
		TotalCount: total,
		Page:       p.Number,
		PageSize:   p.Size,
	}, nil
}

func (s *expenseService) ListRecentExpenses(ctx context.Context, userID string, limit int) ([]domain.Expense, error) {
	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.ListRecentExpenses(ctx, user.TeamID, limit, 0)
	if err != nil {
		s.LogError(ctx, err, "Failed to list recent expenses", slog.String("team_id", user.TeamID))
		return nil, err
	}
	if expenses == nil {
		return []domain.Expense{}, nil
	}
	return expenses, nil
}

func (s *expenseService) CreateExpense(ctx context.Context, userID string, req dto.CreateExpenseRequest) (*domain.Expense, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	expense := domain.Expense{
		ExpenseID:   uuid.NewString(),
		Amount:      req.Amount,
		Description: strings.TrimSpace(req.Description),
		UserID:      user.UserID,
		TeamID:      user.TeamID,
		CreatedAt:   s.now(),
		Username:    user.Username,
		UserIcon:    user.DisplayIcon(),
	}
	if err := s.expenseRepo.SaveExpenses(ctx, expense); err != nil {
		s.LogError(ctx, err, "Failed to save expense", slog.String("team_id", user.TeamID))
		return nil, err
	}

	s.LogInfo(ctx, "Expense created",
		slog.String("expense_id", expense.ExpenseID),
		slog.String("amount", expense.Amount.String()))
	s.recordCreated(ctx, expense)
	return &expense, nil
}

func (s *expenseService) CreateTransfer(ctx context.Context, userID string, req dto.CreateTransferRequest) ([]domain.Expense, error) {
	if err := req.Validate(userID); err != nil {
		return nil, err
	}
	sender, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	recipient, err := s.UserReader.FindUserByID(ctx, req.ToUserID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to load transfer recipient", slog.String("to_user_id", req.ToUserID))
		return nil, err
	}
	if err != nil || recipient.TeamID != sender.TeamID {
		return nil, apperrors.ValidationErrors{"toUserId": dto.MsgTransferRecipient}
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = "Transfer to " + recipient.Username
	}
	transferID := uuid.NewString()
	now := s.now()
	pair := []domain.Expense{
		{
			ExpenseID:   uuid.NewString(),
			Amount:      req.Amount,
			Description: description,
			UserID:      sender.UserID,
			TeamID:      sender.TeamID,
			TransferID:  &transferID,
			CreatedAt:   now,
			Username:    sender.Username,
			UserIcon:    sender.DisplayIcon(),
		},
		{
			ExpenseID:   uuid.NewString(),
			Amount:      req.Amount.Neg(),
			Description: description,
			UserID:      recipient.UserID,
			TeamID:      recipient.TeamID,
			TransferID:  &transferID,
			CreatedAt:   now,
			Username:    recipient.Username,
			UserIcon:    recipient.DisplayIcon(),
		},
	}

	if err := s.expenseRepo.SaveExpenses(ctx, pair...); err != nil {
		s.LogError(ctx, err, "Failed to save transfer", slog.String("transfer_id", transferID))
		return nil, err
	}

	s.LogInfo(ctx, "Transfer created",
		slog.String("transfer_id", transferID),
		slog.String("to_user_id", recipient.UserID),
		slog.String("amount", req.Amount.String()))
	for _, e := range pair {
		s.recordCreated(ctx, e)
	}
	return pair, nil
}

func (s *expenseService) DeleteExpense(ctx context.Context, expenseID string, userID string) error {
	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError(MsgExpenseNotFound)
		}
		s.LogError(ctx, err, "Failed to find expense", slog.String("expense_id", expenseID))
		return err
	}
	if !expense.IsOwnedBy(userID) {
		s.LogWarn(ctx, "Attempt to delete someone else's expense", slog.String("expense_id", expenseID))
		return apperrors.NewUnauthorizedError(MsgExpenseNotOwned)
	}

	removed, err := s.expenseRepo.DeleteExpense(ctx, *expense)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError(MsgExpenseNotFound)
		}
		s.LogError(ctx, err, "Failed to delete expense", slog.String("expense_id", expenseID))
		return err
	}

	s.LogInfo(ctx, "Expense deleted", slog.String("expense_id", expenseID), slog.Int("rows", len(removed)))
	for _, row := range removed {
		s.publish(ctx, domain.ExpenseDeletedEvent, row)
	}
	return nil
}

func (s *expenseService) recordCreated(ctx context.Context, expense domain.Expense) {
	if s.metrics != nil {
		s.metrics.ExpensesCreated.Inc()
	}
	s.publish(ctx, domain.ExpenseCreatedEvent, expense)
}

// publish sends an event; failures are logged and never reach the caller.
func (s *expenseService) publish(ctx context.Context, eventType string, expense domain.Expense) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseEvent(ctx, eventType, expense); err != nil {
		s.LogError(ctx, err, "Failed to publish expense event",
			slog.String("event", eventType),
			slog.String("expense_id", expense.ExpenseID))
		if s.metrics != nil {
			s.metrics.EventsPublishFailed.Inc()
		}
	}
}

package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/explit/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	args := m.Called(ctx, googleID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User, team *domain.Team) error {
	args := m.Called(ctx, user, team)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User, team *domain.Team) error {
	args := m.Called(ctx, user, team)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateTheme(ctx context.Context, userID string, theme domain.Theme) error {
	args := m.Called(ctx, userID, theme)
	return args.Error(0)
}

func (m *MockUserRepository) LinkGoogleAccount(ctx context.Context, userID, googleID string) error {
	args := m.Called(ctx, userID, googleID)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- Mock TeamRepository ---
type MockTeamRepository struct {
	mock.Mock
}

func (m *MockTeamRepository) FindTeamByID(ctx context.Context, teamID string) (*domain.Team, error) {
	args := m.Called(ctx, teamID)
	var team *domain.Team
	if args.Get(0) != nil {
		team = args.Get(0).(*domain.Team)
	}
	return team, args.Error(1)
}

func (m *MockTeamRepository) FindTeamMembers(ctx context.Context, teamID string) ([]domain.User, error) {
	args := m.Called(ctx, teamID)
	var members []domain.User
	if args.Get(0) != nil {
		members = args.Get(0).([]domain.User)
	}
	return members, args.Error(1)
}

func (m *MockTeamRepository) UpdateTeam(ctx context.Context, team domain.Team) error {
	args := m.Called(ctx, team)
	return args.Error(0)
}

// --- Mock ExpenseRepository ---
type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	args := m.Called(ctx, expenseID)
	var expense *domain.Expense
	if args.Get(0) != nil {
		expense = args.Get(0).(*domain.Expense)
	}
	return expense, args.Error(1)
}

func (m *MockExpenseRepository) ListExpenses(ctx context.Context, teamID string, filter domain.ExpenseFilter, limit, offset int) ([]domain.Expense, error) {
	args := m.Called(ctx, teamID, filter, limit, offset)
	var expenses []domain.Expense
	if args.Get(0) != nil {
		expenses = args.Get(0).([]domain.Expense)
	}
	return expenses, args.Error(1)
}

func (m *MockExpenseRepository) CountExpenses(ctx context.Context, teamID string, filter domain.ExpenseFilter) (int, error) {
	args := m.Called(ctx, teamID, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockExpenseRepository) ListRecentExpenses(ctx context.Context, teamID string, limit, offset int) ([]domain.Expense, error) {
	args := m.Called(ctx, teamID, limit, offset)
	var expenses []domain.Expense
	if args.Get(0) != nil {
		expenses = args.Get(0).([]domain.Expense)
	}
	return expenses, args.Error(1)
}

func (m *MockExpenseRepository) SaveExpenses(ctx context.Context, expenses ...domain.Expense) error {
	args := m.Called(ctx, expenses)
	return args.Error(0)
}

func (m *MockExpenseRepository) DeleteExpense(ctx context.Context, expense domain.Expense) ([]domain.Expense, error) {
	args := m.Called(ctx, expense)
	var removed []domain.Expense
	if args.Get(0) != nil {
		removed = args.Get(0).([]domain.Expense)
	}
	return removed, args.Error(1)
}

// --- Mock ReportingRepository ---
type MockReportingRepository struct {
	mock.Mock
}

func (m *MockReportingRepository) AggregateExpensesByMember(ctx context.Context, teamID string, window domain.DateWindow) (map[string]domain.ExpenseAggregate, error) {
	args := m.Called(ctx, teamID, window)
	var result map[string]domain.ExpenseAggregate
	if args.Get(0) != nil {
		result = args.Get(0).(map[string]domain.ExpenseAggregate)
	}
	return result, args.Error(1)
}

func (m *MockReportingRepository) LoadBalanceSnapshot(ctx context.Context, teamID string, window domain.DateWindow) (*domain.Team, map[string]domain.ExpenseAggregate, error) {
	args := m.Called(ctx, teamID, window)
	var team *domain.Team
	if args.Get(0) != nil {
		team = args.Get(0).(*domain.Team)
	}
	var result map[string]domain.ExpenseAggregate
	if args.Get(1) != nil {
		result = args.Get(1).(map[string]domain.ExpenseAggregate)
	}
	return team, result, args.Error(2)
}

// --- Mock ExpenseEventPublisher ---
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishExpenseEvent(ctx context.Context, eventType string, expense domain.Expense) error {
	args := m.Called(ctx, eventType, expense)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

// --- Mock APITokenRepository ---
type MockAPITokenRepository struct {
	mock.Mock
}

func (m *MockAPITokenRepository) FindAPITokenByID(ctx context.Context, tokenID string) (*domain.APIToken, error) {
	args := m.Called(ctx, tokenID)
	var token *domain.APIToken
	if args.Get(0) != nil {
		token = args.Get(0).(*domain.APIToken)
	}
	return token, args.Error(1)
}

func (m *MockAPITokenRepository) ListAPITokensByUser(ctx context.Context, userID string) ([]domain.APIToken, error) {
	args := m.Called(ctx, userID)
	var tokens []domain.APIToken
	if args.Get(0) != nil {
		tokens = args.Get(0).([]domain.APIToken)
	}
	return tokens, args.Error(1)
}

func (m *MockAPITokenRepository) SaveAPIToken(ctx context.Context, token domain.APIToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockAPITokenRepository) TouchAPIToken(ctx context.Context, tokenID string, usedAt time.Time) error {
	return m.Called(ctx, tokenID, usedAt).Error(0)
}

func (m *MockAPITokenRepository) DeleteAPIToken(ctx context.Context, tokenID string) error {
	return m.Called(ctx, tokenID).Error(0)
}

func (m *MockAPITokenRepository) DeleteAPITokensByUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

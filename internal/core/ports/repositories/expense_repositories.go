package repositories

import (
	"context"

	"github.com/SscSPs/explit/internal/core/domain"
)

// ExpenseReader defines read operations for expense data
type ExpenseReader interface {
	// FindExpenseByID retrieves an expense with its owner's username and icon.
	FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error)

	// ListExpenses retrieves a filtered page of a team's expenses, newest first.
	ListExpenses(ctx context.Context, teamID string, filter domain.ExpenseFilter, limit, offset int) ([]domain.Expense, error)

	// CountExpenses counts a team's expenses matching filter.
	CountExpenses(ctx context.Context, teamID string, filter domain.ExpenseFilter) (int, error)

	// ListRecentExpenses retrieves the most recent expenses of a team.
	ListRecentExpenses(ctx context.Context, teamID string, limit, offset int) ([]domain.Expense, error)
}

// ExpenseWriter defines write operations for expense data
type ExpenseWriter interface {
	// SaveExpenses persists all expenses atomically.
	SaveExpenses(ctx context.Context, expenses ...domain.Expense) error

	// DeleteExpense removes an expense, or both halves when it belongs to a transfer.
	// It returns the removed rows.
	DeleteExpense(ctx context.Context, expense domain.Expense) ([]domain.Expense, error)
}

// ExpenseRepositoryFacade combines all expense-related repository interfaces
type ExpenseRepositoryFacade interface {
	ExpenseReader
	ExpenseWriter
}

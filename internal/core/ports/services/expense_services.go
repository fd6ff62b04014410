package services

import (
	"context"

	"github.com/SscSPs/explit/internal/core/domain"
	"github.com/SscSPs/explit/internal/dto"
)

// ExpenseReaderSvc defines read operations for expenses
type ExpenseReaderSvc interface {
	// GetExpense retrieves an expense of the caller's team.
	GetExpense(ctx context.Context, expenseID string, userID string) (*domain.Expense, error)

	// ListExpenses retrieves one filtered page of the caller's team expenses.
	ListExpenses(ctx context.Context, userID string, filter domain.ExpenseFilter, page int) (*domain.ExpensePage, error)

	// ListRecentExpenses retrieves the latest expenses of the caller's team.
	ListRecentExpenses(ctx context.Context, userID string, limit int) ([]domain.Expense, error)
}

// ExpenseWriterSvc defines write operations for expenses
type ExpenseWriterSvc interface {
	// CreateExpense records an expense paid by the caller.
	CreateExpense(ctx context.Context, userID string, req dto.CreateExpenseRequest) (*domain.Expense, error)

	// CreateTransfer records money handed from the caller to a teammate as a
	// positive and a negative expense that net to zero.
	CreateTransfer(ctx context.Context, userID string, req dto.CreateTransferRequest) ([]domain.Expense, error)

	// DeleteExpense removes an expense owned by the caller.
	DeleteExpense(ctx context.Context, expenseID string, userID string) error
}

// ExpenseSvcFacade combines all expense-related service interfaces
type ExpenseSvcFacade interface {
	ExpenseReaderSvc
	ExpenseWriterSvc
}

// ExpenseEventPublisher announces expense changes to other systems.
type ExpenseEventPublisher interface {
	PublishExpenseEvent(ctx context.Context, eventType string, expense domain.Expense) error
	Close() error
}

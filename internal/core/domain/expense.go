package domain

import (
	"time"

	"github.com/SscSPs/explit/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

// Expense is a signed amount attributed to one member.
// Positive amounts were paid by the member; negative amounts record money the
// member received as the second half of a transfer.
type Expense struct {
	ExpenseID   string          `json:"expenseID" db:"expense_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Description string          `json:"description" db:"description"`
	UserID      string          `json:"userID" db:"user_id"`
	TeamID      string          `json:"teamID" db:"team_id"`
	TransferID  *string         `json:"transferID,omitempty" db:"transfer_id"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	// Populated by listing queries.
	Username string `json:"username" db:"username"`
	UserIcon string `json:"userIcon" db:"user_icon"`
}

// IsTransfer reports whether the expense is one half of a transfer.
func (e Expense) IsTransfer() bool {
	return e.TransferID != nil
}

// IsOwnedBy reports whether userID owns the expense.
func (e Expense) IsOwnedBy(userID string) bool {
	return e.UserID == userID
}

// ExpenseAggregate is the count and sum of one member's expenses in a window.
type ExpenseAggregate struct {
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// ExpenseFilter narrows an expense listing.
type ExpenseFilter struct {
	Description string
	UserID      string
	Window      DateWindow
}

// ExpensePage is one page of a filtered listing.
type ExpensePage struct {
	Expenses   []Expense
	TotalCount int
	Page       int
	PageSize   int
}

// PageCount returns the number of pages needed for TotalCount items, at least 1.
func (p ExpensePage) PageCount() int {
	return pagination.PageCount(p.TotalCount, p.PageSize)
}

// HasNext reports whether a page follows this one.
func (p ExpensePage) HasNext() bool {
	return p.Page < p.PageCount()
}

// HasPrev reports whether a page precedes this one.
func (p ExpensePage) HasPrev() bool {
	return p.Page > 1
}

// Expense event types published when expenses change.
const (
	ExpenseCreatedEvent = "expense.created"
	ExpenseDeletedEvent = "expense.deleted"
)

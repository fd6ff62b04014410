package dto

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/SscSPs/explit/internal/apperrors"
	"github.com/SscSPs/explit/internal/core/domain"
	"github.com/shopspring/decimal"
)

const (
	MsgDescriptionTooShort = "That expense's description is too short"
	MsgAmountInvalid       = "The amount must be a number, e.g. 12.50"
	MsgAmountZero          = "The amount cannot be zero"
	MsgTransferAmount      = "A transfer needs an amount greater than zero"
	MsgTransferRecipient   = "Pick the teammate who received the money"
	MsgTransferToSelf      = "You cannot transfer money to yourself"
	MsgDateInvalid         = "Dates must look like 2006-01-02"
	MsgDateRange           = "The end date cannot be before the start date"
	MsgAmountPrecision     = "Amounts can have at most two decimal places"
	MsgAmountTooLarge      = "That amount is too large"
)

const (
	minDescriptionLength = 2
	amountDecimals       = 2
)

// maxAmount is the first absolute value a NUMERIC(18,2) column cannot hold.
var maxAmount = decimal.New(1, 16)

// amountError returns the field message for an amount the database cannot store exactly,
// or "" when it fits.
func amountError(amount decimal.Decimal) string {
	switch {
	case !amount.Equal(amount.Round(amountDecimals)):
		return MsgAmountPrecision
	case amount.Abs().GreaterThanOrEqual(maxAmount):
		return MsgAmountTooLarge
	}
	return ""
}

// DateLayout is the layout of the date filters.
const DateLayout = "2006-01-02"

// ExpenseForm is submitted by the new expense and edit pages.
type ExpenseForm struct {
	Description string `form:"description" binding:"max=255"`
	Amount      string `form:"amount"`
}

// ToRequest parses the form into a CreateExpenseRequest.
func (f ExpenseForm) ToRequest() (CreateExpenseRequest, error) {
	req := CreateExpenseRequest{Description: strings.TrimSpace(f.Description)}
	amount, err := parseAmount(f.Amount)
	if err != nil {
		errs := apperrors.ValidationErrors{"amount": MsgAmountInvalid}
		if vErr := req.Validate(); vErr != nil {
			for field, msg := range vErr.(apperrors.ValidationErrors) {
				errs.Add(field, msg)
			}
		}
		return req, errs
	}
	req.Amount = amount
	return req, nil
}

// CreateExpenseRequest defines data for recording an expense.
type CreateExpenseRequest struct {
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
}

func (r CreateExpenseRequest) Validate() error {
	errs := apperrors.ValidationErrors{}
	if utf8.RuneCountInString(strings.TrimSpace(r.Description)) < minDescriptionLength {
		errs.Add("description", MsgDescriptionTooShort)
	}
	if r.Amount.IsZero() {
		errs.Add("amount", MsgAmountZero)
	} else if msg := amountError(r.Amount); msg != "" {
		errs.Add("amount", msg)
	}
	return errs.OrNil()
}

// TransferForm is submitted by the transfer page.
type TransferForm struct {
	ToUserID    string `form:"toUserId"`
	Amount      string `form:"amount"`
	Description string `form:"description" binding:"max=255"`
}

// ToRequest parses the form into a CreateTransferRequest.
func (f TransferForm) ToRequest() (CreateTransferRequest, error) {
	req := CreateTransferRequest{ToUserID: f.ToUserID, Description: strings.TrimSpace(f.Description)}
	amount, err := parseAmount(f.Amount)
	if err != nil {
		return req, apperrors.ValidationErrors{"amount": MsgAmountInvalid}
	}
	req.Amount = amount
	return req, nil
}

// CreateTransferRequest records money handed from the caller to a teammate.
// Description is optional.
type CreateTransferRequest struct {
	ToUserID    string          `json:"toUserID" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

func (r CreateTransferRequest) Validate(fromUserID string) error {
	errs := apperrors.ValidationErrors{}
	if r.ToUserID == "" {
		errs.Add("toUserId", MsgTransferRecipient)
	} else if r.ToUserID == fromUserID {
		errs.Add("toUserId", MsgTransferToSelf)
	}
	if !r.Amount.IsPositive() {
		errs.Add("amount", MsgTransferAmount)
	} else if msg := amountError(r.Amount); msg != "" {
		errs.Add("amount", msg)
	}
	if r.Description != "" && utf8.RuneCountInString(r.Description) < minDescriptionLength {
		errs.Add("description", MsgDescriptionTooShort)
	}
	return errs.OrNil()
}

// ListExpensesParams defines the query parameters of the expense list.
type ListExpensesParams struct {
	Page        int    `form:"page,default=1" json:"page"`
	Description string `form:"description" json:"description"`
	DateFrom    string `form:"dateFrom" json:"dateFrom"`
	DateTo      string `form:"dateTo" json:"dateTo"`
	User        string `form:"user" json:"user"`
}

// Filter converts the parameters into a domain filter. Dates are calendar days in loc
// and both ends are inclusive.
func (p ListExpensesParams) Filter(loc *time.Location) (domain.ExpenseFilter, error) {
	window, err := ParseDateWindow(p.DateFrom, p.DateTo, loc)
	if err != nil {
		return domain.ExpenseFilter{}, err
	}
	return domain.ExpenseFilter{
		Description: strings.TrimSpace(p.Description),
		UserID:      strings.TrimSpace(p.User),
		Window:      window,
	}, nil
}

// PageOrFirst returns the requested page, clamped to 1.
func (p ListExpensesParams) PageOrFirst() int {
	if p.Page < 1 {
		return 1
	}
	return p.Page
}

// ParseDateWindow turns two optional YYYY-MM-DD days into a half-open window
// covering both days entirely.
func ParseDateWindow(from, to string, loc *time.Location) (domain.DateWindow, error) {
	if loc == nil {
		loc = time.UTC
	}
	var window domain.DateWindow
	if from = strings.TrimSpace(from); from != "" {
		day, err := time.ParseInLocation(DateLayout, from, loc)
		if err != nil {
			return window, apperrors.ValidationErrors{"dateFrom": MsgDateInvalid}
		}
		window.From = &day
	}
	if to = strings.TrimSpace(to); to != "" {
		day, err := time.ParseInLocation(DateLayout, to, loc)
		if err != nil {
			return window, apperrors.ValidationErrors{"dateTo": MsgDateInvalid}
		}
		end := day.AddDate(0, 0, 1)
		window.To = &end
	}
	if window.From != nil && window.To != nil && !window.Contains(*window.From) {
		return window, apperrors.ValidationErrors{"dateTo": MsgDateRange}
	}
	return window, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	return decimal.NewFromString(raw)
}

// ExpenseResponse defines data returned for an expense.
type ExpenseResponse struct {
	ExpenseID   string          `json:"expenseID"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	UserID      string          `json:"userID"`
	Username    string          `json:"username,omitempty"`
	TeamID      string          `json:"teamID"`
	TransferID  *string         `json:"transferID,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ToExpenseResponse converts domain.Expense to DTO.
func ToExpenseResponse(e *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ExpenseID:   e.ExpenseID,
		Amount:      e.Amount,
		Description: e.Description,
		UserID:      e.UserID,
		Username:    e.Username,
		TeamID:      e.TeamID,
		TransferID:  e.TransferID,
		CreatedAt:   e.CreatedAt,
	}
}

// ListExpensesResponse wraps one page of expenses.
type ListExpensesResponse struct {
	Expenses   []ExpenseResponse `json:"expenses"`
	Page       int               `json:"page"`
	PageCount  int               `json:"pageCount"`
	TotalCount int               `json:"totalCount"`
}

// ToListExpensesResponse converts a domain page to DTO.
func ToListExpensesResponse(p *domain.ExpensePage) ListExpensesResponse {
	list := make([]ExpenseResponse, len(p.Expenses))
	for i := range p.Expenses {
		list[i] = ToExpenseResponse(&p.Expenses[i])
	}
	return ListExpensesResponse{
		Expenses:   list,
		Page:       p.Page,
		PageCount:  p.PageCount(),
		TotalCount: p.TotalCount,
	}
}

package dto

import (
	"strings"

	"github.com/SscSPs/explit/internal/apperrors"
	"github.com/SscSPs/explit/internal/core/domain"
	"github.com/shopspring/decimal"
)

const (
	MsgIncomeInvalid  = "The average income must be a positive number"
	MsgIncomeRequired = "Your team balances expenses by income, so your average income must be greater than zero"
	MsgThemeInvalid   = "That theme is not valid"
)

// UpdateAccountRequest carries the account settings form. Empty fields are left unchanged,
// except AvgIncome where ClearIncome removes the declared income.
type UpdateAccountRequest struct {
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirmPassword" json:"confirmPassword"`
	Icon            string `form:"icon" json:"icon" binding:"omitempty,icon"`
	TeamID          string `form:"teamId" json:"teamId" binding:"max=64"`
	AvgIncome       string `form:"avgIncome" json:"avgIncome"`
	ClearIncome     bool   `form:"clearIncome" json:"clearIncome"`
}

// ParsedIncome returns the declared income, or nil when the field was left empty.
func (r UpdateAccountRequest) ParsedIncome() (*decimal.Decimal, error) {
	return parseIncome(r.AvgIncome)
}

// parseIncome reads an optional non-negative income with at most two decimals.
func parseIncome(raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	income, err := parseAmount(raw)
	if err != nil || income.IsNegative() {
		return nil, apperrors.ValidationErrors{"avgIncome": MsgIncomeInvalid}
	}
	if msg := amountError(income); msg != "" {
		return nil, apperrors.ValidationErrors{"avgIncome": msg}
	}
	return &income, nil
}

func (r UpdateAccountRequest) Validate() error {
	errs := apperrors.ValidationErrors{}
	if r.Password != "" && len([]rune(r.Password)) < minPasswordLength {
		errs.Add("password", MsgPasswordTooShort)
	}
	if r.ConfirmPassword != r.Password {
		errs.Add("confirmPassword", MsgPasswordMismatch)
	}
	if !ValidIcon(strings.TrimSpace(r.Icon)) {
		errs.Add("icon", MsgIconTooLong)
	}
	if _, err := r.ParsedIncome(); err != nil {
		errs.Add("avgIncome", err.(apperrors.ValidationErrors)["avgIncome"])
	}
	return errs.OrNil()
}

// UpdatePreferencesRequest carries the preferences form.
type UpdatePreferencesRequest struct {
	Theme string `form:"theme" json:"theme" binding:"required,theme"`
}

func (r UpdatePreferencesRequest) Validate() error {
	if !domain.Theme(r.Theme).IsValid() {
		return apperrors.ValidationErrors{"theme": MsgThemeInvalid}
	}
	return nil
}

// UserResponse is the public view of a member.
type UserResponse struct {
	UserID    string           `json:"userID"`
	Username  string           `json:"username"`
	Icon      string           `json:"icon"`
	TeamID    string           `json:"teamID"`
	AvgIncome *decimal.Decimal `json:"avgIncome,omitempty"`
	Theme     domain.Theme     `json:"theme"`
}

// ToUserResponse converts domain.User to DTO.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:    u.UserID,
		Username:  u.Username,
		Icon:      u.DisplayIcon(),
		TeamID:    u.TeamID,
		AvgIncome: u.AvgIncome,
		Theme:     u.Theme,
	}
}

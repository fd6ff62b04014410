package dto

import (
	"strings"
	"unicode/utf8"

	"github.com/SscSPs/explit/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Field messages shared by the login, sign-in and account forms.
const (
	MsgUsernameTooShort = "Usernames must be at least 3 characters long"
	MsgPasswordTooShort = "Passwords must be at least 6 characters long"
	MsgPasswordMismatch = "Passwords must match"
	MsgIconTooLong      = `Icons must be a single character, e.g. "A" or "😎"`
	MsgTeamIDRequired   = "You must indicate an arbitrary team ID"
)

const (
	minUsernameLength = 3
	minPasswordLength = 6
	maxIconLength     = 2
)

// LoginRequest is submitted by the login form.
type LoginRequest struct {
	Username   string `form:"username" json:"username" binding:"required"`
	Password   string `form:"password" json:"password" binding:"required"`
	RedirectTo string `form:"redirectTo" json:"-"`
}

// Validate checks the login fields before hitting the database.
func (r LoginRequest) Validate() error {
	errs := apperrors.ValidationErrors{}
	if utf8.RuneCountInString(r.Username) < minUsernameLength {
		errs.Add("username", MsgUsernameTooShort)
	}
	if utf8.RuneCountInString(r.Password) < minPasswordLength {
		errs.Add("password", MsgPasswordTooShort)
	}
	return errs.OrNil()
}

// RegisterRequest is submitted by the sign-in form. The first member registering
// with a TeamID creates that team.
type RegisterRequest struct {
	Username        string `form:"username" json:"username" binding:"required,max=64"`
	Password        string `form:"password" json:"password" binding:"required"`
	ConfirmPassword string `form:"confirmPassword" json:"confirmPassword"`
	TeamID          string `form:"teamId" json:"teamId" binding:"max=64"`
	Icon            string `form:"icon" json:"icon" binding:"omitempty,icon"`
	// AvgIncome is only required when joining a team that balances by income.
	AvgIncome       string `form:"avgIncome" json:"avgIncome"`
	RedirectTo      string `form:"redirectTo" json:"-"`
}

// ParsedIncome returns the declared income, or nil when the field was left empty.
func (r RegisterRequest) ParsedIncome() (*decimal.Decimal, error) {
	return parseIncome(r.AvgIncome)
}

// Normalize trims surrounding whitespace from identifiers.
func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.TeamID = strings.TrimSpace(r.TeamID)
	r.Icon = strings.TrimSpace(r.Icon)
}

func (r RegisterRequest) Validate() error {
	errs := apperrors.ValidationErrors{}
	if utf8.RuneCountInString(r.Username) < minUsernameLength {
		errs.Add("username", MsgUsernameTooShort)
	}
	if utf8.RuneCountInString(r.Password) < minPasswordLength {
		errs.Add("password", MsgPasswordTooShort)
	}
	if r.ConfirmPassword != r.Password {
		errs.Add("confirmPassword", MsgPasswordMismatch)
	}
	if !ValidIcon(r.Icon) {
		errs.Add("icon", MsgIconTooLong)
	}
	if r.TeamID == "" {
		errs.Add("teamId", MsgTeamIDRequired)
	}
	if _, err := r.ParsedIncome(); err != nil {
		errs.Add("avgIncome", err.(apperrors.ValidationErrors)["avgIncome"])
	}
	return errs.OrNil()
}

// ValidIcon reports whether icon fits in an avatar: empty or at most two characters.
func ValidIcon(icon string) bool {
	return utf8.RuneCountInString(icon) <= maxIconLength
}

// SafeRedirect returns target when it is a local path, otherwise fallback.
func SafeRedirect(target, fallback string) string {
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") && !strings.Contains(target, "\\") {
		return target
	}
	return fallback
}

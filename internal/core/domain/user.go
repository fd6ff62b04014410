package domain

import (
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// User is a member of exactly one team.
type User struct {
	UserID       string           `json:"userID" db:"user_id"`
	Username     string           `json:"username" db:"username"`
	Icon         string           `json:"icon" db:"icon"`
	AvgIncome    *decimal.Decimal `json:"avgIncome,omitempty" db:"avg_income"`
	TeamID       string           `json:"teamID" db:"team_id"`
	PasswordHash string           `json:"-" db:"password_hash"`
	Theme        Theme            `json:"theme" db:"theme"`
	GoogleID     *string          `json:"-" db:"google_id"`
	AuditFields
}

// HasIncome reports whether the user declared an income strictly greater than zero.
func (u User) HasIncome() bool {
	return u.AvgIncome != nil && u.AvgIncome.IsPositive()
}

// DisplayIcon returns the icon, falling back to the first character of the username.
func (u User) DisplayIcon() string {
	if u.Icon != "" {
		return u.Icon
	}
	return FirstChar(u.Username)
}

// FirstChar returns the first rune of s as a string, or "" for an empty string.
func FirstChar(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return ""
	}
	return string(r)
}

// GoogleUserInfo holds the profile fields read from Google after sign-in.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

package domain

import "github.com/shopspring/decimal"

// MemberBalance states how far a member's spending is from their fair share.
// DueAmount > 0 means the member owes the team; < 0 means the team owes the member.
type MemberBalance struct {
	UserID      string          `json:"userID"`
	Username    string          `json:"username"`
	Icon        string          `json:"icon"`
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	FairShare   decimal.Decimal `json:"fairShare"`
	DueAmount   decimal.Decimal `json:"dueAmount"`
}

// Owes reports whether the member owes money to the team.
func (b MemberBalance) Owes() bool {
	return b.DueAmount.IsPositive()
}

// IsOwed reports whether the team owes money to the member.
func (b MemberBalance) IsOwed() bool {
	return b.DueAmount.IsNegative()
}

// BalanceReport is the balance statement of a team over a window.
type BalanceReport struct {
	TeamID   string `json:"teamID"`
	Weighted bool   `json:"weighted"`
	// WeightedFallback is set when the team asked for an income-weighted split
	// but some member lacks an income, so an even split was computed instead.
	WeightedFallback bool            `json:"weightedFallback"`
	TotalSpent       decimal.Decimal `json:"totalSpent"`
	Balances         []MemberBalance `json:"balances"`
}

// MemberStatistics summarises one member's spending in a window.
type MemberStatistics struct {
	UserID      string          `json:"userID"`
	Username    string          `json:"username"`
	Icon        string          `json:"icon"`
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Average     decimal.Decimal `json:"average"`
}

// TeamStatistics summarises a team's spending in a window.
type TeamStatistics struct {
	Label       string             `json:"label"`
	Count       int                `json:"count"`
	TotalAmount decimal.Decimal    `json:"totalAmount"`
	Members     []MemberStatistics `json:"members"`
}

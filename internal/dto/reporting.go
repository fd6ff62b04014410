package dto

import (
	"github.com/SscSPs/explit/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceParams defines the optional reporting window of the balance endpoint.
type BalanceParams struct {
	From string `form:"from"`
	To   string `form:"to"`
}

// MemberBalanceResponse is one row of the balance report.
type MemberBalanceResponse struct {
	UserID      string          `json:"userID"`
	Username    string          `json:"username"`
	Icon        string          `json:"icon"`
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	FairShare   decimal.Decimal `json:"fairShare"`
	DueAmount   decimal.Decimal `json:"dueAmount"`
}

// BalanceReportResponse represents the team balance report.
type BalanceReportResponse struct {
	TeamID           string                  `json:"teamID"`
	Weighted         bool                    `json:"weighted"`
	WeightedFallback bool                    `json:"weightedFallback"`
	TotalSpent       decimal.Decimal         `json:"totalSpent"`
	Balances         []MemberBalanceResponse `json:"balances"`
}

// ToBalanceReportResponse converts domain.BalanceReport to DTO.
func ToBalanceReportResponse(r *domain.BalanceReport) BalanceReportResponse {
	rows := make([]MemberBalanceResponse, len(r.Balances))
	for i, b := range r.Balances {
		rows[i] = MemberBalanceResponse{
			UserID:      b.UserID,
			Username:    b.Username,
			Icon:        b.Icon,
			Count:       b.Count,
			TotalAmount: b.TotalAmount,
			FairShare:   b.FairShare,
			DueAmount:   b.DueAmount,
		}
	}
	return BalanceReportResponse{
		TeamID:           r.TeamID,
		Weighted:         r.Weighted,
		WeightedFallback: r.WeightedFallback,
		TotalSpent:       r.TotalSpent,
		Balances:         rows,
	}
}

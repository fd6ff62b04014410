package dto

import (
	"strings"

	"github.com/SscSPs/explit/internal/apperrors"
	"github.com/SscSPs/explit/internal/core/domain"
)

// UpdateTeamRequest carries the team settings form.
type UpdateTeamRequest struct {
	Icon        string `form:"icon" json:"icon" binding:"omitempty,icon"`
	Description string `form:"description" json:"description" binding:"max=280"`
}

func (r UpdateTeamRequest) Validate() error {
	if !ValidIcon(strings.TrimSpace(r.Icon)) {
		return apperrors.ValidationErrors{"icon": MsgIconTooLong}
	}
	return nil
}

// BalanceByIncomeRequest toggles the income-weighted split of a team.
type BalanceByIncomeRequest struct {
	Enabled bool `form:"balanceByIncome" json:"balanceByIncome"`
}

// TeamResponse defines data returned for a team.
type TeamResponse struct {
	TeamID          string         `json:"teamID"`
	Icon            string         `json:"icon"`
	Description     string         `json:"description"`
	BalanceByIncome bool           `json:"balanceByIncome"`
	Members         []UserResponse `json:"members"`
}

// ToTeamResponse converts domain.Team to DTO.
func ToTeamResponse(t *domain.Team) TeamResponse {
	members := make([]UserResponse, len(t.Members))
	for i := range t.Members {
		members[i] = ToUserResponse(&t.Members[i])
	}
	return TeamResponse{
		TeamID:          t.TeamID,
		Icon:            t.Icon,
		Description:     t.Description,
		BalanceByIncome: t.BalanceByIncome,
		Members:         members,
	}
}

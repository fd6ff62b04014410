package services

import (
	"context"

	"github.com/SscSPs/explit/internal/core/domain"
	"github.com/SscSPs/explit/internal/dto"
)

// TeamReaderSvc defines read operations for teams
type TeamReaderSvc interface {
	// GetTeamForUser retrieves the caller's team with its members.
	GetTeamForUser(ctx context.Context, userID string) (*domain.Team, error)
}

// TeamWriterSvc defines write operations for teams
type TeamWriterSvc interface {
	// UpdateTeam changes icon and description of the caller's team.
	UpdateTeam(ctx context.Context, userID string, req dto.UpdateTeamRequest) (*domain.Team, error)

	// SetBalanceByIncome switches the caller's team between even and income-weighted
	// splitting. Enabling fails unless every member declared an income.
	SetBalanceByIncome(ctx context.Context, userID string, enabled bool) (*domain.Team, error)
}

// TeamSvcFacade combines all team-related service interfaces
type TeamSvcFacade interface {
	TeamReaderSvc
	TeamWriterSvc
}

package repositories

import (
	"context"

	"github.com/SscSPs/explit/internal/core/domain"
)

// TeamReader defines read operations for team data
type TeamReader interface {
	// FindTeamByID retrieves a team with its members ordered by username.
	FindTeamByID(ctx context.Context, teamID string) (*domain.Team, error)

	// FindTeamMembers retrieves the members of a team ordered by username.
	FindTeamMembers(ctx context.Context, teamID string) ([]domain.User, error)
}

// TeamWriter defines write operations for team data
type TeamWriter interface {
	// UpdateTeam persists icon, description and the balancing mode of a team.
	UpdateTeam(ctx context.Context, team domain.Team) error
}

// TeamRepositoryFacade combines all team-related repository interfaces
type TeamRepositoryFacade interface {
	TeamReader
	TeamWriter
}

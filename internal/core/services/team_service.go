package services

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/explit/internal/apperrors"
	"github.com/SscSPs/explit/internal/core/domain"
	portsrepo "github.com/SscSPs/explit/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/explit/internal/core/ports/services"
	"github.com/SscSPs/explit/internal/dto"
	"github.com/SscSPs/explit/internal/utils/accounting"
)

// MsgBalanceByIncomeUnavailable explains why income-weighted splitting cannot be enabled.
const MsgBalanceByIncomeUnavailable = "Every member of the team must declare an average income before balancing by income"

// teamService implements the TeamSvcFacade interface
type teamService struct {
	BaseService
	teamRepo portsrepo.TeamRepositoryFacade
}

// NewTeamService creates a new team service with the provided dependencies
func NewTeamService(teamRepo portsrepo.TeamRepositoryFacade, userRepo portsrepo.UserReader) portssvc.TeamSvcFacade {
	return &teamService{
		BaseService: BaseService{UserReader: userRepo},
		teamRepo:    teamRepo,
	}
}

var _ portssvc.TeamSvcFacade = (*teamService)(nil)

func (s *teamService) GetTeamForUser(ctx context.Context, userID string) (*domain.Team, error) {
	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	team, err := s.teamRepo.FindTeamByID(ctx, user.TeamID)
	if err != nil {
		s.LogError(ctx, err, "Failed to find team", slog.String("team_id", user.TeamID))
		return nil, err
	}
	s.LogDebug(ctx, "Team retrieved", slog.String("team_id", team.TeamID), slog.Int("members", len(team.Members)))
	return team, nil
}

func (s *teamService) UpdateTeam(ctx context.Context, userID string, req dto.UpdateTeamRequest) (*domain.Team, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	team, err := s.GetTeamForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	team.Icon = strings.TrimSpace(req.Icon)
	if team.Icon == "" {
		team.Icon = domain.FirstChar(team.TeamID)
	}
	team.Description = strings.TrimSpace(req.Description)
	team.LastUpdatedAt = time.Now()

	if err := s.teamRepo.UpdateTeam(ctx, *team); err != nil {
		s.LogError(ctx, err, "Failed to update team", slog.String("team_id", team.TeamID))
		return nil, err
	}
	s.LogInfo(ctx, "Team updated", slog.String("team_id", team.TeamID))
	return team, nil
}

func (s *teamService) SetBalanceByIncome(ctx context.Context, userID string, enabled bool) (*domain.Team, error) {
	team, err := s.GetTeamForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if team.BalanceByIncome == enabled {
		return team, nil
	}
	if enabled && !team.AllMembersHaveIncome() {
		missing := &accounting.MissingIncomeError{UserIDs: team.MembersWithoutIncome()}
		s.LogInfo(ctx, "Refusing income-weighted balance", slog.Any("members_without_income", missing.UserIDs))
		return nil, apperrors.NewAppError(http.StatusBadRequest, MsgBalanceByIncomeUnavailable, missing)
	}

	team.BalanceByIncome = enabled
	team.LastUpdatedAt = time.Now()
	if err := s.teamRepo.UpdateTeam(ctx, *team); err != nil {
		s.LogError(ctx, err, "Failed to update balancing mode", slog.String("team_id", team.TeamID))
		return nil, err
	}
	s.LogInfo(ctx, "Team balancing mode changed", slog.String("team_id", team.TeamID), slog.Bool("balance_by_income", enabled))
	return team, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/explit/internal/apperrors"
	"github.com/SscSPs/explit/internal/core/domain"
	portsrepo "github.com/SscSPs/explit/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/explit/internal/core/ports/services"
	"github.com/SscSPs/explit/internal/dto"
	"github.com/SscSPs/explit/internal/utils"
	"github.com/google/uuid"
)

// MsgInvalidCredentials is shown when a login attempt fails.
const MsgInvalidCredentials = "Username/Password combination is incorrect"

type userService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
	teamRepo portsrepo.TeamReader
	now      func() time.Time
}

// UserServiceOption configures a userService.
type UserServiceOption func(*userService)

// WithUserClock overrides the clock used for audit timestamps.
func WithUserClock(now func() time.Time) UserServiceOption {
	return func(s *userService) {
		s.now = now
	}
}

// NewUserService creates a new user service.
func NewUserService(userRepo portsrepo.UserRepositoryFacade, teamRepo portsrepo.TeamReader, options ...UserServiceOption) portssvc.UserSvcFacade {
	svc := &userService{
		BaseService: BaseService{UserReader: userRepo},
		userRepo:    userRepo,
		teamRepo:    teamRepo,
		now:         time.Now,
	}
	for _, opt := range options {
		opt(svc)
	}
	return svc
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get user by ID", slog.String("user_id", userID))
		}
		return nil, fmt.Errorf("failed to get user by ID in service: %w", err)
	}
	return user, nil
}

func (s *userService) Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	income, err := req.ParsedIncome()
	if err != nil {
		return nil, err
	}

	_, err = s.userRepo.FindUserByUsername(ctx, req.Username)
	if err == nil {
		return nil, apperrors.NewConflictError(fmt.Sprintf("User with username %s already exists", req.Username))
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check username availability", slog.String("username", req.Username))
		return nil, err
	}

	existing, err := s.teamRepo.FindTeamByID(ctx, req.TeamID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
	case err != nil:
		s.LogError(ctx, err, "Failed to load team", slog.String("team_id", req.TeamID))
		return nil, err
	case existing.BalanceByIncome && (income == nil || !income.IsPositive()):
		return nil, apperrors.ValidationErrors{"avgIncome": dto.MsgIncomeRequired}
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	icon := req.Icon
	if icon == "" {
		icon = domain.FirstChar(req.Username)
	}
	user := domain.User{
		UserID:       uuid.NewString(),
		Username:     req.Username,
		Icon:         icon,
		AvgIncome:    income,
		TeamID:       req.TeamID,
		PasswordHash: hash,
		Theme:        domain.DefaultTheme,
		AuditFields:  domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	team := newTeam(req.TeamID, now)

	if err := s.userRepo.SaveUser(ctx, user, &team); err != nil {
		s.LogError(ctx, err, "Failed to save user", slog.String("username", user.Username), slog.String("team_id", user.TeamID))
		return nil, err
	}

	s.LogInfo(ctx, "User registered", slog.String("user_id", user.UserID), slog.String("team_id", user.TeamID))
	return &user, nil
}

// newTeam describes the team created when a member first names it.
func newTeam(teamID string, now time.Time) domain.Team {
	return domain.Team{
		TeamID:      teamID,
		Icon:        domain.FirstChar(teamID),
		AuditFields: domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
}

func (s *userService) AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogInfo(ctx, "Login attempt for unknown username")
			return nil, apperrors.NewUnauthorizedError(MsgInvalidCredentials)
		}
		s.LogError(ctx, err, "Failed to load user for login")
		return nil, err
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		s.LogInfo(ctx, "Login attempt with wrong password", slog.String("user_id", user.UserID))
		return nil, apperrors.NewUnauthorizedError(MsgInvalidCredentials)
	}
	return user, nil
}

func (s *userService) AuthenticateGoogleUser(ctx context.Context, info domain.GoogleUserInfo) (*domain.User, error) {
	if info.ID == "" {
		return nil, apperrors.NewUnauthorizedError("Google did not return an account id")
	}

	user, err := s.userRepo.FindUserByGoogleID(ctx, info.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to look up user by Google id")
		return nil, err
	}

	if info.Email == "" || !info.VerifiedEmail {
		return nil, apperrors.NewUnauthorizedError("Your Google account has no verified email")
	}
	user, err = s.userRepo.FindUserByUsername(ctx, info.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogInfo(ctx, "Google sign-in without matching account")
			return nil, apperrors.NewUnauthorizedError("No account matches " + info.Email + ". Sign in with a username first.")
		}
		s.LogError(ctx, err, "Failed to look up user by email")
		return nil, err
	}

	if err := s.userRepo.LinkGoogleAccount(ctx, user.UserID, info.ID); err != nil {
		s.LogError(ctx, err, "Failed to link Google account", slog.String("user_id", user.UserID))
		return nil, err
	}
	googleID := info.ID
	user.GoogleID = &googleID
	s.LogInfo(ctx, "Google account linked", slog.String("user_id", user.UserID))
	return user, nil
}

func (s *userService) UpdateAccount(ctx context.Context, userID string, req dto.UpdateAccountRequest) (*domain.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	income, err := req.ParsedIncome()
	if err != nil {
		return nil, err
	}

	current, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	updated := *current
	now := s.now()

	if req.Password != "" {
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			s.LogError(ctx, err, "Failed to hash password")
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		updated.PasswordHash = hash
	}
	if icon := strings.TrimSpace(req.Icon); icon != "" {
		updated.Icon = icon
	}
	switch {
	case req.ClearIncome:
		updated.AvgIncome = nil
	case income != nil:
		updated.AvgIncome = income
	}

	var createTeam *domain.Team
	targetTeamID := current.TeamID
	if teamID := strings.TrimSpace(req.TeamID); teamID != "" && teamID != current.TeamID {
		targetTeamID = teamID
		updated.TeamID = teamID
	}

	targetTeam, err := s.teamRepo.FindTeamByID(ctx, targetTeamID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		t := newTeam(targetTeamID, now)
		createTeam = &t
	case err != nil:
		s.LogError(ctx, err, "Failed to load target team", slog.String("team_id", targetTeamID))
		return nil, err
	case targetTeam.BalanceByIncome && !updated.HasIncome():
		return nil, apperrors.ValidationErrors{"avgIncome": dto.MsgIncomeRequired}
	}

	updated.LastUpdatedAt = now
	if err := s.userRepo.UpdateUser(ctx, updated, createTeam); err != nil {
		s.LogError(ctx, err, "Failed to update user", slog.String("user_id", userID))
		return nil, err
	}

	if updated.TeamID != current.TeamID {
		s.LogInfo(ctx, "User moved to another team",
			slog.String("user_id", userID),
			slog.String("from_team_id", current.TeamID),
			slog.String("to_team_id", updated.TeamID))
	}
	return &updated, nil
}

func (s *userService) UpdatePreferences(ctx context.Context, userID string, req dto.UpdatePreferencesRequest) (*domain.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	theme := domain.Theme(req.Theme)
	if err := s.userRepo.UpdateTheme(ctx, userID, theme); err != nil {
		s.LogError(ctx, err, "Failed to update theme", slog.String("user_id", userID))
		return nil, err
	}
	user.Theme = theme
	return user, nil
}

func (s *userService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.userRepo.DeleteUser(ctx, userID); err != nil {
		s.LogError(ctx, err, "Failed to delete user", slog.String("user_id", userID))
		return err
	}
	s.LogInfo(ctx, "User deleted", slog.String("user_id", userID))
	return nil
}

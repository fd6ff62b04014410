package services

import (
	portsrepo "github.com/SscSPs/explit/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/explit/internal/core/ports/services"
	"github.com/SscSPs/explit/internal/platform/config"
	"github.com/SscSPs/explit/internal/platform/metrics"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(
	cfg *config.Config,
	repos portsrepo.RepositoryProvider,
	publisher portssvc.ExpenseEventPublisher,
	m *metrics.Metrics,
) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		User: NewUserService(repos.UserRepo, repos.TeamRepo),
		Team: NewTeamService(repos.TeamRepo, repos.UserRepo),
		Expense: NewExpenseService(
			repos.ExpenseRepo,
			repos.UserRepo,
			WithEventPublisher(publisher),
			WithExpenseMetrics(m),
		),
		Reporting: NewReportingService(
			repos.ReportingRepo,
			repos.TeamRepo,
			repos.UserRepo,
			WithReportingMetrics(m),
		),
		Session:     NewSessionService(cfg.SessionSecret, cfg.SessionMaxAge),
		GoogleOAuth: NewGoogleOAuthHandlerService(cfg),
		APIToken:    NewAPITokenService(repos.APITokenRepo, repos.UserRepo),
	}
}

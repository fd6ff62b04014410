package pgsql

import (
	portsrepo "github.com/SscSPs/explit/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UserRepo:      newPgxUserRepository(dbPool),
		TeamRepo:      newPgxTeamRepository(dbPool),
		ExpenseRepo:   newPgxExpenseRepository(dbPool),
		ReportingRepo: newReportingRepository(dbPool),
		APITokenRepo:  newPgxAPITokenRepository(dbPool),
	}
}

// Command explit-seed fills an empty database with a demo team.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/SscSPs/explit/internal/apperrors"
	"github.com/SscSPs/explit/internal/core/domain"
	portsrepo "github.com/SscSPs/explit/internal/core/ports/repositories"
	"github.com/SscSPs/explit/internal/platform/config"
	"github.com/SscSPs/explit/internal/platform/logging"
	"github.com/SscSPs/explit/internal/repositories/database/pgsql"
	"github.com/SscSPs/explit/internal/utils"
	"github.com/SscSPs/explit/pkg/database"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const demoPassword = "twixrox"

type demoData struct {
	team     domain.Team
	users    []domain.User
	expenses []domain.Expense
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.IsProduction)

	ctx := context.Background()
	if err := database.RunMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(pool, logger)

	hash, err := utils.HashPassword(demoPassword)
	if err != nil {
		logger.Error("Failed to hash demo password", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos := pgsql.NewRepositoryProvider(pool)
	if err := seed(ctx, repos.UserRepo, repos.ExpenseRepo, newDemoData(hash, time.Now()), logger); err != nil {
		logger.Error("Seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newDemoData builds the Famiglia team with two members and a handful of expenses,
// including a 250 transfer from nicola to shahra.
func newDemoData(passwordHash string, now time.Time) demoData {
	audit := domain.AuditFields{CreatedAt: now, LastUpdatedAt: now}
	team := domain.Team{TeamID: "Famiglia", Description: "La mia famiglia", Icon: "♥️", AuditFields: audit}
	nicola := domain.User{
		UserID: uuid.NewString(), Username: "nicola", Icon: "🧑‍💻", TeamID: team.TeamID,
		PasswordHash: passwordHash, Theme: domain.DefaultTheme, AuditFields: audit,
	}
	shahra := domain.User{
		UserID: uuid.NewString(), Username: "shahra", Icon: "💃", TeamID: team.TeamID,
		PasswordHash: passwordHash, Theme: domain.DefaultTheme, AuditFields: audit,
	}

	transferID := uuid.NewString()
	rows := []struct {
		user        domain.User
		description string
		amount      int64
		transfer    bool
	}{
		{nicola, "Spesa", 100, false},
		{shahra, "Spesa", 70, false},
		{shahra, "Affitto", 500, false},
		{nicola, "Affitto", 250, true},
		{shahra, "Affitto", -250, true},
		{nicola, "Cena", 50, false},
	}
	expenses := make([]domain.Expense, 0, len(rows))
	for i, row := range rows {
		e := domain.Expense{
			ExpenseID:   uuid.NewString(),
			Amount:      decimal.NewFromInt(row.amount),
			Description: row.description,
			UserID:      row.user.UserID,
			TeamID:      team.TeamID,
			// spaced out so the listing order is stable
			CreatedAt: now.Add(time.Duration(i-len(rows)) * time.Minute),
		}
		if row.transfer {
			e.TransferID = &transferID
		}
		expenses = append(expenses, e)
	}

	return demoData{team: team, users: []domain.User{nicola, shahra}, expenses: expenses}
}

// seed stores data unless its first user already exists.
func seed(ctx context.Context, users portsrepo.UserRepositoryFacade, expenses portsrepo.ExpenseWriter, data demoData, logger *slog.Logger) error {
	_, err := users.FindUserByUsername(ctx, data.users[0].Username)
	if err == nil {
		logger.Info("Demo data already present, nothing to do", slog.String("username", data.users[0].Username))
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	for _, u := range data.users {
		if err := users.SaveUser(ctx, u, &data.team); err != nil {
			return fmt.Errorf("save user %s: %w", u.Username, err)
		}
	}
	if err := expenses.SaveExpenses(ctx, data.expenses...); err != nil {
		return fmt.Errorf("save expenses: %w", err)
	}

	logger.Info("Demo data created",
		slog.String("team_id", data.team.TeamID),
		slog.Int("users", len(data.users)),
		slog.Int("expenses", len(data.expenses)))
	return nil
}

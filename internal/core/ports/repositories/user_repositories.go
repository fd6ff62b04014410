package repositories

import (
	"context"

	"github.com/SscSPs/explit/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a user by ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByUsername retrieves a user by their unique username.
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindUserByGoogleID retrieves the user linked to a Google account.
	FindUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser persists a new user. When team is not nil and does not exist yet it
	// is created in the same transaction.
	SaveUser(ctx context.Context, user domain.User, team *domain.Team) error

	// UpdateUser persists the profile fields of an existing user, creating team
	// first when it is not nil and missing. A team left without members is removed.
	UpdateUser(ctx context.Context, user domain.User, team *domain.Team) error

	// UpdateTheme stores the UI theme of a user.
	UpdateTheme(ctx context.Context, userID string, theme domain.Theme) error

	// LinkGoogleAccount associates a Google account id with the user.
	LinkGoogleAccount(ctx context.Context, userID, googleID string) error
}

// UserLifecycleManager defines operations for removing users
type UserLifecycleManager interface {
	// DeleteUser removes the user together with their expenses, and their team
	// when it has no members left.
	DeleteUser(ctx context.Context, userID string) error
}

// UserRepositoryFacade combines all user-related repository interfaces
type UserRepositoryFacade interface {
	UserReader
	UserWriter
	UserLifecycleManager
}

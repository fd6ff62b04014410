package services

import (
	"context"

	"github.com/SscSPs/explit/internal/core/domain"
	"github.com/SscSPs/explit/internal/dto"
)

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}

// UserWriterSvc defines write operations for user data
type UserWriterSvc interface {
	// Register creates a user, and their team when nobody registered with its id yet.
	Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error)

	// UpdateAccount applies the account settings form.
	UpdateAccount(ctx context.Context, userID string, req dto.UpdateAccountRequest) (*domain.User, error)

	// UpdatePreferences stores the UI theme.
	UpdatePreferences(ctx context.Context, userID string, req dto.UpdatePreferencesRequest) (*domain.User, error)
}

// UserLifecycleSvc defines operations for managing user lifecycle
type UserLifecycleSvc interface {
	// DeleteAccount removes the user and their expenses.
	DeleteAccount(ctx context.Context, userID string) error
}

// UserAuthSvc defines operations for user authentication
type UserAuthSvc interface {
	// AuthenticateUser checks a username and password pair.
	AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error)

	// AuthenticateGoogleUser resolves the user behind a verified Google account,
	// linking it by email on first use.
	AuthenticateGoogleUser(ctx context.Context, info domain.GoogleUserInfo) (*domain.User, error)
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
	UserLifecycleSvc
	UserAuthSvc
}

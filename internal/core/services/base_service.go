package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SscSPs/explit/internal/apperrors"
	"github.com/SscSPs/explit/internal/core/domain"
	portsrepo "github.com/SscSPs/explit/internal/core/ports/repositories"
	"github.com/SscSPs/explit/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	UserReader portsrepo.UserReader
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogWarn logs a warning with consistent formatting
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Warn(msg, keyvals...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// CurrentUser loads the acting user. A user id that no longer exists means the
// session is stale, which is reported as unauthorized.
func (s *BaseService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.UserReader.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogWarn(ctx, "Acting user not found", slog.String("user_id", userID))
			return nil, apperrors.NewUnauthorizedError("user no longer exists")
		}
		s.LogError(ctx, err, "Failed to load acting user", slog.String("user_id", userID))
		return nil, err
	}
	return user, nil
}

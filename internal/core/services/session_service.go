package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/explit/internal/apperrors"
	"github.com/SscSPs/explit/internal/core/domain"
	portssvc "github.com/SscSPs/explit/internal/core/ports/services"
	"github.com/golang-jwt/jwt/v5"
)

const sessionIssuer = "explit"

// sessionService signs session tokens with HS256. The token subject is the user id.
type sessionService struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewSessionService creates a session service signing with secret; tokens expire after maxAge.
func NewSessionService(secret string, maxAge time.Duration) portssvc.SessionSvc {
	return &sessionService{secret: []byte(secret), maxAge: maxAge, now: time.Now}
}

var _ portssvc.SessionSvc = (*sessionService)(nil)

func (s *sessionService) IssueSession(ctx context.Context, user *domain.User) (string, time.Time, error) {
	if user == nil || user.UserID == "" {
		return "", time.Time{}, errors.New("cannot issue a session without a user")
	}
	now := s.now()
	expiry := now.Add(s.maxAge)
	claims := jwt.RegisteredClaims{
		Issuer:    sessionIssuer,
		Subject:   user.UserID,
		ExpiresAt: jwt.NewNumericDate(expiry),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, expiry, nil
}

func (s *sessionService) ParseSession(ctx context.Context, tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("%w: session token without subject", apperrors.ErrUnauthorized)
	}
	return claims.Subject, nil
}

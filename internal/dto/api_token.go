package dto

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/SscSPs/explit/internal/apperrors"
	"github.com/SscSPs/explit/internal/core/domain"
)

const (
	MsgTokenNameLength = "Token names are between 3 and 100 characters"
	MsgTokenExpiry     = "Tokens last between 1 and 365 days, or leave it empty for no expiry"
)

const (
	minTokenNameLength = 3
	maxTokenNameLength = 100
	maxTokenDays       = 365
)

// CreateAPITokenRequest is submitted by the tokens page and POST /api/v1/tokens.
// ExpiresInDays is optional; zero means the token never expires.
type CreateAPITokenRequest struct {
	Name          string `form:"name" json:"name" example:"Home Assistant"`
	ExpiresInDays int    `form:"expiresInDays" json:"expiresInDays,omitempty" example:"30"`
}

// Normalize trims the token name.
func (r *CreateAPITokenRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func (r CreateAPITokenRequest) Validate() error {
	errs := apperrors.ValidationErrors{}
	if n := utf8.RuneCountInString(strings.TrimSpace(r.Name)); n < minTokenNameLength || n > maxTokenNameLength {
		errs.Add("name", MsgTokenNameLength)
	}
	if r.ExpiresInDays < 0 || r.ExpiresInDays > maxTokenDays {
		errs.Add("expiresInDays", MsgTokenExpiry)
	}
	return errs.OrNil()
}

// ExpiresAt returns when a token created at now stops working, or nil for no expiry.
func (r CreateAPITokenRequest) ExpiresAt(now time.Time) *time.Time {
	if r.ExpiresInDays <= 0 {
		return nil
	}
	expiry := now.AddDate(0, 0, r.ExpiresInDays)
	return &expiry
}

// APITokenResponse describes a token without its secret.
type APITokenResponse struct {
	TokenID    string     `json:"tokenID"`
	Name       string     `json:"name"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// CreateAPITokenResponse carries the plaintext token. It is never shown again.
type CreateAPITokenResponse struct {
	Token   string           `json:"token" example:"xpl_8b0c6a52-3f0e-4c8e-9d7a-3c2a1b7f9e10.4f3c..."`
	Details APITokenResponse `json:"details"`
}

// ToAPITokenResponse converts domain.APIToken to DTO.
func ToAPITokenResponse(t domain.APIToken) APITokenResponse {
	return APITokenResponse{
		TokenID:    t.TokenID,
		Name:       t.Name,
		LastUsedAt: t.LastUsedAt,
		ExpiresAt:  t.ExpiresAt,
		CreatedAt:  t.CreatedAt,
	}
}

// ToAPITokenResponses converts a list of tokens, never returning nil.
func ToAPITokenResponses(tokens []domain.APIToken) []APITokenResponse {
	out := make([]APITokenResponse, len(tokens))
	for i, t := range tokens {
		out[i] = ToAPITokenResponse(t)
	}
	return out
}

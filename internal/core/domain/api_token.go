package domain

import "time"

// APIToken lets scripts call the JSON API on behalf of a user through the x-api-key header.
// Only a bcrypt hash of the secret part is stored.
type APIToken struct {
	TokenID    string     `json:"tokenID" db:"api_token_id"`
	UserID     string     `json:"userID" db:"user_id"`
	Name       string     `json:"name" db:"name"`
	TokenHash  string     `json:"-" db:"token_hash"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty" db:"last_used_at"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty" db:"expires_at"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
}

// IsExpired reports whether the token stopped being valid at or before now.
// Tokens without an expiry never expire.
func (t APIToken) IsExpired(now time.Time) bool {
	return t.ExpiresAt != nil && !now.Before(*t.ExpiresAt)
}

// IsOwnedBy reports whether the token was issued to userID.
func (t APIToken) IsOwnedBy(userID string) bool {
	return t.UserID == userID
}

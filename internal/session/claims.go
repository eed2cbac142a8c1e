package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the access-token claims the client reads for display and
// expiry checks. The signature is not verified here; the backend remains
// the authority on token validity.
type Claims struct {
	jwt.RegisteredClaims
	Username string   `json:"username,omitempty"`
	Tenant   string   `json:"tenant,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// ParseClaims decodes the claims of a JWT without verifying it.
func ParseClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}
	return claims, nil
}

// ExpiresWithin reports whether the token expires before now+window.
// Tokens without an expiry never expire.
func (c *Claims) ExpiresWithin(now time.Time, window time.Duration) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Add(window).Before(c.ExpiresAt.Time)
}

// Expiry returns the expiry time, or the zero time if none is set.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Package session persists the client's authentication state.
package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/checkpointhr/attendcli/internal/models"
)

// Keys of the persisted client state.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyRoles        = "roles"
	KeyOTPToken     = "OTP_TOKEN"
)

// AllKeys lists every key cleared on logout.
var AllKeys = []string{KeyAccessToken, KeyRefreshToken, KeyRoles, KeyOTPToken}

// Backend names accepted by New.
const (
	BackendKeychain = "keychain"
	BackendFile     = "file"
	BackendMemory   = "memory"
)

var (
	// ErrNotFound is returned by Get for keys that are not stored.
	ErrNotFound = errors.New("session value not found")

	// ErrNoSession is returned when no authenticated session is stored.
	ErrNoSession = errors.New("no session")
)

// Store is a small string key/value store for session state.
type Store interface {
	// Get returns the value for key or ErrNotFound.
	Get(key string) (string, error)
	// Set stores value under key.
	Set(key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Clear removes every session key.
	Clear() error
}

// New returns the store for the named backend. path and key are used by
// the file backend only.
func New(backend, path string, key []byte) (Store, error) {
	switch backend {
	case BackendKeychain, "":
		return NewKeychainStore(), nil
	case BackendFile:
		return NewFileStore(path, key)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", backend)
	}
}

// SaveTokens stores an authenticated token pair and its roles.
func SaveTokens(s Store, pair models.TokenPair) error {
	roles, err := json.Marshal(pair.Roles)
	if err != nil {
		return fmt.Errorf("failed to encode roles: %w", err)
	}

	if err := s.Set(KeyAccessToken, pair.AccessToken); err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}
	if err := s.Set(KeyRefreshToken, pair.RefreshToken); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	if err := s.Set(KeyRoles, string(roles)); err != nil {
		return fmt.Errorf("failed to store roles: %w", err)
	}

	return nil
}

// LoadTokens reads the stored token pair. It returns ErrNoSession when no
// access token is stored.
func LoadTokens(s Store) (*models.TokenPair, error) {
	access, err := s.Get(KeyAccessToken)
	if errors.Is(err, ErrNotFound) || (err == nil && access == "") {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	pair := &models.TokenPair{AccessToken: access}

	refresh, err := s.Get(KeyRefreshToken)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	pair.RefreshToken = refresh

	raw, err := s.Get(KeyRoles)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal([]byte(raw), &pair.Roles); err != nil {
			return nil, fmt.Errorf("failed to decode roles: %w", err)
		}
	}

	return pair, nil
}

// HasSession reports whether an access token is stored.
func HasSession(s Store) bool {
	_, err := LoadTokens(s)
	return err == nil
}

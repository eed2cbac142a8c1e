package session

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// KeychainService is the service name used in the OS keychain.
const KeychainService = "attendcli"

// KeychainStore implements Store using the OS keychain.
type KeychainStore struct {
	service string
}

// NewKeychainStore creates a new KeychainStore.
func NewKeychainStore() *KeychainStore {
	return &KeychainStore{service: KeychainService}
}

// Get retrieves a value from the keychain.
func (s *KeychainStore) Get(key string) (string, error) {
	v, err := keyring.Get(s.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	return v, err
}

// Set stores a value in the keychain.
func (s *KeychainStore) Set(key, value string) error {
	return keyring.Set(s.service, key, value)
}

// Delete removes a value from the keychain, ignoring missing items.
func (s *KeychainStore) Delete(key string) error {
	err := keyring.Delete(s.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// Clear removes every session key from the keychain.
func (s *KeychainStore) Clear() error {
	var errs []error
	for _, key := range AllKeys {
		if err := s.Delete(key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

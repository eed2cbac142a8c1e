package crypto

import (
	"crypto/aes"
	"crypto/subtle"
	"fmt"

	"github.com/aead/cmac"
)

// TagSize is the size of the full AES-CMAC tag in bytes.
const TagSize = 16

func computeTag(key []byte, parts ...[]byte) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	mac, err := cmac.New(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create CMAC: %w", err)
	}

	for _, p := range parts {
		mac.Write(p)
	}
	return mac.Sum(nil), nil
}

func verifyTag(key, tag []byte, parts ...[]byte) (bool, error) {
	if len(tag) != TagSize {
		return false, nil
	}

	computed, err := computeTag(key, parts...)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(computed, tag) == 1, nil
}

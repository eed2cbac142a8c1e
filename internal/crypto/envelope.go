package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"
)

// envelopeVersion prefixes every sealed blob.
const envelopeVersion byte = 1

var (
	// ErrInvalidKey is returned for master keys that are not AES-128 or AES-256 sized.
	ErrInvalidKey = errors.New("invalid key")

	// ErrTampered is returned when a sealed blob fails authentication.
	ErrTampered = errors.New("sealed data failed authentication")

	// ErrUnsupportedEnvelope is returned for blobs that are too short or
	// carry an unknown version.
	ErrUnsupportedEnvelope = errors.New("unsupported sealed data")
)

// Seal encrypts plaintext under master and authenticates the result.
// context binds the blob to its purpose; Open must be given the same value.
//
// Layout: version(1) || iv(16) || ciphertext || cmac(16), where the tag
// covers version, iv and ciphertext.
func Seal(master []byte, context string, plaintext []byte) ([]byte, error) {
	encKey, macKey, err := sessionKeys(master, context)
	if err != nil {
		return nil, err
	}

	iv := make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	ciphertext, err := xorCTR(encKey, iv, plaintext)
	if err != nil {
		return nil, err
	}

	header := []byte{envelopeVersion}
	tag, err := computeTag(macKey, header, iv, ciphertext)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 1+IVSize+len(ciphertext)+TagSize)
	out = append(out, header...)
	out = append(out, iv...)
	out = append(out, ciphertext...)
	out = append(out, tag...)
	return out, nil
}

// Open verifies and decrypts a blob produced by Seal.
func Open(master []byte, context string, sealed []byte) ([]byte, error) {
	if len(sealed) < 1+IVSize+TagSize || sealed[0] != envelopeVersion {
		return nil, ErrUnsupportedEnvelope
	}

	encKey, macKey, err := sessionKeys(master, context)
	if err != nil {
		return nil, err
	}

	header := sealed[:1]
	iv := sealed[1 : 1+IVSize]
	ciphertext := sealed[1+IVSize : len(sealed)-TagSize]
	tag := sealed[len(sealed)-TagSize:]

	ok, err := verifyTag(macKey, tag, header, iv, ciphertext)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTampered
	}

	return xorCTR(encKey, iv, ciphertext)
}

// NewKey returns a random AES-256 master key.
func NewKey() ([]byte, error) {
	key := make([]byte, AES256KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

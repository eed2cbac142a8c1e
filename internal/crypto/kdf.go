// Package crypto seals small secrets at rest with AES-CTR and an AES-CMAC
// tag, using keys derived from a master key with the SP 800-108 counter KDF.
package crypto

import (
	"crypto/aes"
	"encoding/binary"
	"fmt"

	"github.com/aead/cmac"
)

// Labels used to derive the per-purpose keys from a master key.
const (
	labelEncryption = "attendcli/enc"
	labelMAC        = "attendcli/mac"
)

// DeriveKey derives outputLen bytes from key using the NIST SP 800-108 KDF
// in counter mode with AES-CMAC as the PRF:
//
//	K(i) = CMAC(key, [i]32 || label || 0x00 || context || [L]32)
func DeriveKey(key []byte, label, context string, outputLen int) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if outputLen <= 0 {
		return nil, fmt.Errorf("output length must be positive, got %d", outputLen)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	mac, err := cmac.New(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create CMAC: %w", err)
	}

	fixed := make([]byte, 0, len(label)+1+len(context)+4)
	fixed = append(fixed, label...)
	fixed = append(fixed, 0x00)
	fixed = append(fixed, context...)
	fixed = binary.BigEndian.AppendUint32(fixed, uint32(outputLen*8))

	out := make([]byte, 0, outputLen+mac.Size())
	var counter [4]byte
	for i := uint32(1); len(out) < outputLen; i++ {
		mac.Reset()
		binary.BigEndian.PutUint32(counter[:], i)
		mac.Write(counter[:])
		mac.Write(fixed)
		out = mac.Sum(out)
	}

	return out[:outputLen], nil
}

// sessionKeys splits a master key into an encryption key and a MAC key of
// the same size, bound to context.
func sessionKeys(master []byte, context string) (encKey, macKey []byte, err error) {
	encKey, err = DeriveKey(master, labelEncryption, context, len(master))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to derive encryption key: %w", err)
	}
	macKey, err = DeriveKey(master, labelMAC, context, len(master))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to derive MAC key: %w", err)
	}
	return encKey, macKey, nil
}

func checkKey(key []byte) error {
	if len(key) != AES128KeySize && len(key) != AES256KeySize {
		return fmt.Errorf("%w: must be %d or %d bytes, got %d", ErrInvalidKey, AES128KeySize, AES256KeySize, len(key))
	}
	return nil
}

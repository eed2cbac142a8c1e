package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

const (
	// AES128KeySize is the key size for AES-128 in bytes.
	AES128KeySize = 16
	// AES256KeySize is the key size for AES-256 in bytes.
	AES256KeySize = 32
	// IVSize is the size of the AES-CTR initial counter block.
	IVSize = aes.BlockSize
)

// xorCTR encrypts or decrypts data with AES-CTR starting at iv.
func xorCTR(key, iv, data []byte) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if len(iv) != IVSize {
		return nil, fmt.Errorf("iv must be %d bytes, got %d", IVSize, len(iv))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	out := make([]byte, len(data))
	cipher.NewCTR(block, iv).XORKeyStream(out, data)
	return out, nil
}

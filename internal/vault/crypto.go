// Package vault seals sensitive record fields with AES-256-GCM before they reach disk.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// sealedPrefix versions the ciphertext format. Callers track which values are
// sealed; user text may carry the same prefix.
const sealedPrefix = "enc:v1:"

// ErrInvalidKey is returned when a key is not KeySize bytes.
var ErrInvalidKey = errors.New("vault key must be 32 bytes")

// ParseKey decodes a hex-encoded 32-byte key.
func ParseKey(hexKey string) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(hexKey))
	if err != nil {
		return nil, fmt.Errorf("decode vault key: %w", err)
	}
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	return key, nil
}

// Encrypt takes a plaintext string and a 32-byte key, returning an encrypted hex string.
func Encrypt(plaintext string, key []byte) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	// Prepend the nonce so Decrypt can recover it
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(ciphertext), nil
}

// Decrypt takes the hex string and the 32-byte key to return the original text.
func Decrypt(cipherHex string, key []byte) (string, error) {
	ciphertext, err := hex.DecodeString(cipherHex)
	if err != nil {
		return "", err
	}

	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, sealed := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("decryption failed (wrong key or tampered data)")
	}
	return string(plaintext), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Sealer encrypts optional text fields. A nil *Sealer passes values through.
type Sealer struct {
	key []byte
}

// NewSealer returns a Sealer for key, or nil when key is empty.
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) == 0 {
		return nil, nil
	}
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	return &Sealer{key: append([]byte(nil), key...)}, nil
}

// Seal encrypts v. Absent values stay absent.
func (s *Sealer) Seal(v *string) (*string, error) {
	if s == nil || v == nil {
		return v, nil
	}
	ct, err := Encrypt(*v, s.key)
	if err != nil {
		return nil, err
	}
	out := sealedPrefix + ct
	return &out, nil
}

// Open reverses Seal. v must be a value Seal produced; absent values stay absent.
func (s *Sealer) Open(v *string) (*string, error) {
	if v == nil {
		return nil, nil
	}
	if s == nil {
		return nil, errors.New("sealed value found but no vault key is configured")
	}
	ct, ok := strings.CutPrefix(*v, sealedPrefix)
	if !ok {
		return nil, errors.New("value is not in sealed format")
	}
	pt, err := Decrypt(ct, s.key)
	if err != nil {
		return nil, err
	}
	return &pt, nil
}

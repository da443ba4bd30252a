// Package cryptoutil seals the backend API tokens that sessions carry, so a
// Redis dump does not hand out usable bearer tokens.
package cryptoutil

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Encryptor seals and opens short secrets.
type Encryptor interface {
	Encrypt(plaintext []byte) (string, error)
	Decrypt(ciphertext string) ([]byte, error)
}

const (
	sealedPrefix = "v1:"
	plainPrefix  = "plain:"
	keySize      = 32
)

// ErrUnknownFormat is returned for ciphertext neither encryptor produced.
var ErrUnknownFormat = errors.New("unknown ciphertext format")

// AESGCMEncryptor seals with AES-256-GCM. Output is "v1:" + base64(nonce||ct).
type AESGCMEncryptor struct {
	aead cipher.AEAD
}

// NewAESGCMEncryptor builds an encryptor from a 32 byte key.
func NewAESGCMEncryptor(key []byte) (*AESGCMEncryptor, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("aes-gcm key must be %d bytes, got %d", keySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AESGCMEncryptor{aead: aead}, nil
}

// DeriveKey turns a configured secret into an AES key. A 64 character hex
// string is used as is; anything else is hashed with SHA-256.
func DeriveKey(secret string) []byte {
	if b, err := hex.DecodeString(secret); err == nil && len(b) == keySize {
		return b
	}
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

// FromSecret returns an AES-GCM encryptor for secret, or NoopEncryptor when
// secret is empty.
//
//nolint:ireturn // callers only need the interface
func FromSecret(secret string) (Encryptor, error) {
	if strings.TrimSpace(secret) == "" {
		return NoopEncryptor{}, nil
	}
	return NewAESGCMEncryptor(DeriveKey(secret))
}

// Encrypt seals plaintext under a fresh random nonce.
func (e *AESGCMEncryptor) Encrypt(plaintext []byte) (string, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}
	out := e.aead.Seal(nonce, nonce, plaintext, nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt opens values produced by Encrypt. Values written by NoopEncryptor
// are accepted too, so enabling a key does not sign everyone out.
func (e *AESGCMEncryptor) Decrypt(ciphertext string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(ciphertext, plainPrefix); ok {
		return decodePlain(rest)
	}
	rest, ok := strings.CutPrefix(ciphertext, sealedPrefix)
	if !ok {
		return nil, ErrUnknownFormat
	}
	raw, err := base64.StdEncoding.DecodeString(rest)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}
	n := e.aead.NonceSize()
	if len(raw) < n {
		return nil, errors.New("ciphertext too short")
	}
	pt, err := e.aead.Open(nil, raw[:n], raw[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("open ciphertext: %w", err)
	}
	return pt, nil
}

// NoopEncryptor only encodes. Used when no session key is configured.
type NoopEncryptor struct{}

func (NoopEncryptor) Encrypt(plaintext []byte) (string, error) {
	return plainPrefix + base64.StdEncoding.EncodeToString(plaintext), nil
}

func (NoopEncryptor) Decrypt(ciphertext string) ([]byte, error) {
	rest, ok := strings.CutPrefix(ciphertext, plainPrefix)
	if !ok {
		return nil, ErrUnknownFormat
	}
	return decodePlain(rest)
}

func decodePlain(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode plain value: %w", err)
	}
	return b, nil
}

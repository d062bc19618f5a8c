package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// ErrSealedValue is returned when a sealed value is malformed or fails
// authentication (wrong key, tampered, truncated).
var ErrSealedValue = errors.New("cryptox: invalid sealed value")

const sealInfo = "cinedash client storage v1"

// Sealer encrypts small values (bearer tokens) before they are written to
// client storage. It uses XChaCha20-Poly1305 so random nonces are safe.
// The zero value is not usable; construct with NewSealer.
type Sealer struct {
	key []byte
}

// NewSealer derives a 256-bit key from secret with HKDF-SHA256.
// An empty secret is rejected; use NewEphemeralSealer for development.
func NewSealer(secret []byte) (*Sealer, error) {
	if len(secret) == 0 {
		return nil, errors.New("cryptox: empty sealing secret")
	}

	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, secret, nil, []byte(sealInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("failed to derive sealing key: %w", err)
	}

	return &Sealer{key: key}, nil
}

// NewEphemeralSealer returns a Sealer with a random key. Values sealed with it
// do not survive a restart, which in practice logs everybody out.
func NewEphemeralSealer() (*Sealer, error) {
	secret := make([]byte, TokenSize256)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate ephemeral secret: %w", err)
	}
	return NewSealer(secret)
}

// Seal encrypts plaintext and binds it to aad (the storage key it is written
// under) so a sealed value cannot be replayed under another client id.
// The output is base64url([24-byte nonce][ciphertext+tag]).
func (s *Sealer) Seal(plaintext, aad string) (string, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := aead.Seal(nonce, nonce, []byte(plaintext), []byte(aad))
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed, aad string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", ErrSealedValue
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return "", ErrSealedValue
	}

	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, []byte(aad))
	if err != nil {
		return "", ErrSealedValue
	}

	return string(plaintext), nil
}

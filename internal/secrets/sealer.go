// internal/secrets/sealer.go
package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/box"
)

// Sealer encrypts a secret value for a repository public key.
type Sealer interface {
	// Seal encrypts plaintext for the base64 public key and returns the
	// base64 ciphertext.
	Seal(publicKey string, plaintext []byte) (string, error)
}

// BoxSealer seals values with an anonymous NaCl sealed box, the format
// GitHub Actions expects for encrypted secrets.
type BoxSealer struct {
	// Rand defaults to crypto/rand.
	Rand io.Reader
}

// Seal implements Sealer.
func (s BoxSealer) Seal(publicKey string, plaintext []byte) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(publicKey)
	if err != nil {
		return "", fmt.Errorf("failed to decode public key: %w", err)
	}
	if len(raw) != 32 {
		return "", fmt.Errorf("public key must be 32 bytes, got %d", len(raw))
	}
	var key [32]byte
	copy(key[:], raw)

	rnd := s.Rand
	if rnd == nil {
		rnd = rand.Reader
	}
	sealed, err := box.SealAnonymous(nil, plaintext, &key, rnd)
	if err != nil {
		return "", fmt.Errorf("failed to seal secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

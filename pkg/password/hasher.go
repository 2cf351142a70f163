package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltLength is the number of random bytes generated per account.
	SaltLength = 16
	// DigestLength is the fixed width of the derived key.
	DigestLength = 32

	pbkdf2Iterations = 200_000
)

// Hasher derives and verifies password digests. The auth service depends on
// this interface only, so the derivation function can be swapped without
// touching the service contract.
type Hasher interface {
	Hash(password string, salt []byte) []byte
	Verify(password string, salt, digest []byte) bool
}

// NewSalt returns SaltLength cryptographically random bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("crypto/rand failed: %w", err)
	}
	return salt, nil
}

type pbkdf2Hasher struct {
	iterations int
}

// NewPBKDF2Hasher returns the default PBKDF2-HMAC-SHA256 hasher.
func NewPBKDF2Hasher() Hasher {
	return &pbkdf2Hasher{iterations: pbkdf2Iterations}
}

func (h *pbkdf2Hasher) Hash(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, h.iterations, DigestLength, sha256.New)
}

// Verify recomputes the digest and compares in constant time so the caller
// cannot learn anything from response timing beyond the full fixed-width compare.
func (h *pbkdf2Hasher) Verify(password string, salt, digest []byte) bool {
	candidate := h.Hash(password, salt)
	return subtle.ConstantTimeCompare(candidate, digest) == 1
}

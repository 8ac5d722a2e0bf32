// Package hasher turns credentials into stored digests.
//
// SHA256 reproduces the digest format of existing user records: unsalted
// lowercase hex. It is weak against offline guessing and is kept only so those
// records keep working. Bcrypt is the stronger drop-in replacement; callers
// depend on CredentialHasher and never on a concrete scheme.
package hasher

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// CredentialHasher produces and checks password digests.
type CredentialHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// Digest returns the lowercase hex SHA-256 of the UTF-8 bytes of password.
func Digest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// SHA256 is the unsalted digest scheme.
type SHA256 struct{}

func (SHA256) Hash(password string) (string, error) {
	return Digest(password), nil
}

func (SHA256) Verify(password, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(Digest(password)), []byte(digest)) == 1
}

// Bcrypt hashes with golang.org/x/crypto/bcrypt at the given cost.
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (Bcrypt) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// New picks a scheme by name: "sha256" (default) or "bcrypt".
func New(scheme string) (CredentialHasher, error) {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "", "sha256":
		return SHA256{}, nil
	case "bcrypt":
		return Bcrypt{}, nil
	default:
		return nil, fmt.Errorf("hasher: unknown scheme %q", scheme)
	}
}

// Package auth decides how passwords are kept in the users document.
//
// Two modes exist. "bcrypt" stores a salted bcrypt hash and is the default.
// "plaintext" stores the password verbatim, matching documents written by
// earlier versions of the tracker. In bcrypt mode, stored values that are not
// bcrypt hashes are still compared verbatim so old documents keep working.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	ModeBcrypt    = "bcrypt"
	ModePlaintext = "plaintext"
)

// Hasher turns a password into the value persisted for a user and checks
// candidate passwords against it.
type Hasher interface {
	Hash(password string) (string, error)
	Matches(stored, password string) bool
}

// NewHasher returns the hasher for a PASSWORD_STORAGE mode.
func NewHasher(mode string) (Hasher, error) {
	switch mode {
	case ModeBcrypt, "":
		return BcryptHasher{Cost: bcrypt.DefaultCost}, nil
	case ModePlaintext:
		return PlaintextHasher{}, nil
	default:
		return nil, fmt.Errorf("unknown password storage mode %q", mode)
	}
}

// BcryptHasher stores bcrypt hashes of the base64 SHA-256 digest of the
// password, so passwords longer than bcrypt's 72-byte input still hash.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	const op = "auth.BcryptHasher.Hash"
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword(prehash(password), cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

func (h BcryptHasher) Matches(stored, password string) bool {
	if !IsBcryptHash(stored) {
		return equal(stored, password)
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), prehash(password)) == nil
}

func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

// PlaintextHasher stores passwords verbatim.
type PlaintextHasher struct{}

func (PlaintextHasher) Hash(password string) (string, error) {
	return password, nil
}

func (PlaintextHasher) Matches(stored, password string) bool {
	return equal(stored, password)
}

// IsBcryptHash reports whether s looks like a bcrypt hash ($2a$, $2b$ or $2y$).
func IsBcryptHash(s string) bool {
	if len(s) != 60 {
		return false
	}
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Package crypto implements server-side password hashing and token generation.
package crypto

import (
	"crypto/rand"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor applied to new password hashes.
const BcryptCost = 12

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// NewToken returns an opaque hex-encoded bearer token with 256 bits of entropy.
func NewToken() (string, error) {
	b, err := RandBytes(32)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password []byte) ([]byte, error) {
	return bcrypt.GenerateFromPassword(password, BcryptCost)
}

// VerifyPassword verifies password against a stored bcrypt hash.
func VerifyPassword(password, expected []byte) bool {
	return bcrypt.CompareHashAndPassword(expected, password) == nil
}

package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for password hashing. bcrypt.DefaultCost is
// 10, matching the cost the rest of the system was provisioned for.
const BcryptCost = bcrypt.DefaultCost

// HashPassword derives a salted bcrypt hash from a plaintext password. The
// plaintext is never stored or logged.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword checks a plaintext password against a stored bcrypt hash.
// An empty hash (Google-only account) verifies as false, not as an error, so
// password login for such accounts fails the same way a wrong password does.
// The comparison itself is constant-time, delegated to bcrypt.
func VerifyPassword(hash, plaintext string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Cost used for admin password hashes. Logins are rare so the default is fine.
const Cost = bcrypt.DefaultCost

var ErrMalformedHash = errors.New("security: not a bcrypt hash")

// HashPassword hashes a plain text password with bcrypt.
// Passwords longer than 72 bytes are rejected by bcrypt itself.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a plaintext password.
func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

// ValidateHash reports whether hash is something CheckPassword can ever accept.
// A typo in ADMIN_PASSWORD_HASH would otherwise lock the dashboard silently.
func ValidateHash(hash string) error {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
	return nil
}

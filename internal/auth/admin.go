package auth

import (
	"crypto/subtle"
	"errors"

	"github.com/kicon/kiconapi/internal/security"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Admin is the single dashboard account configured through the environment.
type Admin struct {
	username     string
	passwordHash string
}

// NewAdmin prefers a precomputed bcrypt hash; a plain password is hashed once here.
// With neither, every login fails. A configured hash that bcrypt cannot parse is an error.
func NewAdmin(username, password, passwordHash string) (*Admin, error) {
	if passwordHash != "" {
		if err := security.ValidateHash(passwordHash); err != nil {
			return nil, err
		}
	}

	if passwordHash == "" && password != "" {
		h, err := security.HashPassword(password)
		if err != nil {
			return nil, err
		}
		passwordHash = h
	}

	return &Admin{username: username, passwordHash: passwordHash}, nil
}

func (a *Admin) Authenticate(username, password string) error {
	if a.passwordHash == "" || a.username == "" {
		return ErrInvalidCredentials
	}

	sameUser := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	err := security.CheckPassword(a.passwordHash, password)

	if !sameUser || err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrWrongPassword = errors.New("incorrect admin password")
	ErrEmptyPassword = errors.New("admin password must not be empty")
)

// Gate is the admin password check guarding destructive dashboard actions.
// There is exactly one admin; the password is configured at startup and only
// its bcrypt hash is kept in memory.
type Gate struct {
	hash []byte
}

// NewGate hashes the configured admin password.
func NewGate(password string) (*Gate, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &Gate{hash: hash}, nil
}

// Check verifies a password attempt.
func (g *Gate) Check(password string) error {
	if err := bcrypt.CompareHashAndPassword(g.hash, []byte(password)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

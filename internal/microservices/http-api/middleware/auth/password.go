package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest input bcrypt hashes without truncation.
const MaxPasswordBytes = 72

var (
	ErrPasswordTooLong  = errors.New("password exceeds 72 bytes")
	ErrPasswordMismatch = errors.New("password does not match")
)

// Cost is the bcrypt work factor used for new hashes.
var Cost = bcrypt.DefaultCost

// placeholderHash is compared against when the account does not exist so
// that both login failure paths take the same time.
var placeholderHash, _ = bcrypt.GenerateFromPassword([]byte("cinetrack-placeholder"), bcrypt.DefaultCost)

// HashPassword returns the bcrypt hash of an account password.
func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports ErrPasswordMismatch when provided does not hash to stored.
func VerifyPassword(stored, provided string) error {
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(provided))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}

// RejectUnknownUser burns one comparison against a fixed hash and always fails.
func RejectUnknownUser(provided string) error {
	bcrypt.CompareHashAndPassword(placeholderHash, []byte(provided))
	return ErrPasswordMismatch
}

package crypto

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrMalformedHash marks a stored hash that bcrypt cannot parse. This is a
// data/configuration problem, not a wrong password.
var ErrMalformedHash = errors.New("malformed password hash")

// HashPassword hashes a password with bcrypt at the given cost. Each call
// uses a fresh random salt, so two hashes of the same password differ.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword compares a plaintext password against a stored bcrypt hash.
// A mismatch returns (false, nil); only an unparseable hash returns an error.
func CheckPassword(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
}

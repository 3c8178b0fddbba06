package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Hash hashes a password with bcrypt at the configured cost and returns the
// encoded digest string. The digest embeds its own salt and cost, so Verify
// needs no configuration.
func (c Config) Hash(plain string) (string, error) {
	cost := c.Cost
	if cost == 0 {
		cost = DefaultCost
	}

	// bcrypt silently truncates beyond 72 bytes; reject instead so two
	// different long passwords can never verify against the same digest.
	if len(plain) > 72 {
		return "", errors.New("password longer than 72 bytes")
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify checks whether plain matches the given digest.
// Returns (true, nil) for a match, (false, nil) for a mismatch, and
// (false, ErrInvalidDigest) for malformed digests. The comparison inside
// bcrypt is constant-time.
func Verify(plain, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, ErrInvalidDigest
	}
}

package session

import "errors"

var (
	// ErrInvalidToken is returned when an access token fails verification or validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrChallengeNotFound is returned when a face-verification challenge does not
	// exist, has expired, or has already been consumed. Callers must not
	// distinguish these cases to avoid leaking challenge state.
	ErrChallengeNotFound = errors.New("challenge not found")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)

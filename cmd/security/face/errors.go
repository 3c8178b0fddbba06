package face

import "errors"

// Public, stable errors for callers.
var (
	ErrLengthMismatch = errors.New("descriptors must have the same length")
	ErrInvalidElement = errors.New("descriptor contains a non-finite element")
)

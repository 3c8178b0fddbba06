package password

import "errors"

// Strength rule errors. Messages are user-facing: enrollment surfaces them
// verbatim, so they must describe the fix, not the internals.
var (
	ErrTooShort    = errors.New("password must be at least 8 characters long")
	ErrNoUppercase = errors.New("password must contain at least one uppercase letter")
	ErrNoLowercase = errors.New("password must contain at least one lowercase letter")
	ErrNoDigit     = errors.New("password must contain at least one digit")
	ErrNoSymbol    = errors.New("password must contain at least one special character (!@#$%^&*...)")
	ErrTooCommon   = errors.New("this password is too common; please choose a stronger one")
)

// ErrInvalidDigest is returned when Verify is given a malformed digest.
var ErrInvalidDigest = errors.New("invalid password digest")

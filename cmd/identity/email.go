package identity

import (
	"regexp"
	"strings"
)

const maxEmailLength = 255

// Deliberately conservative: letters, digits, dots, hyphens, underscores,
// plus and percent in the local part; a domain label and a >=2 letter
// top-level label. Stricter than RFC 5322 by design.
var emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// NormalizeEmail performs case-insensitive canonicalization (trim + lower).
// The normalized form is what gets stored and compared.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidateEmail checks an email address before normalization.
// Errors are user-facing; enrollment surfaces them verbatim.
func ValidateEmail(email string) error {
	const op = "identity.ValidateEmail"

	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "email is required"}
	}
	if len(trimmed) > maxEmailLength {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "email is too long (maximum 255 characters)"}
	}
	if !emailRe.MatchString(trimmed) {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "invalid email format; a valid example: user@domain.com"}
	}
	if strings.Contains(trimmed, "..") {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "email must not contain consecutive dots"}
	}

	// The regex guarantees exactly one "@" with non-empty sides; the dot
	// rule on the local part is checked separately for a clearer message.
	local := trimmed[:strings.IndexByte(trimmed, '@')]
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "email must not start or end with a dot"}
	}

	return nil
}

package identity

import (
	"time"

	"facegate/cmd/identity/ids"
)

// NewULID returns a new ULID (26-char string). Identity IDs are assigned by
// the store at creation and immutable thereafter.
func NewULID(now time.Time) (string, error) {
	return ids.NewULID(now)
}

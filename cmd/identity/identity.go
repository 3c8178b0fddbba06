package identity

import (
	"fmt"
	"time"
)

// Role authorizes elevated operations. Assigned at creation.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole validates a role string. Empty defaults to RoleUser.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleUser, "":
		return RoleUser, nil
	default:
		return "", OpError{Op: "identity.ParseRole", Kind: ErrInvalidInput, Msg: fmt.Sprintf("unknown role %q", s)}
	}
}

// Identity is Facegate's canonical security principal.
//
// IMPORTANT: PasswordDigest and FaceDescriptor never leave the store
// boundary except into the authentication workflow; public projections
// must exclude both.
type Identity struct {
	ID       string
	Username string // unique, case-sensitive, immutable
	Email    string // unique, stored normalized (trimmed, lower-case)

	PasswordDigest string // bcrypt digest; plaintext never persists

	// FaceDescriptor is the enrolled biometric fingerprint: exactly 128
	// floats, immutable once enrolled.
	FaceDescriptor []float64

	Role Role

	FirstName string
	LastName  string

	CreatedAt time.Time
}

// CreateInput describes a fully validated identity ready for persistence.
// The store assigns ID and CreatedAt; both are immutable thereafter.
type CreateInput struct {
	Username       string
	Email          string // must already be normalized
	PasswordDigest string
	FaceDescriptor []float64
	Role           Role
	FirstName      string
	LastName       string
	Now            time.Time
}

// DescriptorRecord pairs an enrolled descriptor with its owner, for the
// enrollment-time global uniqueness scan.
type DescriptorRecord struct {
	IdentityID     string
	Username       string
	FaceDescriptor []float64
}

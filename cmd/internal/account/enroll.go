package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"facegate/cmd/identity"
	"facegate/cmd/security/face"
	"facegate/cmd/security/password"
)

const maxNameLength = 100

// EnrollInput carries raw, untrusted enrollment fields. Role defaults to
// user when empty; only admin callers may set it (enforced at the API).
type EnrollInput struct {
	Username       string
	PasswordPlain  string
	FirstName      string
	LastName       string
	Email          string
	FaceDescriptor []float64
	Role           identity.Role
}

// Enroll validates in and creates the identity. The chain fails fast:
// the first violated rule is returned and no store mutation happens.
// Password-policy violations are the exception and are reported all at
// once. Every error message is user-facing and surfaced verbatim.
func (s *Service) Enroll(ctx context.Context, in EnrollInput, now time.Time) (identity.Identity, error) {
	const op = "account.Enroll"

	// Descriptor integrity comes before everything else: a malformed
	// descriptor must never get near the store.
	if err := face.ValidateDescriptor(in.FaceDescriptor); err != nil {
		return identity.Identity{}, identity.OpError{Op: op, Kind: identity.ErrInvalidInput, Msg: err.Error()}
	}

	if err := identity.ValidateEmail(in.Email); err != nil {
		return identity.Identity{}, err
	}
	email := identity.NormalizeEmail(in.Email)

	taken, err := s.store.ExistsByEmail(ctx, email)
	if err != nil {
		return identity.Identity{}, err
	}
	if taken {
		return identity.Identity{}, identity.ConflictError{Op: op, Field: "email", Msg: "email is already registered"}
	}

	firstName, err := validateName(op, "first name", in.FirstName)
	if err != nil {
		return identity.Identity{}, err
	}
	lastName, err := validateName(op, "last name", in.LastName)
	if err != nil {
		return identity.Identity{}, err
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		return identity.Identity{}, identity.OpError{Op: op, Kind: identity.ErrInvalidInput, Msg: "username is required"}
	}
	taken, err = s.store.Exists(ctx, username)
	if err != nil {
		return identity.Identity{}, err
	}
	if taken {
		return identity.Identity{}, identity.ConflictError{Op: op, Field: "username", Msg: "username is already taken"}
	}

	if err := s.rejectEnrolledFace(ctx, op, in.FaceDescriptor); err != nil {
		return identity.Identity{}, err
	}

	if res := password.ValidateStrength(in.PasswordPlain); !res.Valid {
		msgs := make([]string, 0, len(res.Errors))
		for _, e := range res.Errors {
			msgs = append(msgs, e.Error())
		}
		return identity.Identity{}, identity.OpError{Op: op, Kind: identity.ErrInvalidInput, Msg: strings.Join(msgs, "; ")}
	}

	digest, err := s.passwords.Hash(in.PasswordPlain)
	if err != nil {
		return identity.Identity{}, err
	}

	role, err := identity.ParseRole(string(in.Role))
	if err != nil {
		return identity.Identity{}, err
	}

	// The single mutating call. The store's unique indexes are the
	// authoritative uniqueness guard; a ConflictError here wins over the
	// fast-reject checks above.
	return s.store.Create(ctx, identity.CreateInput{
		Username:       username,
		Email:          email,
		PasswordDigest: digest,
		FaceDescriptor: in.FaceDescriptor,
		Role:           role,
		FirstName:      firstName,
		LastName:       lastName,
		Now:            now,
	})
}

// rejectEnrolledFace runs the global biometric-collision scan: the
// candidate descriptor is compared against every enrolled one. Linear in
// the number of identities; there is no index and no storage backstop.
func (s *Service) rejectEnrolledFace(ctx context.Context, op string, candidate []float64) error {
	recs, err := s.store.ListDescriptors(ctx)
	if err != nil {
		return err
	}

	for _, rec := range recs {
		similar, err := s.face.Similar(candidate, rec.FaceDescriptor)
		if err != nil {
			return err
		}
		if similar {
			return identity.ConflictError{
				Op:    op,
				Field: "face_descriptor",
				Msg:   fmt.Sprintf("face is already enrolled for user %q", rec.Username),
			}
		}
	}
	return nil
}

func validateName(op, label, raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", identity.OpError{Op: op, Kind: identity.ErrInvalidInput, Msg: label + " is required"}
	}
	if len(trimmed) > maxNameLength {
		return "", identity.OpError{Op: op, Kind: identity.ErrInvalidInput, Msg: label + " is too long (maximum 100 characters)"}
	}
	return trimmed, nil
}

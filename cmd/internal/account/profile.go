package account

import (
	"context"
	"time"

	"facegate/cmd/identity"
)

// Profile is the public projection of an identity. It never carries the
// password digest or the face descriptor; that exclusion is a contract,
// not a serialization detail.
type Profile struct {
	ID        string
	Username  string
	FirstName string
	LastName  string
	FullName  string
	Email     string
	Role      identity.Role
	CreatedAt time.Time
}

func toProfile(ident identity.Identity) Profile {
	return Profile{
		ID:        ident.ID,
		Username:  ident.Username,
		FirstName: ident.FirstName,
		LastName:  ident.LastName,
		FullName:  ident.FirstName + " " + ident.LastName,
		Email:     ident.Email,
		Role:      ident.Role,
		CreatedAt: ident.CreatedAt,
	}
}

// PublicProfile resolves an identity id to its public projection.
// Returns a not-found error when the id does not resolve.
func (s *Service) PublicProfile(ctx context.Context, identityID string) (Profile, error) {
	ident, err := s.store.FindByID(ctx, identityID)
	if err != nil {
		return Profile{}, err
	}
	return toProfile(ident), nil
}

// ListProfiles returns the public projection of every identity, most
// recent first. Authorization (admin only) is enforced by the caller.
func (s *Service) ListProfiles(ctx context.Context) ([]Profile, error) {
	idents, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	profiles := make([]Profile, 0, len(idents))
	for _, ident := range idents {
		profiles = append(profiles, toProfile(ident))
	}
	return profiles, nil
}

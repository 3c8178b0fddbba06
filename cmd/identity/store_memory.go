package identity

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is a dev-mode fallback when DB is not configured, and the
// workflow test double. It enforces the same uniqueness contract as the
// Postgres store: Create is the authoritative guard for username/email.
type MemoryStore struct {
	mu         sync.Mutex
	byID       map[string]Identity
	byUsername map[string]string // username -> id
	byEmail    map[string]string // normalized email -> id
}

// NewMemoryStore constructs an empty in-memory Store implementation.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[string]Identity),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
	}
}

// Create persists an identity, assigning ID and CreatedAt under the lock so
// the check-then-insert is atomic (unlike the workflow-level fast checks).
func (s *MemoryStore) Create(ctx context.Context, in CreateInput) (Identity, error) {
	const op = "identity.Create"

	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}
	if strings.TrimSpace(in.Username) == "" {
		return Identity{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "username is required"}
	}
	if strings.TrimSpace(in.Email) == "" {
		return Identity{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "email is required"}
	}
	if in.PasswordDigest == "" {
		return Identity{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "password digest is required"}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUsername[in.Username]; taken {
		return Identity{}, ConflictError{Op: op, Field: "username"}
	}
	if _, taken := s.byEmail[in.Email]; taken {
		return Identity{}, ConflictError{Op: op, Field: "email"}
	}

	id, err := NewULID(now)
	if err != nil {
		return Identity{}, err
	}

	ident := Identity{
		ID:             id,
		Username:       in.Username,
		Email:          in.Email,
		PasswordDigest: in.PasswordDigest,
		FaceDescriptor: append([]float64(nil), in.FaceDescriptor...),
		Role:           in.Role,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		CreatedAt:      now,
	}

	s.byID[id] = ident
	s.byUsername[in.Username] = id
	s.byEmail[in.Email] = id

	return ident, nil
}

// FindByUsername looks up an identity by its case-sensitive username.
func (s *MemoryStore) FindByUsername(ctx context.Context, username string) (Identity, error) {
	const op = "identity.FindByUsername"
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byUsername[username]
	if !ok {
		return Identity{}, NotFoundError{Op: op, Resource: "identity"}
	}
	return s.byID[id], nil
}

// FindByID looks up an identity by its ULID.
func (s *MemoryStore) FindByID(ctx context.Context, id string) (Identity, error) {
	const op = "identity.FindByID"
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ident, ok := s.byID[id]
	if !ok {
		return Identity{}, NotFoundError{Op: op, Resource: "identity"}
	}
	return ident, nil
}

// FindByEmail looks up an identity by its normalized email.
func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (Identity, error) {
	const op = "identity.FindByEmail"
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return Identity{}, NotFoundError{Op: op, Resource: "identity"}
	}
	return s.byID[id], nil
}

// Exists reports whether a username is taken.
func (s *MemoryStore) Exists(ctx context.Context, username string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.byUsername[username]
	return ok, nil
}

// ExistsByEmail reports whether a normalized email is taken.
func (s *MemoryStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.byEmail[email]
	return ok, nil
}

// ListAll returns all identities, most recent first.
func (s *MemoryStore) ListAll(ctx context.Context) ([]Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Identity, 0, len(s.byID))
	for _, ident := range s.byID {
		out = append(out, ident)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		// ULIDs are time-ordered; break ties the same way Postgres does.
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// ListDescriptors returns every enrolled descriptor with its owner.
func (s *MemoryStore) ListDescriptors(ctx context.Context) ([]DescriptorRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]DescriptorRecord, 0, len(s.byID))
	for _, ident := range s.byID {
		out = append(out, DescriptorRecord{
			IdentityID:     ident.ID,
			Username:       ident.Username,
			FaceDescriptor: append([]float64(nil), ident.FaceDescriptor...),
		})
	}
	return out, nil
}

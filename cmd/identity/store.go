package identity

import "context"

// Store is the identity persistence boundary (the external collaborator of
// the enrollment and authentication workflows).
//
// Uniqueness contract:
//   - Create fails with a ConflictError when a storage-level uniqueness
//     constraint (username, email) is violated. The store is the single
//     source of truth for those invariants; Exists/ExistsByEmail are
//     fast-reject optimizations for the workflows, not guards.
//   - Face uniqueness has no storage-level backstop: it is enforced by the
//     enrollment workflow via ListDescriptors, and remains racy under
//     concurrent enrollment.
type Store interface {
	Create(ctx context.Context, in CreateInput) (Identity, error)

	// Lookups return ErrNotFound (via NotFoundError) when absent.
	FindByUsername(ctx context.Context, username string) (Identity, error)
	FindByID(ctx context.Context, id string) (Identity, error)
	FindByEmail(ctx context.Context, email string) (Identity, error)

	Exists(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ListAll returns every identity, most recent first.
	ListAll(ctx context.Context) ([]Identity, error)

	// ListDescriptors returns every enrolled descriptor with its owner.
	ListDescriptors(ctx context.Context) ([]DescriptorRecord, error)
}

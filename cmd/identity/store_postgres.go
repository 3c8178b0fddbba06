package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements identity persistence over PostgreSQL.
//
// Design notes:
// - The pgx pool is owned by the caller; this store must NOT close it.
// - Schema/table identifiers are safely quoted to avoid SQL injection via identifiers.
// - Unique indexes on username and email are the authoritative uniqueness
//   guard; their violations are mapped to ConflictError.
// - face_descriptor is a float8[] column; pgx maps it to []float64.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the identity store (default "facegate").
// The schema name is validated to be a legal PostgreSQL identifier.
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("identity: empty schema")
		}
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("identity: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore with secure defaults.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: "facegate",
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}
	return st, nil
}

const identityColumns = `id, username, email, password_digest, face_descriptor, role, first_name, last_name, created_at`

// Create persists a validated identity, assigning its ID and CreatedAt.
//
// The caller is expected to have run the full enrollment validation chain;
// this method still treats the unique indexes as the source of truth and
// reports their violations as conflicts.
func (s *PostgresStore) Create(ctx context.Context, in CreateInput) (Identity, error) {
	const op = "identity.Create"

	if s == nil || s.pool == nil {
		return Identity{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
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

	id, err := NewULID(now)
	if err != nil {
		return Identity{}, err
	}

	identities := pgIdent(s.schema, "identities")

	_, err = s.pool.Exec(ctx,
		`INSERT INTO `+identities+` (
		     id, username, email, password_digest, face_descriptor, role, first_name, last_name, created_at
		   ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id,
		in.Username,
		in.Email,
		in.PasswordDigest,
		in.FaceDescriptor,
		string(in.Role),
		in.FirstName,
		in.LastName,
		now,
	)
	if err != nil {
		if field, ok := pgClassifyUniqueViolation(err); ok {
			return Identity{}, ConflictError{Op: op, Field: field}
		}
		return Identity{}, err
	}

	return Identity{
		ID:             id,
		Username:       in.Username,
		Email:          in.Email,
		PasswordDigest: in.PasswordDigest,
		FaceDescriptor: in.FaceDescriptor,
		Role:           in.Role,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		CreatedAt:      now,
	}, nil
}

// FindByUsername looks up an identity by its case-sensitive username.
func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (Identity, error) {
	const op = "identity.FindByUsername"
	return s.findOne(ctx, op, `username = $1`, username)
}

// FindByID looks up an identity by its ULID.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (Identity, error) {
	const op = "identity.FindByID"
	return s.findOne(ctx, op, `id = $1`, id)
}

// FindByEmail looks up an identity by its normalized email.
func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (Identity, error) {
	const op = "identity.FindByEmail"
	return s.findOne(ctx, op, `email = $1`, email)
}

// Exists reports whether a username is taken.
func (s *PostgresStore) Exists(ctx context.Context, username string) (bool, error) {
	const op = "identity.Exists"
	return s.exists(ctx, op, `username = $1`, username)
}

// ExistsByEmail reports whether a normalized email is taken.
func (s *PostgresStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const op = "identity.ExistsByEmail"
	return s.exists(ctx, op, `email = $1`, email)
}

// ListAll returns all identities, most recent first.
func (s *PostgresStore) ListAll(ctx context.Context) ([]Identity, error) {
	const op = "identity.ListAll"

	if s == nil || s.pool == nil {
		return nil, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	identities := pgIdent(s.schema, "identities")

	rows, err := s.pool.Query(ctx,
		`SELECT `+identityColumns+`
		   FROM `+identities+`
		  ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Identity
	for rows.Next() {
		ident, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ident)
	}
	return out, rows.Err()
}

// ListDescriptors returns every enrolled descriptor with its owner.
func (s *PostgresStore) ListDescriptors(ctx context.Context) ([]DescriptorRecord, error) {
	const op = "identity.ListDescriptors"

	if s == nil || s.pool == nil {
		return nil, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	identities := pgIdent(s.schema, "identities")

	rows, err := s.pool.Query(ctx,
		`SELECT id, username, face_descriptor FROM `+identities,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DescriptorRecord
	for rows.Next() {
		var rec DescriptorRecord
		if err := rows.Scan(&rec.IdentityID, &rec.Username, &rec.FaceDescriptor); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ---- helpers ----

func (s *PostgresStore) findOne(ctx context.Context, op, where string, arg any) (Identity, error) {
	if s == nil || s.pool == nil {
		return Identity{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}
	if str, ok := arg.(string); ok && strings.TrimSpace(str) == "" {
		return Identity{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "missing lookup key"}
	}

	identities := pgIdent(s.schema, "identities")

	row := s.pool.QueryRow(ctx,
		`SELECT `+identityColumns+`
		   FROM `+identities+`
		  WHERE `+where,
		arg,
	)

	ident, err := scanIdentity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Identity{}, NotFoundError{Op: op, Resource: "identity"}
		}
		return Identity{}, err
	}
	return ident, nil
}

func (s *PostgresStore) exists(ctx context.Context, op, where string, arg any) (bool, error) {
	if s == nil || s.pool == nil {
		return false, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	identities := pgIdent(s.schema, "identities")

	var one int
	err := s.pool.QueryRow(ctx,
		`SELECT 1 FROM `+identities+` WHERE `+where, arg,
	).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row rowScanner) (Identity, error) {
	var (
		out  Identity
		role string
	)
	err := row.Scan(
		&out.ID,
		&out.Username,
		&out.Email,
		&out.PasswordDigest,
		&out.FaceDescriptor,
		&role,
		&out.FirstName,
		&out.LastName,
		&out.CreatedAt,
	)
	if err != nil {
		return Identity{}, err
	}
	out.Role = Role(role)
	return out, nil
}

// pgIdent safely quotes a schema-qualified identifier: "schema"."name".
func pgIdent(schema, name string) string {
	return pgx.Identifier{schema, name}.Sanitize()
}

func pgClassifyUniqueViolation(err error) (field string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != "23505" { // unique_violation
		return "", false
	}

	// Prefer stable schema constraint names. Fall back to heuristic substring matching.
	c := strings.ToLower(strings.TrimSpace(pgErr.ConstraintName))

	switch c {
	case "uq_identities_username":
		return "username", true
	case "uq_identities_email":
		return "email", true
	default:
		switch {
		case strings.Contains(c, "username"):
			return "username", true
		case strings.Contains(c, "email"):
			return "email", true
		default:
			return "unique", true
		}
	}
}

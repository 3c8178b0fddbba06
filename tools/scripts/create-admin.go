// Package main seeds the first administrator account directly into the
// identity store, bypassing the HTTP surface. Run it once against a fresh
// database; later admins are enrolled via /users/register by this one.
//
// The face descriptor is read from a JSON file holding 128 floats. Without
// -descriptor a zero vector is stored as a placeholder and face login will
// not work for this account until a real descriptor is enrolled.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"facegate/cmd/identity"
	"facegate/cmd/security/face"
	"facegate/cmd/security/password"
)

func main() {
	var (
		username   = flag.String("username", "", "Admin username (required)")
		email      = flag.String("email", "", "Admin email (required)")
		firstName  = flag.String("first-name", "Admin", "First name")
		lastName   = flag.String("last-name", "User", "Last name")
		descriptor = flag.String("descriptor", "", "Path to a JSON file with a 128-float face descriptor")
		timeout    = flag.Duration("timeout", 10*time.Second, "Overall timeout")
	)
	flag.Parse()

	if strings.TrimSpace(*username) == "" || strings.TrimSpace(*email) == "" {
		fatalf("-username and -email are required")
	}

	dsn := strings.TrimSpace(os.Getenv("FACEGATE_DATABASE_URL"))
	if dsn == "" {
		fatalf("FACEGATE_DATABASE_URL must be set")
	}

	normEmail := identity.NormalizeEmail(*email)
	if err := identity.ValidateEmail(normEmail); err != nil {
		fatalf("invalid -email: %v", err)
	}

	desc, err := loadDescriptor(*descriptor)
	if err != nil {
		fatalf("invalid -descriptor: %v", err)
	}

	plain, err := readPassword()
	if err != nil {
		fatalf("read password: %v", err)
	}
	if res := password.ValidateStrength(plain); !res.Valid {
		fatalf("weak password: %v", joinErrors(res.Errors))
	}

	pwCfg, err := password.FromEnv()
	if err != nil {
		fatalf("password config: %v", err)
	}
	digest, err := pwCfg.Hash(plain)
	if err != nil {
		fatalf("hash password: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		fatalf("connect: %v", err)
	}
	defer pool.Close()

	store, err := identity.NewPostgresStore(pool)
	if err != nil {
		fatalf("store: %v", err)
	}

	if exists, err := store.Exists(ctx, strings.TrimSpace(*username)); err != nil {
		fatalf("check username: %v", err)
	} else if exists {
		fatalf("username %q already exists", *username)
	}

	id, err := store.Create(ctx, identity.CreateInput{
		Username:       strings.TrimSpace(*username),
		Email:          normEmail,
		PasswordDigest: digest,
		FaceDescriptor: desc,
		Role:           identity.RoleAdmin,
		FirstName:      strings.TrimSpace(*firstName),
		LastName:       strings.TrimSpace(*lastName),
		Now:            time.Now().UTC(),
	})
	if err != nil {
		fatalf("create admin: %v", err)
	}

	fmt.Printf("OK: id=%s username=%s role=%s\n", id.ID, id.Username, id.Role)
	if *descriptor == "" {
		fmt.Println("note: placeholder descriptor stored; face login is disabled for this account")
	}
}

// readPassword prompts on stdin. Echo is not suppressed; run this from a
// trusted shell.
func readPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Admin password: ")
	r := bufio.NewReader(os.Stdin)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func loadDescriptor(path string) ([]float64, error) {
	if strings.TrimSpace(path) == "" {
		return make([]float64, face.DescriptorLength), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d []float64
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	if err := face.ValidateDescriptor(d); err != nil {
		return nil, err
	}
	return d, nil
}

func joinErrors(errs []error) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FAIL: "+format+"\n", args...)
	os.Exit(1)
}

package account

import (
	"context"
	"testing"
	"time"

	paseto "aidanwoods.dev/go-paseto"
	"golang.org/x/crypto/bcrypt"

	"facegate/cmd/identity"
	"facegate/cmd/internal/auth/session"
	"facegate/cmd/security/face"
	"facegate/cmd/security/password"
)

// testService builds a Service over an in-memory store with a cheap hash
// cost so enrollment-heavy tests stay fast.
func testService(t *testing.T, cfg Config) (*Service, *identity.MemoryStore) {
	t.Helper()

	sessCfg := session.DefaultConfig()
	sessCfg.PasetoV4SecretKeyHex = paseto.NewV4AsymmetricSecretKey().ExportHex()

	tokens, err := session.NewPasetoV4PublicManager(sessCfg)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}

	store := identity.NewMemoryStore()
	svc := NewService(
		store,
		password.Config{Cost: bcrypt.MinCost},
		face.DefaultConfig(),
		tokens,
		session.NewChallengeStore(sessCfg),
		cfg,
	)
	return svc, store
}

// testDescriptor returns a 128-float descriptor whose first element is v,
// so distinct seeds are far apart under the default threshold.
func testDescriptor(v float64) []float64 {
	d := make([]float64, 128)
	d[0] = v
	return d
}

func testEnrollInput(username string, seed float64) EnrollInput {
	return EnrollInput{
		Username:       username,
		PasswordPlain:  "Str0ng!Pass",
		FirstName:      "Test",
		LastName:       "Identity",
		Email:          username + "@example.com",
		FaceDescriptor: testDescriptor(seed),
	}
}

func mustEnroll(t *testing.T, svc *Service, in EnrollInput) identity.Identity {
	t.Helper()

	ident, err := svc.Enroll(context.Background(), in, time.Now().UTC())
	if err != nil {
		t.Fatalf("enroll %s: %v", in.Username, err)
	}
	return ident
}

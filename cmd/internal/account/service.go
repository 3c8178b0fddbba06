package account

import (
	"facegate/cmd/identity"
	"facegate/cmd/internal/auth/session"
	"facegate/cmd/security/face"
	"facegate/cmd/security/password"
)

// Config tunes workflow behavior that is policy, not code.
type Config struct {
	// RequireServerFaceMatch withholds the access token at login until the
	// client redeems a challenge with a live face descriptor that the
	// server verifies itself. When false (the default), the token is
	// issued on password success and the enrolled descriptor is returned
	// for client-side verification.
	RequireServerFaceMatch bool
}

// Service orchestrates enrollment, login, and profile reads.
type Service struct {
	store      identity.Store
	passwords  password.Config
	face       face.Config
	tokens     session.AccessTokenManager
	challenges *session.ChallengeStore
	cfg        Config
}

// NewService wires a Service. challenges may be nil when
// cfg.RequireServerFaceMatch is false.
func NewService(
	store identity.Store,
	passwords password.Config,
	faceCfg face.Config,
	tokens session.AccessTokenManager,
	challenges *session.ChallengeStore,
	cfg Config,
) *Service {
	return &Service{
		store:      store,
		passwords:  passwords,
		face:       faceCfg,
		tokens:     tokens,
		challenges: challenges,
		cfg:        cfg,
	}
}

package session

import (
	"os"
	"strconv"
	"time"
)

// Config defines all runtime configuration for the session subsystem.
//
// It controls access-token TTL, clock skew tolerance, face-challenge
// policies, and the PASETO v4 signing key.
//
// This struct is intentionally explicit and environment-driven so that
// production deployments can tune security parameters without code changes.
type Config struct {
	// Issuer is the value set in the "iss" claim of access tokens.
	Issuer string

	// AccessTokenTTL defines the lifetime of PASETO access tokens.
	AccessTokenTTL time.Duration

	// ClockSkew defines the allowed time skew during token validation.
	ClockSkew time.Duration

	// ChallengeTTL defines how long a face-verification challenge stays
	// redeemable after a successful password check.
	ChallengeTTL time.Duration

	// ChallengeTokenBytes defines the number of random bytes used
	// to generate opaque challenge tokens.
	ChallengeTokenBytes int

	// PasetoV4SecretKeyHex is the hex-encoded Ed25519 secret key
	// used to sign PASETO v4.public access tokens.
	PasetoV4SecretKeyHex string
}

// DefaultConfig returns a secure default configuration suitable for development.
//
// Production environments should override values via environment variables.
func DefaultConfig() Config {
	return Config{
		Issuer:              "facegate",
		AccessTokenTTL:      24 * time.Hour,
		ClockSkew:           30 * time.Second,
		ChallengeTTL:        2 * time.Minute,
		ChallengeTokenBytes: 32,
	}
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Required:
//   - FACEGATE_PASETO_V4_SECRET_KEY_HEX
//
// Optional (durations must be valid Go duration strings):
//   - FACEGATE_AUTH_ISSUER
//   - FACEGATE_AUTH_ACCESS_TTL
//   - FACEGATE_AUTH_CLOCK_SKEW
//   - FACEGATE_AUTH_CHALLENGE_TTL
//   - FACEGATE_AUTH_CHALLENGE_TOKEN_BYTES
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("FACEGATE_AUTH_ISSUER"); v != "" {
		cfg.Issuer = v
	}

	if v := os.Getenv("FACEGATE_AUTH_ACCESS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.AccessTokenTTL = d
	}

	if v := os.Getenv("FACEGATE_AUTH_CLOCK_SKEW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, ErrConfig
		}
		cfg.ClockSkew = d
	}

	if v := os.Getenv("FACEGATE_AUTH_CHALLENGE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.ChallengeTTL = d
	}

	if v := os.Getenv("FACEGATE_AUTH_CHALLENGE_TOKEN_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 32 || n > 64 {
			return Config{}, ErrConfig
		}
		cfg.ChallengeTokenBytes = n
	}

	cfg.PasetoV4SecretKeyHex = os.Getenv("FACEGATE_PASETO_V4_SECRET_KEY_HEX")
	if cfg.PasetoV4SecretKeyHex == "" {
		return Config{}, ErrConfig
	}

	return cfg, nil
}

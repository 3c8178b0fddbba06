package authapi

import (
	"os"
	"strconv"
	"strings"
)

// Config controls auth API behavior and security defaults.
type Config struct {
	// TrustProxy enables X-Forwarded-For / X-Real-IP resolution for audit
	// records. Only enable behind a trusted reverse proxy.
	TrustProxy bool

	// MaxBodyBytes caps request bodies. Face descriptors are 128 floats,
	// so the default 1 MiB is generous.
	MaxBodyBytes int64

	// RequireServerFaceMatch switches login to the two-phase flow: the
	// token is withheld until POST /auth/login/face redeems the challenge
	// with a matching live descriptor.
	RequireServerFaceMatch bool
}

// LoadConfigFromEnv loads auth config from environment variables with safe defaults.
func LoadConfigFromEnv() Config {
	return Config{
		TrustProxy:             envBool("FACEGATE_AUTH_TRUST_PROXY", false),
		MaxBodyBytes:           envInt64("FACEGATE_AUTH_MAX_BODY_BYTES", 1<<20), // 1 MiB
		RequireServerFaceMatch: envBool("FACEGATE_AUTH_REQUIRE_SERVER_FACE_MATCH", false),
	}
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

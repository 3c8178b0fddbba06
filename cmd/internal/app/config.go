package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr string
	LogLevel string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Browser cross-origin policy. An entry like "http://127.0.0.1:*"
	// allows any port on that host; empty means same-origin only.
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
	CORSMaxAgeSeconds    int

	// If true:
	// - /readyz returns 503 unless DB is configured and reachable.
	ReadinessRequireDB bool

	// Security policy:
	// If true, FACEGATE_TOKEN_HMAC_KEY MUST be set (>= 32 bytes) and
	// challenge-token hashing must be HMAC-based.
	RequireTokenHMAC bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr: EnvString("FACEGATE_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel: EnvString("FACEGATE_LOG_LEVEL", "info"),

		ReadHeaderTimeout: EnvDuration("FACEGATE_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("FACEGATE_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("FACEGATE_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("FACEGATE_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("FACEGATE_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("FACEGATE_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("FACEGATE_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("FACEGATE_DB_MIN_CONNS", 0),

		CORSAllowedOrigins:   EnvStrings("FACEGATE_CORS_ALLOWED_ORIGINS", nil),
		CORSAllowCredentials: EnvBool("FACEGATE_CORS_ALLOW_CREDENTIALS", false),
		CORSMaxAgeSeconds:    EnvInt("FACEGATE_CORS_MAX_AGE_SECONDS", 600),

		ReadinessRequireDB: EnvBool("FACEGATE_READINESS_REQUIRE_DB", false),

		RequireTokenHMAC: EnvBool("FACEGATE_REQUIRE_TOKEN_HMAC", false),
	}
}

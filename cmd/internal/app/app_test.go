package app

import (
	"testing"
	"time"
)

func TestRuntimeBaseURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "explicit localhost", in: "127.0.0.1:8080", want: "http://127.0.0.1:8080"},
		{name: "bind all v4", in: "0.0.0.0:8080", want: "http://127.0.0.1:8080"},
		{name: "bind all v6", in: "[::]:9090", want: "http://127.0.0.1:9090"},
		{name: "ipv6 host", in: "[2001:db8::1]:9090", want: "http://[2001:db8::1]:9090"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := runtimeBaseURL(tc.in)
			if got != tc.want {
				t.Fatalf("runtimeBaseURL(%q)=%q want=%q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNonZeroFallbacks(t *testing.T) {
	t.Parallel()

	if got := nonZeroDuration(0, 5*time.Second); got != 5*time.Second {
		t.Fatalf("nonZeroDuration(0)=%v", got)
	}
	if got := nonZeroDuration(2*time.Second, 5*time.Second); got != 2*time.Second {
		t.Fatalf("nonZeroDuration(2s)=%v", got)
	}
	if got := nonZeroInt(0, 1<<20); got != 1<<20 {
		t.Fatalf("nonZeroInt(0)=%d", got)
	}
	if got := nonZeroInt(64, 1<<20); got != 64 {
		t.Fatalf("nonZeroInt(64)=%d", got)
	}
}

func TestLoadConfig_CORSFromEnv(t *testing.T) {
	t.Setenv("FACEGATE_CORS_ALLOWED_ORIGINS", "https://app.example.com, http://127.0.0.1:*")
	t.Setenv("FACEGATE_CORS_ALLOW_CREDENTIALS", "true")

	cfg := LoadConfig()
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.CORSAllowedOrigins[0] != "https://app.example.com" {
		t.Fatalf("origin[0]=%q", cfg.CORSAllowedOrigins[0])
	}
	if cfg.CORSAllowedOrigins[1] != "http://127.0.0.1:*" {
		t.Fatalf("origin[1]=%q", cfg.CORSAllowedOrigins[1])
	}
	if !cfg.CORSAllowCredentials {
		t.Fatalf("expected credentials allowed")
	}
	if cfg.CORSMaxAgeSeconds != 600 {
		t.Fatalf("max-age default=%d", cfg.CORSMaxAgeSeconds)
	}
}

func TestOriginAllowed(t *testing.T) {
	t.Parallel()

	allowed := []string{"https://app.example.com", "http://127.0.0.1:*"}

	cases := []struct {
		origin string
		want   bool
	}{
		{origin: "https://app.example.com", want: true},
		{origin: "HTTPS://APP.EXAMPLE.COM", want: true},
		{origin: "https://evil.example.com", want: false},
		{origin: "http://127.0.0.1:3000", want: true},
		{origin: "http://127.0.0.1:", want: false},
		{origin: "http://127.0.0.1:3000x", want: false},
		{origin: "http://127.0.0.2:3000", want: false},
	}

	for _, tc := range cases {
		if got := originAllowed(allowed, tc.origin); got != tc.want {
			t.Fatalf("originAllowed(%q)=%v want=%v", tc.origin, got, tc.want)
		}
	}
}

// Package identity implements Facegate's identity foundation.
//
// It defines the Identity entity (credentials, personal data, and the
// enrolled face descriptor), the Store capability contract consumed by the
// enrollment and authentication workflows, and the PostgreSQL and in-memory
// store implementations.
//
// This package is intentionally dependency-light and security-first.
package identity

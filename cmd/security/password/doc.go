// Package password provides password hashing and strength policy for Facegate.
//
// It implements bcrypt hashing with a configurable work factor and includes:
// - Accumulating strength validation (all violated rules are reported)
// - An advisory 0..4 strength score for UI feedback
// - A small deny list of common passwords
//
// Security notes:
// - Plaintext passwords are never persisted; only bcrypt digests are stored.
// - The strength score never gates enrollment; only ValidateStrength does.
package password

// Package session issues and verifies Facegate's access tokens and
// manages short-lived face-verification challenges.
//
// Access tokens are PASETO v4.public, signed with an Ed25519 keypair and
// carrying the identity id, username, and role. There is no refresh-token
// or revocation machinery: tokens are valid until they expire.
//
// Challenges back the optional two-phase login flow. A challenge is an
// opaque random token handed to a client whose password checked out; it
// must be redeemed with a live face descriptor before a token is issued.
// Challenges are stored hashed, expire quickly, and are one-shot.
package session

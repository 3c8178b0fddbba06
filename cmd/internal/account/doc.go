// Package account implements Facegate's enrollment and authentication
// workflows on top of the identity store gateway.
//
// Enrollment runs a fail-fast validation chain (descriptor integrity,
// email, names, username, face uniqueness, password policy) and performs
// exactly one store mutation on success. The store's own uniqueness
// constraints are the authoritative guard; the app-level existence checks
// only fast-reject.
//
// Authentication verifies a username/password pair with a generic,
// undifferentiated failure for unknown users and wrong passwords. The
// biometric second factor runs in one of two modes: by default the
// enrolled descriptor is returned with the token for client-side
// verification; with server-side face matching enabled, the token is
// withheld behind a short-lived challenge that must be redeemed with a
// live descriptor.
package account

package session

import (
	"sync"
	"time"

	"facegate/cmd/security/token"
)

// challengeRecord is the server-side state behind an outstanding challenge.
// Only the hash of the token is kept; the plaintext goes to the client once.
type challengeRecord struct {
	identityID string
	expiresAt  time.Time
}

// ChallengeStore tracks pending face-verification challenges in memory.
//
// Challenges are keyed by a hash of the opaque token (HMAC-SHA256 when
// FACEGATE_TOKEN_HMAC_KEY is set, SHA-256 otherwise), expire after the
// configured TTL, and are consumed exactly once. A restart drops all
// pending challenges, which only forces affected clients to log in again.
type ChallengeStore struct {
	ttl    time.Duration
	nBytes int

	mu      sync.Mutex
	pending map[string]challengeRecord
}

// NewChallengeStore builds a ChallengeStore from cfg.
func NewChallengeStore(cfg Config) *ChallengeStore {
	ttl := cfg.ChallengeTTL
	if ttl <= 0 {
		ttl = DefaultConfig().ChallengeTTL
	}
	nBytes := cfg.ChallengeTokenBytes
	if nBytes <= 0 {
		nBytes = DefaultConfig().ChallengeTokenBytes
	}
	return &ChallengeStore{
		ttl:     ttl,
		nBytes:  nBytes,
		pending: make(map[string]challengeRecord),
	}
}

// Issue creates a new challenge bound to identityID and returns the opaque
// token the client must redeem, plus its expiry.
func (s *ChallengeStore) Issue(identityID string, now time.Time) (string, time.Time, error) {
	plain, err := token.NewOpaque(s.nBytes)
	if err != nil {
		return "", time.Time{}, err
	}

	exp := now.Add(s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.pending[token.HashChallengeHex(plain)] = challengeRecord{
		identityID: identityID,
		expiresAt:  exp,
	}

	return plain, exp, nil
}

// Consume redeems a challenge token and returns the identity it was bound to.
// The challenge is removed whether or not it is still valid; unknown, expired,
// and already-consumed tokens all yield ErrChallengeNotFound.
func (s *ChallengeStore) Consume(plain string, now time.Time) (string, error) {
	key := token.HashChallengeHex(plain)

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.pending[key]
	if !ok {
		return "", ErrChallengeNotFound
	}
	delete(s.pending, key)

	if now.After(rec.expiresAt) {
		return "", ErrChallengeNotFound
	}
	return rec.identityID, nil
}

// pruneLocked drops expired challenges. Caller holds s.mu.
func (s *ChallengeStore) pruneLocked(now time.Time) {
	for k, rec := range s.pending {
		if now.After(rec.expiresAt) {
			delete(s.pending, k)
		}
	}
}

package account

import (
	"context"
	"errors"
	"time"

	"facegate/cmd/identity"
	"facegate/cmd/internal/auth/session"
	"facegate/cmd/security/face"
	"facegate/cmd/security/password"
)

// dummyDigest is a syntactically valid bcrypt digest verified against when
// the username does not resolve, so unknown-user and wrong-password paths
// cost roughly the same. The comparison result is discarded.
const dummyDigest = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// errInvalidCredentials is the single, undifferentiated login failure.
// Unknown username and wrong password must be indistinguishable.
func errInvalidCredentials(op string) error {
	return identity.OpError{Op: op, Kind: identity.ErrUnauthorized, Msg: "invalid credentials"}
}

// AuthResult is a completed login: a signed token plus the projection the
// client needs. FaceDescriptor is set only in the client-verified flow,
// where the caller performs the advisory second-factor check itself.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time

	IdentityID string
	Username   string
	Role       identity.Role

	FaceDescriptor []float64
}

// Challenge is a pending login: the password checked out but the token is
// withheld until the challenge is redeemed with a matching live descriptor.
type Challenge struct {
	Token     string
	ExpiresAt time.Time
}

// LoginResult is either a completed AuthResult or a pending Challenge,
// depending on whether server-side face matching is required.
type LoginResult struct {
	Pending   bool
	Auth      AuthResult // set when !Pending
	Challenge Challenge  // set when Pending
}

// Authenticate verifies the username/password pair.
//
// In the default mode a token is issued immediately and the enrolled
// descriptor is returned for the client's advisory face check. With
// server-side face matching required, no token is issued; the caller gets
// a short-lived challenge to redeem via VerifyFace.
func (s *Service) Authenticate(ctx context.Context, username, plain string, now time.Time) (LoginResult, error) {
	const op = "account.Authenticate"

	ident, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if identity.IsNotFound(err) {
			// Burn a hash comparison so the miss is not observably faster.
			_, _ = password.Verify(plain, dummyDigest)
			return LoginResult{}, errInvalidCredentials(op)
		}
		return LoginResult{}, err
	}

	ok, err := password.Verify(plain, ident.PasswordDigest)
	if err != nil && !errors.Is(err, password.ErrInvalidDigest) {
		return LoginResult{}, err
	}
	if !ok {
		return LoginResult{}, errInvalidCredentials(op)
	}

	if s.cfg.RequireServerFaceMatch {
		challenge, exp, err := s.challenges.Issue(ident.ID, now)
		if err != nil {
			return LoginResult{}, err
		}
		return LoginResult{
			Pending:   true,
			Challenge: Challenge{Token: challenge, ExpiresAt: exp},
		}, nil
	}

	auth, err := s.issueToken(ident, now)
	if err != nil {
		return LoginResult{}, err
	}
	auth.FaceDescriptor = ident.FaceDescriptor
	return LoginResult{Auth: auth}, nil
}

// VerifyFace redeems a login challenge with a live face descriptor and
// issues the withheld token when the descriptor matches the enrolled one.
// Every failure collapses to the generic login error.
func (s *Service) VerifyFace(ctx context.Context, challengeToken string, live []float64, now time.Time) (AuthResult, error) {
	const op = "account.VerifyFace"

	if err := face.ValidateDescriptor(live); err != nil {
		return AuthResult{}, identity.OpError{Op: op, Kind: identity.ErrInvalidInput, Msg: err.Error()}
	}

	identityID, err := s.challenges.Consume(challengeToken, now)
	if err != nil {
		return AuthResult{}, errInvalidCredentials(op)
	}

	ident, err := s.store.FindByID(ctx, identityID)
	if err != nil {
		if identity.IsNotFound(err) {
			return AuthResult{}, errInvalidCredentials(op)
		}
		return AuthResult{}, err
	}

	similar, err := s.face.Similar(live, ident.FaceDescriptor)
	if err != nil {
		return AuthResult{}, err
	}
	if !similar {
		return AuthResult{}, errInvalidCredentials(op)
	}

	return s.issueToken(ident, now)
}

func (s *Service) issueToken(ident identity.Identity, now time.Time) (AuthResult, error) {
	token, exp, err := s.tokens.Issue(ident.ID, ident.Username, ident.Role, now)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{
		Token:      token,
		ExpiresAt:  exp,
		IdentityID: ident.ID,
		Username:   ident.Username,
		Role:       ident.Role,
	}, nil
}

// VerifyToken validates a presented access token and returns its claims.
func (s *Service) VerifyToken(token string, now time.Time) (session.AccessClaims, error) {
	const op = "account.VerifyToken"

	claims, err := s.tokens.Verify(token, now)
	if err != nil {
		return session.AccessClaims{}, identity.OpError{Op: op, Kind: identity.ErrUnauthorized, Msg: "invalid or expired token"}
	}
	return claims, nil
}

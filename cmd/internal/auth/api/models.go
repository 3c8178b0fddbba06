package authapi

import (
	"time"

	"facegate/cmd/internal/account"
)

type registerRequest struct {
	Username       string    `json:"username"`
	Password       string    `json:"password"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	FaceDescriptor []float64 `json:"face_descriptor"`

	// Role is honored only on the admin enrollment route; the self-serve
	// route always enrolls a regular user.
	Role string `json:"role,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type faceLoginRequest struct {
	ChallengeToken string    `json:"challenge_token"`
	FaceDescriptor []float64 `json:"face_descriptor"`
}

type profileResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// authResponse is a completed login. FaceDescriptor carries the enrolled
// descriptor in the client-verified flow and is omitted otherwise.
type authResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`

	IdentityID string `json:"identity_id"`
	Username   string `json:"username"`
	Role       string `json:"role"`

	FaceDescriptor []float64 `json:"face_descriptor,omitempty"`
}

// challengeResponse is a pending login awaiting server-side face verification.
type challengeResponse struct {
	ChallengeToken string    `json:"challenge_token"`
	ExpiresAt      time.Time `json:"expires_at"`
}

type registerResponse struct {
	User profileResponse `json:"user"`
}

type meResponse struct {
	User profileResponse `json:"user"`
}

// listedUserResponse is the admin listing projection. Deliberately
// narrower than profileResponse: the roster view needs no contact data.
type listedUserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type usersResponse struct {
	Users []listedUserResponse `json:"users"`
}

func toProfileResponse(p account.Profile) profileResponse {
	return profileResponse{
		ID:        p.ID,
		Username:  p.Username,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		FullName:  p.FullName,
		Email:     p.Email,
		Role:      string(p.Role),
		CreatedAt: p.CreatedAt,
	}
}

func toAuthResponse(a account.AuthResult) authResponse {
	return authResponse{
		Token:          a.Token,
		ExpiresAt:      a.ExpiresAt,
		IdentityID:     a.IdentityID,
		Username:       a.Username,
		Role:           string(a.Role),
		FaceDescriptor: a.FaceDescriptor,
	}
}

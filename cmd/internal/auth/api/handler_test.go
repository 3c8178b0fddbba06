package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	paseto "aidanwoods.dev/go-paseto"
	"golang.org/x/crypto/bcrypt"

	"facegate/cmd/identity"
	"facegate/cmd/internal/account"
	"facegate/cmd/internal/auth/session"
	"facegate/cmd/security/face"
	"facegate/cmd/security/password"
)

func newTestServer(t *testing.T, requireServerFaceMatch bool) (*httptest.Server, *account.Service) {
	t.Helper()

	sessCfg := session.DefaultConfig()
	sessCfg.PasetoV4SecretKeyHex = paseto.NewV4AsymmetricSecretKey().ExportHex()

	tokens, err := session.NewPasetoV4PublicManager(sessCfg)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}

	accounts := account.NewService(
		identity.NewMemoryStore(),
		password.Config{Cost: bcrypt.MinCost},
		face.DefaultConfig(),
		tokens,
		session.NewChallengeStore(sessCfg),
		account.Config{RequireServerFaceMatch: requireServerFaceMatch},
	)

	cfg := LoadConfigFromEnv()
	cfg.RequireServerFaceMatch = requireServerFaceMatch

	h := NewHandler(nil, accounts, nil, cfg)
	mux := http.NewServeMux()
	h.Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, accounts
}

func postJSON(t *testing.T, url string, body any, headers map[string]string) *http.Response {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	return resp
}

func getJSON(t *testing.T, url string, headers map[string]string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func testDescriptor(seed float64) []float64 {
	d := make([]float64, 128)
	d[0] = seed
	return d
}

func registerBody(username string, seed float64) map[string]any {
	return map[string]any{
		"username":        username,
		"password":        "Str0ng!Pass",
		"first_name":      "Test",
		"last_name":       "Identity",
		"email":           username + "@example.com",
		"face_descriptor": testDescriptor(seed),
	}
}

func mustRegister(t *testing.T, srv *httptest.Server, username string, seed float64) {
	t.Helper()

	resp := postJSON(t, srv.URL+"/auth/register", registerBody(username, seed), nil)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d", username, resp.StatusCode)
	}
}

func mustLoginToken(t *testing.T, srv *httptest.Server, username string) string {
	t.Helper()

	resp := postJSON(t, srv.URL+"/auth/login", map[string]any{
		"username": username,
		"password": "Str0ng!Pass",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d", username, resp.StatusCode)
	}

	var body struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &body)
	if body.Token == "" {
		t.Fatalf("login %s: empty token", username)
	}
	return body.Token
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, false)

	resp := postJSON(t, srv.URL+"/auth/register", registerBody("ada", 1.0), nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status %d", resp.StatusCode)
	}

	var body struct {
		User struct {
			ID       string `json:"id"`
			Username string `json:"username"`
			FullName string `json:"full_name"`
			Role     string `json:"role"`
		} `json:"user"`
	}
	decodeBody(t, resp, &body)
	if body.User.ID == "" || body.User.Username != "ada" {
		t.Fatalf("unexpected user: %+v", body.User)
	}
	if body.User.FullName != "Test Identity" {
		t.Fatalf("full name: %q", body.User.FullName)
	}
	if body.User.Role != "user" {
		t.Fatalf("self-serve registration must yield role user, got %q", body.User.Role)
	}
}

func TestRegister_SelfServeIgnoresRole(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, false)

	body := registerBody("sneaky", 1.0)
	body["role"] = "admin"

	resp := postJSON(t, srv.URL+"/auth/register", body, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status %d", resp.StatusCode)
	}

	var out struct {
		User struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	decodeBody(t, resp, &out)
	if out.User.Role != "user" {
		t.Fatalf("role escalation through self-serve registration: %q", out.User.Role)
	}
}

func TestRegister_WeakPassword_ReportsAllRules(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, false)

	body := registerBody("ada", 1.0)
	body["password"] = "abc"

	resp := postJSON(t, srv.URL+"/auth/register", body, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}

	var out struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	decodeBody(t, resp, &out)
	if out.Error.Code != "validation_error" {
		t.Fatalf("code: %q", out.Error.Code)
	}
	for _, want := range []string{"8 characters", "uppercase", "digit", "symbol"} {
		if !strings.Contains(out.Error.Message, want) {
			t.Fatalf("message missing %q: %s", want, out.Error.Message)
		}
	}
}

func TestRegister_Conflicts(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, false)
	mustRegister(t, srv, "ada", 1.0)

	t.Run("username", func(t *testing.T) {
		body := registerBody("ada", 2.0)
		body["email"] = "other@example.com"
		resp := postJSON(t, srv.URL+"/auth/register", body, nil)
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("status %d", resp.StatusCode)
		}
	})

	t.Run("email case-insensitive", func(t *testing.T) {
		body := registerBody("grace", 3.0)
		body["email"] = "ADA@Example.com"
		resp := postJSON(t, srv.URL+"/auth/register", body, nil)
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("status %d", resp.StatusCode)
		}
	})

	t.Run("face names owner", func(t *testing.T) {
		body := registerBody("grace", 1.0)
		resp := postJSON(t, srv.URL+"/auth/register", body, nil)
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("status %d", resp.StatusCode)
		}
		var out struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		decodeBody(t, resp, &out)
		if !strings.Contains(out.Error.Message, `"ada"`) {
			t.Fatalf("conflict must name the colliding username: %s", out.Error.Message)
		}
	})
}

func TestRegister_BadDescriptor(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, false)

	body := registerBody("ada", 1.0)
	body["face_descriptor"] = make([]float64, 64)

	resp := postJSON(t, srv.URL+"/auth/register", body, nil)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestLogin_ReturnsDescriptorAndToken(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, false)
	mustRegister(t, srv, "ada", 1.0)

	resp := postJSON(t, srv.URL+"/auth/login", map[string]any{
		"username": "ada",
		"password": "Str0ng!Pass",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}

	var body struct {
		Token          string    `json:"token"`
		Username       string    `json:"username"`
		Role           string    `json:"role"`
		FaceDescriptor []float64 `json:"face_descriptor"`
	}
	decodeBody(t, resp, &body)
	if body.Token == "" || body.Username != "ada" || body.Role != "user" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if len(body.FaceDescriptor) != 128 || body.FaceDescriptor[0] != 1.0 {
		t.Fatalf("enrolled descriptor not returned unchanged")
	}
}

func TestLogin_GenericFailures(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, false)
	mustRegister(t, srv, "ada", 1.0)

	readError := func(resp *http.Response) string {
		var out struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		decodeBody(t, resp, &out)
		return out.Error.Message
	}

	wrongPw := postJSON(t, srv.URL+"/auth/login", map[string]any{
		"username": "ada", "password": "WrongPass1!",
	}, nil)
	unknown := postJSON(t, srv.URL+"/auth/login", map[string]any{
		"username": "nobody", "password": "Str0ng!Pass",
	}, nil)

	if wrongPw.StatusCode != http.StatusUnauthorized || unknown.StatusCode != http.StatusUnauthorized {
		t.Fatalf("statuses: %d, %d", wrongPw.StatusCode, unknown.StatusCode)
	}
	if msgA, msgB := readError(wrongPw), readError(unknown); msgA != msgB {
		t.Fatalf("login failures must be indistinguishable: %q vs %q", msgA, msgB)
	}
}

func TestMe(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, false)
	mustRegister(t, srv, "ada", 1.0)
	token := mustLoginToken(t, srv, "ada")

	t.Run("without token", func(t *testing.T) {
		resp := getJSON(t, srv.URL+"/me", nil)
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("status %d", resp.StatusCode)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		resp := getJSON(t, srv.URL+"/me", bearer("v4.public.garbage"))
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("status %d", resp.StatusCode)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		resp := getJSON(t, srv.URL+"/me", bearer(token))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d", resp.StatusCode)
		}

		var raw map[string]json.RawMessage
		decodeBody(t, resp, &raw)

		var user map[string]json.RawMessage
		if err := json.Unmarshal(raw["user"], &user); err != nil {
			t.Fatalf("unmarshal user: %v", err)
		}
		for key := range user {
			lower := strings.ToLower(key)
			if strings.Contains(lower, "digest") || strings.Contains(lower, "descriptor") || strings.Contains(lower, "password") {
				t.Fatalf("profile leaks sensitive key %q", key)
			}
		}
		if _, ok := user["full_name"]; !ok {
			t.Fatalf("profile missing full_name")
		}
	})
}

func TestUsers_AdminGate(t *testing.T) {
	t.Parallel()

	srv, accounts := newTestServer(t, false)

	// Bootstrap admin goes in through the service, the way the
	// create-admin tool does it.
	if _, err := accounts.Enroll(context.Background(), account.EnrollInput{
		Username:       "root",
		PasswordPlain:  "Str0ng!Pass",
		FirstName:      "Root",
		LastName:       "Admin",
		Email:          "root@example.com",
		FaceDescriptor: testDescriptor(50.0),
		Role:           identity.RoleAdmin,
	}, time.Now().UTC()); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	adminToken := mustLoginToken(t, srv, "root")

	mustRegister(t, srv, "plain", 1.0)
	userToken := mustLoginToken(t, srv, "plain")

	t.Run("unauthenticated is 401", func(t *testing.T) {
		resp := getJSON(t, srv.URL+"/users", nil)
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("status %d", resp.StatusCode)
		}
	})

	t.Run("non-admin is 403", func(t *testing.T) {
		resp := getJSON(t, srv.URL+"/users", bearer(userToken))
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("status %d", resp.StatusCode)
		}
	})

	t.Run("admin register gate", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/users/register", registerBody("other", 2.0), bearer(userToken))
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("status %d", resp.StatusCode)
		}
	})

	t.Run("admin lists all", func(t *testing.T) {
		resp := getJSON(t, srv.URL+"/users", bearer(adminToken))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d", resp.StatusCode)
		}
		var out struct {
			Users []map[string]any `json:"users"`
		}
		decodeBody(t, resp, &out)
		if len(out.Users) != 2 {
			t.Fatalf("expected 2 users, got %d", len(out.Users))
		}
		// Roster rows carry no contact or biometric data.
		for _, u := range out.Users {
			for _, k := range []string{"email", "first_name", "last_name", "face_descriptor", "password_digest"} {
				if _, ok := u[k]; ok {
					t.Fatalf("listing leaks %q: %v", k, u)
				}
			}
			if u["username"] == "" || u["role"] == "" {
				t.Fatalf("listing missing identity fields: %v", u)
			}
		}
	})

	t.Run("admin enrolls another admin", func(t *testing.T) {
		body := registerBody("second", 2.0)
		body["role"] = "admin"
		resp := postJSON(t, srv.URL+"/users/register", body, bearer(adminToken))
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status %d", resp.StatusCode)
		}
		var out struct {
			User struct {
				Role string `json:"role"`
			} `json:"user"`
		}
		decodeBody(t, resp, &out)
		if out.User.Role != "admin" {
			t.Fatalf("role: %q", out.User.Role)
		}
	})
}

func TestFaceLogin_TwoPhase(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, true)
	mustRegister(t, srv, "ada", 1.0)

	// Phase one: password checks out, token withheld.
	resp := postJSON(t, srv.URL+"/auth/login", map[string]any{
		"username": "ada",
		"password": "Str0ng!Pass",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status %d", resp.StatusCode)
	}

	var chal struct {
		ChallengeToken string `json:"challenge_token"`
		Token          string `json:"token"`
	}
	decodeBody(t, resp, &chal)
	if chal.ChallengeToken == "" {
		t.Fatalf("expected challenge token")
	}
	if chal.Token != "" {
		t.Fatalf("token must be withheld in two-phase mode")
	}

	t.Run("wrong face rejected", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/auth/login/face", map[string]any{
			"challenge_token": chal.ChallengeToken,
			"face_descriptor": testDescriptor(9.0),
		}, nil)
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("status %d", resp.StatusCode)
		}
	})

	t.Run("matching face on fresh challenge", func(t *testing.T) {
		// The previous failure consumed the challenge; start over.
		login := postJSON(t, srv.URL+"/auth/login", map[string]any{
			"username": "ada",
			"password": "Str0ng!Pass",
		}, nil)
		var fresh struct {
			ChallengeToken string `json:"challenge_token"`
		}
		decodeBody(t, login, &fresh)

		resp := postJSON(t, srv.URL+"/auth/login/face", map[string]any{
			"challenge_token": fresh.ChallengeToken,
			"face_descriptor": testDescriptor(1.0),
		}, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d", resp.StatusCode)
		}

		var out struct {
			Token    string `json:"token"`
			Username string `json:"username"`
		}
		decodeBody(t, resp, &out)
		if out.Token == "" || out.Username != "ada" {
			t.Fatalf("unexpected body: %+v", out)
		}

		me := getJSON(t, srv.URL+"/me", bearer(out.Token))
		defer func() { _ = me.Body.Close() }()
		if me.StatusCode != http.StatusOK {
			t.Fatalf("me status %d", me.StatusCode)
		}
	})
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, false)

	resp := getJSON(t, srv.URL+"/auth/login", nil)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

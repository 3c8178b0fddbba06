package authapi

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"facegate/cmd/identity"
	"facegate/cmd/internal/account"
	"facegate/cmd/internal/auth/session"
)

// Handler wires HTTP auth endpoints to the account workflows.
type Handler struct {
	log      *slog.Logger
	cfg      Config
	accounts *account.Service
	audit    *Auditor
}

// NewHandler constructs an auth Handler. audit may be nil (no recording).
func NewHandler(log *slog.Logger, accounts *account.Service, audit *Auditor, cfg Config) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		log:      log,
		cfg:      cfg,
		accounts: accounts,
		audit:    audit,
	}
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/auth/register", h.handleRegister)
	mux.HandleFunc("/auth/login", h.handleLogin)
	mux.HandleFunc("/auth/login/face", h.handleFaceLogin)
	mux.HandleFunc("/me", h.handleMe)
	mux.HandleFunc("/users", h.handleUsers)
	mux.HandleFunc("/users/register", h.handleAdminRegister)
}

// ---- handlers ----

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	// Self-serve enrollment never grants elevated roles.
	h.enroll(w, r, req, identity.RoleUser)
}

func (h *Handler) handleAdminRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	role, err := identity.ParseRole(req.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", identity.UserMessage(err))
		return
	}

	h.enroll(w, r, req, role)
}

func (h *Handler) enroll(w http.ResponseWriter, r *http.Request, req registerRequest, role identity.Role) {
	ctx := r.Context()
	now := time.Now().UTC()
	ip := clientIP(r, h.cfg.TrustProxy)
	ua := strings.TrimSpace(r.UserAgent())

	ident, err := h.accounts.Enroll(ctx, account.EnrollInput{
		Username:       req.Username,
		PasswordPlain:  req.Password,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		FaceDescriptor: req.FaceDescriptor,
		Role:           role,
	}, now)
	if err != nil {
		switch {
		case identity.IsInvalidInput(err):
			enrollTotal.WithLabelValues(outcomeInvalid).Inc()
			h.audit.enrollFailed(ctx, ip, ua, "validation")
			writeError(w, http.StatusBadRequest, "validation_error", identity.UserMessage(err))
		case identity.IsConflict(err):
			enrollTotal.WithLabelValues(outcomeConflict).Inc()
			h.audit.enrollFailed(ctx, ip, ua, "conflict")
			writeError(w, http.StatusConflict, "conflict", identity.UserMessage(err))
		default:
			enrollTotal.WithLabelValues(outcomeError).Inc()
			h.log.Error("auth.register.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	enrollTotal.WithLabelValues(outcomeSuccess).Inc()
	h.audit.enrollSucceeded(ctx, ident.ID, ip, ua, ident.Username)

	profile, err := h.accounts.PublicProfile(ctx, ident.ID)
	if err != nil {
		h.log.Error("auth.register.profile.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{User: toProfileResponse(profile)})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "username and password are required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()
	ip := clientIP(r, h.cfg.TrustProxy)
	ua := strings.TrimSpace(r.UserAgent())

	res, err := h.accounts.Authenticate(ctx, username, req.Password, now)
	if err != nil {
		if identity.IsUnauthorized(err) {
			loginTotal.WithLabelValues(outcomeDenied).Inc()
			h.audit.loginFailed(ctx, ip, ua, username)
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
			return
		}
		loginTotal.WithLabelValues(outcomeError).Inc()
		h.log.Error("auth.login.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	if res.Pending {
		loginTotal.WithLabelValues(outcomeChallenged).Inc()
		h.audit.loginChallenged(ctx, ip, ua)
		writeJSON(w, http.StatusOK, challengeResponse{
			ChallengeToken: res.Challenge.Token,
			ExpiresAt:      res.Challenge.ExpiresAt,
		})
		return
	}

	loginTotal.WithLabelValues(outcomeSuccess).Inc()
	h.audit.loginSucceeded(ctx, res.Auth.IdentityID, ip, ua)
	writeJSON(w, http.StatusOK, toAuthResponse(res.Auth))
}

func (h *Handler) handleFaceLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req faceLoginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if strings.TrimSpace(req.ChallengeToken) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "challenge_token is required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()
	ip := clientIP(r, h.cfg.TrustProxy)
	ua := strings.TrimSpace(r.UserAgent())

	auth, err := h.accounts.VerifyFace(ctx, strings.TrimSpace(req.ChallengeToken), req.FaceDescriptor, now)
	if err != nil {
		switch {
		case identity.IsInvalidInput(err):
			faceVerifyTotal.WithLabelValues(outcomeInvalid).Inc()
			writeError(w, http.StatusBadRequest, "validation_error", identity.UserMessage(err))
		case identity.IsUnauthorized(err):
			faceVerifyTotal.WithLabelValues(outcomeDenied).Inc()
			h.audit.faceVerifyFailed(ctx, ip, ua)
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		default:
			faceVerifyTotal.WithLabelValues(outcomeError).Inc()
			h.log.Error("auth.login.face.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	faceVerifyTotal.WithLabelValues(outcomeSuccess).Inc()
	h.audit.loginSucceeded(ctx, auth.IdentityID, ip, ua)
	writeJSON(w, http.StatusOK, toAuthResponse(auth))
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	claims, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	profile, err := h.accounts.PublicProfile(r.Context(), claims.IdentityID)
	if err != nil {
		if identity.IsNotFound(err) {
			// A valid token for a vanished identity is no longer authorized.
			writeError(w, http.StatusUnauthorized, "unauthorized", "identity not found")
			return
		}
		h.log.Error("auth.me.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, meResponse{User: toProfileResponse(profile)})
}

func (h *Handler) handleUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	profiles, err := h.accounts.ListProfiles(r.Context())
	if err != nil {
		h.log.Error("auth.users.list.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	users := make([]listedUserResponse, 0, len(profiles))
	for _, p := range profiles {
		users = append(users, listedUserResponse{
			ID:        p.ID,
			Username:  p.Username,
			Role:      string(p.Role),
			CreatedAt: p.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, usersResponse{Users: users})
}

// ---- helpers ----

func (h *Handler) requireAuth(w http.ResponseWriter, r *http.Request) (session.AccessClaims, bool) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return session.AccessClaims{}, false
	}
	claims, err := h.accounts.VerifyToken(token, time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
		return session.AccessClaims{}, false
	}
	return claims, true
}

// requireAdmin distinguishes unauthenticated (401) from authenticated but
// underprivileged (403).
func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) (session.AccessClaims, bool) {
	claims, ok := h.requireAuth(w, r)
	if !ok {
		return session.AccessClaims{}, false
	}
	if claims.Role != identity.RoleAdmin {
		writeError(w, http.StatusForbidden, "forbidden", "admin role required")
		return session.AccessClaims{}, false
	}
	return claims, true
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func clientIP(r *http.Request, trustProxy bool) net.IP {
	if trustProxy {
		if ip := parseForwardedIP(r.Header.Get("X-Forwarded-For")); ip != nil {
			return ip
		}
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		if ip := net.ParseIP(host); ip != nil {
			return ip
		}
	}
	return nil
}

func parseForwardedIP(raw string) net.IP {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	for _, p := range parts {
		if ip := net.ParseIP(strings.TrimSpace(p)); ip != nil {
			return ip
		}
	}
	return nil
}

package authapi

import (
	"context"
	"encoding/json"
	"net"
	"strings"

	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Auditor records security-relevant events. Writes go to the audit_log
// table when a pool is configured and fall back to structured logs
// otherwise. Recording is best-effort: an audit failure never fails the
// request that triggered it.
type Auditor struct {
	log    *slog.Logger
	pool   *pgxpool.Pool
	schema string
}

// NewAuditor builds an Auditor. pool may be nil (log-only mode).
func NewAuditor(log *slog.Logger, pool *pgxpool.Pool) *Auditor {
	if log == nil {
		log = slog.Default()
	}
	return &Auditor{log: log, pool: pool, schema: "facegate"}
}

func (a *Auditor) record(ctx context.Context, action string, identityID *string, ip net.IP, ua string, meta map[string]any) {
	if a == nil {
		return
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return
	}

	if a.pool == nil {
		args := []any{"action", action}
		if identityID != nil {
			args = append(args, "identity_id", *identityID)
		}
		if ip != nil {
			args = append(args, "ip", ip.String())
		}
		a.log.Info("audit", args...)
		return
	}

	var ipVal any
	if ip != nil {
		ipVal = ip.String()
	}

	var metaVal *string
	if len(meta) > 0 {
		if b, err := json.Marshal(meta); err == nil {
			s := string(b)
			metaVal = &s
		}
	}

	_, err := a.pool.Exec(ctx, `
		INSERT INTO `+a.schema+`.audit_log (
			identity_id, action, created_at, ip, user_agent, meta
		) VALUES ($1, $2, now(), $3, $4, $5::jsonb)
	`, identityID, action, ipVal, trimOrNil(ua), metaVal)
	if err != nil {
		a.log.Error("audit.insert.fail", "err", err, "action", action)
	}
}

func (a *Auditor) enrollSucceeded(ctx context.Context, identityID string, ip net.IP, ua string, username string) {
	a.record(ctx, "enroll.success", &identityID, ip, ua, map[string]any{"username": username})
}

func (a *Auditor) enrollFailed(ctx context.Context, ip net.IP, ua string, reason string) {
	a.record(ctx, "enroll.failed", nil, ip, ua, map[string]any{"reason": reason})
}

func (a *Auditor) loginSucceeded(ctx context.Context, identityID string, ip net.IP, ua string) {
	a.record(ctx, "login.success", &identityID, ip, ua, nil)
}

func (a *Auditor) loginFailed(ctx context.Context, ip net.IP, ua string, username string) {
	a.record(ctx, "login.failed", nil, ip, ua, map[string]any{"username": username})
}

func (a *Auditor) loginChallenged(ctx context.Context, ip net.IP, ua string) {
	a.record(ctx, "login.challenged", nil, ip, ua, nil)
}

func (a *Auditor) faceVerifyFailed(ctx context.Context, ip net.IP, ua string) {
	a.record(ctx, "login.face_verify.failed", nil, ip, ua, nil)
}

func trimOrNil(s string) any {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	return v
}

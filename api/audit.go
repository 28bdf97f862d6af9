package api

import (
	"log/slog"
	"net/http"
	"time"
)

// AuditEvent identifies the type of security-relevant action being logged.
type AuditEvent string

const (
	AuditRegister         AuditEvent = "register"
	AuditLoginSuccess     AuditEvent = "login_success"
	AuditLoginFailure     AuditEvent = "login_failure"
	AuditLoginRateLimited AuditEvent = "login_rate_limited"
	AuditTokenRefresh     AuditEvent = "token_refresh"
	AuditStoreToggled     AuditEvent = "store_toggled"
)

// auditLogger wraps slog.Logger for structured security audit logging.
type auditLogger struct {
	logger *slog.Logger
}

func newAuditLogger(logger *slog.Logger) *auditLogger {
	return &auditLogger{
		logger: logger.With("component", "audit"),
	}
}

// logEvent writes a structured audit entry. userID is the numeric
// account ID — a short, stable identifier safe for logs; emails and
// credentials never appear here.
func (al *auditLogger) logEvent(event AuditEvent, r *http.Request, userID int64, attrs ...slog.Attr) {
	baseAttrs := []slog.Attr{
		slog.String("event", string(event)),
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}
	if userID != 0 {
		baseAttrs = append(baseAttrs, slog.Int64("user_id", userID))
	}
	baseAttrs = append(baseAttrs, attrs...)
	al.logger.LogAttrs(r.Context(), slog.LevelInfo, "audit", baseAttrs...)
}

// logFailure writes an audit entry for a denied or failed action.
func (al *auditLogger) logFailure(event AuditEvent, r *http.Request, reason string, attrs ...slog.Attr) {
	attrs = append([]slog.Attr{slog.String("reason", reason)}, attrs...)
	al.logEvent(event, r, 0, attrs...)
}

package api

import (
	"log/slog"
	"net/http"
	"time"
)

// AuditEvent identifies the type of security-relevant action being logged.
type AuditEvent string

const (
	AuditClientCreated     AuditEvent = "client_created"
	AuditClientRateLimited AuditEvent = "client_rate_limited"
	AuditLoginSuccess      AuditEvent = "login_success"
	AuditLoginFailure      AuditEvent = "login_failure"
	AuditLoginInvalid      AuditEvent = "login_invalid"
	AuditLoginInProgress   AuditEvent = "login_in_progress"
	AuditLogout            AuditEvent = "logout"
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

func (al *auditLogger) log(event AuditEvent, r *http.Request, attrs ...slog.Attr) {
	baseAttrs := []slog.Attr{
		slog.String("event", string(event)),
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}
	baseAttrs = append(baseAttrs, attrs...)
	al.logger.LogAttrs(r.Context(), slog.LevelInfo, "audit", baseAttrs...)
}

// logClient is a convenience for events tied to a client id.
func (al *auditLogger) logClient(event AuditEvent, r *http.Request, clientID string, extra ...slog.Attr) {
	attrs := []slog.Attr{
		slog.String("client_id", clientID),
	}
	attrs = append(attrs, extra...)
	al.log(event, r, attrs...)
}

// logLogin records the outcome of a login attempt. err is nil on success.
// The password never reaches the log.
func (al *auditLogger) logLogin(event AuditEvent, r *http.Request, clientID, email string, err error) {
	attrs := []slog.Attr{slog.String("email", email)}
	if err != nil {
		attrs = append(attrs, slog.String("reason", err.Error()))
	}
	al.logClient(event, r, clientID, attrs...)
}

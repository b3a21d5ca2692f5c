// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	auditstore "github.com/dalemusser/ecahub/internal/app/store/audit"
	"github.com/dalemusser/ecahub/internal/app/system/auth"
	"github.com/dalemusser/ecahub/internal/app/system/ratelimit"
	"github.com/dalemusser/ecahub/internal/app/system/timeouts"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"go.uber.org/zap"
)

// Destinations for audit events.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off"
)

// ValidMode reports whether m is one of the Mode constants.
func ValidMode(m string) bool {
	switch m {
	case ModeAll, ModeDB, ModeLog, ModeOff:
		return true
	}
	return false
}

// Recorder is satisfied by *auditstore.Store.
type Recorder interface {
	Log(ctx context.Context, event auditstore.Event) error
}

// Logger writes auth audit events to the store and to zap.
// A nil *Logger is a no-op so handlers and tests may omit it.
type Logger struct {
	store  Recorder
	zapLog *zap.Logger
	mode   string
}

func New(store Recorder, zapLog *zap.Logger, mode string) *Logger {
	if !ValidMode(mode) {
		mode = ModeAll
	}
	return &Logger{store: store, zapLog: zapLog, mode: mode}
}

func (l *Logger) logToZap(event auditstore.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.Email != "" {
		fields = append(fields, zap.String("email", event.Email))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records event according to the configured mode. A store failure is
// logged and otherwise ignored; auditing never fails the request.
func (l *Logger) Log(ctx context.Context, event auditstore.Event) {
	if l == nil || l.mode == ModeOff {
		return
	}
	if l.mode == ModeAll || l.mode == ModeLog {
		l.logToZap(event)
	}
	if l.mode == ModeAll || l.mode == ModeDB {
		// Detach from the request so a client disconnect does not drop the write.
		dbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Short())
		defer cancel()
		if err := l.store.Log(dbCtx, event); err != nil {
			l.zapLog.Error("failed to write audit event",
				zap.String("event_type", event.EventType), zap.Error(err))
		}
	}
}

func fromRequest(r *http.Request, eventType string, success bool) auditstore.Event {
	return auditstore.Event{
		Category:  auditstore.CategoryAuth,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

// LoginSuccess records a completed sign-in for u.
func (l *Logger) LoginSuccess(r *http.Request, u models.User) {
	if l == nil {
		return
	}
	ev := fromRequest(r, auditstore.EventLoginSuccess, true)
	id := u.ID
	ev.UserID = &id
	ev.SchoolID = u.SchoolID
	ev.Email = u.Email
	ev.Role = u.Role.String()
	l.Log(r.Context(), ev)
}

// LoginFailed records a rejected sign-in. eventType is one of
// auditstore.FailedLoginTypes; reason is stored verbatim.
func (l *Logger) LoginFailed(r *http.Request, email, eventType, reason string) {
	if l == nil {
		return
	}
	ev := fromRequest(r, eventType, false)
	ev.Email = email
	ev.FailureReason = reason
	l.Log(r.Context(), ev)
}

// Logout records a sign-out. rc is nil for anonymous logouts.
func (l *Logger) Logout(r *http.Request, rc *auth.RoleContext) {
	if l == nil {
		return
	}
	ev := fromRequest(r, auditstore.EventLogout, true)
	if rc != nil {
		if oid, ok := rc.UserOID(); ok {
			ev.UserID = &oid
		}
		if oid, ok := rc.SchoolOID(); ok {
			ev.SchoolID = &oid
		}
		ev.Role = rc.UserRole.String()
	}
	l.Log(r.Context(), ev)
}

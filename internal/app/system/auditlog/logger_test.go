package auditlog

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	auditstore "github.com/dalemusser/ecahub/internal/app/store/audit"
	"github.com/dalemusser/ecahub/internal/app/system/auth"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type memRecorder struct {
	events []auditstore.Event
	err    error
}

func (m *memRecorder) Log(_ context.Context, ev auditstore.Event) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, ev)
	return nil
}

func TestNilLoggerIsNoop(t *testing.T) {
	var l *Logger
	r := httptest.NewRequest("POST", "/api/auth/login", nil)
	l.LoginSuccess(r, models.User{})
	l.LoginFailed(r, "a@b.c", auditstore.EventLoginFailedBadCredential, "x")
	l.Logout(r, nil)
}

func TestLoginSuccess_RecordsUser(t *testing.T) {
	rec := &memRecorder{}
	l := New(rec, zap.NewNop(), ModeDB)

	school := primitive.NewObjectID()
	u := models.User{ID: primitive.NewObjectID(), Email: "head@riverside.edu", Role: models.RoleSchool, SchoolID: &school}
	r := httptest.NewRequest("POST", "/api/auth/login", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	l.LoginSuccess(r, u)

	require.Len(t, rec.events, 1)
	ev := rec.events[0]
	assert.Equal(t, auditstore.EventLoginSuccess, ev.EventType)
	assert.True(t, ev.Success)
	assert.Equal(t, u.ID, *ev.UserID)
	assert.Equal(t, school, *ev.SchoolID)
	assert.Equal(t, "school", ev.Role)
	assert.Equal(t, "203.0.113.9", ev.IP)
}

func TestLogout_UsesRoleContext(t *testing.T) {
	rec := &memRecorder{}
	l := New(rec, zap.NewNop(), ModeAll)

	uid := primitive.NewObjectID()
	r := httptest.NewRequest("POST", "/api/auth/logout", nil)
	l.Logout(r, &auth.RoleContext{UserID: uid.Hex(), UserRole: models.RoleECA})

	require.Len(t, rec.events, 1)
	assert.Equal(t, auditstore.EventLogout, rec.events[0].EventType)
	assert.Equal(t, uid, *rec.events[0].UserID)
	assert.Nil(t, rec.events[0].SchoolID)
}

func TestModes(t *testing.T) {
	r := httptest.NewRequest("POST", "/login", nil)

	core, logs := observer.New(zapcore.InfoLevel)
	rec := &memRecorder{}
	New(rec, zap.New(core), ModeLog).LoginFailed(r, "a@b.c", auditstore.EventLoginFailedBadCredential, "bad")
	assert.Empty(t, rec.events, "log mode never writes the store")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)

	rec = &memRecorder{}
	New(rec, zap.NewNop(), ModeOff).LoginFailed(r, "a@b.c", auditstore.EventLoginFailedBadCredential, "bad")
	assert.Empty(t, rec.events)

	// Unknown modes fall back to all.
	rec = &memRecorder{}
	New(rec, zap.NewNop(), "verbose").LoginFailed(r, "a@b.c", auditstore.EventLoginFailedRateLimit, "slow down")
	assert.Len(t, rec.events, 1)
}

func TestStoreFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	l := New(&memRecorder{err: errors.New("disk full")}, zap.New(core), ModeDB)

	l.LoginFailed(httptest.NewRequest("POST", "/login", nil), "a@b.c", auditstore.EventLoginFailedUserDisabled, "disabled")
	assert.Equal(t, 1, logs.FilterMessage("failed to write audit event").Len())
}

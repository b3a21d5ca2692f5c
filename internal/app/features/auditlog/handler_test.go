package auditlog_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/ecahub/internal/app/features/auditlog"
	auditstore "github.com/dalemusser/ecahub/internal/app/store/audit"
	"github.com/dalemusser/ecahub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeAudit struct {
	events    []auditstore.Event
	lastQuery auditstore.QueryFilter
	lastSince time.Time
	err       error
}

func (f *fakeAudit) Query(_ context.Context, q auditstore.QueryFilter) ([]auditstore.Event, error) {
	f.lastQuery = q
	if f.err != nil {
		return nil, f.err
	}
	if int64(len(f.events)) > q.Limit {
		return f.events[:q.Limit], nil
	}
	return f.events, nil
}

func (f *fakeAudit) FailedLogins(_ context.Context, since time.Time, limit int64) ([]auditstore.Event, error) {
	f.lastSince = since
	return f.events, f.err
}

func events(n int) []auditstore.Event {
	out := make([]auditstore.Event, n)
	for i := range out {
		out[i] = auditstore.Event{ID: primitive.NewObjectID(), EventType: auditstore.EventLoginSuccess, Success: true}
	}
	return out
}

func TestHandleList_PagesWithLookAhead(t *testing.T) {
	st := &fakeAudit{events: events(3)}
	h := auditlog.NewHandler(st, zap.NewNop())

	rec := httptest.NewRecorder()
	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/api/audit?limit=2&offset=4&success=true&event_type=login_success", testutil.SuperAdminUser())
	h.HandleList(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Events  []auditstore.Event `json:"events"`
		HasMore bool               `json:"has_more"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Events, 2)
	assert.True(t, body.HasMore)

	assert.Equal(t, int64(3), st.lastQuery.Limit)
	assert.Equal(t, int64(4), st.lastQuery.Offset)
	assert.Equal(t, "login_success", st.lastQuery.EventType)
	require.NotNil(t, st.lastQuery.Success)
	assert.True(t, *st.lastQuery.Success)
}

func TestHandleList_BadFilters(t *testing.T) {
	h := auditlog.NewHandler(&fakeAudit{}, zap.NewNop())
	for _, target := range []string{
		"/api/audit?user_id=nope",
		"/api/audit?since=yesterday",
		"/api/audit?success=maybe",
	} {
		rec := httptest.NewRecorder()
		h.HandleList(rec, testutil.NewAuthenticatedRequest(http.MethodGet, target, testutil.SuperAdminUser()))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestHandleList_StoreErrorIsHidden(t *testing.T) {
	h := auditlog.NewHandler(&fakeAudit{err: errors.New("socket closed")}, zap.NewNop())
	rec := httptest.NewRecorder()
	h.HandleList(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/api/audit", testutil.SuperAdminUser()))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "socket closed")
}

func TestHandleFailedLogins_Window(t *testing.T) {
	st := &fakeAudit{events: events(1)}
	h := auditlog.NewHandler(st, zap.NewNop())
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	h.Now = func() time.Time { return now }

	rec := httptest.NewRecorder()
	h.HandleFailedLogins(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/api/audit/failed-logins?hours=6", testutil.SuperAdminUser()))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, now.Add(-6*time.Hour), st.lastSince)

	rec = httptest.NewRecorder()
	h.HandleFailedLogins(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/api/audit/failed-logins?hours=0", testutil.SuperAdminUser()))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

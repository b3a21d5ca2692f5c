package login_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/ecahub/internal/app/features/login"
	auditstore "github.com/dalemusser/ecahub/internal/app/store/audit"
	userstore "github.com/dalemusser/ecahub/internal/app/store/users"
	"github.com/dalemusser/ecahub/internal/app/system/auditlog"
	"github.com/dalemusser/ecahub/internal/app/system/auth"
	"github.com/dalemusser/ecahub/internal/app/system/theme"
	"github.com/dalemusser/ecahub/internal/app/system/token"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeUsers map[string]models.User

func (f fakeUsers) GetByEmail(_ context.Context, email string) (models.User, error) {
	if u, ok := f[userstore.NormalizeEmail(email)]; ok {
		return u, nil
	}
	return models.User{}, userstore.ErrNotFound
}

type fakeThemes map[string]models.Theme

func (f fakeThemes) Resolve(_ context.Context, schoolID string) (models.Theme, error) {
	if t, ok := f[schoolID]; ok {
		return t, nil
	}
	return models.Theme{}, theme.ErrNotFound
}

func mustHash(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

type env struct {
	h      *login.Handler
	tokens *token.Manager
	sm     *auth.SessionManager
	school primitive.ObjectID
}

func newEnv(t *testing.T) env {
	t.Helper()
	logger := zap.NewNop()
	tokens := token.NewManager("token-secret-for-tests-0123456789abcdef", time.Hour)
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-32b", "test-session", "", time.Hour, false, tokens, logger)
	require.NoError(t, err)

	schoolID := primitive.NewObjectID()
	custom := models.DefaultTheme()
	custom.Primary = "#123456"

	users := fakeUsers{
		"admin@example.com": {
			ID: primitive.NewObjectID(), FullName: "Admin", Email: "admin@example.com",
			PasswordHash: mustHash(t, "secret"), Role: models.RoleSuperAdmin, Status: models.UserStatusActive,
		},
		"school@example.com": {
			ID: primitive.NewObjectID(), FullName: "Riverside", Email: "school@example.com",
			PasswordHash: mustHash(t, "secret"), Role: models.RoleSchool, Status: models.UserStatusActive,
			SchoolID: &schoolID,
		},
		"gone@example.com": {
			ID: primitive.NewObjectID(), FullName: "Gone", Email: "gone@example.com",
			PasswordHash: mustHash(t, "secret"), Role: models.RoleECA, Status: models.UserStatusDisabled,
		},
	}
	themes := fakeThemes{schoolID.Hex(): custom}

	return env{
		h:      login.NewHandler(users, themes, tokens, sm, logger),
		tokens: tokens,
		sm:     sm,
		school: schoolID,
	}
}

func postLogin(h *login.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	h.HandleAPILogin(rec, req)
	return rec
}

type loginBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Role    string `json:"role"`
	Name    string `json:"name"`
	Token   string `json:"token"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) loginBody {
	t.Helper()
	var b loginBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	return b
}

func TestHandleAPILogin_Success(t *testing.T) {
	e := newEnv(t)
	rec := postLogin(e.h, `{"email":"School@Example.com","password":"secret"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	b := decode(t, rec)
	assert.True(t, b.Success)
	assert.Equal(t, "school", b.Role)
	assert.Equal(t, "Riverside", b.Name)

	claims, err := e.tokens.Verify(b.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSchool, claims.Role)
	assert.Equal(t, e.school.Hex(), claims.SchoolID)

	// The session cookie carries the school's theme.
	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "expected session cookie")

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	var rc *auth.RoleContext
	e.sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc, _ = auth.CurrentUser(r)
	})).ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, rc)
	assert.Equal(t, "#123456", rc.Theme.Primary)
}

func TestHandleAPILogin_SuperAdmin(t *testing.T) {
	e := newEnv(t)
	rec := postLogin(e.h, `{"email":"admin@example.com","password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "super-admin", decode(t, rec).Role)
}

func TestHandleAPILogin_BadCredentials(t *testing.T) {
	e := newEnv(t)
	tests := []struct {
		name string
		body string
	}{
		{"wrong password", `{"email":"admin@example.com","password":"nope"}`},
		{"unknown email", `{"email":"nobody@example.com","password":"secret"}`},
		{"disabled", `{"email":"gone@example.com","password":"secret"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postLogin(e.h, tt.body)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			b := decode(t, rec)
			assert.False(t, b.Success)
			assert.NotEmpty(t, b.Message)
			assert.Empty(t, b.Token)
		})
	}
}

func TestHandleAPILogin_BadRequest(t *testing.T) {
	e := newEnv(t)
	for _, body := range []string{`not json`, `{"email":"","password":"x"}`, `{"email":"a@b.co"}`, `{"email":"a@b.co","password":"x","extra":1}`} {
		rec := postLogin(e.h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.False(t, decode(t, rec).Success)
	}
}

func TestHandleAPILogin_RateLimited(t *testing.T) {
	e := newEnv(t)
	var last *httptest.ResponseRecorder
	for i := 0; i < 6; i++ {
		last = postLogin(e.h, `{"email":"admin@example.com","password":"nope"}`)
	}
	assert.Equal(t, http.StatusTooManyRequests, last.Code)
}

type auditRecorder struct{ events []auditstore.Event }

func (a *auditRecorder) Log(_ context.Context, ev auditstore.Event) error {
	a.events = append(a.events, ev)
	return nil
}

func TestHandleAPILogin_RecordsAudit(t *testing.T) {
	e := newEnv(t)
	rec := &auditRecorder{}
	e.h.Audit = auditlog.New(rec, zap.NewNop(), auditlog.ModeDB)

	postLogin(e.h, `{"email":"admin@example.com","password":"wrong"}`)
	postLogin(e.h, `{"email":"gone@example.com","password":"secret"}`)
	postLogin(e.h, `{"email":"admin@example.com","password":"secret"}`)

	require.Len(t, rec.events, 3)
	assert.Equal(t, auditstore.EventLoginFailedBadCredential, rec.events[0].EventType)
	assert.Equal(t, "admin@example.com", rec.events[0].Email)
	assert.Equal(t, auditstore.EventLoginFailedUserDisabled, rec.events[1].EventType)
	assert.Equal(t, auditstore.EventLoginSuccess, rec.events[2].EventType)
	assert.True(t, rec.events[2].Success)
	assert.Equal(t, "192.0.2.1", rec.events[2].IP)
}

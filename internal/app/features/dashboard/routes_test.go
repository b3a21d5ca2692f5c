package dashboard

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/ecahub/internal/app/system/auth"
	"github.com/dalemusser/ecahub/internal/app/system/token"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	tokens := token.NewManager("token-secret-for-tests-0123456789abcdef", time.Hour)
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-32b", "test-session", "", time.Hour, false, tokens, zap.NewNop())
	require.NoError(t, err)
	return Routes(newTestHandler(zap.NewNop()), sm)
}

func TestRoutes_SchoolsRedirectsNonSuperAdmin(t *testing.T) {
	calls := stubRender(t)
	router := newRouter(t)

	for _, role := range []models.Role{models.RoleSchool, models.RoleECA} {
		req := auth.WithTestUser(httptest.NewRequest(http.MethodGet, "/schools", nil), &auth.RoleContext{UserRole: role})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code, role)
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"), role)
	}
	assert.Empty(t, *calls, "schools view must not render for other roles")
}

func TestRoutes_SchoolsRendersForSuperAdmin(t *testing.T) {
	calls := stubRender(t)
	router := newRouter(t)

	req := auth.WithTestUser(httptest.NewRequest(http.MethodGet, "/schools", nil), &auth.RoleContext{UserRole: models.RoleSuperAdmin})
	router.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, *calls, 1)
	assert.Equal(t, "dashboard_schools", (*calls)[0].name)
}

func TestRoutes_StudentsRendersForSchool(t *testing.T) {
	calls := stubRender(t)
	router := newRouter(t)

	req := auth.WithTestUser(httptest.NewRequest(http.MethodGet, "/students", nil), &auth.RoleContext{
		UserRole: models.RoleSchool,
		SchoolID: primitive.NewObjectID().Hex(),
	})
	router.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, *calls, 1)
	assert.Equal(t, "dashboard_students", (*calls)[0].name)
}

func TestRoutes_AnonymousIsSentToLogin(t *testing.T) {
	router := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/messages", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/login?return=")
}

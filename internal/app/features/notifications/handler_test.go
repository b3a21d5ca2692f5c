package notifications_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/dalemusser/ecahub/internal/app/features/notifications"
	notificationstore "github.com/dalemusser/ecahub/internal/app/store/notifications"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"github.com/dalemusser/ecahub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memNotes struct {
	mu sync.Mutex
	m  map[primitive.ObjectID]models.Notification
}

func (s *memNotes) Create(_ context.Context, n models.Notification) (models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = primitive.NewObjectID()
	s.m[n.ID] = n
	return n, nil
}

func (s *memNotes) GetVisible(_ context.Context, id primitive.ObjectID, role models.Role) (models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.m[id]
	if !ok || !n.VisibleTo(role) {
		return models.Notification{}, notificationstore.ErrNotFound
	}
	return n, nil
}

func (s *memNotes) ListForRole(_ context.Context, role models.Role, _ int64) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Notification{}
	for _, n := range s.m {
		if n.VisibleTo(role) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *memNotes) Update(_ context.Context, id primitive.ObjectID, n models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[id]; !ok {
		return notificationstore.ErrNotFound
	}
	n.ID = id
	s.m[id] = n
	return nil
}

func (s *memNotes) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[id]; !ok {
		return notificationstore.ErrNotFound
	}
	delete(s.m, id)
	return nil
}

func newHandler() (*notifications.Handler, *memNotes) {
	st := &memNotes{m: map[primitive.ObjectID]models.Notification{}}
	return notifications.NewHandler(st, zap.NewNop()), st
}

func create(t *testing.T, h *notifications.Handler, body string) models.Notification {
	t.Helper()
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, testutil.WithUser(testutil.NewJSONRequest(http.MethodPost, "/", body), testutil.SuperAdminUser()))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var n models.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &n))
	return n
}

func TestHandleCreate_RendersSanitizedMarkdown(t *testing.T) {
	h, _ := newHandler()
	n := create(t, h, `{"title":"Fees","message":"**Due** Friday <script>alert(1)</script>","type":"reminder","target":["school","school"]}`)

	assert.Contains(t, n.MessageHTML, "<strong>Due</strong>")
	assert.NotContains(t, n.MessageHTML, "<script>")
	assert.Equal(t, models.PriorityMedium, n.Priority)
	assert.Equal(t, []models.Role{models.RoleSchool}, n.Target)
	assert.Equal(t, "Test Super Admin", n.CreatedByName)
}

func TestHandleCreate_RejectsUnknownRole(t *testing.T) {
	h, _ := newHandler()
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, testutil.WithUser(testutil.NewJSONRequest(http.MethodPost, "/", `{"title":"x","message":"y","type":"alert","target":["parent"]}`), testutil.SuperAdminUser()))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"target[0]":"role"`)
}

func TestSchoolOnlyNotificationInvisibleToSuperAdmin(t *testing.T) {
	h, _ := newHandler()
	n := create(t, h, `{"title":"For schools","message":"hello","type":"announcement","target":["school"]}`)

	get := func(u testutil.TestUser) int {
		rec := httptest.NewRecorder()
		h.HandleGet(rec, testutil.WithChiURLParam(testutil.NewAuthenticatedRequest(http.MethodGet, "/", u), "id", n.ID.Hex()))
		return rec.Code
	}
	assert.Equal(t, http.StatusNotFound, get(testutil.SuperAdminUser()))
	assert.Equal(t, http.StatusNotFound, get(testutil.ECAUser()))
	assert.Equal(t, http.StatusOK, get(testutil.SchoolUser(primitive.NewObjectID())))

	rec := httptest.NewRecorder()
	h.HandleList(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/api/notifications", testutil.SuperAdminUser()))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestHandleUpdateAndDelete(t *testing.T) {
	h, st := newHandler()
	n := create(t, h, `{"title":"Old","message":"m","type":"update","target":["eca"]}`)

	rec := httptest.NewRecorder()
	r := testutil.WithUser(testutil.NewJSONRequest(http.MethodPut, "/", `{"title":"New","message":"m2","type":"update","priority":"high","target":["eca","school"]}`), testutil.SuperAdminUser())
	h.HandleUpdate(rec, testutil.WithChiURLParam(r, "id", n.ID.Hex()))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "New", st.m[n.ID].Title)
	assert.Equal(t, models.PriorityHigh, st.m[n.ID].Priority)

	rec = httptest.NewRecorder()
	h.HandleDelete(rec, testutil.WithChiURLParam(testutil.NewAuthenticatedRequest(http.MethodDelete, "/", testutil.SuperAdminUser()), "id", n.ID.Hex()))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleDelete(rec, testutil.WithChiURLParam(testutil.NewAuthenticatedRequest(http.MethodDelete, "/", testutil.SuperAdminUser()), "id", n.ID.Hex()))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

package messages_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dalemusser/ecahub/internal/app/features/messages"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"github.com/dalemusser/ecahub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memMessages struct {
	mu         sync.Mutex
	all        []models.Message
	lastLimit  int64
	lastOffset int64
}

func (s *memMessages) Create(_ context.Context, m models.Message) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = primitive.NewObjectID()
	s.all = append(s.all, m)
	return m, nil
}

func (s *memMessages) Inbox(_ context.Context, role models.Role, limit, offset int64) ([]models.Message, error) {
	return s.page(limit, offset, func(m models.Message) bool { return models.ContainsRole(m.RecipientRoles, role) })
}

func (s *memMessages) Sent(_ context.Context, sender primitive.ObjectID, limit, offset int64) ([]models.Message, error) {
	return s.page(limit, offset, func(m models.Message) bool { return m.SenderID == sender })
}

// page walks newest first, like the Mongo store.
func (s *memMessages) page(limit, offset int64, keep func(models.Message) bool) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastLimit, s.lastOffset = limit, offset
	out := []models.Message{}
	var skipped int64
	for i := len(s.all) - 1; i >= 0; i-- {
		if !keep(s.all[i]) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && int64(len(out)) == limit {
			break
		}
		out = append(out, s.all[i])
	}
	return out, nil
}

type listBody struct {
	Messages []models.Message `json:"messages"`
	HasMore  bool             `json:"has_more"`
}

func decodePage(t *testing.T, rec *httptest.ResponseRecorder) listBody {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body listBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []models.Message {
	t.Helper()
	return decodePage(t, rec).Messages
}

func TestSendAndInbox(t *testing.T) {
	st := &memMessages{}
	h := messages.NewHandler(st, zap.NewNop())
	sender := testutil.SchoolUser(primitive.NewObjectID())

	rec := httptest.NewRecorder()
	h.HandleSend(rec, testutil.WithUser(testutil.NewJSONRequest(http.MethodPost, "/api/messages",
		`{"subject":"Bus times","body":"Leaves at _8:00_","recipient_roles":["eca","eca"]}`), sender))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var m models.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, models.RoleSchool, m.SenderRole)
	assert.Equal(t, []models.Role{models.RoleECA}, m.RecipientRoles)
	assert.Contains(t, m.BodyHTML, "<em>8:00</em>")

	rec = httptest.NewRecorder()
	h.HandleInbox(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/api/messages", testutil.ECAUser()))
	assert.Len(t, decodeList(t, rec), 1)

	rec = httptest.NewRecorder()
	h.HandleInbox(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/api/messages", testutil.SuperAdminUser()))
	assert.Empty(t, decodeList(t, rec))

	rec = httptest.NewRecorder()
	h.HandleSent(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/api/messages/sent", sender))
	assert.Len(t, decodeList(t, rec), 1)
}

func TestSend_Validation(t *testing.T) {
	h := messages.NewHandler(&memMessages{}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.HandleSend(rec, testutil.WithUser(testutil.NewJSONRequest(http.MethodPost, "/", `{"subject":" ","body":"x","recipient_roles":[]}`), testutil.ECAUser()))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"subject":"required"`)
	assert.Contains(t, rec.Body.String(), `"recipient_roles"`)
}

func TestInbox_LimitClamped(t *testing.T) {
	st := &memMessages{}
	h := messages.NewHandler(st, zap.NewNop())

	// the store is asked for one extra row to detect a further page
	for target, want := range map[string]int64{
		"/api/messages":            51,
		"/api/messages?limit=10":   11,
		"/api/messages?limit=9999": 201,
		"/api/messages?limit=abc":  51,
	} {
		rec := httptest.NewRecorder()
		h.HandleInbox(rec, testutil.NewAuthenticatedRequest(http.MethodGet, target, testutil.ECAUser()))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, want, st.lastLimit, target)
	}
}

func TestInbox_Pages(t *testing.T) {
	st := &memMessages{}
	h := messages.NewHandler(st, zap.NewNop())
	sender := primitive.NewObjectID()
	for _, subject := range []string{"one", "two", "three", "four", "five"} {
		_, err := st.Create(context.Background(), models.Message{
			SenderID:       sender,
			Subject:        subject,
			RecipientRoles: []models.Role{models.RoleECA},
		})
		require.NoError(t, err)
	}
	subjects := func(list []models.Message) []string {
		out := make([]string, 0, len(list))
		for _, m := range list {
			out = append(out, m.Subject)
		}
		return out
	}

	rec := httptest.NewRecorder()
	h.HandleInbox(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/api/messages?limit=2", testutil.ECAUser()))
	first := decodePage(t, rec)
	assert.Equal(t, []string{"five", "four"}, subjects(first.Messages))
	assert.True(t, first.HasMore)

	rec = httptest.NewRecorder()
	h.HandleInbox(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/api/messages?limit=2&offset=2", testutil.ECAUser()))
	second := decodePage(t, rec)
	assert.Equal(t, int64(2), st.lastOffset)
	assert.Equal(t, []string{"three", "two"}, subjects(second.Messages))
	assert.True(t, second.HasMore)

	rec = httptest.NewRecorder()
	h.HandleInbox(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/api/messages?limit=2&offset=4", testutil.ECAUser()))
	last := decodePage(t, rec)
	assert.Equal(t, []string{"one"}, subjects(last.Messages))
	assert.False(t, last.HasMore)
}

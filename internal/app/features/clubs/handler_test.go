package clubs_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dalemusser/ecahub/internal/app/features/clubs"
	clubstore "github.com/dalemusser/ecahub/internal/app/store/clubs"
	"github.com/dalemusser/ecahub/internal/app/store/registrations"
	schoolstore "github.com/dalemusser/ecahub/internal/app/store/schools"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"github.com/dalemusser/ecahub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memClubs struct {
	mu sync.Mutex
	m  map[primitive.ObjectID]models.Club
}

func (s *memClubs) Create(_ context.Context, cl models.Club) (models.Club, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cl.ID = primitive.NewObjectID()
	if cl.Status == "" {
		cl.Status = models.ClubComingSoon
	}
	s.m[cl.ID] = cl
	return cl, nil
}

func (s *memClubs) GetByID(_ context.Context, id primitive.ObjectID) (models.Club, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cl, ok := s.m[id]
	if !ok {
		return models.Club{}, clubstore.ErrNotFound
	}
	return cl, nil
}

func (s *memClubs) List(context.Context, clubstore.Filter) ([]models.Club, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Club{}
	for _, cl := range s.m {
		out = append(out, cl)
	}
	return out, nil
}

func (s *memClubs) Update(_ context.Context, id primitive.ObjectID, cl models.Club) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[id]; !ok {
		return clubstore.ErrNotFound
	}
	s.m[id] = cl
	return nil
}

func (s *memClubs) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[id]; !ok {
		return clubstore.ErrNotFound
	}
	delete(s.m, id)
	return nil
}

func (s *memClubs) AddActivity(_ context.Context, id primitive.ObjectID, a models.ClubActivity) (models.ClubActivity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cl, ok := s.m[id]
	if !ok {
		return models.ClubActivity{}, clubstore.ErrNotFound
	}
	a.ID = primitive.NewObjectID()
	cl.Activities = append(cl.Activities, a)
	s.m[id] = cl
	return a, nil
}

func (s *memClubs) Register(_ context.Context, id primitive.ObjectID, reg models.SchoolRegistration) (models.SchoolRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cl, ok := s.m[id]
	if !ok {
		return models.SchoolRegistration{}, clubstore.ErrNotFound
	}
	for _, x := range cl.Registrations {
		if x.SchoolID == reg.SchoolID {
			return models.SchoolRegistration{}, registrations.ErrAlreadyRegistered
		}
	}
	cl.Registrations = append(cl.Registrations, reg)
	s.m[id] = cl
	return reg, nil
}

func (s *memClubs) SetRegistrationStatus(_ context.Context, id, schoolID primitive.ObjectID, st models.RegistrationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cl, ok := s.m[id]
	if !ok {
		return clubstore.ErrNotFound
	}
	for i := range cl.Registrations {
		if cl.Registrations[i].SchoolID == schoolID {
			cl.Registrations[i].Status = st
			s.m[id] = cl
			return nil
		}
	}
	return registrations.ErrRegistrationAbsent
}

type schoolsByID map[primitive.ObjectID]models.School

func (f schoolsByID) GetByID(_ context.Context, id primitive.ObjectID) (models.School, error) {
	if s, ok := f[id]; ok {
		return s, nil
	}
	return models.School{}, schoolstore.ErrNotFound
}

type fixture struct {
	h      *clubs.Handler
	store  *memClubs
	school models.School
}

func newFixture() fixture {
	school := models.School{ID: primitive.NewObjectID(), Name: "Riverside"}
	st := &memClubs{m: map[primitive.ObjectID]models.Club{}}
	return fixture{
		h:      clubs.NewHandler(st, schoolsByID{school.ID: school}, zap.NewNop()),
		store:  st,
		school: school,
	}
}

func (f fixture) seed(t *testing.T, createdBy *primitive.ObjectID) models.Club {
	t.Helper()
	cl, err := f.store.Create(context.Background(), models.Club{Name: "Chess", Category: models.ClubAcademic, CreatedByID: createdBy})
	require.NoError(t, err)
	return cl
}

func TestHandleCreate_ValidatesEnums(t *testing.T) {
	f := newFixture()
	admin := testutil.SuperAdminUser()

	rec := httptest.NewRecorder()
	f.h.HandleCreate(rec, testutil.WithUser(testutil.NewJSONRequest(http.MethodPost, "/api/clubs", `{"name":"Robotics","category":"technology","status":"Coming Soon"}`), admin))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var cl models.Club
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cl))
	assert.Equal(t, models.ClubComingSoon, cl.Status)
	require.NotNil(t, cl.CreatedByID)
	assert.Equal(t, admin.ID, cl.CreatedByID.Hex())

	rec = httptest.NewRecorder()
	f.h.HandleCreate(rec, testutil.WithUser(testutil.NewJSONRequest(http.MethodPost, "/api/clubs", `{"name":"Robotics","category":"cooking","status":"Paused"}`), admin))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"category":"oneof"`)
	assert.Contains(t, rec.Body.String(), `"status":"oneof"`)
}

func TestHandleUpdate_SchoolOnlyOwnClubs(t *testing.T) {
	f := newFixture()
	school := testutil.SchoolUser(f.school.ID)
	uid, _ := primitive.ObjectIDFromHex(school.ID)

	own := f.seed(t, &uid)
	other := f.seed(t, nil)
	body := `{"name":"Chess Club","category":"academic","status":"Open"}`

	rec := httptest.NewRecorder()
	f.h.HandleUpdate(rec, testutil.WithChiURLParam(testutil.WithUser(testutil.NewJSONRequest(http.MethodPut, "/", body), school), "id", own.ID.Hex()))
	assert.Equal(t, http.StatusOK, rec.Code)

	got, _ := f.store.GetByID(context.Background(), own.ID)
	assert.Equal(t, "Chess Club", got.Name)
	assert.Equal(t, models.ClubOpen, got.Status)

	rec = httptest.NewRecorder()
	f.h.HandleUpdate(rec, testutil.WithChiURLParam(testutil.WithUser(testutil.NewJSONRequest(http.MethodPut, "/", body), school), "id", other.ID.Hex()))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleRegister_SchoolRegistersOnce(t *testing.T) {
	f := newFixture()
	cl := f.seed(t, nil)
	school := testutil.SchoolUser(f.school.ID)

	req := func() *http.Request {
		return testutil.WithChiURLParam(testutil.WithUser(httptest.NewRequest(http.MethodPost, "/", nil), school), "id", cl.ID.Hex())
	}

	rec := httptest.NewRecorder()
	f.h.HandleRegister(rec, req())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var reg models.SchoolRegistration
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	assert.Equal(t, f.school.ID, reg.SchoolID)
	assert.Equal(t, "Riverside", reg.SchoolName)
	assert.Equal(t, models.RegistrationPending, reg.Status)

	rec = httptest.NewRecorder()
	f.h.HandleRegister(rec, req())
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleRegister_UnknownClub(t *testing.T) {
	f := newFixture()
	school := testutil.SchoolUser(f.school.ID)

	rec := httptest.NewRecorder()
	f.h.HandleRegister(rec, testutil.WithChiURLParam(testutil.WithUser(httptest.NewRequest(http.MethodPost, "/", nil), school), "id", primitive.NewObjectID().Hex()))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Club not found")
}

func TestHandleSetRegistrationStatus(t *testing.T) {
	f := newFixture()
	cl := f.seed(t, nil)
	_, err := f.store.Register(context.Background(), cl.ID, models.SchoolRegistration{SchoolID: f.school.ID, Status: models.RegistrationPending})
	require.NoError(t, err)

	mk := func(schoolID, body string) *http.Request {
		r := testutil.WithUser(testutil.NewJSONRequest(http.MethodPut, "/", body), testutil.SuperAdminUser())
		r = testutil.WithChiURLParam(r, "id", cl.ID.Hex())
		return testutil.WithChiURLParam(r, "schoolId", schoolID)
	}

	rec := httptest.NewRecorder()
	f.h.HandleSetRegistrationStatus(rec, mk(f.school.ID.Hex(), `{"status":"approved"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	got, _ := f.store.GetByID(context.Background(), cl.ID)
	assert.Equal(t, models.RegistrationApproved, got.Registrations[0].Status)

	rec = httptest.NewRecorder()
	f.h.HandleSetRegistrationStatus(rec, mk(f.school.ID.Hex(), `{"status":"maybe"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	f.h.HandleSetRegistrationStatus(rec, mk(primitive.NewObjectID().Hex(), `{"status":"approved"}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Registration not found")
}

func TestHandleAddActivity(t *testing.T) {
	f := newFixture()
	cl := f.seed(t, nil)

	rec := httptest.NewRecorder()
	r := testutil.WithUser(testutil.NewJSONRequest(http.MethodPost, "/", `{"title":"Blitz night","schedule":"Fridays 5pm"}`), testutil.SuperAdminUser())
	f.h.HandleAddActivity(rec, testutil.WithChiURLParam(r, "id", cl.ID.Hex()))
	require.Equal(t, http.StatusCreated, rec.Code)

	got, _ := f.store.GetByID(context.Background(), cl.ID)
	require.Len(t, got.Activities, 1)
	assert.Equal(t, "Blitz night", got.Activities[0].Title)
}

package shared_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/ecahub/internal/app/features/shared"
	"github.com/dalemusser/ecahub/internal/app/store/registrations"
	schoolstore "github.com/dalemusser/ecahub/internal/app/store/schools"
	"github.com/dalemusser/ecahub/internal/app/system/auth"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type oneSchool struct{ s models.School }

func (f oneSchool) GetByID(_ context.Context, id primitive.ObjectID) (models.School, error) {
	if id == f.s.ID {
		return f.s, nil
	}
	return models.School{}, schoolstore.ErrNotFound
}

func TestRegistrant(t *testing.T) {
	school := models.School{ID: primitive.NewObjectID(), Name: "Riverside"}
	finder := oneSchool{school}
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	tests := []struct {
		name      string
		rc        auth.RoleContext
		requested string
		wantOK    bool
		wantCode  int
	}{
		{"school registers itself", auth.RoleContext{UserRole: models.RoleSchool, SchoolID: school.ID.Hex()}, "", true, 0},
		{"school ignores requested id", auth.RoleContext{UserRole: models.RoleSchool, SchoolID: school.ID.Hex()}, primitive.NewObjectID().Hex(), true, 0},
		{"school without school", auth.RoleContext{UserRole: models.RoleSchool}, "", false, http.StatusForbidden},
		{"admin names school", auth.RoleContext{UserRole: models.RoleSuperAdmin}, school.ID.Hex(), true, 0},
		{"admin missing id", auth.RoleContext{UserRole: models.RoleSuperAdmin}, "", false, http.StatusBadRequest},
		{"admin unknown school", auth.RoleContext{UserRole: models.RoleSuperAdmin}, primitive.NewObjectID().Hex(), false, http.StatusNotFound},
		{"eca cannot register", auth.RoleContext{UserRole: models.RoleECA}, school.ID.Hex(), false, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			rc := tt.rc
			reg, ok := shared.Registrant(context.Background(), rec, req, zap.NewNop(), finder, &rc, tt.requested)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, school.ID, reg.SchoolID)
				assert.Equal(t, "Riverside", reg.SchoolName)
				assert.Equal(t, models.RegistrationPending, reg.Status)
			} else {
				assert.Equal(t, tt.wantCode, rec.Code)
			}
		})
	}
}

func TestCanEditRoster(t *testing.T) {
	mine := primitive.NewObjectID()
	assert.True(t, shared.CanEditRoster(&auth.RoleContext{UserRole: models.RoleSuperAdmin}, mine))
	assert.True(t, shared.CanEditRoster(&auth.RoleContext{UserRole: models.RoleSchool, SchoolID: mine.Hex()}, mine))
	assert.False(t, shared.CanEditRoster(&auth.RoleContext{UserRole: models.RoleSchool, SchoolID: mine.Hex()}, primitive.NewObjectID()))
	assert.False(t, shared.CanEditRoster(&auth.RoleContext{UserRole: models.RoleECA}, mine))
}

func TestRegistrationErr(t *testing.T) {
	errOwner := errors.New("owner missing")
	tests := []struct {
		err  error
		want int
	}{
		{errOwner, http.StatusNotFound},
		{registrations.ErrAlreadyRegistered, http.StatusConflict},
		{registrations.ErrRegistrationAbsent, http.StatusNotFound},
		{registrations.ErrBadStatus, http.StatusBadRequest},
		{errors.New("socket closed"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		shared.RegistrationErr(rec, httptest.NewRequest(http.MethodPost, "/", nil), zap.NewNop(), "op", tt.err, errOwner, "Club not found")
		assert.Equal(t, tt.want, rec.Code, tt.err.Error())
	}
}

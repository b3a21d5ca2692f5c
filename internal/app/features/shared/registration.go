// Package shared holds request handling used by more than one feature.
package shared

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/ecahub/internal/app/store/registrations"
	schoolstore "github.com/dalemusser/ecahub/internal/app/store/schools"
	"github.com/dalemusser/ecahub/internal/app/system/apiresp"
	"github.com/dalemusser/ecahub/internal/app/system/auth"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// SchoolFinder is satisfied by *schoolstore.Store.
type SchoolFinder interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.School, error)
}

// RegistrationRequest is the body of POST .../registrations. School users
// leave SchoolID empty; super-admins name the school they register.
type RegistrationRequest struct {
	SchoolID     string   `json:"school_id,omitempty"`
	Participants []string `json:"participants,omitempty" validate:"max=500,dive,required,max=200"`
}

// StatusRequest is the body of PUT .../registrations/{schoolId}.
type StatusRequest struct {
	Status models.RegistrationStatus `json:"status" validate:"required,oneof=pending approved rejected"`
}

// ParticipantsRequest is the body of POST .../participants.
type ParticipantsRequest struct {
	Names []string `json:"names" validate:"required,min=1,max=500,dive,required,max=200"`
}

// Registrant builds the registration for the caller. It writes the error
// response itself and returns false when the request cannot proceed.
func Registrant(ctx context.Context, w http.ResponseWriter, r *http.Request, log *zap.Logger, schools SchoolFinder, rc *auth.RoleContext, requested string) (models.SchoolRegistration, bool) {
	var sid primitive.ObjectID
	switch rc.UserRole {
	case models.RoleSchool:
		id, ok := rc.SchoolOID()
		if !ok {
			apiresp.Forbidden(w, "Your account is not attached to a school")
			return models.SchoolRegistration{}, false
		}
		sid = id
	case models.RoleSuperAdmin:
		id, err := primitive.ObjectIDFromHex(requested)
		if err != nil {
			apiresp.BadRequest(w, "school_id is required")
			return models.SchoolRegistration{}, false
		}
		sid = id
	default:
		apiresp.Forbidden(w, "Only schools can register")
		return models.SchoolRegistration{}, false
	}

	school, err := schools.GetByID(ctx, sid)
	if err != nil {
		if errors.Is(err, schoolstore.ErrNotFound) {
			apiresp.NotFound(w, "School not found")
			return models.SchoolRegistration{}, false
		}
		apiresp.Internal(w, r, log, "registration school lookup", err)
		return models.SchoolRegistration{}, false
	}
	return models.SchoolRegistration{
		SchoolID:   school.ID,
		SchoolName: school.Name,
		Status:     models.RegistrationPending,
	}, true
}

// CanEditRoster reports whether rc may change schoolID's participants.
func CanEditRoster(rc *auth.RoleContext, schoolID primitive.ObjectID) bool {
	if rc.IsSuperAdmin() {
		return true
	}
	sid, ok := rc.SchoolOID()
	return rc.IsSchool() && ok && sid == schoolID
}

// RegistrationErr maps the registration sentinels shared by clubs and
// events. notFound is the owner's sentinel and message.
func RegistrationErr(w http.ResponseWriter, r *http.Request, log *zap.Logger, op string, err, notFound error, notFoundMsg string) {
	switch {
	case errors.Is(err, notFound):
		apiresp.NotFound(w, notFoundMsg)
	case errors.Is(err, registrations.ErrAlreadyRegistered):
		apiresp.Conflict(w, "School is already registered")
	case errors.Is(err, registrations.ErrRegistrationAbsent):
		apiresp.NotFound(w, "Registration not found")
	case errors.Is(err, registrations.ErrBadStatus):
		apiresp.BadRequest(w, "Invalid registration status")
	default:
		apiresp.Internal(w, r, log, op, err)
	}
}

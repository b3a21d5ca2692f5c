// internal/app/features/events/api.go
package events

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/ecahub/internal/app/features/shared"
	eventstore "github.com/dalemusser/ecahub/internal/app/store/events"
	"github.com/dalemusser/ecahub/internal/app/system/apiresp"
	"github.com/dalemusser/ecahub/internal/app/system/auth"
	"github.com/dalemusser/ecahub/internal/app/system/authz"
	"github.com/dalemusser/ecahub/internal/app/system/timeouts"
	"github.com/dalemusser/ecahub/internal/app/system/validate"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const msgNotFound = "Event not found"

func (h *Handler) storeErr(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, eventstore.ErrNotFound):
		apiresp.NotFound(w, msgNotFound)
	case errors.Is(err, eventstore.ErrBadTimes):
		apiresp.BadRequest(w, "Event must end after it starts")
	case errors.Is(err, eventstore.ErrInvalidTransition):
		apiresp.Conflict(w, "Illegal status transition")
	default:
		apiresp.Internal(w, r, h.Log, op, err)
	}
}

func decodeEvent(w http.ResponseWriter, r *http.Request) (models.Event, *primitive.ObjectID, bool) {
	var req eventRequest
	if err := apiresp.DecodeJSON(w, r, &req); err != nil {
		apiresp.BadRequest(w, "Invalid request body")
		return models.Event{}, nil, false
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := validate.Struct(req); err != nil {
		apiresp.Invalid(w, err)
		return models.Event{}, nil, false
	}
	ev := models.Event{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt.UTC(),
		EndsAt:      req.EndsAt.UTC(),
	}
	if req.ClubID != "" {
		// validated as a hex ObjectID above
		oid, _ := primitive.ObjectIDFromHex(req.ClubID)
		ev.ClubID = &oid
	}
	var school *primitive.ObjectID
	if req.SchoolID != "" {
		oid, _ := primitive.ObjectIDFromHex(req.SchoolID)
		school = &oid
	}
	return ev, school, true
}

// loadOwned fetches the event and checks the caller may manage it.
func (h *Handler) loadOwned(ctx context.Context, w http.ResponseWriter, r *http.Request, id primitive.ObjectID) (models.Event, bool) {
	rc, _ := auth.CurrentUser(r)
	cur, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.storeErr(w, r, "get event", err)
		return models.Event{}, false
	}
	if !authz.CanManageOwned(*rc, cur.SchoolID) {
		apiresp.Forbidden(w, "You cannot modify this event")
		return models.Event{}, false
	}
	return cur, true
}

// HandleCreate handles POST /api/events. New events are drafts.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	rc, _ := auth.CurrentUser(r)
	ev, requested, ok := decodeEvent(w, r)
	if !ok {
		return
	}
	ev.SchoolID = authz.OwnerFor(*rc, requested)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	out, err := h.Store.Create(ctx, ev)
	if err != nil {
		h.storeErr(w, r, "create event", err)
		return
	}
	h.Log.Info("event created", zap.String("event_id", out.ID.Hex()), zap.String("by", rc.UserID))
	apiresp.Created(w, out)
}

func parseWindow(w http.ResponseWriter, v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		apiresp.BadRequest(w, "Dates must be RFC 3339")
		return time.Time{}, false
	}
	return t, true
}

// HandleList handles GET /api/events?status=&club_id=&school_id=&from=&to=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := eventstore.Filter{Status: models.EventStatus(q.Get("status"))}

	var ok bool
	if f.ClubID, ok = apiresp.QueryID(w, r, "club_id"); !ok {
		return
	}
	if f.SchoolID, ok = apiresp.QueryID(w, r, "school_id"); !ok {
		return
	}
	if f.From, ok = parseWindow(w, q.Get("from")); !ok {
		return
	}
	if f.To, ok = parseWindow(w, q.Get("to")); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Store.List(ctx, f)
	if err != nil {
		apiresp.Internal(w, r, h.Log, "list events", err)
		return
	}
	apiresp.OK(w, list)
}

// HandleGet handles GET /api/events/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ev, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.storeErr(w, r, "get event", err)
		return
	}
	apiresp.OK(w, ev)
}

// HandleUpdate handles PUT /api/events/{id}. Status is not touched here.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	ev, _, ok := decodeEvent(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, ok := h.loadOwned(ctx, w, r, id); !ok {
		return
	}
	if err := h.Store.Update(ctx, id, ev); err != nil {
		h.storeErr(w, r, "update event", err)
		return
	}
	out, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.storeErr(w, r, "get event", err)
		return
	}
	apiresp.OK(w, out)
}

// HandleDelete handles DELETE /api/events/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, ok := h.loadOwned(ctx, w, r, id); !ok {
		return
	}
	if err := h.Store.Delete(ctx, id); err != nil {
		h.storeErr(w, r, "delete event", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleTransition handles POST /api/events/{id}/status.
func (h *Handler) HandleTransition(w http.ResponseWriter, r *http.Request) {
	rc, _ := auth.CurrentUser(r)
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := apiresp.DecodeJSON(w, r, &req); err != nil {
		apiresp.BadRequest(w, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		apiresp.Invalid(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, ok := h.loadOwned(ctx, w, r, id); !ok {
		return
	}
	ev, err := h.Store.Transition(ctx, id, req.Status)
	if err != nil {
		h.storeErr(w, r, "event transition", err)
		return
	}
	h.Log.Info("event status changed",
		zap.String("event_id", id.Hex()),
		zap.String("status", string(ev.Status)),
		zap.String("by", rc.UserID))
	apiresp.OK(w, ev)
}

// HandleRegister handles POST /api/events/{id}/registrations.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	rc, _ := auth.CurrentUser(r)
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	var req shared.RegistrationRequest
	if err := apiresp.DecodeOptionalJSON(w, r, &req); err != nil {
		apiresp.BadRequest(w, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		apiresp.Invalid(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	reg, ok := shared.Registrant(ctx, w, r, h.Log, h.Schools, rc, req.SchoolID)
	if !ok {
		return
	}
	reg.Participants = req.Participants
	out, err := h.Store.Register(ctx, id, reg)
	if err != nil {
		shared.RegistrationErr(w, r, h.Log, "event register", err, eventstore.ErrNotFound, msgNotFound)
		return
	}
	h.Log.Info("event registration", zap.String("event_id", id.Hex()), zap.String("school_id", reg.SchoolID.Hex()))
	apiresp.Created(w, out)
}

// HandleSetRegistrationStatus handles PUT /api/events/{id}/registrations/{schoolId}.
func (h *Handler) HandleSetRegistrationStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	schoolID, ok := apiresp.ParamID(w, r, "schoolId")
	if !ok {
		return
	}
	var req shared.StatusRequest
	if err := apiresp.DecodeJSON(w, r, &req); err != nil {
		apiresp.BadRequest(w, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		apiresp.Invalid(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.SetRegistrationStatus(ctx, id, schoolID, req.Status); err != nil {
		shared.RegistrationErr(w, r, h.Log, "event registration status", err, eventstore.ErrNotFound, msgNotFound)
		return
	}
	ev, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.storeErr(w, r, "get event", err)
		return
	}
	apiresp.OK(w, ev)
}

// HandleAddParticipants handles POST /api/events/{id}/registrations/{schoolId}/participants.
// Names already on the roster are ignored.
func (h *Handler) HandleAddParticipants(w http.ResponseWriter, r *http.Request) {
	rc, _ := auth.CurrentUser(r)
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	schoolID, ok := apiresp.ParamID(w, r, "schoolId")
	if !ok {
		return
	}
	if !shared.CanEditRoster(rc, schoolID) {
		apiresp.Forbidden(w, "You cannot edit this school's participants")
		return
	}
	var req shared.ParticipantsRequest
	if err := apiresp.DecodeJSON(w, r, &req); err != nil {
		apiresp.BadRequest(w, "Invalid request body")
		return
	}
	for i := range req.Names {
		req.Names[i] = strings.TrimSpace(req.Names[i])
	}
	if err := validate.Struct(req); err != nil {
		apiresp.Invalid(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.AddParticipants(ctx, id, schoolID, req.Names); err != nil {
		shared.RegistrationErr(w, r, h.Log, "event participants", err, eventstore.ErrNotFound, msgNotFound)
		return
	}
	ev, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.storeErr(w, r, "get event", err)
		return
	}
	apiresp.OK(w, ev)
}

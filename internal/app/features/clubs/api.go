// internal/app/features/clubs/api.go
package clubs

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/ecahub/internal/app/features/shared"
	clubstore "github.com/dalemusser/ecahub/internal/app/store/clubs"
	"github.com/dalemusser/ecahub/internal/app/system/apiresp"
	"github.com/dalemusser/ecahub/internal/app/system/auth"
	"github.com/dalemusser/ecahub/internal/app/system/timeouts"
	"github.com/dalemusser/ecahub/internal/app/system/validate"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"go.uber.org/zap"
)

const msgNotFound = "Club not found"

func (h *Handler) storeErr(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, clubstore.ErrNotFound) {
		apiresp.NotFound(w, msgNotFound)
		return
	}
	apiresp.Internal(w, r, h.Log, op, err)
}

// canManage: super-admins manage every club, school users the clubs they created.
func canManage(rc *auth.RoleContext, cl models.Club) bool {
	if rc.IsSuperAdmin() {
		return true
	}
	uid, ok := rc.UserOID()
	return rc.IsSchool() && ok && cl.CreatedByID != nil && *cl.CreatedByID == uid
}

func decodeClub(w http.ResponseWriter, r *http.Request) (clubRequest, bool) {
	var req clubRequest
	if err := apiresp.DecodeJSON(w, r, &req); err != nil {
		apiresp.BadRequest(w, "Invalid request body")
		return req, false
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		apiresp.Invalid(w, err)
		return req, false
	}
	return req, true
}

// HandleCreate handles POST /api/clubs.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	rc, _ := auth.CurrentUser(r)
	req, ok := decodeClub(w, r)
	if !ok {
		return
	}

	cl := models.Club{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Status:      req.Status,
	}
	if uid, ok := rc.UserOID(); ok {
		cl.CreatedByID = &uid
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	out, err := h.Store.Create(ctx, cl)
	if err != nil {
		apiresp.Internal(w, r, h.Log, "create club", err)
		return
	}
	h.Log.Info("club created", zap.String("club_id", out.ID.Hex()), zap.String("by", rc.UserID))
	apiresp.Created(w, out)
}

// HandleList handles GET /api/clubs?category=&status=&school_id=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := clubstore.Filter{
		Category: models.ClubCategory(q.Get("category")),
		Status:   models.ClubStatus(q.Get("status")),
	}
	sid, ok := apiresp.QueryID(w, r, "school_id")
	if !ok {
		return
	}
	f.SchoolID = sid

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Store.List(ctx, f)
	if err != nil {
		apiresp.Internal(w, r, h.Log, "list clubs", err)
		return
	}
	apiresp.OK(w, list)
}

// HandleGet handles GET /api/clubs/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cl, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.storeErr(w, r, "get club", err)
		return
	}
	apiresp.OK(w, cl)
}

// HandleUpdate handles PUT /api/clubs/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	rc, _ := auth.CurrentUser(r)
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	req, ok := decodeClub(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cur, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.storeErr(w, r, "get club", err)
		return
	}
	if !canManage(rc, cur) {
		apiresp.Forbidden(w, "You cannot modify this club")
		return
	}

	cur.Name, cur.Description, cur.Category = req.Name, req.Description, req.Category
	if req.Status != "" {
		cur.Status = req.Status
	}
	if err := h.Store.Update(ctx, id, cur); err != nil {
		h.storeErr(w, r, "update club", err)
		return
	}
	apiresp.OK(w, cur)
}

// HandleDelete handles DELETE /api/clubs/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	rc, _ := auth.CurrentUser(r)
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cur, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.storeErr(w, r, "get club", err)
		return
	}
	if !canManage(rc, cur) {
		apiresp.Forbidden(w, "You cannot delete this club")
		return
	}
	if err := h.Store.Delete(ctx, id); err != nil {
		h.storeErr(w, r, "delete club", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddActivity handles POST /api/clubs/{id}/activities.
func (h *Handler) HandleAddActivity(w http.ResponseWriter, r *http.Request) {
	rc, _ := auth.CurrentUser(r)
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	var req activityRequest
	if err := apiresp.DecodeJSON(w, r, &req); err != nil {
		apiresp.BadRequest(w, "Invalid request body")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := validate.Struct(req); err != nil {
		apiresp.Invalid(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cur, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.storeErr(w, r, "get club", err)
		return
	}
	if !canManage(rc, cur) {
		apiresp.Forbidden(w, "You cannot modify this club")
		return
	}

	a, err := h.Store.AddActivity(ctx, id, models.ClubActivity{
		Title:       req.Title,
		Description: req.Description,
		Schedule:    req.Schedule,
	})
	if err != nil {
		h.storeErr(w, r, "add club activity", err)
		return
	}
	apiresp.Created(w, a)
}

// HandleRegister handles POST /api/clubs/{id}/registrations.
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	reg, ok := shared.Registrant(ctx, w, r, h.Log, h.Schools, rc, req.SchoolID)
	if !ok {
		return
	}
	out, err := h.Store.Register(ctx, id, reg)
	if err != nil {
		shared.RegistrationErr(w, r, h.Log, "club register", err, clubstore.ErrNotFound, msgNotFound)
		return
	}
	h.Log.Info("club registration", zap.String("club_id", id.Hex()), zap.String("school_id", reg.SchoolID.Hex()))
	apiresp.Created(w, out)
}

// HandleSetRegistrationStatus handles PUT /api/clubs/{id}/registrations/{schoolId}.
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
		shared.RegistrationErr(w, r, h.Log, "club registration status", err, clubstore.ErrNotFound, msgNotFound)
		return
	}
	cl, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.storeErr(w, r, "get club", err)
		return
	}
	apiresp.OK(w, cl)
}

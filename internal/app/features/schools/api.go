// internal/app/features/schools/api.go
package schools

import (
	"context"
	"errors"
	"net/http"
	"strings"

	schoolstore "github.com/dalemusser/ecahub/internal/app/store/schools"
	"github.com/dalemusser/ecahub/internal/app/system/apiresp"
	"github.com/dalemusser/ecahub/internal/app/system/theme"
	"github.com/dalemusser/ecahub/internal/app/system/timeouts"
	"github.com/dalemusser/ecahub/internal/app/system/validate"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const msgNotFound = "School not found"

// HandleCreate handles POST /api/schools.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createSchoolRequest
	if err := apiresp.DecodeJSON(w, r, &req); err != nil {
		apiresp.BadRequest(w, "Invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		apiresp.Invalid(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sc, err := h.Store.Create(ctx, req.toModel())
	if err != nil {
		if errors.Is(err, schoolstore.ErrDuplicateSchool) {
			apiresp.Conflict(w, "A school with this name already exists")
			return
		}
		apiresp.Internal(w, r, h.Log, "create school", err)
		return
	}
	h.Log.Info("school created", zap.String("school_id", sc.ID.Hex()))
	apiresp.Created(w, sc)
}

// HandleList handles GET /api/schools.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Store.List(ctx)
	if err != nil {
		apiresp.Internal(w, r, h.Log, "list schools", err)
		return
	}
	apiresp.OK(w, list)
}

// HandleGet handles GET /api/schools/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sc, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.storeErr(w, r, "get school", err)
		return
	}
	apiresp.OK(w, sc)
}

// HandleUpdate handles PUT /api/schools/{id}. The theme is not touched
// here; it has its own endpoint.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	var req schoolRequest
	if err := apiresp.DecodeJSON(w, r, &req); err != nil {
		apiresp.BadRequest(w, "Invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		apiresp.Invalid(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.Update(ctx, id, req.toModel()); err != nil {
		h.storeErr(w, r, "update school", err)
		return
	}
	sc, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.storeErr(w, r, "reload school", err)
		return
	}
	apiresp.OK(w, sc)
}

// HandleDelete handles DELETE /api/schools/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.Delete(ctx, id); err != nil {
		h.storeErr(w, r, "delete school", err)
		return
	}
	h.Log.Info("school deleted", zap.String("school_id", id.Hex()))
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetTheme handles GET /api/schools/theme/{schoolId}. A school with
// no stored theme answers with the default.
func (h *Handler) HandleGetTheme(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, err := h.Themes.Resolve(ctx, chi.URLParam(r, "schoolId"))
	if err != nil {
		if errors.Is(err, theme.ErrNotFound) {
			apiresp.NotFound(w, msgNotFound)
			return
		}
		apiresp.Internal(w, r, h.Log, "resolve theme", err)
		return
	}
	apiresp.OK(w, themeResponse{Theme: t})
}

// HandleSetTheme handles PUT /api/schools/{id}/theme.
func (h *Handler) HandleSetTheme(w http.ResponseWriter, r *http.Request) {
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	var req themeRequest
	if err := apiresp.DecodeJSON(w, r, &req); err != nil {
		apiresp.BadRequest(w, "Invalid request body")
		return
	}
	if req.Theme != nil {
		if err := validate.Struct(req); err != nil {
			apiresp.Invalid(w, err)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.SetTheme(ctx, id, req.Theme); err != nil {
		h.storeErr(w, r, "set school theme", err)
		return
	}
	t, err := h.Themes.Resolve(ctx, id.Hex())
	if err != nil {
		apiresp.Internal(w, r, h.Log, "resolve theme", err)
		return
	}
	apiresp.OK(w, themeResponse{Theme: t})
}

func (h *Handler) storeErr(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, schoolstore.ErrNotFound):
		apiresp.NotFound(w, msgNotFound)
	case errors.Is(err, schoolstore.ErrDuplicateSchool):
		apiresp.Conflict(w, "A school with this name already exists")
	default:
		apiresp.Internal(w, r, h.Log, op, err)
	}
}

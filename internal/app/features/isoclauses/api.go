// internal/app/features/isoclauses/api.go
package isoclauses

import (
	"context"
	"errors"
	"net/http"
	"strings"

	isoclausestore "github.com/dalemusser/ecahub/internal/app/store/isoclauses"
	"github.com/dalemusser/ecahub/internal/app/system/apiresp"
	"github.com/dalemusser/ecahub/internal/app/system/auth"
	"github.com/dalemusser/ecahub/internal/app/system/timeouts"
	"github.com/dalemusser/ecahub/internal/app/system/validate"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (h *Handler) storeErr(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, isoclausestore.ErrNotFound):
		apiresp.NotFound(w, "ISO clause not found")
	case errors.Is(err, isoclausestore.ErrGuidelineNotFound):
		apiresp.NotFound(w, "Guideline not found")
	case errors.Is(err, isoclausestore.ErrDuplicateNumber):
		apiresp.Conflict(w, "An ISO clause with this number already exists")
	default:
		apiresp.Internal(w, r, h.Log, op, err)
	}
}

func decodeClause(w http.ResponseWriter, r *http.Request) (models.ISOClause, bool) {
	var req clauseRequest
	if err := apiresp.DecodeJSON(w, r, &req); err != nil {
		apiresp.BadRequest(w, "Invalid request body")
		return models.ISOClause{}, false
	}
	req.Number = strings.TrimSpace(req.Number)
	req.Title = strings.TrimSpace(req.Title)
	if err := validate.Struct(req); err != nil {
		apiresp.Invalid(w, err)
		return models.ISOClause{}, false
	}
	return models.ISOClause{
		Number:       req.Number,
		Title:        req.Title,
		Description:  req.Description,
		Requirements: req.Requirements,
	}, true
}

// HandleCreate handles POST /api/iso-clauses.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	cl, ok := decodeClause(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	out, err := h.Store.Create(ctx, cl)
	if err != nil {
		h.storeErr(w, r, "create iso clause", err)
		return
	}
	h.Log.Info("iso clause created", zap.String("number", out.Number))
	apiresp.Created(w, out)
}

// HandleList handles GET /api/iso-clauses.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Store.List(ctx)
	if err != nil {
		apiresp.Internal(w, r, h.Log, "list iso clauses", err)
		return
	}
	apiresp.OK(w, list)
}

// HandleGet handles GET /api/iso-clauses/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cl, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.storeErr(w, r, "get iso clause", err)
		return
	}
	apiresp.OK(w, cl)
}

// HandleUpdate handles PUT /api/iso-clauses/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	cl, ok := decodeClause(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.Update(ctx, id, cl); err != nil {
		h.storeErr(w, r, "update iso clause", err)
		return
	}
	out, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.storeErr(w, r, "get iso clause", err)
		return
	}
	apiresp.OK(w, out)
}

// HandleDelete handles DELETE /api/iso-clauses/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.Delete(ctx, id); err != nil {
		h.storeErr(w, r, "delete iso clause", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddGuideline handles POST /api/iso-clauses/{id}/guidelines.
func (h *Handler) HandleAddGuideline(w http.ResponseWriter, r *http.Request) {
	rc, _ := auth.CurrentUser(r)
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	var req guidelineRequest
	if err := apiresp.DecodeJSON(w, r, &req); err != nil {
		apiresp.BadRequest(w, "Invalid request body")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.FileURL = strings.TrimSpace(req.FileURL)
	if err := validate.Struct(req); err != nil {
		apiresp.Invalid(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := h.Store.AddGuideline(ctx, id, models.GuidelineDocument{
		Title:      req.Title,
		FileURL:    req.FileURL,
		FileName:   req.FileName,
		UploadedBy: rc.UserName,
	})
	if err != nil {
		h.storeErr(w, r, "add guideline", err)
		return
	}
	apiresp.Created(w, g)
}

// HandleRemoveGuideline handles DELETE /api/iso-clauses/{id}/guidelines/{gid}.
func (h *Handler) HandleRemoveGuideline(w http.ResponseWriter, r *http.Request) {
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	gid := chi.URLParam(r, "gid")
	if _, err := uuid.Parse(gid); err != nil {
		apiresp.BadRequest(w, "Invalid guideline id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.RemoveGuideline(ctx, id, gid); err != nil {
		h.storeErr(w, r, "remove guideline", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

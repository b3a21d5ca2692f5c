// internal/app/features/documents/api.go
package documents

import (
	"context"
	"errors"
	"net/http"
	"strings"

	documentstore "github.com/dalemusser/ecahub/internal/app/store/documents"
	"github.com/dalemusser/ecahub/internal/app/system/apiresp"
	"github.com/dalemusser/ecahub/internal/app/system/auth"
	"github.com/dalemusser/ecahub/internal/app/system/authz"
	"github.com/dalemusser/ecahub/internal/app/system/timeouts"
	"github.com/dalemusser/ecahub/internal/app/system/validate"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func (h *Handler) storeErr(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, documentstore.ErrNotFound):
		apiresp.NotFound(w, "Document not found")
	case errors.Is(err, documentstore.ErrSuperseded):
		apiresp.Conflict(w, "A newer version of this document already exists")
	default:
		apiresp.Internal(w, r, h.Log, op, err)
	}
}

func uploader(rc *auth.RoleContext, d *models.Document) {
	if uid, ok := rc.UserOID(); ok {
		d.UploadedByID = &uid
	}
	d.UploadedByName = rc.UserName
}

func decodeDocument(w http.ResponseWriter, r *http.Request) (documentRequest, bool) {
	var req documentRequest
	if err := apiresp.DecodeJSON(w, r, &req); err != nil {
		apiresp.BadRequest(w, "Invalid request body")
		return req, false
	}
	req.Title = strings.TrimSpace(req.Title)
	req.FileURL = strings.TrimSpace(req.FileURL)
	if err := validate.Struct(req); err != nil {
		apiresp.Invalid(w, err)
		return req, false
	}
	return req, true
}

// HandleCreate handles POST /api/documents (version 1 of a new lineage).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	rc, _ := auth.CurrentUser(r)
	req, ok := decodeDocument(w, r)
	if !ok {
		return
	}
	var requested *primitive.ObjectID
	if req.SchoolID != "" {
		oid, _ := primitive.ObjectIDFromHex(req.SchoolID)
		requested = &oid
	}
	d := models.Document{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		FileURL:     req.FileURL,
		SchoolID:    authz.OwnerFor(*rc, requested),
	}
	uploader(rc, &d)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	out, err := h.Store.Create(ctx, d)
	if err != nil {
		h.storeErr(w, r, "create document", err)
		return
	}
	h.Log.Info("document created", zap.String("document_id", out.ID.Hex()), zap.String("by", rc.UserID))
	apiresp.Created(w, out)
}

// HandleList handles GET /api/documents?category=&school_id=&all=1.
// Superseded versions are hidden unless all is set.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := documentstore.Filter{
		Category:    models.DocumentCategory(q.Get("category")),
		CurrentOnly: q.Get("all") == "",
	}
	var ok bool
	if f.SchoolID, ok = apiresp.QueryID(w, r, "school_id"); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Store.List(ctx, f)
	if err != nil {
		apiresp.Internal(w, r, h.Log, "list documents", err)
		return
	}
	apiresp.OK(w, list)
}

// HandleGet handles GET /api/documents/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	d, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.storeErr(w, r, "get document", err)
		return
	}
	apiresp.OK(w, d)
}

// HandleVersions handles GET /api/documents/{id}/versions.
func (h *Handler) HandleVersions(w http.ResponseWriter, r *http.Request) {
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	d, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.storeErr(w, r, "get document", err)
		return
	}
	list, err := h.Store.Versions(ctx, d.LineageID)
	if err != nil {
		apiresp.Internal(w, r, h.Log, "list document versions", err)
		return
	}
	apiresp.OK(w, list)
}

func (h *Handler) loadOwned(ctx context.Context, w http.ResponseWriter, r *http.Request, id primitive.ObjectID) bool {
	rc, _ := auth.CurrentUser(r)
	d, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.storeErr(w, r, "get document", err)
		return false
	}
	if !authz.CanManageOwned(*rc, d.SchoolID) {
		apiresp.Forbidden(w, "You cannot modify this document")
		return false
	}
	return true
}

// HandleUpdate handles PUT /api/documents/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	req, ok := decodeDocument(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if !h.loadOwned(ctx, w, r, id) {
		return
	}
	err := h.Store.Update(ctx, id, models.Document{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		FileURL:     req.FileURL,
	})
	if err != nil {
		h.storeErr(w, r, "update document", err)
		return
	}
	out, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.storeErr(w, r, "get document", err)
		return
	}
	apiresp.OK(w, out)
}

// HandleDelete handles DELETE /api/documents/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if !h.loadOwned(ctx, w, r, id) {
		return
	}
	if err := h.Store.Delete(ctx, id); err != nil {
		h.storeErr(w, r, "delete document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleNewVersion handles POST /api/documents/{id}/versions.
func (h *Handler) HandleNewVersion(w http.ResponseWriter, r *http.Request) {
	rc, _ := auth.CurrentUser(r)
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	var req versionRequest
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

	if !h.loadOwned(ctx, w, r, id) {
		return
	}
	next := models.Document{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		FileURL:     req.FileURL,
	}
	uploader(rc, &next)

	out, err := h.Store.NewVersion(ctx, id, next)
	if err != nil {
		h.storeErr(w, r, "new document version", err)
		return
	}
	h.Log.Info("document version created",
		zap.String("document_id", out.ID.Hex()),
		zap.Int("version", out.Version),
		zap.String("by", rc.UserID))
	apiresp.Created(w, out)
}

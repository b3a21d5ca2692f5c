// internal/app/features/trainings/api.go
package trainings

import (
	"context"
	"errors"
	"net/http"
	"strings"

	trainingstore "github.com/dalemusser/ecahub/internal/app/store/trainings"
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
	case errors.Is(err, trainingstore.ErrNotFound):
		apiresp.NotFound(w, "Training not found")
	case errors.Is(err, trainingstore.ErrAlreadyRegistered):
		apiresp.Conflict(w, "You are already registered for this training")
	case errors.Is(err, trainingstore.ErrTrainingFull):
		apiresp.Conflict(w, "This training is full")
	case errors.Is(err, trainingstore.ErrNotRegistered):
		apiresp.NotFound(w, "You are not registered for this training")
	case errors.Is(err, trainingstore.ErrBadRating):
		apiresp.BadRequest(w, "Rating must be between 1 and 5")
	case errors.Is(err, trainingstore.ErrBadCapacity):
		apiresp.BadRequest(w, "Capacity cannot be negative")
	default:
		apiresp.Internal(w, r, h.Log, op, err)
	}
}

func decodeTraining(w http.ResponseWriter, r *http.Request) (models.Training, *primitive.ObjectID, bool) {
	var req trainingRequest
	if err := apiresp.DecodeJSON(w, r, &req); err != nil {
		apiresp.BadRequest(w, "Invalid request body")
		return models.Training{}, nil, false
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := validate.Struct(req); err != nil {
		apiresp.Invalid(w, err)
		return models.Training{}, nil, false
	}
	var school *primitive.ObjectID
	if req.SchoolID != "" {
		oid, _ := primitive.ObjectIDFromHex(req.SchoolID)
		school = &oid
	}
	return models.Training{
		Title:       req.Title,
		Description: req.Description,
		Trainer:     req.Trainer,
		StartsAt:    req.StartsAt.UTC(),
		EndsAt:      req.EndsAt.UTC(),
		Capacity:    req.Capacity,
	}, school, true
}

// HandleCreate handles POST /api/trainings. School users always own what
// they create.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	rc, _ := auth.CurrentUser(r)
	t, requested, ok := decodeTraining(w, r)
	if !ok {
		return
	}
	t.SchoolID = authz.OwnerFor(*rc, requested)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	out, err := h.Store.Create(ctx, t)
	if err != nil {
		h.storeErr(w, r, "create training", err)
		return
	}
	h.Log.Info("training created", zap.String("training_id", out.ID.Hex()), zap.String("by", rc.UserID))
	apiresp.Created(w, out)
}

// HandleList handles GET /api/trainings?school_id=&mine=1.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	rc, _ := auth.CurrentUser(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if r.URL.Query().Get("mine") != "" {
		uid, ok := rc.UserOID()
		if !ok {
			apiresp.OK(w, []models.Training{})
			return
		}
		list, err := h.Store.ListForUser(ctx, uid)
		if err != nil {
			apiresp.Internal(w, r, h.Log, "list my trainings", err)
			return
		}
		apiresp.OK(w, list)
		return
	}

	sid, ok := apiresp.QueryID(w, r, "school_id")
	if !ok {
		return
	}
	list, err := h.Store.List(ctx, sid)
	if err != nil {
		apiresp.Internal(w, r, h.Log, "list trainings", err)
		return
	}
	apiresp.OK(w, list)
}

// HandleGet handles GET /api/trainings/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.storeErr(w, r, "get training", err)
		return
	}
	apiresp.OK(w, t)
}

// loadOwned fetches the training and checks the caller may manage it.
func (h *Handler) loadOwned(ctx context.Context, w http.ResponseWriter, r *http.Request, id primitive.ObjectID) (models.Training, bool) {
	rc, _ := auth.CurrentUser(r)
	cur, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.storeErr(w, r, "get training", err)
		return models.Training{}, false
	}
	if !authz.CanManageOwned(*rc, cur.SchoolID) {
		apiresp.Forbidden(w, "You cannot modify this training")
		return models.Training{}, false
	}
	return cur, true
}

// HandleUpdate handles PUT /api/trainings/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	t, _, ok := decodeTraining(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, ok := h.loadOwned(ctx, w, r, id); !ok {
		return
	}
	if err := h.Store.Update(ctx, id, t); err != nil {
		h.storeErr(w, r, "update training", err)
		return
	}
	out, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.storeErr(w, r, "get training", err)
		return
	}
	apiresp.OK(w, out)
}

// HandleDelete handles DELETE /api/trainings/{id}.
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
		h.storeErr(w, r, "delete training", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func callerID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, *auth.RoleContext, bool) {
	rc, _ := auth.CurrentUser(r)
	uid, ok := rc.UserOID()
	if !ok {
		apiresp.Forbidden(w, "Unknown user")
		return primitive.NilObjectID, rc, false
	}
	return uid, rc, true
}

// HandleRegister handles POST /api/trainings/{id}/register for the caller.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	uid, _, ok := callerID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.Register(ctx, id, uid); err != nil {
		h.storeErr(w, r, "training register", err)
		return
	}
	t, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.storeErr(w, r, "get training", err)
		return
	}
	apiresp.Created(w, t)
}

// HandleUnregister handles DELETE /api/trainings/{id}/register.
func (h *Handler) HandleUnregister(w http.ResponseWriter, r *http.Request) {
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	uid, _, ok := callerID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.Unregister(ctx, id, uid); err != nil {
		h.storeErr(w, r, "training unregister", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandlePutFeedback handles PUT /api/trainings/{id}/feedback. Each user
// holds at most one feedback per training; a second PUT replaces it.
func (h *Handler) HandlePutFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	uid, rc, ok := callerID(w, r)
	if !ok {
		return
	}
	var req feedbackRequest
	if err := apiresp.DecodeJSON(w, r, &req); err != nil {
		apiresp.BadRequest(w, "Invalid request body")
		return
	}
	req.Comment = strings.TrimSpace(req.Comment)
	if err := validate.Struct(req); err != nil {
		apiresp.Invalid(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	fb, err := h.Store.PutFeedback(ctx, models.TrainingFeedback{
		TrainingID: id,
		UserID:     uid,
		UserName:   rc.UserName,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		h.storeErr(w, r, "training feedback", err)
		return
	}
	apiresp.OK(w, fb)
}

// HandleListFeedback handles GET /api/trainings/{id}/feedback.
func (h *Handler) HandleListFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Store.GetByID(ctx, id); err != nil {
		h.storeErr(w, r, "get training", err)
		return
	}
	list, err := h.Store.ListFeedback(ctx, id)
	if err != nil {
		apiresp.Internal(w, r, h.Log, "list training feedback", err)
		return
	}
	apiresp.OK(w, list)
}

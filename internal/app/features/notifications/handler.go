// internal/app/features/notifications/handler.go
package notifications

import (
	"context"
	"errors"
	"net/http"
	"strings"

	notificationstore "github.com/dalemusser/ecahub/internal/app/store/notifications"
	"github.com/dalemusser/ecahub/internal/app/system/apiresp"
	"github.com/dalemusser/ecahub/internal/app/system/auth"
	"github.com/dalemusser/ecahub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/ecahub/internal/app/system/timeouts"
	"github.com/dalemusser/ecahub/internal/app/system/validate"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Store is satisfied by *notificationstore.Store.
type Store interface {
	Create(ctx context.Context, n models.Notification) (models.Notification, error)
	GetVisible(ctx context.Context, id primitive.ObjectID, role models.Role) (models.Notification, error)
	ListForRole(ctx context.Context, role models.Role, limit int64) ([]models.Notification, error)
	Update(ctx context.Context, id primitive.ObjectID, n models.Notification) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Handler struct {
	Log   *zap.Logger
	Store Store
}

func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, Store: store}
}

type notificationRequest struct {
	Title    string                      `json:"title" validate:"required,max=200"`
	Message  string                      `json:"message" validate:"required,max=20000"`
	Type     models.NotificationType     `json:"type" validate:"required,oneof=announcement reminder alert update"`
	Priority models.NotificationPriority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Target   []models.Role               `json:"target" validate:"required,min=1,max=3,dive,role"`
}

func (h *Handler) storeErr(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, notificationstore.ErrNotFound) {
		apiresp.NotFound(w, "Notification not found")
		return
	}
	apiresp.Internal(w, r, h.Log, op, err)
}

func decodeNotification(w http.ResponseWriter, r *http.Request) (models.Notification, bool) {
	var req notificationRequest
	if err := apiresp.DecodeJSON(w, r, &req); err != nil {
		apiresp.BadRequest(w, "Invalid request body")
		return models.Notification{}, false
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := validate.Struct(req); err != nil {
		apiresp.Invalid(w, err)
		return models.Notification{}, false
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	return models.Notification{
		Title:       req.Title,
		Message:     req.Message,
		MessageHTML: htmlsanitize.Markdown(req.Message),
		Type:        req.Type,
		Priority:    req.Priority,
		Target:      dedupeRoles(req.Target),
	}, true
}

func dedupeRoles(in []models.Role) []models.Role {
	out := make([]models.Role, 0, len(in))
	for _, r := range in {
		if !models.ContainsRole(out, r) {
			out = append(out, r)
		}
	}
	return out
}

// HandleCreate handles POST /api/notifications.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	rc, _ := auth.CurrentUser(r)
	n, ok := decodeNotification(w, r)
	if !ok {
		return
	}
	if uid, ok := rc.UserOID(); ok {
		n.CreatedByID = &uid
	}
	n.CreatedByName = rc.UserName

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	out, err := h.Store.Create(ctx, n)
	if err != nil {
		apiresp.Internal(w, r, h.Log, "create notification", err)
		return
	}
	h.Log.Info("notification created", zap.String("notification_id", out.ID.Hex()), zap.String("by", rc.UserID))
	apiresp.Created(w, out)
}

// HandleList handles GET /api/notifications. Only notifications whose
// target includes the caller's role are returned.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	rc, _ := auth.CurrentUser(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Store.ListForRole(ctx, rc.UserRole, 0)
	if err != nil {
		apiresp.Internal(w, r, h.Log, "list notifications", err)
		return
	}
	apiresp.OK(w, list)
}

// HandleGet handles GET /api/notifications/{id}. A notification that is
// not targeted at the caller's role is reported as missing.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	rc, _ := auth.CurrentUser(r)
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Store.GetVisible(ctx, id, rc.UserRole)
	if err != nil {
		h.storeErr(w, r, "get notification", err)
		return
	}
	apiresp.OK(w, n)
}

// HandleUpdate handles PUT /api/notifications/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	n, ok := decodeNotification(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.Update(ctx, id, n); err != nil {
		h.storeErr(w, r, "update notification", err)
		return
	}
	n.ID = id
	apiresp.OK(w, n)
}

// HandleDelete handles DELETE /api/notifications/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := apiresp.ParamID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.Delete(ctx, id); err != nil {
		h.storeErr(w, r, "delete notification", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

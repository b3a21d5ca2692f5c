// internal/app/features/messages/handler.go
package messages

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/ecahub/internal/app/system/apiresp"
	"github.com/dalemusser/ecahub/internal/app/system/auth"
	"github.com/dalemusser/ecahub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/ecahub/internal/app/system/paging"
	"github.com/dalemusser/ecahub/internal/app/system/timeouts"
	"github.com/dalemusser/ecahub/internal/app/system/validate"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Store is satisfied by *messagestore.Store.
type Store interface {
	Create(ctx context.Context, m models.Message) (models.Message, error)
	Inbox(ctx context.Context, role models.Role, limit, offset int64) ([]models.Message, error)
	Sent(ctx context.Context, senderID primitive.ObjectID, limit, offset int64) ([]models.Message, error)
}

type Handler struct {
	Log   *zap.Logger
	Store Store
}

func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, Store: store}
}

type messageRequest struct {
	Subject        string        `json:"subject" validate:"required,max=300"`
	Body           string        `json:"body" validate:"required,max=20000"`
	RecipientRoles []models.Role `json:"recipient_roles" validate:"required,min=1,max=3,dive,role"`
}

// listResponse is one page of messages.
type listResponse struct {
	Messages []models.Message `json:"messages"`
	HasMore  bool             `json:"has_more"`
}

func pageFrom(r *http.Request) paging.Page {
	return paging.Parse(r, paging.PageSize, paging.MaxPageSize)
}

// HandleSend handles POST /api/messages.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	rc, _ := auth.CurrentUser(r)
	uid, ok := rc.UserOID()
	if !ok {
		apiresp.Forbidden(w, "Unknown user")
		return
	}
	var req messageRequest
	if err := apiresp.DecodeJSON(w, r, &req); err != nil {
		apiresp.BadRequest(w, "Invalid request body")
		return
	}
	req.Subject = strings.TrimSpace(req.Subject)
	if err := validate.Struct(req); err != nil {
		apiresp.Invalid(w, err)
		return
	}

	recipients := make([]models.Role, 0, len(req.RecipientRoles))
	for _, role := range req.RecipientRoles {
		if !models.ContainsRole(recipients, role) {
			recipients = append(recipients, role)
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.Store.Create(ctx, models.Message{
		SenderID:       uid,
		SenderName:     rc.UserName,
		SenderRole:     rc.UserRole,
		RecipientRoles: recipients,
		Subject:        req.Subject,
		Body:           req.Body,
		BodyHTML:       htmlsanitize.Markdown(req.Body),
	})
	if err != nil {
		apiresp.Internal(w, r, h.Log, "send message", err)
		return
	}
	h.Log.Info("message sent", zap.String("message_id", m.ID.Hex()), zap.String("by", rc.UserID))
	apiresp.Created(w, m)
}

// HandleInbox handles GET /api/messages?limit=&offset=: messages addressed
// to the caller's role, newest first.
func (h *Handler) HandleInbox(w http.ResponseWriter, r *http.Request) {
	rc, _ := auth.CurrentUser(r)
	page := pageFrom(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Store.Inbox(ctx, rc.UserRole, page.LookAhead(), page.Offset)
	if err != nil {
		apiresp.Internal(w, r, h.Log, "message inbox", err)
		return
	}
	list, more := paging.Trim(list, page)
	apiresp.OK(w, listResponse{Messages: list, HasMore: more})
}

// HandleSent handles GET /api/messages/sent.
func (h *Handler) HandleSent(w http.ResponseWriter, r *http.Request) {
	rc, _ := auth.CurrentUser(r)
	uid, ok := rc.UserOID()
	if !ok {
		apiresp.OK(w, listResponse{Messages: []models.Message{}})
		return
	}
	page := pageFrom(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Store.Sent(ctx, uid, page.LookAhead(), page.Offset)
	if err != nil {
		apiresp.Internal(w, r, h.Log, "sent messages", err)
		return
	}
	list, more := paging.Trim(list, page)
	apiresp.OK(w, listResponse{Messages: list, HasMore: more})
}

// Routes mounts the messages API under /api/messages.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.HandleInbox)
	r.Get("/sent", h.HandleSent)
	r.Post("/", h.HandleSend)
	return r
}

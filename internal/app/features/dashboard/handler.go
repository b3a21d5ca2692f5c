// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"

	clubstore "github.com/dalemusser/ecahub/internal/app/store/clubs"
	eventstore "github.com/dalemusser/ecahub/internal/app/store/events"
	messagestore "github.com/dalemusser/ecahub/internal/app/store/messages"
	notificationstore "github.com/dalemusser/ecahub/internal/app/store/notifications"
	schoolstore "github.com/dalemusser/ecahub/internal/app/store/schools"
	trainingstore "github.com/dalemusser/ecahub/internal/app/store/trainings"
	"github.com/dalemusser/ecahub/internal/app/system/auth"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Variant names one of the three dashboards.
type Variant string

const (
	VariantSuperAdmin Variant = "superadmin_dashboard"
	VariantSchool     Variant = "school_dashboard"
	VariantECA        Variant = "eca_dashboard"
)

// Route picks the dashboard for role. Anything outside the three roles
// gets the ECA dashboard.
func Route(role models.Role) Variant {
	v, _ := route(role)
	return v
}

func route(role models.Role) (v Variant, fallback bool) {
	switch role {
	case models.RoleSuperAdmin:
		return VariantSuperAdmin, false
	case models.RoleSchool:
		return VariantSchool, false
	case models.RoleECA:
		return VariantECA, false
	default:
		return VariantECA, true
	}
}

// Data sources. The concrete stores satisfy these; tests pass fakes.
type (
	SchoolLister interface {
		List(ctx context.Context) ([]models.School, error)
		GetByID(ctx context.Context, id primitive.ObjectID) (models.School, error)
	}
	EventLister interface {
		List(ctx context.Context, f eventstore.Filter) ([]models.Event, error)
	}
	ClubLister interface {
		List(ctx context.Context, f clubstore.Filter) ([]models.Club, error)
	}
	TrainingLister interface {
		List(ctx context.Context, schoolID *primitive.ObjectID) ([]models.Training, error)
		ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Training, error)
	}
	NotificationLister interface {
		ListForRole(ctx context.Context, role models.Role, limit int64) ([]models.Notification, error)
	}
	MessageLister interface {
		Inbox(ctx context.Context, role models.Role, limit, offset int64) ([]models.Message, error)
		Sent(ctx context.Context, senderID primitive.ObjectID, limit, offset int64) ([]models.Message, error)
	}
)

type Handler struct {
	Log           *zap.Logger
	Schools       SchoolLister
	Events        EventLister
	Clubs         ClubLister
	Trainings     TrainingLister
	Notifications NotificationLister
	Messages      MessageLister
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Log:           logger,
		Schools:       schoolstore.New(db),
		Events:        eventstore.New(db),
		Clubs:         clubstore.New(db),
		Trainings:     trainingstore.New(db),
		Notifications: notificationstore.New(db),
		Messages:      messagestore.New(db),
	}
}

// render is swapped in tests so pages can be checked without the engine.
var render = func(w http.ResponseWriter, r *http.Request, name string, data any) {
	templates.Render(w, r, name, data)
}

// ServeDashboard handles GET /dashboard.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	rc, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	v, fallback := route(rc.UserRole)
	if fallback {
		h.Log.Warn("dashboard: unrecognized role, showing eca dashboard",
			zap.String("role", string(rc.UserRole)),
			zap.String("user_id", rc.UserID))
	}

	switch v {
	case VariantSuperAdmin:
		h.serveSuperAdmin(w, r, rc)
	case VariantSchool:
		h.serveSchool(w, r, rc)
	default:
		h.serveECA(w, r, rc)
	}
}

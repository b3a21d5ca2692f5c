// internal/app/features/dashboard/variants.go
package dashboard

import (
	"context"
	"html/template"
	"net/http"
	"time"

	clubstore "github.com/dalemusser/ecahub/internal/app/store/clubs"
	eventstore "github.com/dalemusser/ecahub/internal/app/store/events"
	"github.com/dalemusser/ecahub/internal/app/system/auth"
	"github.com/dalemusser/ecahub/internal/app/system/timeouts"
	"github.com/dalemusser/ecahub/internal/app/system/viewdata"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"go.uber.org/zap"
)

const recentNotifications = 5

var now = time.Now

type superadminDashboardData struct {
	viewdata.BaseVM
	SchoolsCount  int
	ClubsCount    int
	Upcoming      []models.Event
	Notifications []noteView
}

type schoolDashboardData struct {
	viewdata.BaseVM
	SchoolName    string
	Clubs         []models.Club
	Events        []models.Event
	Trainings     []models.Training
	Notifications []noteView
}

type ecaDashboardData struct {
	viewdata.BaseVM
	MyTrainings   []models.Training
	Upcoming      []models.Event
	OpenClubs     []models.Club
	Notifications []noteView
}

// noteView carries a notification's stored, already-sanitized HTML.
type noteView struct {
	models.Notification
	Body template.HTML
}

func noteViews(ns []models.Notification) []noteView {
	out := make([]noteView, 0, len(ns))
	for _, n := range ns {
		out = append(out, noteView{Notification: n, Body: template.HTML(n.MessageHTML)})
	}
	return out
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.Log.Error(msg, zap.Error(err), zap.String("path", r.URL.Path))
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func (h *Handler) upcoming(ctx context.Context) ([]models.Event, error) {
	return h.Events.List(ctx, eventstore.Filter{Status: models.EventPublished, From: now().UTC()})
}

func (h *Handler) serveSuperAdmin(w http.ResponseWriter, r *http.Request, rc *auth.RoleContext) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	schools, err := h.Schools.List(ctx)
	if err != nil {
		h.serverError(w, r, "dashboard: list schools", err)
		return
	}
	clubs, err := h.Clubs.List(ctx, clubstore.Filter{})
	if err != nil {
		h.serverError(w, r, "dashboard: list clubs", err)
		return
	}
	events, err := h.upcoming(ctx)
	if err != nil {
		h.serverError(w, r, "dashboard: list events", err)
		return
	}
	notes, err := h.Notifications.ListForRole(ctx, rc.UserRole, recentNotifications)
	if err != nil {
		h.serverError(w, r, "dashboard: list notifications", err)
		return
	}

	render(w, r, string(VariantSuperAdmin), superadminDashboardData{
		BaseVM:        viewdata.NewBaseVM(r, rc, "Super Admin Dashboard"),
		SchoolsCount:  len(schools),
		ClubsCount:    len(clubs),
		Upcoming:      events,
		Notifications: noteViews(notes),
	})
}

func (h *Handler) serveSchool(w http.ResponseWriter, r *http.Request, rc *auth.RoleContext) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	data := schoolDashboardData{BaseVM: viewdata.NewBaseVM(r, rc, "School Dashboard")}

	// A school account without a school still gets notifications.
	if sid, ok := rc.SchoolOID(); ok {
		school, err := h.Schools.GetByID(ctx, sid)
		if err != nil {
			h.Log.Warn("dashboard: school lookup failed", zap.Error(err), zap.String("school_id", rc.SchoolID))
		} else {
			data.SchoolName = school.Name
		}
		if data.Clubs, err = h.Clubs.List(ctx, clubstore.Filter{SchoolID: &sid}); err != nil {
			h.serverError(w, r, "dashboard: list clubs", err)
			return
		}
		if data.Events, err = h.Events.List(ctx, eventstore.Filter{SchoolID: &sid}); err != nil {
			h.serverError(w, r, "dashboard: list events", err)
			return
		}
		if data.Trainings, err = h.Trainings.List(ctx, &sid); err != nil {
			h.serverError(w, r, "dashboard: list trainings", err)
			return
		}
	}

	notes, err := h.Notifications.ListForRole(ctx, rc.UserRole, recentNotifications)
	if err != nil {
		h.serverError(w, r, "dashboard: list notifications", err)
		return
	}
	data.Notifications = noteViews(notes)

	render(w, r, string(VariantSchool), data)
}

func (h *Handler) serveECA(w http.ResponseWriter, r *http.Request, rc *auth.RoleContext) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	data := ecaDashboardData{BaseVM: viewdata.NewBaseVM(r, rc, "ECA Dashboard")}

	var err error
	if uid, ok := rc.UserOID(); ok {
		if data.MyTrainings, err = h.Trainings.ListForUser(ctx, uid); err != nil {
			h.serverError(w, r, "dashboard: list my trainings", err)
			return
		}
	}
	if data.Upcoming, err = h.upcoming(ctx); err != nil {
		h.serverError(w, r, "dashboard: list events", err)
		return
	}
	if data.OpenClubs, err = h.Clubs.List(ctx, clubstore.Filter{Status: models.ClubOpen}); err != nil {
		h.serverError(w, r, "dashboard: list clubs", err)
		return
	}
	// Only recognized roles can be targeted, so an unknown role sees none.
	if rc.UserRole.Valid() {
		notes, err := h.Notifications.ListForRole(ctx, rc.UserRole, recentNotifications)
		if err != nil {
			h.serverError(w, r, "dashboard: list notifications", err)
			return
		}
		data.Notifications = noteViews(notes)
	}

	render(w, r, string(VariantECA), data)
}

// internal/app/features/dashboard/pages.go
package dashboard

import (
	"context"
	"html/template"
	"net/http"

	eventstore "github.com/dalemusser/ecahub/internal/app/store/events"
	"github.com/dalemusser/ecahub/internal/app/system/auth"
	"github.com/dalemusser/ecahub/internal/app/system/theme"
	"github.com/dalemusser/ecahub/internal/app/system/timeouts"
	"github.com/dalemusser/ecahub/internal/app/system/viewdata"
	"github.com/dalemusser/ecahub/internal/domain/models"
)

const messagesPageLimit = 50

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard/messages                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

type messageView struct {
	models.Message
	Body template.HTML
}

type messagesPageData struct {
	viewdata.BaseVM
	Inbox []messageView
	Sent  []models.Message
}

func (h *Handler) ServeMessages(w http.ResponseWriter, r *http.Request) {
	rc, _ := auth.CurrentUser(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	inbox, err := h.Messages.Inbox(ctx, rc.UserRole, messagesPageLimit, 0)
	if err != nil {
		h.serverError(w, r, "messages page: inbox", err)
		return
	}
	data := messagesPageData{BaseVM: viewdata.NewBaseVM(r, rc, "Messages")}
	for _, m := range inbox {
		data.Inbox = append(data.Inbox, messageView{Message: m, Body: template.HTML(m.BodyHTML)})
	}
	if uid, ok := rc.UserOID(); ok {
		if data.Sent, err = h.Messages.Sent(ctx, uid, messagesPageLimit, 0); err != nil {
			h.serverError(w, r, "messages page: sent", err)
			return
		}
	}
	render(w, r, "dashboard_messages", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard/schools (super-admin)                                        |
*─────────────────────────────────────────────────────────────────────────────*/

type schoolRow struct {
	models.School
	HasTheme bool
	Swatch   template.CSS
}

type schoolsPageData struct {
	viewdata.BaseVM
	Schools []schoolRow
}

func (h *Handler) ServeSchools(w http.ResponseWriter, r *http.Request) {
	rc, _ := auth.CurrentUser(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	schools, err := h.Schools.List(ctx)
	if err != nil {
		h.serverError(w, r, "schools page: list", err)
		return
	}
	rows := make([]schoolRow, 0, len(schools))
	for _, s := range schools {
		t := models.DefaultTheme()
		if s.Theme != nil {
			t = *s.Theme
		}
		rows = append(rows, schoolRow{School: s, HasTheme: s.Theme != nil, Swatch: theme.Style(t)})
	}
	render(w, r, "dashboard_schools", schoolsPageData{
		BaseVM:  viewdata.NewBaseVM(r, rc, "Schools"),
		Schools: rows,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard/students (school)                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// studentGroup lists the participants a school entered for one event.
type studentGroup struct {
	Event        models.Event
	Status       models.RegistrationStatus
	Participants []string
}

type studentsPageData struct {
	viewdata.BaseVM
	Groups []studentGroup
	Total  int
}

func (h *Handler) ServeStudents(w http.ResponseWriter, r *http.Request) {
	rc, _ := auth.CurrentUser(r)
	data := studentsPageData{BaseVM: viewdata.NewBaseVM(r, rc, "Students")}

	sid, ok := rc.SchoolOID()
	if !ok {
		render(w, r, "dashboard_students", data)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	events, err := h.Events.List(ctx, eventstore.Filter{SchoolID: &sid})
	if err != nil {
		h.serverError(w, r, "students page: list events", err)
		return
	}
	data.Groups = studentGroups(events, sid.Hex())
	for _, g := range data.Groups {
		data.Total += len(g.Participants)
	}
	render(w, r, "dashboard_students", data)
}

func studentGroups(events []models.Event, schoolHex string) []studentGroup {
	out := []studentGroup{}
	for _, ev := range events {
		for _, reg := range ev.Registrations {
			if reg.SchoolID.Hex() != schoolHex {
				continue
			}
			out = append(out, studentGroup{Event: ev, Status: reg.Status, Participants: reg.Participants})
		}
	}
	return out
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard/trainings                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

type trainingRow struct {
	models.Training
	Registered bool
	SeatsLeft  int
}

type trainingsPageData struct {
	viewdata.BaseVM
	Trainings   []trainingRow
	CanManage   bool
	CanRegister bool
}

// ServeTrainings shows every training to super-admins, the school's own and
// shared trainings to school users, and registration state to ECA users.
func (h *Handler) ServeTrainings(w http.ResponseWriter, r *http.Request) {
	rc, _ := auth.CurrentUser(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var (
		list []models.Training
		err  error
	)
	switch rc.UserRole {
	case models.RoleSchool:
		if sid, ok := rc.SchoolOID(); ok {
			list, err = h.Trainings.List(ctx, &sid)
		} else {
			list, err = h.Trainings.List(ctx, nil)
		}
	default:
		list, err = h.Trainings.List(ctx, nil)
	}
	if err != nil {
		h.serverError(w, r, "trainings page: list", err)
		return
	}

	uid, hasUID := rc.UserOID()
	rows := make([]trainingRow, 0, len(list))
	for _, t := range list {
		row := trainingRow{Training: t, SeatsLeft: t.SeatsLeft()}
		if hasUID {
			row.Registered = t.IsRegistered(uid)
		}
		rows = append(rows, row)
	}

	render(w, r, "dashboard_trainings", trainingsPageData{
		BaseVM:      viewdata.NewBaseVM(r, rc, "Trainings"),
		Trainings:   rows,
		CanManage:   rc.IsSuperAdmin() || rc.IsSchool(),
		CanRegister: rc.IsECA(),
	})
}

// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/ecahub/internal/app/system/auth"
	"github.com/dalemusser/ecahub/internal/app/system/gates"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes wires the dashboard feature under whatever mount point
// the top-level router chooses (e.g., "/dashboard").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeDashboard)
		pr.With(gates.Guard(gates.RenderUnauthorized, models.AllRoles()...)).
			Get("/messages", h.ServeMessages)
		pr.Get("/trainings", h.ServeTrainings)

		// Schools management bounces other roles back to their dashboard;
		// students shows them the unauthorized view instead.
		pr.With(gates.Guard(gates.RedirectTo("/dashboard"), models.RoleSuperAdmin)).
			Get("/schools", h.ServeSchools)
		pr.With(gates.Guard(gates.RenderUnauthorized, models.RoleSchool)).
			Get("/students", h.ServeStudents)
	})

	return r
}

// internal/app/features/clubs/routes.go
package clubs

import (
	"github.com/dalemusser/ecahub/internal/app/system/auth"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the clubs API under /api/clubs.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.HandleList)
	r.Get("/{id}", h.HandleGet)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleSuperAdmin, models.RoleSchool))
		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
		pr.Post("/{id}/activities", h.HandleAddActivity)
		pr.Post("/{id}/registrations", h.HandleRegister)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleSuperAdmin))
		pr.Put("/{id}/registrations/{schoolId}", h.HandleSetRegistrationStatus)
	})

	return r
}

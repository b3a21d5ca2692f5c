// internal/app/features/events/routes.go
package events

import (
	"github.com/dalemusser/ecahub/internal/app/system/auth"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the events API under /api/events.
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
		pr.Post("/{id}/status", h.HandleTransition)
		pr.Post("/{id}/registrations", h.HandleRegister)
		pr.Post("/{id}/registrations/{schoolId}/participants", h.HandleAddParticipants)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleSuperAdmin))
		pr.Put("/{id}/registrations/{schoolId}", h.HandleSetRegistrationStatus)
	})

	return r
}

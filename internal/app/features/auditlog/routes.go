// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/ecahub/internal/app/system/auth"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit API under /api/audit. Super-admins only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole(models.RoleSuperAdmin))

		pr.Get("/", h.HandleList)
		pr.Get("/failed-logins", h.HandleFailedLogins)
	})

	return r
}

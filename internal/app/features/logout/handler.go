// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/ecahub/internal/app/system/apiresp"
	"github.com/dalemusser/ecahub/internal/app/system/auditlog"
	"github.com/dalemusser/ecahub/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager

	// Audit is optional; nil skips audit records.
	Audit *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
	}
}

type logoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HandleAPILogout handles POST /api/auth/logout. Calling it without a
// session, or twice, still succeeds.
func (h *Handler) HandleAPILogout(w http.ResponseWriter, r *http.Request) {
	h.audit(r)
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
		apiresp.WriteJSON(w, http.StatusInternalServerError, logoutResponse{
			Success: false,
			Message: "Failed to log out",
		})
		return
	}
	apiresp.OK(w, logoutResponse{Success: true, Message: "Logged out successfully"})
}

// ServeLogout handles GET and POST /logout from the dashboard pages.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	h.audit(r)
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}

	// HTMX handling: use HX-Redirect to force a client-side navigation.
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusOK)
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) audit(r *http.Request) {
	if rc, ok := auth.CurrentUser(r); ok {
		h.Audit.Logout(r, rc)
	}
}

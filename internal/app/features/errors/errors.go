// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/ecahub/internal/app/system/auth"
	"github.com/dalemusser/ecahub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// pageData is the basic view model for error pages.
type pageData struct {
	viewdata.BaseVM
	Message string
	BackURL string
}

// Handler is the errors feature handler.
// No DB needed; it just renders templates.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden renders a friendly "access denied" page.
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	RenderForbidden(w, r, "You don't have permission to view this page.", "/dashboard")
}

// Unauthorized renders the unauthorized view.
// GET /unauthorized
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	RenderUnauthorized(w, r)
}

// RenderUnauthorized writes 403 and the fixed "not authorized" view shown
// when a signed-in role is outside a page's allow-list.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request) {
	rc, _ := auth.CurrentUser(r)
	data := pageData{
		BaseVM:  viewdata.NewBaseVM(r, rc, "Unauthorized"),
		Message: "You are not authorized to view this page.",
		BackURL: "/dashboard",
	}
	w.WriteHeader(http.StatusForbidden)
	templates.Render(w, r, "error_unauthorized", data)
}

// RenderForbidden shows the access denied page with msg.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	rc, _ := auth.CurrentUser(r)
	if backURL == "" {
		backURL = "/"
	}
	data := pageData{
		BaseVM:  viewdata.NewBaseVM(r, rc, "Access denied"),
		Message: msg,
		BackURL: backURL,
	}
	w.WriteHeader(http.StatusForbidden)
	templates.Render(w, r, "error_forbidden", data)
}

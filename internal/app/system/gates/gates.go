// Package gates wraps page handlers with a role allow-list.
//
// Route groups use auth.RequireSignedIn first; a gate then decides, from the
// RoleContext alone, whether the wrapped view runs. A denied request never
// reaches the view: it gets the Deny response instead.
package gates

import (
	"net/http"

	uierrors "github.com/dalemusser/ecahub/internal/app/features/errors"
	"github.com/dalemusser/ecahub/internal/app/system/auth"
	"github.com/dalemusser/ecahub/internal/domain/models"
)

// Deny writes the response for a request whose role is not allowed.
type Deny func(w http.ResponseWriter, r *http.Request)

// renderUnauthorizedView is swapped in tests that run without a template engine.
var renderUnauthorizedView = uierrors.RenderUnauthorized

// RenderUnauthorized renders the fixed unauthorized view with status 403.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request) {
	renderUnauthorizedView(w, r)
}

// RedirectTo sends the caller to path with 303 See Other.
func RedirectTo(path string) Deny {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("HX-Request") == "true" {
			w.Header().Set("HX-Redirect", path)
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Redirect(w, r, path, http.StatusSeeOther)
	}
}

// Allowed reports whether rc's role is in allowed. A nil rc is never allowed.
func Allowed(rc *auth.RoleContext, allowed ...models.Role) bool {
	return rc != nil && models.ContainsRole(allowed, rc.UserRole)
}

// Guard returns middleware that runs the next handler only for allowed roles.
func Guard(deny Deny, allowed ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc, _ := auth.CurrentUser(r)
			if !Allowed(rc, allowed...) {
				deny(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

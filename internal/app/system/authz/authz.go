// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/ecahub/internal/app/system/auth"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the request's role context and a found flag.
// A context whose user id is not a valid ObjectID is treated as absent.
func UserCtx(r *http.Request) (auth.RoleContext, bool) {
	rc, ok := auth.CurrentUser(r)
	if !ok {
		return auth.RoleContext{}, false
	}
	if _, valid := rc.UserOID(); !valid {
		return auth.RoleContext{}, false
	}
	return *rc, true
}

func IsSuperAdmin(r *http.Request) bool { return hasRole(r, models.RoleSuperAdmin) }
func IsSchool(r *http.Request) bool     { return hasRole(r, models.RoleSchool) }
func IsECA(r *http.Request) bool        { return hasRole(r, models.RoleECA) }

func hasRole(r *http.Request, role models.Role) bool {
	rc, ok := UserCtx(r)
	return ok && rc.UserRole == role
}

// CanManageOwned reports whether rc may modify a record owned by owner.
// Super-admins manage everything. School users manage only records owned by
// their own school. ECA users manage nothing.
func CanManageOwned(rc auth.RoleContext, owner *primitive.ObjectID) bool {
	switch rc.UserRole {
	case models.RoleSuperAdmin:
		return true
	case models.RoleSchool:
		sid, ok := rc.SchoolOID()
		return ok && owner != nil && *owner == sid
	}
	return false
}

// OwnerFor picks the owning school for a new record. School users always
// own what they create; super-admins may assign any school or none.
func OwnerFor(rc auth.RoleContext, requested *primitive.ObjectID) *primitive.ObjectID {
	if rc.UserRole == models.RoleSchool {
		if sid, ok := rc.SchoolOID(); ok {
			return &sid
		}
		return nil
	}
	return requested
}

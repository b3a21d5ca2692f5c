// internal/domain/models/role.go
package models

import (
	"errors"
	"strings"
)

// Role is the closed set of session roles. Use ParseRole to turn external
// strings (claims, form values, stored documents) into a Role.
type Role string

const (
	RoleSuperAdmin Role = "super-admin"
	RoleSchool     Role = "school"
	RoleECA        Role = "eca"
)

// ErrUnknownRole is returned by ParseRole for anything outside the closed set.
var ErrUnknownRole = errors.New("unknown role")

// AllRoles lists every role in display order.
func AllRoles() []Role {
	return []Role{RoleSuperAdmin, RoleSchool, RoleECA}
}

// ParseRole normalizes s and returns the matching Role.
// "superadmin" and "super_admin" are accepted as aliases for super-admin.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "super-admin", "superadmin", "super_admin":
		return RoleSuperAdmin, nil
	case "school":
		return RoleSchool, nil
	case "eca":
		return RoleECA, nil
	}
	return "", ErrUnknownRole
}

// Valid reports whether r is one of the three roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleSchool, RoleECA:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// Label is the human-readable name used in page headers.
func (r Role) Label() string {
	switch r {
	case RoleSuperAdmin:
		return "Super Admin"
	case RoleSchool:
		return "School"
	case RoleECA:
		return "ECA"
	}
	return "Visitor"
}

// ContainsRole reports whether r is in roles.
func ContainsRole(roles []Role, r Role) bool {
	for _, x := range roles {
		if x == r {
			return true
		}
	}
	return false
}

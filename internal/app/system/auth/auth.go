package auth

import (
	"context"
	"net/http"

	"github.com/dalemusser/ecahub/internal/app/system/token"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Token verification                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

// Verifier validates a bearer/session token and yields its claims.
// Everything outside this package depends on this symbol rather than on the
// token implementation.
type Verifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// Claims is the decoded identity a Verifier returns.
type Claims = token.Claims

var (
	ErrInvalidToken = token.ErrInvalidToken
	ErrExpiredToken = token.ErrExpiredToken
)

/*─────────────────────────────────────────────────────────────────────────────*
| Role context                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// RoleContext is the per-request view of who is signed in. It is built from
// the verified token by LoadSessionUser and is the only source views may use
// to decide what to show.
type RoleContext struct {
	UserID   string
	UserName string
	UserRole models.Role
	SchoolID string
	Theme    models.Theme
}

// FromClaims builds a RoleContext from verified claims.
func FromClaims(c *Claims) RoleContext {
	return RoleContext{
		UserID:   c.UserID(),
		UserName: c.Name,
		UserRole: c.Role,
		SchoolID: c.SchoolID,
		Theme:    models.DefaultTheme(),
	}
}

func (rc RoleContext) IsSuperAdmin() bool { return rc.UserRole == models.RoleSuperAdmin }
func (rc RoleContext) IsSchool() bool     { return rc.UserRole == models.RoleSchool }
func (rc RoleContext) IsECA() bool        { return rc.UserRole == models.RoleECA }

// UserOID parses UserID. ok is false for malformed ids.
func (rc RoleContext) UserOID() (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(rc.UserID)
	return oid, err == nil
}

// SchoolOID parses SchoolID. ok is false when the user has no school.
func (rc RoleContext) SchoolOID() (primitive.ObjectID, bool) {
	if rc.SchoolID == "" {
		return primitive.NilObjectID, false
	}
	oid, err := primitive.ObjectIDFromHex(rc.SchoolID)
	return oid, err == nil
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the role context & "found?" flag.
func CurrentUser(r *http.Request) (*RoleContext, bool) {
	return FromContext(r.Context())
}

// FromContext is CurrentUser for code that only has a context.
func FromContext(ctx context.Context) (*RoleContext, bool) {
	rc, ok := ctx.Value(currentUserKey).(*RoleContext)
	return rc, ok && rc != nil
}

// WithRoleContext returns a copy of ctx carrying rc.
func WithRoleContext(ctx context.Context, rc *RoleContext) context.Context {
	return context.WithValue(ctx, currentUserKey, rc)
}

// WithTestUser injects rc into the request context, bypassing sessions.
// Intended for handler tests.
func WithTestUser(r *http.Request, rc *RoleContext) *http.Request {
	if rc.Theme == (models.Theme{}) {
		rc.Theme = models.DefaultTheme()
	}
	return r.WithContext(WithRoleContext(r.Context(), rc))
}

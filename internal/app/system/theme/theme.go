// Package theme resolves a school's colour scheme and tracks the scheme
// applied to the current session.
package theme

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"html/template"

	schoolstore "github.com/dalemusser/ecahub/internal/app/store/schools"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"github.com/gorilla/sessions"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned when the school id is malformed or unknown.
var ErrNotFound = errors.New("school not found")

const sessionKey = "applied_theme"

func init() {
	// Session values are gob-encoded by the cookie store.
	gob.Register(models.Theme{})
}

// SchoolFinder is the lookup the resolver needs; *schoolstore.Store satisfies it.
type SchoolFinder interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.School, error)
}

// Resolver looks up school themes. It never writes.
type Resolver struct {
	schools SchoolFinder
}

func NewResolver(schools SchoolFinder) *Resolver {
	return &Resolver{schools: schools}
}

// Resolve returns the theme for schoolID, or models.DefaultTheme() when the
// school exists without one.
func (r *Resolver) Resolve(ctx context.Context, schoolID string) (models.Theme, error) {
	oid, err := primitive.ObjectIDFromHex(schoolID)
	if err != nil {
		return models.Theme{}, ErrNotFound
	}
	school, err := r.schools.GetByID(ctx, oid)
	if err != nil {
		if errors.Is(err, schoolstore.ErrNotFound) {
			return models.Theme{}, ErrNotFound
		}
		return models.Theme{}, fmt.Errorf("resolve theme: %w", err)
	}
	if school.Theme == nil {
		return models.DefaultTheme(), nil
	}
	return *school.Theme, nil
}

// Apply records t as the theme for the session. The caller saves the session.
func Apply(sess *sessions.Session, t models.Theme) {
	sess.Values[sessionKey] = t
}

// Reset discards any school theme applied to the session and applies the
// default. Called when a super-admin session begins.
func Reset(sess *sessions.Session) {
	Apply(sess, models.DefaultTheme())
}

// Clear removes the applied theme entirely (logout).
func Clear(sess *sessions.Session) {
	delete(sess.Values, sessionKey)
}

// Applied returns the theme applied to the session, or the default.
func Applied(sess *sessions.Session) models.Theme {
	if sess != nil {
		if t, ok := sess.Values[sessionKey].(models.Theme); ok {
			return t
		}
	}
	return models.DefaultTheme()
}

// Style renders t as CSS custom properties for the page root.
func Style(t models.Theme) template.CSS {
	return template.CSS(fmt.Sprintf(
		"--color-primary:%s;--color-secondary:%s;--color-accent:%s;--color-background:%s;--color-foreground:%s;",
		t.Primary, t.Secondary, t.Accent, t.Background, t.Foreground))
}

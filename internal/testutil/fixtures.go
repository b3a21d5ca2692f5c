package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/ecahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
// Calling it again on the same request adds to the existing route context.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, _ := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateSchool inserts a school, optionally with a theme.
func (f *Fixtures) CreateSchool(ctx context.Context, name string, th *models.Theme) models.School {
	f.t.Helper()

	now := time.Now().UTC()
	sc := models.School{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Theme:     th,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("schools").InsertOne(ctx, sc); err != nil {
		f.t.Fatalf("CreateSchool: %v", err)
	}
	return sc
}

// CreateUser inserts an active user whose password is password.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, password string, role models.Role, schoolID *primitive.ObjectID) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("CreateUser hash: %v", err)
	}
	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       models.UserStatusActive,
		SchoolID:     schoolID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("CreateUser: %v", err)
	}
	return u
}

// CreateNotification inserts a notification targeted at roles.
func (f *Fixtures) CreateNotification(ctx context.Context, title string, target ...models.Role) models.Notification {
	f.t.Helper()

	now := time.Now().UTC()
	n := models.Notification{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Message:     title,
		MessageHTML: "<p>" + title + "</p>",
		Type:        models.NotifyAnnouncement,
		Priority:    models.PriorityMedium,
		Target:      target,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("notifications").InsertOne(ctx, n); err != nil {
		f.t.Fatalf("CreateNotification: %v", err)
	}
	return n
}

// CreateTraining inserts a training with the given capacity (0 = unlimited).
func (f *Fixtures) CreateTraining(ctx context.Context, title string, capacity int) models.Training {
	f.t.Helper()

	now := time.Now().UTC()
	tr := models.Training{
		ID:              primitive.NewObjectID(),
		Title:           title,
		TitleCI:         text.Fold(title),
		StartsAt:        now.Add(24 * time.Hour),
		EndsAt:          now.Add(26 * time.Hour),
		Capacity:        capacity,
		RegisteredUsers: []primitive.ObjectID{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := f.db.Collection("trainings").InsertOne(ctx, tr); err != nil {
		f.t.Fatalf("CreateTraining: %v", err)
	}
	return tr
}

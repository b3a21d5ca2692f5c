// internal/app/features/events/handler.go
package events

import (
	"context"
	"time"

	"github.com/dalemusser/ecahub/internal/app/features/shared"
	eventstore "github.com/dalemusser/ecahub/internal/app/store/events"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Store is satisfied by *eventstore.Store.
type Store interface {
	Create(ctx context.Context, ev models.Event) (models.Event, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Event, error)
	List(ctx context.Context, f eventstore.Filter) ([]models.Event, error)
	Update(ctx context.Context, id primitive.ObjectID, ev models.Event) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Transition(ctx context.Context, id primitive.ObjectID, next models.EventStatus) (models.Event, error)
	Register(ctx context.Context, id primitive.ObjectID, reg models.SchoolRegistration) (models.SchoolRegistration, error)
	SetRegistrationStatus(ctx context.Context, id, schoolID primitive.ObjectID, st models.RegistrationStatus) error
	AddParticipants(ctx context.Context, id, schoolID primitive.ObjectID, names []string) error
}

type Handler struct {
	Log     *zap.Logger
	Store   Store
	Schools shared.SchoolFinder
}

func NewHandler(store Store, schools shared.SchoolFinder, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, Store: store, Schools: schools}
}

type eventRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description,omitempty" validate:"max=5000"`
	Location    string    `json:"location,omitempty" validate:"max=300"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required"`
	ClubID      string    `json:"club_id,omitempty" validate:"omitempty,mongodb"`
	SchoolID    string    `json:"school_id,omitempty" validate:"omitempty,mongodb"`
}

type statusRequest struct {
	Status models.EventStatus `json:"status" validate:"required,oneof=published cancelled completed"`
}

// internal/app/features/clubs/handler.go
package clubs

import (
	"context"

	"github.com/dalemusser/ecahub/internal/app/features/shared"
	clubstore "github.com/dalemusser/ecahub/internal/app/store/clubs"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Store is satisfied by *clubstore.Store.
type Store interface {
	Create(ctx context.Context, cl models.Club) (models.Club, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Club, error)
	List(ctx context.Context, f clubstore.Filter) ([]models.Club, error)
	Update(ctx context.Context, id primitive.ObjectID, cl models.Club) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddActivity(ctx context.Context, id primitive.ObjectID, a models.ClubActivity) (models.ClubActivity, error)
	Register(ctx context.Context, id primitive.ObjectID, reg models.SchoolRegistration) (models.SchoolRegistration, error)
	SetRegistrationStatus(ctx context.Context, id, schoolID primitive.ObjectID, st models.RegistrationStatus) error
}

type Handler struct {
	Log     *zap.Logger
	Store   Store
	Schools shared.SchoolFinder
}

func NewHandler(store Store, schools shared.SchoolFinder, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, Store: store, Schools: schools}
}

type clubRequest struct {
	Name        string              `json:"name" validate:"required,max=200"`
	Description string              `json:"description,omitempty" validate:"max=5000"`
	Category    models.ClubCategory `json:"category" validate:"required,oneof=sports arts music academic technology community other"`
	Status      models.ClubStatus   `json:"status,omitempty" validate:"omitempty,oneof='Open' 'Closed' 'Coming Soon'"`
}

type activityRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description,omitempty" validate:"max=5000"`
	Schedule    string `json:"schedule,omitempty" validate:"max=200"`
}

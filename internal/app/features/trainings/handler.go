// internal/app/features/trainings/handler.go
package trainings

import (
	"context"
	"time"

	"github.com/dalemusser/ecahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Store is satisfied by *trainingstore.Store.
type Store interface {
	Create(ctx context.Context, t models.Training) (models.Training, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Training, error)
	List(ctx context.Context, schoolID *primitive.ObjectID) ([]models.Training, error)
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Training, error)
	Update(ctx context.Context, id primitive.ObjectID, t models.Training) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Register(ctx context.Context, id, userID primitive.ObjectID) error
	Unregister(ctx context.Context, id, userID primitive.ObjectID) error
	PutFeedback(ctx context.Context, fb models.TrainingFeedback) (models.TrainingFeedback, error)
	ListFeedback(ctx context.Context, trainingID primitive.ObjectID) ([]models.TrainingFeedback, error)
}

type Handler struct {
	Log   *zap.Logger
	Store Store
}

func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, Store: store}
}

type trainingRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description,omitempty" validate:"max=5000"`
	Trainer     string    `json:"trainer,omitempty" validate:"max=200"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required,gtefield=StartsAt"`
	Capacity    int       `json:"capacity,omitempty" validate:"min=0,max=10000"`
	SchoolID    string    `json:"school_id,omitempty" validate:"omitempty,mongodb"`
}

type feedbackRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty" validate:"max=2000"`
}

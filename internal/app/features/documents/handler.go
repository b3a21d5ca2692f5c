// internal/app/features/documents/handler.go
package documents

import (
	"context"

	documentstore "github.com/dalemusser/ecahub/internal/app/store/documents"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Store is satisfied by *documentstore.Store.
type Store interface {
	Create(ctx context.Context, d models.Document) (models.Document, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Document, error)
	List(ctx context.Context, f documentstore.Filter) ([]models.Document, error)
	Versions(ctx context.Context, lineageID primitive.ObjectID) ([]models.Document, error)
	Update(ctx context.Context, id primitive.ObjectID, d models.Document) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	NewVersion(ctx context.Context, prevID primitive.ObjectID, next models.Document) (models.Document, error)
}

type Handler struct {
	Log   *zap.Logger
	Store Store
}

func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, Store: store}
}

type documentRequest struct {
	Title       string                  `json:"title" validate:"required,max=200"`
	Description string                  `json:"description,omitempty" validate:"max=5000"`
	Category    models.DocumentCategory `json:"category" validate:"required,oneof=template policy report form"`
	FileURL     string                  `json:"file_url" validate:"required,url,max=2048"`
	SchoolID    string                  `json:"school_id,omitempty" validate:"omitempty,mongodb"`
}

// versionRequest carries the new file. Omitted metadata is inherited from
// the previous version.
type versionRequest struct {
	Title       string                  `json:"title,omitempty" validate:"max=200"`
	Description string                  `json:"description,omitempty" validate:"max=5000"`
	Category    models.DocumentCategory `json:"category,omitempty" validate:"omitempty,oneof=template policy report form"`
	FileURL     string                  `json:"file_url" validate:"required,url,max=2048"`
}

// internal/app/features/isoclauses/handler.go
package isoclauses

import (
	"context"

	"github.com/dalemusser/ecahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Store is satisfied by *isoclausestore.Store.
type Store interface {
	Create(ctx context.Context, cl models.ISOClause) (models.ISOClause, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.ISOClause, error)
	List(ctx context.Context) ([]models.ISOClause, error)
	Update(ctx context.Context, id primitive.ObjectID, cl models.ISOClause) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddGuideline(ctx context.Context, id primitive.ObjectID, g models.GuidelineDocument) (models.GuidelineDocument, error)
	RemoveGuideline(ctx context.Context, id primitive.ObjectID, guidelineID string) error
}

type Handler struct {
	Log   *zap.Logger
	Store Store
}

func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, Store: store}
}

type clauseRequest struct {
	Number       string   `json:"number" validate:"required,max=32,clause"`
	Title        string   `json:"title" validate:"required,max=300"`
	Description  string   `json:"description,omitempty" validate:"max=10000"`
	Requirements []string `json:"requirements,omitempty" validate:"max=200,dive,required,max=2000"`
}

type guidelineRequest struct {
	Title    string `json:"title" validate:"required,max=300"`
	FileURL  string `json:"file_url" validate:"required,url,max=2048"`
	FileName string `json:"file_name,omitempty" validate:"max=300"`
}

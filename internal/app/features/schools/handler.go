// internal/app/features/schools/handler.go
package schools

import (
	"context"

	schoolstore "github.com/dalemusser/ecahub/internal/app/store/schools"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Store is the persistence the schools API needs; *schoolstore.Store satisfies it.
type Store interface {
	Create(ctx context.Context, sc models.School) (models.School, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.School, error)
	List(ctx context.Context) ([]models.School, error)
	Update(ctx context.Context, id primitive.ObjectID, sc models.School) error
	SetTheme(ctx context.Context, id primitive.ObjectID, t *models.Theme) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ThemeResolver is satisfied by *theme.Resolver.
type ThemeResolver interface {
	Resolve(ctx context.Context, schoolID string) (models.Theme, error)
}

type Handler struct {
	Log    *zap.Logger
	Store  Store
	Themes ThemeResolver
}

func NewHandler(store *schoolstore.Store, themes ThemeResolver, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, Store: store, Themes: themes}
}

// schoolRequest is the body for update. The theme has its own endpoint, so
// a "theme" key here is rejected as an unknown field.
type schoolRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	Code         string `json:"code,omitempty" validate:"max=50"`
	Address      string `json:"address,omitempty" validate:"max=500"`
	ContactEmail string `json:"contact_email,omitempty" validate:"omitempty,email"`
}

// createSchoolRequest may also carry an initial theme.
type createSchoolRequest struct {
	Name         string        `json:"name" validate:"required,max=200"`
	Code         string        `json:"code,omitempty" validate:"max=50"`
	Address      string        `json:"address,omitempty" validate:"max=500"`
	ContactEmail string        `json:"contact_email,omitempty" validate:"omitempty,email"`
	Theme        *models.Theme `json:"theme,omitempty"`
}

func (req createSchoolRequest) toModel() models.School {
	sc := schoolRequest{
		Name:         req.Name,
		Code:         req.Code,
		Address:      req.Address,
		ContactEmail: req.ContactEmail,
	}.toModel()
	sc.Theme = req.Theme
	return sc
}

func (req schoolRequest) toModel() models.School {
	return models.School{
		Name:         req.Name,
		Code:         req.Code,
		Address:      req.Address,
		ContactEmail: req.ContactEmail,
	}
}

// themeRequest sets a theme, or clears it with {"theme": null}.
type themeRequest struct {
	Theme *models.Theme `json:"theme"`
}

type themeResponse struct {
	Theme models.Theme `json:"theme"`
}

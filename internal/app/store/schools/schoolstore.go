// internal/app/store/schools/schoolstore.go
package schoolstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/ecahub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound        = errors.New("school not found")
	ErrDuplicateSchool = errors.New("a school with this name already exists")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("schools")}
}

func (s *Store) Create(ctx context.Context, sc models.School) (models.School, error) {
	now := time.Now().UTC()
	sc.ID = primitive.NewObjectID()
	sc.NameCI = text.Fold(sc.Name)
	sc.CreatedAt = now
	sc.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, sc); err != nil {
		if wafflemongo.IsDup(err) {
			return models.School{}, ErrDuplicateSchool
		}
		return models.School{}, err
	}
	return sc, nil
}

// GetByID returns ErrNotFound when no school has the id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.School, error) {
	var sc models.School
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.School{}, ErrNotFound
	}
	if err != nil {
		return models.School{}, err
	}
	return sc, nil
}

// List returns all schools ordered by folded name.
func (s *Store) List(ctx context.Context) ([]models.School, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	schools := []models.School{}
	if err := cur.All(ctx, &schools); err != nil {
		return nil, err
	}
	return schools, nil
}

// Update replaces the descriptive fields. The theme is changed only through SetTheme.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, sc models.School) error {
	set := bson.M{
		"name":          sc.Name,
		"name_ci":       text.Fold(sc.Name),
		"code":          sc.Code,
		"address":       sc.Address,
		"contact_email": sc.ContactEmail,
		"updated_at":    time.Now().UTC(),
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateSchool
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetTheme stores a complete theme, or removes it when t is nil so the
// school falls back to the default.
func (s *Store) SetTheme(ctx context.Context, id primitive.ObjectID, t *models.Theme) error {
	now := time.Now().UTC()
	var update bson.M
	if t == nil {
		update = bson.M{
			"$unset": bson.M{"theme": ""},
			"$set":   bson.M{"updated_at": now},
		}
	} else {
		update = bson.M{"$set": bson.M{"theme": *t, "updated_at": now}}
	}
	res, err := s.c.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of schools matching filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}

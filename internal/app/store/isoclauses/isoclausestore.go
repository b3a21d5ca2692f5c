// internal/app/store/isoclauses/isoclausestore.go
package isoclausestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/ecahub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound          = errors.New("iso clause not found")
	ErrDuplicateNumber   = errors.New("an iso clause with this number already exists")
	ErrGuidelineNotFound = errors.New("guideline not found")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("iso_clauses")}
}

func (s *Store) Create(ctx context.Context, cl models.ISOClause) (models.ISOClause, error) {
	now := time.Now().UTC()
	cl.ID = primitive.NewObjectID()
	if cl.Requirements == nil {
		cl.Requirements = []string{}
	}
	if cl.Guidelines == nil {
		cl.Guidelines = []models.GuidelineDocument{}
	}
	cl.CreatedAt = now
	cl.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, cl); err != nil {
		if wafflemongo.IsDup(err) {
			return models.ISOClause{}, ErrDuplicateNumber
		}
		return models.ISOClause{}, err
	}
	return cl, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.ISOClause, error) {
	var cl models.ISOClause
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&cl)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ISOClause{}, ErrNotFound
	}
	if err != nil {
		return models.ISOClause{}, err
	}
	return cl, nil
}

// List returns clauses ordered by number.
func (s *Store) List(ctx context.Context) ([]models.ISOClause, error) {
	opts := options.Find().SetSort(bson.D{{Key: "number", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.ISOClause{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces number, title, description and requirements. Guidelines
// are managed with AddGuideline / RemoveGuideline.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, cl models.ISOClause) error {
	reqs := cl.Requirements
	if reqs == nil {
		reqs = []string{}
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"number":       cl.Number,
		"title":        cl.Title,
		"description":  cl.Description,
		"requirements": reqs,
		"updated_at":   time.Now().UTC(),
	}})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateNumber
		}
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

// AddGuideline attaches g (assigning its uuid and upload time).
func (s *Store) AddGuideline(ctx context.Context, id primitive.ObjectID, g models.GuidelineDocument) (models.GuidelineDocument, error) {
	now := time.Now().UTC()
	g.ID = uuid.NewString()
	g.UploadedAt = now
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$push": bson.M{"guidelines": g},
		"$set":  bson.M{"updated_at": now},
	})
	if err != nil {
		return models.GuidelineDocument{}, err
	}
	if res.MatchedCount == 0 {
		return models.GuidelineDocument{}, ErrNotFound
	}
	return g, nil
}

func (s *Store) RemoveGuideline(ctx context.Context, id primitive.ObjectID, guidelineID string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "guidelines.id": guidelineID},
		bson.M{
			"$pull": bson.M{"guidelines": bson.M{"id": guidelineID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, err := s.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrGuidelineNotFound
	}
	return nil
}

// internal/app/store/documents/documentstore.go
package documentstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/ecahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("document not found")
	// ErrSuperseded is returned when a new version is requested from a
	// version that already has a successor.
	ErrSuperseded = errors.New("document already has a newer version")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("documents")}
}

// Create inserts version 1 of a new lineage.
func (s *Store) Create(ctx context.Context, d models.Document) (models.Document, error) {
	now := time.Now().UTC()
	d.ID = primitive.NewObjectID()
	d.LineageID = d.ID
	d.Version = 1
	d.IsUpdated = false
	d.TitleCI = text.Fold(d.Title)
	d.CreatedAt = now
	d.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, d); err != nil {
		return models.Document{}, err
	}
	return d, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Document, error) {
	var d models.Document
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Document{}, ErrNotFound
	}
	if err != nil {
		return models.Document{}, err
	}
	return d, nil
}

// Filter narrows List. Zero fields are ignored.
type Filter struct {
	Category    models.DocumentCategory
	SchoolID    *primitive.ObjectID
	CurrentOnly bool // hide versions that have a successor
}

func (s *Store) List(ctx context.Context, f Filter) ([]models.Document, error) {
	q := bson.M{}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.SchoolID != nil {
		q["school_id"] = *f.SchoolID
	}
	if f.CurrentOnly {
		q["is_updated"] = false
	}
	opts := options.Find().SetSort(bson.D{{Key: "title_ci", Value: 1}, {Key: "version", Value: -1}})
	return s.find(ctx, q, opts)
}

// Versions returns every version of a lineage, newest first.
func (s *Store) Versions(ctx context.Context, lineageID primitive.ObjectID) ([]models.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "version", Value: -1}})
	return s.find(ctx, bson.M{"lineage_id": lineageID}, opts)
}

func (s *Store) find(ctx context.Context, q bson.M, opts *options.FindOptions) ([]models.Document, error) {
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Document{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update edits metadata of one version in place.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, d models.Document) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"title":       d.Title,
		"title_ci":    text.Fold(d.Title),
		"description": d.Description,
		"category":    d.Category,
		"file_url":    d.FileURL,
		"updated_at":  time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes one version. Deleting the current version of a lineage
// makes the newest remaining version current again.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	var gone models.Document
	err := s.c.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&gone)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if gone.IsUpdated || gone.Version <= 1 {
		return nil
	}

	var prev models.Document
	opts := options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}})
	err = s.c.FindOne(ctx, bson.M{"lineage_id": gone.LineageID}, opts).Decode(&prev)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = s.c.UpdateByID(ctx, prev.ID, bson.M{"$set": bson.M{
		"is_updated": false,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

// NewVersion flags prevID as updated and inserts version n+1 carrying the
// lineage, category and owner of the previous version. Only the latest
// version of a lineage may be superseded.
func (s *Store) NewVersion(ctx context.Context, prevID primitive.ObjectID, next models.Document) (models.Document, error) {
	now := time.Now().UTC()
	var prev models.Document
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": prevID, "is_updated": false},
		bson.M{"$set": bson.M{"is_updated": true, "updated_at": now}},
	).Decode(&prev)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, gerr := s.GetByID(ctx, prevID); gerr != nil {
			return models.Document{}, gerr
		}
		return models.Document{}, ErrSuperseded
	}
	if err != nil {
		return models.Document{}, err
	}

	next.ID = primitive.NewObjectID()
	next.LineageID = prev.LineageID
	next.Version = prev.Version + 1
	next.IsUpdated = false
	if next.Title == "" {
		next.Title = prev.Title
	}
	if next.Description == "" {
		next.Description = prev.Description
	}
	if next.Category == "" {
		next.Category = prev.Category
	}
	next.SchoolID = prev.SchoolID
	next.TitleCI = text.Fold(next.Title)
	next.CreatedAt = now
	next.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, next); err != nil {
		// undo the flag so the lineage keeps a current version
		_, _ = s.c.UpdateByID(ctx, prevID, bson.M{"$set": bson.M{"is_updated": false}})
		return models.Document{}, err
	}
	return next, nil
}

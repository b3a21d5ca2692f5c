// internal/app/store/clubs/clubstore.go
package clubstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/ecahub/internal/app/store/registrations"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("club not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("clubs")}
}

func (s *Store) Create(ctx context.Context, cl models.Club) (models.Club, error) {
	now := time.Now().UTC()
	cl.ID = primitive.NewObjectID()
	cl.NameCI = text.Fold(cl.Name)
	if cl.Status == "" {
		cl.Status = models.ClubComingSoon
	}
	if cl.Activities == nil {
		cl.Activities = []models.ClubActivity{}
	}
	if cl.Registrations == nil {
		cl.Registrations = []models.SchoolRegistration{}
	}
	cl.CreatedAt = now
	cl.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, cl); err != nil {
		return models.Club{}, err
	}
	return cl, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Club, error) {
	var cl models.Club
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&cl)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Club{}, ErrNotFound
	}
	if err != nil {
		return models.Club{}, err
	}
	return cl, nil
}

// Filter narrows List. Zero fields are ignored.
type Filter struct {
	Category models.ClubCategory
	Status   models.ClubStatus
	SchoolID *primitive.ObjectID // clubs the school has registered for
}

func (s *Store) List(ctx context.Context, f Filter) ([]models.Club, error) {
	q := bson.M{}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.SchoolID != nil {
		q["registrations.school_id"] = *f.SchoolID
	}
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Club{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces the descriptive fields; activities and registrations
// have their own operations.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, cl models.Club) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"name":        cl.Name,
		"name_ci":     text.Fold(cl.Name),
		"description": cl.Description,
		"category":    cl.Category,
		"status":      cl.Status,
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

// AddActivity appends an activity and returns it with its id.
func (s *Store) AddActivity(ctx context.Context, id primitive.ObjectID, a models.ClubActivity) (models.ClubActivity, error) {
	now := time.Now().UTC()
	a.ID = primitive.NewObjectID()
	a.CreatedAt = now
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$push": bson.M{"activities": a},
		"$set":  bson.M{"updated_at": now},
	})
	if err != nil {
		return models.ClubActivity{}, err
	}
	if res.MatchedCount == 0 {
		return models.ClubActivity{}, ErrNotFound
	}
	return a, nil
}

func (s *Store) Register(ctx context.Context, id primitive.ObjectID, reg models.SchoolRegistration) (models.SchoolRegistration, error) {
	reg.Participants = nil
	out, err := registrations.Add(ctx, s.c, id, reg)
	return out, s.mapErr(err)
}

func (s *Store) SetRegistrationStatus(ctx context.Context, id, schoolID primitive.ObjectID, st models.RegistrationStatus) error {
	return s.mapErr(registrations.SetStatus(ctx, s.c, id, schoolID, st))
}

func (s *Store) mapErr(err error) error {
	if errors.Is(err, registrations.ErrParentNotFound) {
		return ErrNotFound
	}
	return err
}

// internal/app/store/trainings/trainingstore.go
package trainingstore

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
	ErrNotFound          = errors.New("training not found")
	ErrAlreadyRegistered = errors.New("user is already registered for this training")
	ErrNotRegistered     = errors.New("user is not registered for this training")
	ErrTrainingFull      = errors.New("training is full")
	ErrBadRating         = errors.New("rating must be between 1 and 5")
	ErrBadCapacity       = errors.New("capacity cannot be negative")
)

type Store struct {
	c  *mongo.Collection
	fb *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:  db.Collection("trainings"),
		fb: db.Collection("training_feedback"),
	}
}

func (s *Store) Create(ctx context.Context, t models.Training) (models.Training, error) {
	if t.Capacity < 0 {
		return models.Training{}, ErrBadCapacity
	}
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.TitleCI = text.Fold(t.Title)
	t.RegisteredUsers = []primitive.ObjectID{}
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Training{}, err
	}
	return t, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Training, error) {
	var t models.Training
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Training{}, ErrNotFound
	}
	if err != nil {
		return models.Training{}, err
	}
	return t, nil
}

// List returns trainings by start time. A non-nil schoolID limits the result
// to that school's trainings plus the ones without an owner.
func (s *Store) List(ctx context.Context, schoolID *primitive.ObjectID) ([]models.Training, error) {
	q := bson.M{}
	if schoolID != nil {
		q["$or"] = bson.A{
			bson.M{"school_id": *schoolID},
			bson.M{"school_id": bson.M{"$exists": false}},
		}
	}
	return s.find(ctx, q)
}

// ListForUser returns the trainings userID is registered for.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Training, error) {
	return s.find(ctx, bson.M{"registered_users": userID})
}

func (s *Store) find(ctx context.Context, q bson.M) ([]models.Training, error) {
	opts := options.Find().SetSort(bson.D{{Key: "starts_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Training{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces descriptive fields and capacity. The roster is untouched.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, t models.Training) error {
	if t.Capacity < 0 {
		return ErrBadCapacity
	}
	set := bson.M{
		"title":       t.Title,
		"title_ci":    text.Fold(t.Title),
		"description": t.Description,
		"trainer":     t.Trainer,
		"starts_at":   t.StartsAt,
		"ends_at":     t.EndsAt,
		"updated_at":  time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	if t.Capacity > 0 {
		set["capacity"] = t.Capacity
	} else {
		update["$unset"] = bson.M{"capacity": ""}
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

// Delete removes the training and its feedback.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	_, err = s.fb.DeleteMany(ctx, bson.M{"training_id": id})
	return err
}

// Register adds userID to the roster. The filter enforces both set
// semantics and capacity so the check and the write are one operation.
func (s *Store) Register(ctx context.Context, id, userID primitive.ObjectID) error {
	filter := bson.M{
		"_id":              id,
		"registered_users": bson.M{"$ne": userID},
		"$or": bson.A{
			bson.M{"capacity": bson.M{"$exists": false}},
			bson.M{"capacity": bson.M{"$lte": 0}},
			bson.M{"$expr": bson.M{"$lt": bson.A{
				bson.M{"$size": bson.M{"$ifNull": bson.A{"$registered_users", bson.A{}}}},
				"$capacity",
			}}},
		},
	}
	res, err := s.c.UpdateOne(ctx, filter, bson.M{
		"$addToSet": bson.M{"registered_users": userID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}

	t, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if t.IsRegistered(userID) {
		return ErrAlreadyRegistered
	}
	return ErrTrainingFull
}

// Unregister removes userID from the roster.
func (s *Store) Unregister(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "registered_users": userID},
		bson.M{
			"$pull": bson.M{"registered_users": userID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, err := s.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrNotRegistered
	}
	return nil
}

// PutFeedback creates or replaces the caller's feedback for a training.
func (s *Store) PutFeedback(ctx context.Context, fb models.TrainingFeedback) (models.TrainingFeedback, error) {
	if fb.Rating < 1 || fb.Rating > 5 {
		return models.TrainingFeedback{}, ErrBadRating
	}
	if _, err := s.GetByID(ctx, fb.TrainingID); err != nil {
		return models.TrainingFeedback{}, err
	}

	now := time.Now().UTC()
	filter := bson.M{"training_id": fb.TrainingID, "user_id": fb.UserID}
	update := bson.M{
		"$set": bson.M{
			"user_name":  fb.UserName,
			"rating":     fb.Rating,
			"comment":    fb.Comment,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var out models.TrainingFeedback
	if err := s.fb.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return models.TrainingFeedback{}, err
	}
	return out, nil
}

// ListFeedback returns all feedback for a training, newest first.
func (s *Store) ListFeedback(ctx context.Context, trainingID primitive.ObjectID) ([]models.TrainingFeedback, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cur, err := s.fb.Find(ctx, bson.M{"training_id": trainingID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.TrainingFeedback{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

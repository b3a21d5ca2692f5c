// internal/app/store/events/eventstore.go
package eventstore

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

var (
	ErrNotFound          = errors.New("event not found")
	ErrInvalidTransition = errors.New("illegal event status transition")
	ErrBadTimes          = errors.New("event must end after it starts")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("events")}
}

// Create always starts an event as a draft.
func (s *Store) Create(ctx context.Context, ev models.Event) (models.Event, error) {
	if !ev.EndsAt.IsZero() && ev.EndsAt.Before(ev.StartsAt) {
		return models.Event{}, ErrBadTimes
	}
	now := time.Now().UTC()
	ev.ID = primitive.NewObjectID()
	ev.TitleCI = text.Fold(ev.Title)
	ev.Status = models.EventDraft
	if ev.Registrations == nil {
		ev.Registrations = []models.SchoolRegistration{}
	}
	ev.CreatedAt = now
	ev.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, ev); err != nil {
		return models.Event{}, err
	}
	return ev, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Event, error) {
	var ev models.Event
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&ev)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Event{}, ErrNotFound
	}
	if err != nil {
		return models.Event{}, err
	}
	return ev, nil
}

// Filter narrows List. Zero fields are ignored.
type Filter struct {
	Status   models.EventStatus
	ClubID   *primitive.ObjectID
	SchoolID *primitive.ObjectID // events the school registered for
	From, To time.Time           // overlap window on [starts_at, ends_at]
}

// List returns events by start time.
func (s *Store) List(ctx context.Context, f Filter) ([]models.Event, error) {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.ClubID != nil {
		q["club_id"] = *f.ClubID
	}
	if f.SchoolID != nil {
		q["registrations.school_id"] = *f.SchoolID
	}
	if !f.From.IsZero() {
		q["ends_at"] = bson.M{"$gte": f.From}
	}
	if !f.To.IsZero() {
		q["starts_at"] = bson.M{"$lt": f.To}
	}
	opts := options.Find().SetSort(bson.D{{Key: "starts_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Event{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces descriptive fields. Status moves only through Transition.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, ev models.Event) error {
	if !ev.EndsAt.IsZero() && ev.EndsAt.Before(ev.StartsAt) {
		return ErrBadTimes
	}
	set := bson.M{
		"title":       ev.Title,
		"title_ci":    text.Fold(ev.Title),
		"description": ev.Description,
		"location":    ev.Location,
		"starts_at":   ev.StartsAt,
		"ends_at":     ev.EndsAt,
		"updated_at":  time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	if ev.ClubID != nil {
		set["club_id"] = *ev.ClubID
	} else {
		update["$unset"] = bson.M{"club_id": ""}
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

// Transition moves an event to next. The update is conditional on the
// current status so two racing transitions cannot both apply.
func (s *Store) Transition(ctx context.Context, id primitive.ObjectID, next models.EventStatus) (models.Event, error) {
	ev, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Event{}, err
	}
	if !ev.Status.CanTransition(next) {
		return models.Event{}, ErrInvalidTransition
	}
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": ev.Status},
		bson.M{"$set": bson.M{"status": next, "updated_at": now}})
	if err != nil {
		return models.Event{}, err
	}
	if res.MatchedCount == 0 {
		return models.Event{}, ErrInvalidTransition
	}
	ev.Status = next
	ev.UpdatedAt = now
	return ev, nil
}

// CompletePast marks published events that ended before now as completed
// and returns how many changed.
func (s *Store) CompletePast(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"status": models.EventPublished, "ends_at": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{"status": models.EventCompleted, "updated_at": now.UTC()}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *Store) Register(ctx context.Context, id primitive.ObjectID, reg models.SchoolRegistration) (models.SchoolRegistration, error) {
	out, err := registrations.Add(ctx, s.c, id, reg)
	return out, s.mapErr(err)
}

func (s *Store) SetRegistrationStatus(ctx context.Context, id, schoolID primitive.ObjectID, st models.RegistrationStatus) error {
	return s.mapErr(registrations.SetStatus(ctx, s.c, id, schoolID, st))
}

func (s *Store) AddParticipants(ctx context.Context, id, schoolID primitive.ObjectID, names []string) error {
	return s.mapErr(registrations.AddParticipants(ctx, s.c, id, schoolID, names))
}

func (s *Store) mapErr(err error) error {
	if errors.Is(err, registrations.ErrParentNotFound) {
		return ErrNotFound
	}
	return err
}

// Package registrations holds the embedded school-registration updates
// shared by clubs and events. Each helper is a single conditional
// update on the owning document.
package registrations

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/ecahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrParentNotFound means the club/event itself does not exist.
	ErrParentNotFound     = errors.New("registration owner not found")
	ErrAlreadyRegistered  = errors.New("school is already registered")
	ErrRegistrationAbsent = errors.New("school is not registered")
	ErrBadStatus          = errors.New(`status must be "pending"|"approved"|"rejected"`)
)

// Add appends reg unless the school already holds a registration.
func Add(ctx context.Context, c *mongo.Collection, ownerID primitive.ObjectID, reg models.SchoolRegistration) (models.SchoolRegistration, error) {
	if reg.Status == "" {
		reg.Status = models.RegistrationPending
	}
	if !reg.Status.Valid() {
		return models.SchoolRegistration{}, ErrBadStatus
	}
	now := time.Now().UTC()
	reg.RegisteredAt = now

	res, err := c.UpdateOne(ctx,
		bson.M{"_id": ownerID, "registrations.school_id": bson.M{"$ne": reg.SchoolID}},
		bson.M{
			"$push": bson.M{"registrations": reg},
			"$set":  bson.M{"updated_at": now},
		})
	if err != nil {
		return models.SchoolRegistration{}, err
	}
	if res.MatchedCount == 0 {
		return models.SchoolRegistration{}, classify(ctx, c, ownerID, ErrAlreadyRegistered)
	}
	return reg, nil
}

// SetStatus changes the status of one school's registration.
func SetStatus(ctx context.Context, c *mongo.Collection, ownerID, schoolID primitive.ObjectID, st models.RegistrationStatus) error {
	if !st.Valid() {
		return ErrBadStatus
	}
	now := time.Now().UTC()
	res, err := c.UpdateOne(ctx,
		bson.M{"_id": ownerID, "registrations.school_id": schoolID},
		bson.M{"$set": bson.M{
			"registrations.$.status":     st,
			"registrations.$.updated_at": now,
			"updated_at":                 now,
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return classify(ctx, c, ownerID, ErrRegistrationAbsent)
	}
	return nil
}

// AddParticipants adds names to a registration's roster, skipping names
// already present.
func AddParticipants(ctx context.Context, c *mongo.Collection, ownerID, schoolID primitive.ObjectID, names []string) error {
	now := time.Now().UTC()
	res, err := c.UpdateOne(ctx,
		bson.M{"_id": ownerID, "registrations.school_id": schoolID},
		bson.M{
			"$addToSet": bson.M{"registrations.$.participants": bson.M{"$each": names}},
			"$set":      bson.M{"registrations.$.updated_at": now, "updated_at": now},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return classify(ctx, c, ownerID, ErrRegistrationAbsent)
	}
	return nil
}

// classify tells "owner missing" apart from the conditional miss.
func classify(ctx context.Context, c *mongo.Collection, ownerID primitive.ObjectID, miss error) error {
	n, err := c.CountDocuments(ctx, bson.M{"_id": ownerID})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrParentNotFound
	}
	return miss
}

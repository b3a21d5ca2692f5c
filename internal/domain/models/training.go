// internal/domain/models/training.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Training has an optional capacity (0 = unlimited) and a roster of user
// ids with set semantics.
type Training struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title           string               `bson:"title" json:"title"`
	TitleCI         string               `bson:"title_ci" json:"-"`
	Description     string               `bson:"description,omitempty" json:"description,omitempty"`
	Trainer         string               `bson:"trainer,omitempty" json:"trainer,omitempty"`
	StartsAt        time.Time            `bson:"starts_at" json:"starts_at"`
	EndsAt          time.Time            `bson:"ends_at" json:"ends_at"`
	Capacity        int                  `bson:"capacity,omitempty" json:"capacity,omitempty"`
	RegisteredUsers []primitive.ObjectID `bson:"registered_users" json:"registered_users"`
	SchoolID        *primitive.ObjectID  `bson:"school_id,omitempty" json:"school_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// SeatsLeft returns the remaining seats, or -1 when capacity is unlimited.
func (t Training) SeatsLeft() int {
	if t.Capacity <= 0 {
		return -1
	}
	left := t.Capacity - len(t.RegisteredUsers)
	if left < 0 {
		return 0
	}
	return left
}

// IsRegistered reports whether userID is on the roster.
func (t Training) IsRegistered(userID primitive.ObjectID) bool {
	for _, id := range t.RegisteredUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// TrainingFeedback is unique per (training, user).
type TrainingFeedback struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainingID primitive.ObjectID `bson:"training_id" json:"training_id"`
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	UserName   string             `bson:"user_name,omitempty" json:"user_name,omitempty"`
	Rating     int                `bson:"rating" json:"rating"`
	Comment    string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

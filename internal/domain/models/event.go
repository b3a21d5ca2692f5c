// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventPublished EventStatus = "published"
	EventCancelled EventStatus = "cancelled"
	EventCompleted EventStatus = "completed"
)

// CanTransition reports whether an event may move from s to next.
// draft -> published -> (cancelled | completed); terminal states never move.
func (s EventStatus) CanTransition(next EventStatus) bool {
	switch s {
	case EventDraft:
		return next == EventPublished
	case EventPublished:
		return next == EventCancelled || next == EventCompleted
	}
	return false
}

type Event struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title         string               `bson:"title" json:"title"`
	TitleCI       string               `bson:"title_ci" json:"-"`
	Description   string               `bson:"description,omitempty" json:"description,omitempty"`
	Location      string               `bson:"location,omitempty" json:"location,omitempty"`
	StartsAt      time.Time            `bson:"starts_at" json:"starts_at"`
	EndsAt        time.Time            `bson:"ends_at" json:"ends_at"`
	ClubID        *primitive.ObjectID  `bson:"club_id,omitempty" json:"club_id,omitempty"`
	SchoolID      *primitive.ObjectID  `bson:"school_id,omitempty" json:"school_id,omitempty"` // owner; nil = super-admin managed
	Status        EventStatus          `bson:"status" json:"status"`
	Registrations []SchoolRegistration `bson:"registrations" json:"registrations"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

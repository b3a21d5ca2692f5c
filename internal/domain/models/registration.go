// internal/domain/models/registration.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RegistrationStatus is shared by club and event registrations.
type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
)

func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationPending, RegistrationApproved, RegistrationRejected:
		return true
	}
	return false
}

// SchoolRegistration records a school signing up for a club or event.
// Participants is only used by events.
type SchoolRegistration struct {
	SchoolID     primitive.ObjectID `bson:"school_id" json:"school_id"`
	SchoolName   string             `bson:"school_name" json:"school_name"`
	Status       RegistrationStatus `bson:"status" json:"status"`
	Participants []string           `bson:"participants,omitempty" json:"participants,omitempty"`
	RegisteredAt time.Time          `bson:"registered_at" json:"registered_at"`
	UpdatedAt    *time.Time         `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

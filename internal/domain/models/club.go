// internal/domain/models/club.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ClubCategory string

const (
	ClubSports     ClubCategory = "sports"
	ClubArts       ClubCategory = "arts"
	ClubMusic      ClubCategory = "music"
	ClubAcademic   ClubCategory = "academic"
	ClubTechnology ClubCategory = "technology"
	ClubCommunity  ClubCategory = "community"
	ClubOther      ClubCategory = "other"
)

type ClubStatus string

const (
	ClubOpen       ClubStatus = "Open"
	ClubClosed     ClubStatus = "Closed"
	ClubComingSoon ClubStatus = "Coming Soon"
)

// ClubActivity is owned by its club.
type ClubActivity struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Schedule    string             `bson:"schedule,omitempty" json:"schedule,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

type Club struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name          string               `bson:"name" json:"name"`
	NameCI        string               `bson:"name_ci" json:"-"`
	Description   string               `bson:"description,omitempty" json:"description,omitempty"`
	Category      ClubCategory         `bson:"category" json:"category"`
	Status        ClubStatus           `bson:"status" json:"status"`
	Activities    []ClubActivity       `bson:"activities" json:"activities"`
	Registrations []SchoolRegistration `bson:"registrations" json:"registrations"`

	CreatedByID *primitive.ObjectID `bson:"created_by_id,omitempty" json:"created_by_id,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
}

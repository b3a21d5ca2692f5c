// internal/domain/models/isoclause.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GuidelineDocument is an uploaded guidance file attached to an ISO clause.
// ID is a uuid so it can be addressed without an ObjectID round-trip.
type GuidelineDocument struct {
	ID         string    `bson:"id" json:"id"`
	Title      string    `bson:"title" json:"title"`
	FileURL    string    `bson:"file_url" json:"file_url"`
	FileName   string    `bson:"file_name,omitempty" json:"file_name,omitempty"`
	UploadedBy string    `bson:"uploaded_by,omitempty" json:"uploaded_by,omitempty"`
	UploadedAt time.Time `bson:"uploaded_at" json:"uploaded_at"`
}

// ISOClause numbers are unique ("4.1", "7.5.3", ...).
type ISOClause struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Number       string              `bson:"number" json:"number"`
	Title        string              `bson:"title" json:"title"`
	Description  string              `bson:"description,omitempty" json:"description,omitempty"`
	Requirements []string            `bson:"requirements" json:"requirements"`
	Guidelines   []GuidelineDocument `bson:"guidelines" json:"guidelines"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// internal/domain/models/document.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DocumentCategory string

const (
	DocTemplate DocumentCategory = "template"
	DocPolicy   DocumentCategory = "policy"
	DocReport   DocumentCategory = "report"
	DocForm     DocumentCategory = "form"
)

// Document is one version of a library entry. All versions share LineageID;
// IsUpdated is set once a newer version of the lineage exists.
type Document struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	LineageID   primitive.ObjectID  `bson:"lineage_id" json:"lineage_id"`
	Title       string              `bson:"title" json:"title"`
	TitleCI     string              `bson:"title_ci" json:"-"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	Category    DocumentCategory    `bson:"category" json:"category"`
	FileURL     string              `bson:"file_url" json:"file_url"`
	Version     int                 `bson:"version" json:"version"`
	IsUpdated   bool                `bson:"is_updated" json:"isUpdated"`
	SchoolID    *primitive.ObjectID `bson:"school_id,omitempty" json:"school_id,omitempty"`

	UploadedByID   *primitive.ObjectID `bson:"uploaded_by_id,omitempty" json:"uploaded_by_id,omitempty"`
	UploadedByName string              `bson:"uploaded_by_name,omitempty" json:"uploaded_by_name,omitempty"`
	CreatedAt      time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time           `bson:"updated_at" json:"updated_at"`
}

// internal/domain/models/school.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Theme is a school's colour scheme. A stored theme always carries all five
// colours as #rrggbb; a school without a custom scheme has no theme at all.
type Theme struct {
	Primary    string `bson:"primary" json:"primary" validate:"required,hexcolor,len=7"`
	Secondary  string `bson:"secondary" json:"secondary" validate:"required,hexcolor,len=7"`
	Accent     string `bson:"accent" json:"accent" validate:"required,hexcolor,len=7"`
	Background string `bson:"background" json:"background" validate:"required,hexcolor,len=7"`
	Foreground string `bson:"foreground" json:"foreground" validate:"required,hexcolor,len=7"`
}

// DefaultTheme is applied when a school has no theme and for super-admin sessions.
func DefaultTheme() Theme {
	return Theme{
		Primary:    "#3b82f6",
		Secondary:  "#64748b",
		Accent:     "#10b981",
		Background: "#ffffff",
		Foreground: "#0f172a",
	}
}

// School is created by a super-admin. NameCI is always stored for sorting
// and uniqueness.
type School struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	NameCI       string             `bson:"name_ci" json:"-"`
	Code         string             `bson:"code,omitempty" json:"code,omitempty"`
	Address      string             `bson:"address,omitempty" json:"address,omitempty"`
	ContactEmail string             `bson:"contact_email,omitempty" json:"contact_email,omitempty"`
	Theme        *Theme             `bson:"theme,omitempty" json:"theme,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// internal/domain/models/message.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a role-addressed note shown on the messages page.
type Message struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SenderID       primitive.ObjectID `bson:"sender_id" json:"sender_id"`
	SenderName     string             `bson:"sender_name" json:"sender_name"`
	SenderRole     Role               `bson:"sender_role" json:"sender_role"`
	RecipientRoles []Role             `bson:"recipient_roles" json:"recipient_roles"`
	Subject        string             `bson:"subject" json:"subject"`
	Body           string             `bson:"body" json:"body"`
	BodyHTML       string             `bson:"body_html" json:"body_html"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}

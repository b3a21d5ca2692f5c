// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotifyAnnouncement NotificationType = "announcement"
	NotifyReminder     NotificationType = "reminder"
	NotifyAlert        NotificationType = "alert"
	NotifyUpdate       NotificationType = "update"
)

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
)

// Notification is visible only to sessions whose role is in Target.
type Notification struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title       string               `bson:"title" json:"title"`
	Message     string               `bson:"message" json:"message"` // markdown source
	MessageHTML string               `bson:"message_html" json:"message_html"`
	Type        NotificationType     `bson:"type" json:"type"`
	Priority    NotificationPriority `bson:"priority" json:"priority"`
	Target      []Role               `bson:"target" json:"target"`

	CreatedByID   *primitive.ObjectID `bson:"created_by_id,omitempty" json:"created_by_id,omitempty"`
	CreatedByName string              `bson:"created_by_name,omitempty" json:"created_by_name,omitempty"`
	CreatedAt     time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time           `bson:"updated_at" json:"updated_at"`
}

// VisibleTo reports whether a session with role r may see n.
func (n Notification) VisibleTo(r Role) bool {
	return ContainsRole(n.Target, r)
}

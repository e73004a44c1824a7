package models

import "time"

// NotificationType tags what triggered a notification.
type NotificationType string

const (
	NotificationLike        NotificationType = "like"
	NotificationApplication NotificationType = "application"
)

// Notification is the durable record of an event for a user. The
// websocket push is best-effort; this row is the source of truth.
type Notification struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	UserID        uint             `gorm:"not null;index" json:"user_id"`
	ActorID       *uint            `json:"actor_id,omitempty"`
	PostID        *uint            `gorm:"index" json:"post_id,omitempty"`
	ApplicationID *uint            `json:"application_id,omitempty"`
	Type          NotificationType `gorm:"size:32;not null" json:"type"`
	Message       string           `gorm:"size:500;not null" json:"message"`
	Read          bool             `gorm:"not null;default:false;index" json:"read"`
	CreatedAt     time.Time        `json:"created_at"`
}

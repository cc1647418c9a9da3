package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotifyResourceApproved   NotificationType = "resource_approved"
	NotifyResourceRejected   NotificationType = "resource_rejected"
	NotifyResourceTerminated NotificationType = "resource_terminated"
)

// Notification tells an uploader what happened to their resource.
type Notification struct {
	ID         primitive.ObjectID  `bson:"_id" json:"id"`
	User       primitive.ObjectID  `bson:"user" json:"user"`
	Type       NotificationType    `bson:"type" json:"type"`
	Title      string              `bson:"title" json:"title"`
	Content    string              `bson:"content" json:"content"`
	ResourceID *primitive.ObjectID `bson:"resource_id" json:"resourceId,omitempty"`
	IsRead     bool                `bson:"is_read" json:"isRead"`
	CreatedAt  time.Time           `bson:"created_at" json:"createdAt"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationNewReview  NotificationType = "new_review"
	NotificationNewComment NotificationType = "new_comment"
	NotificationReply      NotificationType = "reply"
	NotificationWarning    NotificationType = "warning"
	NotificationSystem     NotificationType = "system"
)

type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`

	Recipient primitive.ObjectID  `bson:"recipient" json:"recipient"`
	Sender    *primitive.ObjectID `bson:"sender,omitempty" json:"sender,omitempty"`

	Type    NotificationType `bson:"type" json:"type"`
	Title   string           `bson:"title" json:"title"`
	Message string           `bson:"message" json:"message"`

	Book   *primitive.ObjectID `bson:"book,omitempty" json:"book,omitempty"`
	Review *primitive.ObjectID `bson:"review,omitempty" json:"review,omitempty"`

	IsRead bool `bson:"is_read" json:"is_read"`
}

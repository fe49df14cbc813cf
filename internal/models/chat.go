package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatSender identifies who wrote a support-chat message.
type ChatSender string

const (
	ChatSenderUser      ChatSender = "user"
	ChatSenderModerator ChatSender = "moderator"
	ChatSenderSystem    ChatSender = "system"
)

type ChatMessage struct {
	Sender    ChatSender `bson:"sender" json:"sender"`
	Content   string     `bson:"content" json:"content"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
}

// Chat is the per-user support thread. One document per user, created
// lazily with a system welcome message on first access.
type Chat struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	User     primitive.ObjectID `bson:"user" json:"user"`
	Messages []ChatMessage      `bson:"messages" json:"messages"`
}

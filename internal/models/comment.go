package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a discussion entry on a book. Parent points at another comment
// when the entry is a reply.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	User    primitive.ObjectID  `bson:"user" json:"user"`
	Book    primitive.ObjectID  `bson:"book" json:"book"`
	Parent  *primitive.ObjectID `bson:"parent,omitempty" json:"parent,omitempty"`
	Content string              `bson:"content" json:"content"`
}

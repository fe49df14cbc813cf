package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a per-user rating of a book. A unique (user, book) index keeps
// it to one review per book per user.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	User primitive.ObjectID `bson:"user" json:"user"`
	Book primitive.ObjectID `bson:"book" json:"book"`

	Rating  int    `bson:"rating" json:"rating"` // 1..5
	Title   string `bson:"title" json:"title"`
	Content string `bson:"content" json:"content"`

	Likes      []primitive.ObjectID `bson:"likes,omitempty" json:"likes,omitempty"`
	IsFeatured bool                 `bson:"is_featured" json:"is_featured"`
	IsEdited   bool                 `bson:"is_edited" json:"is_edited"`
	Helpful    int                  `bson:"helpful" json:"helpful"`
	NotHelpful int                  `bson:"not_helpful" json:"not_helpful"`
}

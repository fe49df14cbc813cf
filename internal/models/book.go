package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ratings is the denormalized rating aggregate, recalculated by the
// post-write hook whenever a review changes.
type Ratings struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}

type CoverImage struct {
	Key string `bson:"key,omitempty" json:"key,omitempty"`
	URL string `bson:"url,omitempty" json:"url,omitempty"`
}

type BookFeatures struct {
	IsBestseller bool `bson:"is_bestseller" json:"is_bestseller"`
	IsNewRelease bool `bson:"is_new_release" json:"is_new_release"`
}

type Book struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	Title       string     `bson:"title" json:"title"`
	Author      string     `bson:"author" json:"author"`
	Description string     `bson:"description" json:"description"`
	ISBN        string     `bson:"isbn" json:"isbn"`
	CoverImage  CoverImage `bson:"cover_image,omitempty" json:"cover_image,omitempty"`

	Genre           []string `bson:"genre" json:"genre"`
	PublicationYear int      `bson:"publication_year" json:"publication_year"`
	Publisher       string   `bson:"publisher" json:"publisher"`
	Language        string   `bson:"language" json:"language"`
	PageCount       int      `bson:"page_count" json:"page_count"`
	Availability    bool     `bson:"availability" json:"availability"`

	Ratings  Ratings      `bson:"ratings" json:"ratings"`
	Tags     []string     `bson:"tags,omitempty" json:"tags,omitempty"`
	Features BookFeatures `bson:"features" json:"features"`

	UploadedBy primitive.ObjectID `bson:"uploaded_by,omitempty" json:"uploaded_by,omitempty"`
}

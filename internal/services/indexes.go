package services

import (
	"context"

	"github.com/bookclubhq/bookclub-backend/internal/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes configures the collection indexes the handlers rely on.
// Called on startup from main after Mongo has connected.
func EnsureIndexes(ctx context.Context) error {
	// Unique email backs the duplicate-registration conflict.
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_email_unique").SetUnique(true),
		},
	}
	if _, err := database.DB.Collection("users").Indexes().CreateMany(ctx, userIndexes); err != nil {
		return err
	}

	// One review per book per user, plus fast per-book listing.
	reviewIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user", Value: 1},
				{Key: "book", Value: 1},
			},
			Options: options.Index().SetName("idx_user_book_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "book", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_book_created"),
		},
	}
	if _, err := database.DB.Collection("reviews").Indexes().CreateMany(ctx, reviewIndexes); err != nil {
		return err
	}

	// Text search across title/author/description/genre/tags, unique ISBN,
	// and the rating sort used by the recommendation candidate fetch.
	bookIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "title", Value: "text"},
				{Key: "author", Value: "text"},
				{Key: "description", Value: "text"},
				{Key: "genre", Value: "text"},
				{Key: "tags", Value: "text"},
			},
			Options: options.Index().SetName("idx_books_text"),
		},
		{
			Keys: bson.D{{Key: "isbn", Value: 1}},
			Options: options.Index().SetName("idx_isbn_unique").SetUnique(true).
				SetPartialFilterExpression(bson.M{"isbn": bson.M{"$gt": ""}}),
		},
		{
			Keys:    bson.D{{Key: "ratings.average", Value: -1}},
			Options: options.Index().SetName("idx_rating_desc"),
		},
	}
	if _, err := database.DB.Collection("books").Indexes().CreateMany(ctx, bookIndexes); err != nil {
		return err
	}

	notificationIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "recipient", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_recipient_created"),
		},
	}
	if _, err := database.DB.Collection("notifications").Indexes().CreateMany(ctx, notificationIndexes); err != nil {
		return err
	}

	return nil
}

package services

import (
	"context"

	"github.com/bookclubhq/bookclub-backend/internal/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecalculateBookRating recomputes a book's rating aggregate from its
// reviews. Review handlers call it after every successful write or delete;
// keeping it an explicit named hook (rather than a save callback) keeps the
// aggregate logic testable in isolation.
func RecalculateBookRating(ctx context.Context, bookID primitive.ObjectID) error {
	pipeline := []bson.M{
		{"$match": bson.M{"book": bookID}},
		{"$group": bson.M{
			"_id":        "$book",
			"avg_rating": bson.M{"$avg": "$rating"},
			"count":      bson.M{"$sum": 1},
		}},
	}

	cur, err := database.DB.Collection("reviews").Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	ratings := bson.M{"average": 0.0, "count": 0}
	if cur.Next(ctx) {
		var result struct {
			AvgRating float64 `bson:"avg_rating"`
			Count     int     `bson:"count"`
		}
		if err := cur.Decode(&result); err != nil {
			return err
		}
		ratings = bson.M{"average": result.AvgRating, "count": result.Count}
	}
	if err := cur.Err(); err != nil {
		return err
	}

	_, err = database.DB.Collection("books").UpdateOne(ctx,
		bson.M{"_id": bookID},
		bson.M{"$set": bson.M{"ratings": ratings}},
	)
	return err
}

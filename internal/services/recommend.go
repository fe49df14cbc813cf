package services

import (
	"context"
	"errors"
	"sort"

	"github.com/bookclubhq/bookclub-backend/internal/database"
	"github.com/bookclubhq/bookclub-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrUserNotFound is returned when recommendations are requested for a
// principal that no longer exists.
var ErrUserNotFound = errors.New("user not found")

// recommendationPoolSize caps the candidate fetch BEFORE the genre-weighted
// re-rank. A genre-perfect book outside the top ten by raw rating is never
// considered; see DESIGN.md.
const recommendationPoolSize = 10

// BuildGenreWeights accumulates a genre to weight table from a user's
// reading history: each (genre, entry) pair contributes rating x readCount.
// A book with several genres contributes to each independently. Genres from
// unrated or unread books keep a zero-weight key: they still widen the
// candidate fetch, and the stable re-rank leaves zero-scored candidates in
// raw rating order.
func BuildGenreWeights(history []models.ReadingHistoryEntry, books map[primitive.ObjectID]models.Book) map[string]float64 {
	weights := make(map[string]float64)
	for _, entry := range history {
		book, ok := books[entry.Book]
		if !ok {
			continue
		}
		for _, genre := range book.Genre {
			weights[genre] += book.Ratings.Average * float64(entry.ReadCount)
		}
	}
	return weights
}

// RankByGenreWeights re-ranks a rating-sorted candidate pool by
// rating × Σ genre weights, descending. The sort is stable: ties keep the
// relative order of the incoming rating sort.
func RankByGenreWeights(books []models.Book, weights map[string]float64) []models.Book {
	ranked := make([]models.Book, len(books))
	copy(ranked, books)

	score := func(b models.Book) float64 {
		var sum float64
		for _, genre := range b.Genre {
			sum += weights[genre]
		}
		return b.Ratings.Average * sum
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return score(ranked[i]) > score(ranked[j])
	})
	return ranked
}

// RecommendBooks produces a ranked, deduplicated list of unread books for a
// user, biased toward genres the user already engages with. An empty reading
// history yields an empty list, not an error. The whole routine costs three
// store round trips regardless of history size.
func RecommendBooks(ctx context.Context, userID primitive.ObjectID) ([]models.Book, error) {
	var user models.User
	err := database.DB.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if len(user.ReadingHistory) == 0 {
		return []models.Book{}, nil
	}

	readIDs := make([]primitive.ObjectID, 0, len(user.ReadingHistory))
	for _, entry := range user.ReadingHistory {
		readIDs = append(readIDs, entry.Book)
	}

	historyBooks, err := findBooksByID(ctx, readIDs)
	if err != nil {
		return nil, err
	}

	weights := BuildGenreWeights(user.ReadingHistory, historyBooks)
	if len(weights) == 0 {
		return []models.Book{}, nil
	}

	genres := make([]string, 0, len(weights))
	for genre := range weights {
		genres = append(genres, genre)
	}

	// Candidates: unread, genre-matching, best-rated first, capped at the
	// pool size before re-ranking.
	filter := bson.M{
		"_id":   bson.M{"$nin": readIDs},
		"genre": bson.M{"$in": genres},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "ratings.average", Value: -1}}).
		SetLimit(recommendationPoolSize)

	cur, err := database.DB.Collection("books").Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var candidates []models.Book
	if err := cur.All(ctx, &candidates); err != nil {
		return nil, err
	}

	return RankByGenreWeights(candidates, weights), nil
}

// findBooksByID fetches a set of books in a single round trip.
func findBooksByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Book, error) {
	cur, err := database.DB.Collection("books").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	books := make(map[primitive.ObjectID]models.Book, len(ids))
	for cur.Next(ctx) {
		var b models.Book
		if err := cur.Decode(&b); err != nil {
			continue
		}
		books[b.ID] = b
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

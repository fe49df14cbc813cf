package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/bookclubhq/bookclub-backend/internal/database"
	"github.com/bookclubhq/bookclub-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson"
)

// OverviewStats summarises catalog and community activity.
type OverviewStats struct {
	TotalUsers     int64 `json:"total_users"`
	ActiveUsers    int64 `json:"active_users"`
	TotalBooks     int64 `json:"total_books"`
	TotalReviews   int64 `json:"total_reviews"`
	PendingReports int64 `json:"pending_reports"`
}

// GetOverviewStats returns headline counts (admin only). Cached for the
// default cache TTL.
func GetOverviewStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	const cacheKey = "analytics:overview"

	var cached OverviewStats
	if hit, err := services.Cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	var stats OverviewStats
	var err error
	if stats.TotalUsers, err = database.DB.Collection("users").CountDocuments(ctx, bson.M{}); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}
	if stats.ActiveUsers, err = database.DB.Collection("users").CountDocuments(ctx, bson.M{"is_active": true}); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}
	if stats.TotalBooks, err = database.DB.Collection("books").CountDocuments(ctx, bson.M{}); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}
	if stats.TotalReviews, err = database.DB.Collection("reviews").CountDocuments(ctx, bson.M{}); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}
	if stats.PendingReports, err = database.DB.Collection("reports").CountDocuments(ctx, bson.M{"status": "pending"}); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}

	_ = services.Cache.Set(ctx, cacheKey, stats)
	writeJSON(w, http.StatusOK, stats)
}

// GenreStat aggregates per-genre catalog size and rating quality.
type GenreStat struct {
	Genre         string  `bson:"_id" json:"genre"`
	BookCount     int64   `bson:"book_count" json:"book_count"`
	AverageRating float64 `bson:"average_rating" json:"average_rating"`
	ReviewCount   int64   `bson:"review_count" json:"review_count"`
}

// GetGenreStats aggregates book counts and average ratings per genre
// (admin only). Cached for the default cache TTL.
func GetGenreStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	const cacheKey = "analytics:genres"

	var cached []GenreStat
	if hit, err := services.Cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	pipeline := []bson.M{
		{"$unwind": "$genre"},
		{"$group": bson.M{
			"_id":            "$genre",
			"book_count":     bson.M{"$sum": 1},
			"average_rating": bson.M{"$avg": "$ratings.average"},
			"review_count":   bson.M{"$sum": "$ratings.count"},
		}},
		{"$sort": bson.M{"book_count": -1}},
	}

	cursor, err := database.DB.Collection("books").Aggregate(ctx, pipeline)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}
	defer cursor.Close(ctx)

	results := []GenreStat{}
	if err := cursor.All(ctx, &results); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}

	_ = services.Cache.Set(ctx, cacheKey, results)
	writeJSON(w, http.StatusOK, results)
}

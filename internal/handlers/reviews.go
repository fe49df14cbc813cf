package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/bookclubhq/bookclub-backend/internal/database"
	"github.com/bookclubhq/bookclub-backend/internal/middleware"
	"github.com/bookclubhq/bookclub-backend/internal/models"
	"github.com/bookclubhq/bookclub-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReviewRequest struct {
	BookID  string `json:"book_id"`
	Rating  int    `json:"rating"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreateReview posts a review for a book. Each user may review a book
// once; the book's average rating is recalculated after the write.
func CreateReview(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	bookID, err := primitive.ObjectIDFromHex(req.BookID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeError(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var book models.Book
	if err := database.DB.Collection("books").FindOne(ctx, bson.M{"_id": bookID}).Decode(&book); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeError(w, http.StatusNotFound, "Book not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create review")
		return
	}

	now := time.Now()
	review := models.Review{
		ID:        primitive.NewObjectID(),
		User:      user.ID,
		Book:      bookID,
		Rating:    req.Rating,
		Title:     strings.TrimSpace(req.Title),
		Content:   strings.TrimSpace(req.Content),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := database.DB.Collection("reviews").InsertOne(ctx, review); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			writeError(w, http.StatusConflict, "You have already reviewed this book")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create review")
		return
	}

	if err := services.RecalculateBookRating(ctx, bookID); err != nil {
		log.Printf("⚠️ Failed to recalculate rating for book %s: %v", bookID.Hex(), err)
	}

	if book.UploadedBy != primitive.NilObjectID && book.UploadedBy != user.ID {
		services.CreateNotification(ctx, models.Notification{
			Recipient: book.UploadedBy,
			Sender:    &user.ID,
			Type:      models.NotificationNewReview,
			Title:     "New review",
			Message:   user.Name + " reviewed \"" + book.Title + "\"",
			Book:      &bookID,
			Review:    &review.ID,
		})
	}

	writeJSON(w, http.StatusCreated, review)
}

// GetBookReviews lists reviews for a book, newest first, paginated.
func GetBookReviews(w http.ResponseWriter, r *http.Request) {
	bookID, ok := objectIDParam(r, "bookID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	page, limit := paginationParams(r)

	reviews := database.DB.Collection("reviews")
	total, err := reviews.CountDocuments(ctx, bson.M{"book": bookID})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch reviews")
		return
	}

	cursor, err := reviews.Find(ctx, bson.M{"book": bookID}, options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip((page-1)*limit).
		SetLimit(limit))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch reviews")
		return
	}
	defer cursor.Close(ctx)

	results := []models.Review{}
	if err := cursor.All(ctx, &results); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch reviews")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reviews": results,
		"page":    page,
		"pages":   (total + limit - 1) / limit,
		"total":   total,
	})
}

// GetReviewByID returns a single review.
func GetReviewByID(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := objectIDParam(r, "reviewID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var review models.Review
	err := database.DB.Collection("reviews").FindOne(ctx, bson.M{"_id": reviewID}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeError(w, http.StatusNotFound, "Review not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to fetch review")
		return
	}
	writeJSON(w, http.StatusOK, review)
}

// GetMyReviews lists reviews written by the authenticated user.
func GetMyReviews(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection("reviews").Find(ctx,
		bson.M{"user": user.ID},
		options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch reviews")
		return
	}
	defer cursor.Close(ctx)

	results := []models.Review{}
	if err := cursor.All(ctx, &results); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch reviews")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating"`
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// UpdateReview edits a review. Only the author or an admin may edit;
// the book's average rating is recalculated when the rating changes.
func UpdateReview(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}
	reviewID, ok := objectIDParam(r, "reviewID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	var req UpdateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	reviews := database.DB.Collection("reviews")

	var review models.Review
	if err := reviews.FindOne(ctx, bson.M{"_id": reviewID}).Decode(&review); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeError(w, http.StatusNotFound, "Review not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update review")
		return
	}
	if review.User != user.ID && !user.IsAdmin() {
		writeError(w, http.StatusForbidden, "Not authorized for this action")
		return
	}

	update := bson.M{"is_edited": true, "updated_at": time.Now()}
	ratingChanged := false
	if req.Rating != nil {
		if *req.Rating < 1 || *req.Rating > 5 {
			writeError(w, http.StatusBadRequest, "Rating must be between 1 and 5")
			return
		}
		update["rating"] = *req.Rating
		ratingChanged = *req.Rating != review.Rating
	}
	if req.Title != nil {
		update["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		update["content"] = strings.TrimSpace(*req.Content)
	}

	if _, err := reviews.UpdateOne(ctx, bson.M{"_id": reviewID}, bson.M{"$set": update}); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update review")
		return
	}

	if ratingChanged {
		if err := services.RecalculateBookRating(ctx, review.Book); err != nil {
			log.Printf("⚠️ Failed to recalculate rating for book %s: %v", review.Book.Hex(), err)
		}
	}

	var updated models.Review
	if err := reviews.FindOne(ctx, bson.M{"_id": reviewID}).Decode(&updated); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update review")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteReview removes a review. Only the author or an admin may
// delete; the book's average rating is recalculated afterwards.
func DeleteReview(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}
	reviewID, ok := objectIDParam(r, "reviewID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	reviews := database.DB.Collection("reviews")

	var review models.Review
	if err := reviews.FindOne(ctx, bson.M{"_id": reviewID}).Decode(&review); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeError(w, http.StatusNotFound, "Review not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete review")
		return
	}
	if review.User != user.ID && !user.IsAdmin() {
		writeError(w, http.StatusForbidden, "Not authorized for this action")
		return
	}

	if _, err := reviews.DeleteOne(ctx, bson.M{"_id": reviewID}); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete review")
		return
	}

	if err := services.RecalculateBookRating(ctx, review.Book); err != nil {
		log.Printf("⚠️ Failed to recalculate rating for book %s: %v", review.Book.Hex(), err)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Review deleted",
	})
}

// ToggleReviewLike likes or unlikes a review for the current user.
func ToggleReviewLike(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}
	reviewID, ok := objectIDParam(r, "reviewID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	reviews := database.DB.Collection("reviews")

	var review models.Review
	if err := reviews.FindOne(ctx, bson.M{"_id": reviewID}).Decode(&review); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeError(w, http.StatusNotFound, "Review not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to like review")
		return
	}

	liked := false
	for _, id := range review.Likes {
		if id == user.ID {
			liked = true
			break
		}
	}

	var op bson.M
	if liked {
		op = bson.M{"$pull": bson.M{"likes": user.ID}}
	} else {
		op = bson.M{"$addToSet": bson.M{"likes": user.ID}}
	}
	if _, err := reviews.UpdateOne(ctx, bson.M{"_id": reviewID}, op); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to like review")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"liked":   !liked,
	})
}

// MarkReviewHelpful increments the helpful or not-helpful counter.
func MarkReviewHelpful(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := objectIDParam(r, "reviewID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	var req struct {
		Helpful bool `json:"helpful"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	field := "helpful"
	if !req.Helpful {
		field = "not_helpful"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := database.DB.Collection("reviews").UpdateOne(ctx,
		bson.M{"_id": reviewID},
		bson.M{"$inc": bson.M{field: 1}},
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update review")
		return
	}
	if res.MatchedCount == 0 {
		writeError(w, http.StatusNotFound, "Review not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Feedback recorded",
	})
}

// GetFeaturedReviews lists reviews flagged as featured.
func GetFeaturedReviews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection("reviews").Find(ctx,
		bson.M{"is_featured": true},
		options.Find().SetSort(bson.M{"created_at": -1}).SetLimit(10))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch reviews")
		return
	}
	defer cursor.Close(ctx)

	results := []models.Review{}
	if err := cursor.All(ctx, &results); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch reviews")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// SetReviewFeatured toggles the featured flag (moderator only).
func SetReviewFeatured(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := objectIDParam(r, "reviewID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	var req struct {
		Featured bool `json:"featured"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := database.DB.Collection("reviews").UpdateOne(ctx,
		bson.M{"_id": reviewID},
		bson.M{"$set": bson.M{"is_featured": req.Featured, "updated_at": time.Now()}},
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update review")
		return
	}
	if res.MatchedCount == 0 {
		writeError(w, http.StatusNotFound, "Review not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Review updated",
	})
}

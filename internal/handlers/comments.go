package handlers

import (
	"context"
	"encoding/json"
	"errors"
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

type CommentRequest struct {
	BookID   string `json:"book_id"`
	ParentID string `json:"parent_id,omitempty"`
	Content  string `json:"content"`
}

// CreateComment posts a comment on a book, optionally as a reply.
func CreateComment(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	bookID, err := primitive.ObjectIDFromHex(req.BookID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		writeError(w, http.StatusBadRequest, "Comment content is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	count, err := database.DB.Collection("books").CountDocuments(ctx, bson.M{"_id": bookID})
	if err != nil || count == 0 {
		writeError(w, http.StatusNotFound, "Book not found")
		return
	}

	now := time.Now()
	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		User:      user.ID,
		Book:      bookID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var parent models.Comment
	if req.ParentID != "" {
		parentID, err := primitive.ObjectIDFromHex(req.ParentID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid parent comment ID")
			return
		}
		err = database.DB.Collection("comments").FindOne(ctx, bson.M{"_id": parentID}).Decode(&parent)
		if err != nil {
			writeError(w, http.StatusNotFound, "Parent comment not found")
			return
		}
		comment.Parent = &parentID
	}

	if _, err := database.DB.Collection("comments").InsertOne(ctx, comment); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create comment")
		return
	}

	if comment.Parent != nil && parent.User != user.ID {
		services.CreateNotification(ctx, models.Notification{
			Recipient: parent.User,
			Sender:    &user.ID,
			Type:      models.NotificationReply,
			Title:     "New reply",
			Message:   user.Name + " replied to your comment",
			Book:      &bookID,
		})
	}

	writeJSON(w, http.StatusCreated, comment)
}

// GetBookComments lists comments on a book, newest first.
func GetBookComments(w http.ResponseWriter, r *http.Request) {
	bookID, ok := objectIDParam(r, "bookID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection("comments").Find(ctx,
		bson.M{"book": bookID},
		options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch comments")
		return
	}
	defer cursor.Close(ctx)

	results := []models.Comment{}
	if err := cursor.All(ctx, &results); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch comments")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

type UpdateCommentRequest struct {
	Content string `json:"content"`
}

// UpdateComment edits a comment. Only the author may edit.
func UpdateComment(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}
	commentID, ok := objectIDParam(r, "commentID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid comment ID")
		return
	}

	var req UpdateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		writeError(w, http.StatusBadRequest, "Comment content is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := database.DB.Collection("comments").UpdateOne(ctx,
		bson.M{"_id": commentID, "user": user.ID},
		bson.M{"$set": bson.M{"content": content, "updated_at": time.Now()}},
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update comment")
		return
	}
	if res.MatchedCount == 0 {
		writeError(w, http.StatusNotFound, "Comment not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Comment updated",
	})
}

// DeleteComment removes a comment and its replies. The author or a
// moderator may delete.
func DeleteComment(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}
	commentID, ok := objectIDParam(r, "commentID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid comment ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	comments := database.DB.Collection("comments")

	var comment models.Comment
	if err := comments.FindOne(ctx, bson.M{"_id": commentID}).Decode(&comment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeError(w, http.StatusNotFound, "Comment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete comment")
		return
	}
	if comment.User != user.ID && !user.IsModerator() {
		writeError(w, http.StatusForbidden, "Not authorized for this action")
		return
	}

	if _, err := comments.DeleteOne(ctx, bson.M{"_id": commentID}); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete comment")
		return
	}
	// Replies to a deleted comment go with it.
	if _, err := comments.DeleteMany(ctx, bson.M{"parent": commentID}); err != nil {
		writeError(w, http.StatusInternalServerError, "Comment deleted but replies could not be removed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Comment deleted",
	})
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/bookclubhq/bookclub-backend/internal/database"
	"github.com/bookclubhq/bookclub-backend/internal/middleware"
	"github.com/bookclubhq/bookclub-backend/internal/models"
	"github.com/bookclubhq/bookclub-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetNotifications lists the caller's notifications, newest first.
func GetNotifications(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{"recipient": user.ID}
	if r.URL.Query().Get("unread") == "true" {
		filter["is_read"] = false
	}

	cursor, err := database.DB.Collection("notifications").Find(ctx, filter,
		options.Find().SetSort(bson.M{"created_at": -1}).SetLimit(100))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch notifications")
		return
	}
	defer cursor.Close(ctx)

	results := []models.Notification{}
	if err := cursor.All(ctx, &results); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch notifications")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// MarkNotificationRead marks one of the caller's notifications as read.
func MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}
	notificationID, ok := objectIDParam(r, "notificationID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := database.DB.Collection("notifications").UpdateOne(ctx,
		bson.M{"_id": notificationID, "recipient": user.ID},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update notification")
		return
	}
	if res.MatchedCount == 0 {
		writeError(w, http.StatusNotFound, "Notification not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Notification marked as read",
	})
}

// MarkAllNotificationsRead marks every unread notification as read.
func MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := database.DB.Collection("notifications").UpdateMany(ctx,
		bson.M{"recipient": user.ID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update notifications")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"updated": res.ModifiedCount,
	})
}

// DeleteNotification removes one of the caller's notifications.
func DeleteNotification(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}
	notificationID, ok := objectIDParam(r, "notificationID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := database.DB.Collection("notifications").DeleteOne(ctx,
		bson.M{"_id": notificationID, "recipient": user.ID})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete notification")
		return
	}
	if res.DeletedCount == 0 {
		writeError(w, http.StatusNotFound, "Notification not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Notification deleted",
	})
}

type BroadcastNotificationRequest struct {
	Title   string   `json:"title"`
	Message string   `json:"message"`
	UserIDs []string `json:"user_ids,omitempty"`
}

// BroadcastNotification sends a system notification to the named users,
// or to every active user when none are named (admin only).
func BroadcastNotification(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.UserFrom(r.Context())
	if admin == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}

	var req BroadcastNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "Title and message are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var recipients []primitive.ObjectID
	if len(req.UserIDs) > 0 {
		for _, raw := range req.UserIDs {
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid user ID: "+raw)
				return
			}
			recipients = append(recipients, id)
		}
	} else {
		cursor, err := database.DB.Collection("users").Find(ctx,
			bson.M{"is_active": true},
			options.Find().SetProjection(bson.M{"_id": 1}))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to send notifications")
			return
		}
		defer cursor.Close(ctx)
		for cursor.Next(ctx) {
			var doc struct {
				ID primitive.ObjectID `bson:"_id"`
			}
			if err := cursor.Decode(&doc); err == nil {
				recipients = append(recipients, doc.ID)
			}
		}
	}

	for _, recipient := range recipients {
		services.CreateNotification(ctx, models.Notification{
			Recipient: recipient,
			Sender:    &admin.ID,
			Type:      models.NotificationSystem,
			Title:     strings.TrimSpace(req.Title),
			Message:   strings.TrimSpace(req.Message),
		})
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"sent":    len(recipients),
	})
}

package services

import (
	"context"
	"log"
	"time"

	"github.com/bookclubhq/bookclub-backend/internal/database"
	"github.com/bookclubhq/bookclub-backend/internal/models"
)

// CreateNotification inserts a notification for a user. Failures are logged,
// not propagated: a missed notification must never fail the write that
// triggered it.
func CreateNotification(ctx context.Context, n models.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if _, err := database.DB.Collection("notifications").InsertOne(ctx, n); err != nil {
		log.Printf("failed to create notification for %s: %v", n.Recipient.Hex(), err)
	}
}

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

type ReportRequest struct {
	ItemType    string `json:"item_type"`
	ItemID      string `json:"item_id"`
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

var reportableTypes = map[string]string{
	"review":  "reviews",
	"comment": "comments",
	"user":    "users",
}

// CreateReport files a complaint about a review, comment or user.
func CreateReport(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}

	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	collection, valid := reportableTypes[req.ItemType]
	if !valid {
		writeError(w, http.StatusBadRequest, "Item type must be review, comment or user")
		return
	}
	itemID, err := primitive.ObjectIDFromHex(req.ItemID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}
	if strings.TrimSpace(req.Reason) == "" {
		writeError(w, http.StatusBadRequest, "Reason is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	count, err := database.DB.Collection(collection).CountDocuments(ctx, bson.M{"_id": itemID})
	if err != nil || count == 0 {
		writeError(w, http.StatusNotFound, "Reported item not found")
		return
	}

	report := models.Report{
		ID:           primitive.NewObjectID(),
		Reporter:     user.ID,
		ItemType:     req.ItemType,
		ReportedItem: itemID,
		Reason:       strings.TrimSpace(req.Reason),
		Description:  strings.TrimSpace(req.Description),
		Status:       models.ReportStatusPending,
		CreatedAt:    time.Now(),
	}

	if _, err := database.DB.Collection("reports").InsertOne(ctx, report); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create report")
		return
	}

	settings := loadModerationSettings(ctx)
	if settings.NotifyOnReport {
		notifyModerators(ctx, user.ID, report)
	}

	writeJSON(w, http.StatusCreated, report)
}

func notifyModerators(ctx context.Context, reporter primitive.ObjectID, report models.Report) {
	cursor, err := database.DB.Collection("users").Find(ctx,
		bson.M{"role": bson.M{"$in": []models.Role{models.RoleModerator, models.RoleAdmin}}},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		services.CreateNotification(ctx, models.Notification{
			Recipient: doc.ID,
			Sender:    &reporter,
			Type:      models.NotificationSystem,
			Title:     "New report",
			Message:   "A " + report.ItemType + " was reported: " + report.Reason,
		})
	}
}

// GetReports lists reports, optionally filtered by status (moderator only).
func GetReports(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	cursor, err := database.DB.Collection("reports").Find(ctx, filter,
		options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch reports")
		return
	}
	defer cursor.Close(ctx)

	results := []models.Report{}
	if err := cursor.All(ctx, &results); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch reports")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// GetReportByID returns a single report (moderator only).
func GetReportByID(w http.ResponseWriter, r *http.Request) {
	reportID, ok := objectIDParam(r, "reportID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid report ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var report models.Report
	err := database.DB.Collection("reports").FindOne(ctx, bson.M{"_id": reportID}).Decode(&report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeError(w, http.StatusNotFound, "Report not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to fetch report")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type ResolveReportRequest struct {
	Status     string `json:"status"`
	Resolution string `json:"resolution"`
}

// ResolveReport moves a report to a terminal or reviewing status
// (moderator only).
func ResolveReport(w http.ResponseWriter, r *http.Request) {
	moderator, _ := middleware.UserFrom(r.Context())
	if moderator == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}
	reportID, ok := objectIDParam(r, "reportID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid report ID")
		return
	}

	var req ResolveReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	status := models.ReportStatus(req.Status)
	switch status {
	case models.ReportStatusReviewing, models.ReportStatusResolved, models.ReportStatusDismissed:
	default:
		writeError(w, http.StatusBadRequest, "Status must be reviewing, resolved or dismissed")
		return
	}

	update := bson.M{"status": status}
	if status == models.ReportStatusResolved || status == models.ReportStatusDismissed {
		now := time.Now()
		update["resolution"] = strings.TrimSpace(req.Resolution)
		update["resolved_by"] = moderator.ID
		update["resolved_at"] = now
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := database.DB.Collection("reports").UpdateOne(ctx,
		bson.M{"_id": reportID}, bson.M{"$set": update})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update report")
		return
	}
	if res.MatchedCount == 0 {
		writeError(w, http.StatusNotFound, "Report not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Report updated",
	})
}

type WarningRequest struct {
	UserID      string `json:"user_id"`
	Reason      string `json:"reason"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	ExpiresIn   string `json:"expires_in,omitempty"` // duration string such as "720h"
}

// IssueWarning records a warning against a user and notifies them
// (moderator only). Hitting the configured warning limit deactivates
// the account.
func IssueWarning(w http.ResponseWriter, r *http.Request) {
	moderator, _ := middleware.UserFrom(r.Context())
	if moderator == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}

	var req WarningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	if strings.TrimSpace(req.Reason) == "" {
		writeError(w, http.StatusBadRequest, "Reason is required")
		return
	}
	severity := models.WarningSeverity(req.Severity)
	switch severity {
	case models.WarningSeverityLow, models.WarningSeverityMedium, models.WarningSeverityHigh:
	case "":
		severity = models.WarningSeverityLow
	default:
		writeError(w, http.StatusBadRequest, "Severity must be low, medium or high")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var target models.User
	err = database.DB.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&target)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to issue warning")
		return
	}

	warning := models.Warning{
		ID:          primitive.NewObjectID(),
		User:        userID,
		IssuedBy:    moderator.ID,
		Reason:      strings.TrimSpace(req.Reason),
		Description: strings.TrimSpace(req.Description),
		Severity:    severity,
		CreatedAt:   time.Now(),
	}
	if req.ExpiresIn != "" {
		d, err := time.ParseDuration(req.ExpiresIn)
		if err != nil || d <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid expiry duration")
			return
		}
		expires := time.Now().Add(d)
		warning.ExpiresAt = &expires
	}

	if _, err := database.DB.Collection("warnings").InsertOne(ctx, warning); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue warning")
		return
	}

	services.CreateNotification(ctx, models.Notification{
		Recipient: userID,
		Sender:    &moderator.ID,
		Type:      models.NotificationWarning,
		Title:     "Warning from moderators",
		Message:   warning.Reason,
	})

	settings := loadModerationSettings(ctx)
	if settings.MaxWarnings > 0 {
		active, err := database.DB.Collection("warnings").CountDocuments(ctx, bson.M{
			"user": userID,
			"$or": []bson.M{
				{"expires_at": bson.M{"$exists": false}},
				{"expires_at": bson.M{"$gt": time.Now()}},
			},
		})
		if err == nil && active >= int64(settings.MaxWarnings) {
			_, _ = database.DB.Collection("users").UpdateOne(ctx,
				bson.M{"_id": userID},
				bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}})
		}
	}

	writeJSON(w, http.StatusCreated, warning)
}

// GetUserWarnings lists warnings issued to a user (moderator only).
func GetUserWarnings(w http.ResponseWriter, r *http.Request) {
	userID, ok := objectIDParam(r, "userID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection("warnings").Find(ctx,
		bson.M{"user": userID},
		options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch warnings")
		return
	}
	defer cursor.Close(ctx)

	results := []models.Warning{}
	if err := cursor.All(ctx, &results); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch warnings")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func loadModerationSettings(ctx context.Context) models.ModerationSettings {
	// Singleton with sane defaults when the document is missing.
	settings := models.ModerationSettings{
		AutoModeration: true,
		MaxWarnings:    3,
		NotifyOnReport: true,
	}
	_ = database.DB.Collection("moderation_settings").FindOne(ctx, bson.M{}).Decode(&settings)
	return settings
}

// GetModerationSettings returns the singleton settings document
// (moderator only).
func GetModerationSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	writeJSON(w, http.StatusOK, loadModerationSettings(ctx))
}

// UpdateModerationSettings upserts the singleton settings document
// (admin only).
func UpdateModerationSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.ModerationSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if settings.MaxWarnings < 0 {
		writeError(w, http.StatusBadRequest, "Max warnings must not be negative")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	settings.UpdatedAt = time.Now()
	_, err := database.DB.Collection("moderation_settings").UpdateOne(ctx,
		bson.M{},
		bson.M{"$set": bson.M{
			"auto_moderation":    settings.AutoModeration,
			"reviews_need_login": settings.ReviewsNeedLogin,
			"max_warnings":       settings.MaxWarnings,
			"notify_on_report":   settings.NotifyOnReport,
			"updated_at":         settings.UpdatedAt,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// BanUser deactivates a user's account (moderator only).
func BanUser(w http.ResponseWriter, r *http.Request) {
	setUserActive(w, r, false, "User banned")
}

// UnbanUser reactivates a user's account (moderator only).
func UnbanUser(w http.ResponseWriter, r *http.Request) {
	setUserActive(w, r, true, "User unbanned")
}

func setUserActive(w http.ResponseWriter, r *http.Request, active bool, message string) {
	userID, ok := objectIDParam(r, "userID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := database.DB.Collection("users").UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"is_active": active, "updated_at": time.Now()}})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}
	if res.MatchedCount == 0 {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": message,
	})
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/bookclubhq/bookclub-backend/internal/database"
	"github.com/bookclubhq/bookclub-backend/internal/middleware"
	"github.com/bookclubhq/bookclub-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

const maxUploadBytes = 10 << 20

// Upload stores an arbitrary image and returns its key and URL. The optional
// folder form field namespaces the object; only known folders are accepted.
func Upload(w http.ResponseWriter, r *http.Request) {
	if blobStore == nil {
		writeError(w, http.StatusServiceUnavailable, "Image uploads are not configured")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Image file is required")
		return
	}
	file.Close()

	folder := r.FormValue("folder")
	switch folder {
	case "", "uploads":
		folder = "uploads"
	case "profile-pictures", "book-covers":
	default:
		writeError(w, http.StatusBadRequest, "Unknown upload folder")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	key, url, err := blobStore.PutFromHeader(ctx, header, folder)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to upload image")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"key": key,
		"url": url,
	})
}

// UploadProfilePicture stores a profile image and attaches it to the
// authenticated user, replacing any previous one.
func UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	if blobStore == nil {
		writeError(w, http.StatusServiceUnavailable, "Image uploads are not configured")
		return
	}
	user, _ := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Image file is required")
		return
	}
	file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	key, url, err := blobStore.PutFromHeader(ctx, header, "profile-pictures")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to upload image")
		return
	}

	if user.ProfilePicture.Key != "" {
		_ = blobStore.Delete(ctx, user.ProfilePicture.Key)
	}

	picture := models.ProfilePicture{Key: key, URL: url}
	_, err = database.DB.Collection("users").UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"profile_picture": picture, "updated_at": time.Now()}})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to upload image")
		return
	}

	writeJSON(w, http.StatusOK, picture)
}

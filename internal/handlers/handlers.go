package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/bookclubhq/bookclub-backend/internal/auth"
	"github.com/bookclubhq/bookclub-backend/internal/config"
	"github.com/bookclubhq/bookclub-backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Package-wide collaborators, wired once from main.
var (
	tokenManager *auth.Manager
	blobStore    *services.BlobStore
)

// InitTokenManager wires the token service used by register/login/refresh.
func InitTokenManager(tm *auth.Manager) {
	tokenManager = tm
}

// InitBlobStore wires the Cloudinary-backed blob store used by uploads.
func InitBlobStore(cfg *config.Config) error {
	store, err := services.NewBlobStore(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return err
	}
	blobStore = store
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// objectIDParam parses the named chi URL parameter as an ObjectID.
func objectIDParam(r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	return id, err == nil
}

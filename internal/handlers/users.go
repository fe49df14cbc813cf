package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/bookclubhq/bookclub-backend/internal/auth"
	"github.com/bookclubhq/bookclub-backend/internal/database"
	"github.com/bookclubhq/bookclub-backend/internal/middleware"
	"github.com/bookclubhq/bookclub-backend/internal/models"
	"github.com/bookclubhq/bookclub-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type AuthResponse struct {
	ID           string `json:"_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// credentialsMatch checks an entered password against the user's stored
// bcrypt hash. The entered password goes first; the stored hash second.
func credentialsMatch(user *models.User, password string) bool {
	return auth.CheckPassword(password, user.Password)
}

func authResponse(user *models.User, pair auth.TokenPair) AuthResponse {
	return AuthResponse{
		ID:           user.ID.Hex(),
		Name:         user.Name,
		Email:        user.Email,
		Role:         string(user.Role),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}
}

// Register creates a new account and returns a fresh token pair.
func Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Please provide name, email and password")
		return
	}
	if !emailRegex.MatchString(req.Email) {
		writeError(w, http.StatusBadRequest, "Please provide a valid email address")
		return
	}
	if reasons := auth.ValidatePasswordComplexity(req.Password); len(reasons) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Password does not meet requirements",
			"errors":  reasons,
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	users := database.DB.Collection("users")

	count, err := users.CountDocuments(ctx, bson.M{"email": req.Email})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}
	if count > 0 {
		writeError(w, http.StatusConflict, "User with this email already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	now := time.Now()
	user := models.User{
		ID:          primitive.NewObjectID(),
		Name:        req.Name,
		Email:       req.Email,
		Password:    hash,
		Role:        models.RoleUser,
		IsActive:    true,
		Preferences: models.DefaultPreferences(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			writeError(w, http.StatusConflict, "User with this email already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	pair, err := tokenManager.Issue(user.ID.Hex())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, authResponse(&user, pair))
}

// Login verifies credentials and returns a fresh token pair.
func Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Please provide email and password")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err := database.DB.Collection("users").FindOne(ctx, bson.M{"email": req.Email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeError(w, http.StatusNotFound, "User not found. Please check your email or register.")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	if !credentialsMatch(&user, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid password. Please try again.")
		return
	}
	if !user.IsActive {
		writeError(w, http.StatusForbidden, "Your account has been deactivated. Please contact support.")
		return
	}

	pair, err := tokenManager.Issue(user.ID.Hex())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	writeJSON(w, http.StatusOK, authResponse(&user, pair))
}

// RefreshToken exchanges a valid refresh token for a new token pair.
func RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	claims, err := tokenManager.Verify(req.RefreshToken, auth.TokenKindRefresh)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	if err := database.DB.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}
	if !user.IsActive {
		writeError(w, http.StatusForbidden, "Your account has been deactivated. Please contact support.")
		return
	}

	pair, err := tokenManager.Issue(user.ID.Hex())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to refresh token")
		return
	}

	writeJSON(w, http.StatusOK, authResponse(&user, pair))
}

// GetProfile returns the authenticated user's profile.
func GetProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type UpdateProfileRequest struct {
	Name     *string         `json:"name"`
	Email    *string         `json:"email"`
	Password *string         `json:"password"`
	Address  *models.Address `json:"address"`
}

// UpdateProfile applies partial updates to the authenticated user.
func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	update := bson.M{"updated_at": time.Now()}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		update["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if !emailRegex.MatchString(email) {
			writeError(w, http.StatusBadRequest, "Please provide a valid email address")
			return
		}
		update["email"] = email
	}
	if req.Address != nil {
		update["address"] = *req.Address
	}
	if req.Password != nil {
		if reasons := auth.ValidatePasswordComplexity(*req.Password); len(reasons) > 0 {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"success": false,
				"message": "Password does not meet requirements",
				"errors":  reasons,
			})
			return
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to update profile")
			return
		}
		update["password"] = hash
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	users := database.DB.Collection("users")
	if _, err := users.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": update}); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			writeError(w, http.StatusConflict, "User with this email already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	var updated models.User
	if err := users.FindOne(ctx, bson.M{"_id": user.ID}).Decode(&updated); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// GetPreferences returns the authenticated user's preferences.
func GetPreferences(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}
	writeJSON(w, http.StatusOK, user.Preferences)
}

// UpdatePreferences replaces the authenticated user's preferences.
func UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}

	var prefs models.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	_, err := database.DB.Collection("users").UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"preferences": prefs, "updated_at": time.Now()}},
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update preferences")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

type FavoriteRequest struct {
	BookID string `json:"book_id"`
}

// AddFavorite adds a book to the authenticated user's favorites.
func AddFavorite(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}

	var req FavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	bookID, err := primitive.ObjectIDFromHex(req.BookID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	count, err := database.DB.Collection("books").CountDocuments(ctx, bson.M{"_id": bookID})
	if err != nil || count == 0 {
		writeError(w, http.StatusNotFound, "Book not found")
		return
	}

	for _, fav := range user.Favorites {
		if fav == bookID {
			writeError(w, http.StatusConflict, "Book already in favorites")
			return
		}
	}

	_, err = database.DB.Collection("users").UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$addToSet": bson.M{"favorites": bookID}, "$set": bson.M{"updated_at": time.Now()}},
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to add favorite")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Book added to favorites",
	})
}

// RemoveFavorite removes a book from the authenticated user's favorites.
func RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}
	bookID, ok := objectIDParam(r, "bookID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	found := false
	for _, fav := range user.Favorites {
		if fav == bookID {
			found = true
			break
		}
	}
	if !found {
		writeError(w, http.StatusNotFound, "Book not in favorites")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	_, err := database.DB.Collection("users").UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$pull": bson.M{"favorites": bookID}, "$set": bson.M{"updated_at": time.Now()}},
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to remove favorite")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Book removed from favorites",
	})
}

type BookmarkRequest struct {
	BookID string `json:"book_id"`
	Page   int    `json:"page"`
	Note   string `json:"note"`
}

// AddBookmark records a page bookmark for the authenticated user.
func AddBookmark(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}

	var req BookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	bookID, err := primitive.ObjectIDFromHex(req.BookID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}
	if req.Page < 0 {
		writeError(w, http.StatusBadRequest, "Page must not be negative")
		return
	}

	bookmark := models.Bookmark{
		ID:        primitive.NewObjectID(),
		Book:      bookID,
		Page:      req.Page,
		Note:      req.Note,
		CreatedAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	_, err = database.DB.Collection("users").UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$push": bson.M{"bookmarks": bookmark}, "$set": bson.M{"updated_at": time.Now()}},
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to add bookmark")
		return
	}
	writeJSON(w, http.StatusCreated, bookmark)
}

type UpdateBookmarkRequest struct {
	Page *int    `json:"page"`
	Note *string `json:"note"`
}

// UpdateBookmark changes the page or note of an existing bookmark.
func UpdateBookmark(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}
	bookmarkID, ok := objectIDParam(r, "bookmarkID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid bookmark ID")
		return
	}

	var req UpdateBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	update := bson.M{"updated_at": time.Now()}
	if req.Page != nil {
		if *req.Page < 0 {
			writeError(w, http.StatusBadRequest, "Page must not be negative")
			return
		}
		update["bookmarks.$.page"] = *req.Page
	}
	if req.Note != nil {
		update["bookmarks.$.note"] = *req.Note
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := database.DB.Collection("users").UpdateOne(ctx,
		bson.M{"_id": user.ID, "bookmarks._id": bookmarkID},
		bson.M{"$set": update},
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update bookmark")
		return
	}
	if res.MatchedCount == 0 {
		writeError(w, http.StatusNotFound, "Bookmark not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Bookmark updated",
	})
}

// RemoveBookmark deletes a bookmark from the authenticated user.
func RemoveBookmark(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}
	bookmarkID, ok := objectIDParam(r, "bookmarkID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid bookmark ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := database.DB.Collection("users").UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$pull": bson.M{"bookmarks": bson.M{"_id": bookmarkID}}, "$set": bson.M{"updated_at": time.Now()}},
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to remove bookmark")
		return
	}
	if res.ModifiedCount == 0 {
		writeError(w, http.StatusNotFound, "Bookmark not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Bookmark removed",
	})
}

type ReadingProgressRequest struct {
	BookID    string `json:"book_id"`
	LastPage  int    `json:"last_page"`
	Completed bool   `json:"completed"`
}

// UpdateReadingProgress upserts the reading-history entry for a book.
// Completed reads bump the read count, which feeds the recommendation
// genre weights.
func UpdateReadingProgress(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}

	var req ReadingProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	bookID, err := primitive.ObjectIDFromHex(req.BookID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}
	if req.LastPage < 0 {
		writeError(w, http.StatusBadRequest, "Page must not be negative")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	users := database.DB.Collection("users")
	now := time.Now()

	update := bson.M{
		"$set": bson.M{
			"reading_history.$.last_page": req.LastPage,
			"reading_history.$.last_read": now,
			"updated_at":                  now,
		},
	}
	if req.Completed {
		update["$inc"] = bson.M{"reading_history.$.read_count": 1}
	}

	res, err := users.UpdateOne(ctx,
		bson.M{"_id": user.ID, "reading_history.book": bookID},
		update,
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update reading progress")
		return
	}

	if res.MatchedCount == 0 {
		// First interaction with this book: create the entry.
		count, err := database.DB.Collection("books").CountDocuments(ctx, bson.M{"_id": bookID})
		if err != nil || count == 0 {
			writeError(w, http.StatusNotFound, "Book not found")
			return
		}
		entry := models.ReadingHistoryEntry{
			Book:     bookID,
			LastPage: req.LastPage,
			LastRead: now,
		}
		if req.Completed {
			entry.ReadCount = 1
		}
		_, err = users.UpdateOne(ctx,
			bson.M{"_id": user.ID},
			bson.M{"$push": bson.M{"reading_history": entry}, "$set": bson.M{"updated_at": now}},
		)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to update reading progress")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Reading progress updated",
	})
}

// GetRecommendations returns personalised book recommendations.
func GetRecommendations(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	books, err := services.RecommendBooks(ctx, user.ID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get recommendations")
		return
	}
	writeJSON(w, http.StatusOK, books)
}

// GetUsers lists all users (admin only). Passwords are excluded by the
// model's JSON tags.
func GetUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection("users").Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GetUserByID returns a single user (admin only).
func GetUserByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := objectIDParam(r, "userID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err := database.DB.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to fetch user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type AdminUpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// UpdateUser lets an admin change a user's role, status or identity fields.
func UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := objectIDParam(r, "userID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req AdminUpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	update := bson.M{"updated_at": time.Now()}
	if req.Name != nil {
		update["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if !emailRegex.MatchString(email) {
			writeError(w, http.StatusBadRequest, "Please provide a valid email address")
			return
		}
		update["email"] = email
	}
	if req.Role != nil {
		role := models.Role(*req.Role)
		if role != models.RoleUser && role != models.RoleModerator && role != models.RoleAdmin {
			writeError(w, http.StatusBadRequest, "Invalid role")
			return
		}
		update["role"] = role
	}
	if req.IsActive != nil {
		update["is_active"] = *req.IsActive
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	users := database.DB.Collection("users")
	res, err := users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": update})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}
	if res.MatchedCount == 0 {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	var updated models.User
	if err := users.FindOne(ctx, bson.M{"_id": userID}).Decode(&updated); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteUser removes a user account (admin only).
func DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := objectIDParam(r, "userID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := database.DB.Collection("users").DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	if res.DeletedCount == 0 {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "User deleted",
	})
}

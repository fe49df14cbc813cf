package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bookclubhq/bookclub-backend/internal/database"
	"github.com/bookclubhq/bookclub-backend/internal/middleware"
	"github.com/bookclubhq/bookclub-backend/internal/models"
	"github.com/bookclubhq/bookclub-backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultBookPageSize = 20

func paginationParams(r *http.Request) (page, limit int64) {
	page = 1
	limit = defaultBookPageSize
	if p, err := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	return page, limit
}

// GetBooks lists books with optional keyword and genre filters.
func GetBooks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if keyword := strings.TrimSpace(r.URL.Query().Get("keyword")); keyword != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(keyword), Options: "i"}
		filter["$or"] = []bson.M{
			{"title": pattern},
			{"author": pattern},
		}
	}
	if genre := strings.TrimSpace(r.URL.Query().Get("genre")); genre != "" {
		filter["genre"] = genre
	}

	page, limit := paginationParams(r)

	books := database.DB.Collection("books")
	total, err := books.CountDocuments(ctx, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch books")
		return
	}

	cursor, err := books.Find(ctx, filter, options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip((page-1)*limit).
		SetLimit(limit))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch books")
		return
	}
	defer cursor.Close(ctx)

	results := []models.Book{}
	if err := cursor.All(ctx, &results); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch books")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"books": results,
		"page":  page,
		"pages": (total + limit - 1) / limit,
		"total": total,
	})
}

// GetBookByID returns a single book.
func GetBookByID(w http.ResponseWriter, r *http.Request) {
	bookID, ok := objectIDParam(r, "bookID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var book models.Book
	err := database.DB.Collection("books").FindOne(ctx, bson.M{"_id": bookID}).Decode(&book)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeError(w, http.StatusNotFound, "Book not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to fetch book")
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// SearchBooks runs a text search across title, author, description,
// genre and tags, ranked by text score.
func SearchBooks(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "Search query is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection("books").Find(ctx,
		bson.M{"$text": bson.M{"$search": query}},
		options.Find().
			SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}}).
			SetSort(bson.M{"score": bson.M{"$meta": "textScore"}}).
			SetLimit(50))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to search books")
		return
	}
	defer cursor.Close(ctx)

	results := []models.Book{}
	if err := cursor.All(ctx, &results); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to search books")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// GetBooksByGenre lists books matching the genre path parameter.
func GetBooksByGenre(w http.ResponseWriter, r *http.Request) {
	genre := chi.URLParam(r, "genre")
	if genre == "" {
		writeError(w, http.StatusBadRequest, "Genre is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection("books").Find(ctx,
		bson.M{"genre": genre},
		options.Find().SetSort(bson.M{"ratings.average": -1}).SetLimit(50))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch books")
		return
	}
	defer cursor.Close(ctx)

	results := []models.Book{}
	if err := cursor.All(ctx, &results); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch books")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// GetBooksByAuthor lists books by the given author.
func GetBooksByAuthor(w http.ResponseWriter, r *http.Request) {
	author := chi.URLParam(r, "author")
	if author == "" {
		writeError(w, http.StatusBadRequest, "Author is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection("books").Find(ctx,
		bson.M{"author": primitive.Regex{Pattern: regexp.QuoteMeta(author), Options: "i"}},
		options.Find().SetSort(bson.M{"publication_year": -1}).SetLimit(50))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch books")
		return
	}
	defer cursor.Close(ctx)

	results := []models.Book{}
	if err := cursor.All(ctx, &results); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch books")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// GetNewReleases lists the most recently added books.
func GetNewReleases(w http.ResponseWriter, r *http.Request) {
	listBooksSorted(w, r, "books:new-releases", bson.M{"created_at": -1}, 10)
}

// GetBestsellers lists books flagged as bestsellers, best rated first.
func GetBestsellers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection("books").Find(ctx,
		bson.M{"features.is_bestseller": true},
		options.Find().SetSort(bson.M{"ratings.average": -1}).SetLimit(10))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch books")
		return
	}
	defer cursor.Close(ctx)

	results := []models.Book{}
	if err := cursor.All(ctx, &results); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch books")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// GetTopBooks lists the highest-rated books. Results are cached.
func GetTopBooks(w http.ResponseWriter, r *http.Request) {
	listBooksSorted(w, r, "books:top", bson.M{"ratings.average": -1}, 10)
}

func listBooksSorted(w http.ResponseWriter, r *http.Request, cacheKey string, sort bson.M, limit int64) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var cached []models.Book
	if hit, err := services.Cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	cursor, err := database.DB.Collection("books").Find(ctx, bson.M{},
		options.Find().SetSort(sort).SetLimit(limit))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch books")
		return
	}
	defer cursor.Close(ctx)

	results := []models.Book{}
	if err := cursor.All(ctx, &results); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch books")
		return
	}

	_ = services.Cache.Set(ctx, cacheKey, results)
	writeJSON(w, http.StatusOK, results)
}

// GetGenres returns the distinct genres across the catalog.
func GetGenres(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	genres, err := database.DB.Collection("books").Distinct(ctx, "genre", bson.M{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch genres")
		return
	}
	writeJSON(w, http.StatusOK, genres)
}

type BookRequest struct {
	Title           string              `json:"title"`
	Author          string              `json:"author"`
	Description     string              `json:"description"`
	Genre           []string            `json:"genre"`
	ISBN            string              `json:"isbn"`
	PublicationYear int                 `json:"publication_year"`
	Publisher       string              `json:"publisher"`
	PageCount       int                 `json:"page_count"`
	Language        string              `json:"language"`
	Availability    bool                `json:"availability"`
	Tags            []string            `json:"tags"`
	Features        models.BookFeatures `json:"features"`
}

// CreateBook adds a book to the catalog (admin only).
func CreateBook(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}

	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Author) == "" {
		writeError(w, http.StatusBadRequest, "Title and author are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	now := time.Now()
	book := models.Book{
		ID:              primitive.NewObjectID(),
		Title:           strings.TrimSpace(req.Title),
		Author:          strings.TrimSpace(req.Author),
		Description:     req.Description,
		Genre:           req.Genre,
		ISBN:            req.ISBN,
		PublicationYear: req.PublicationYear,
		Publisher:       req.Publisher,
		PageCount:       req.PageCount,
		Language:        req.Language,
		Availability:    req.Availability,
		Tags:            req.Tags,
		Features:        req.Features,
		UploadedBy:      user.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := database.DB.Collection("books").InsertOne(ctx, book); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			writeError(w, http.StatusConflict, "A book with this ISBN already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create book")
		return
	}

	invalidateBookCaches(ctx)
	writeJSON(w, http.StatusCreated, book)
}

// UpdateBook applies partial updates to a book (admin only).
func UpdateBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := objectIDParam(r, "bookID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	var req map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	update := bson.M{"updated_at": time.Now()}
	for _, field := range []string{"title", "author", "description", "genre", "isbn", "publication_year", "publisher", "page_count", "language", "availability", "tags", "features"} {
		if v, ok := req[field]; ok {
			update[field] = v
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	books := database.DB.Collection("books")
	res, err := books.UpdateOne(ctx, bson.M{"_id": bookID}, bson.M{"$set": update})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update book")
		return
	}
	if res.MatchedCount == 0 {
		writeError(w, http.StatusNotFound, "Book not found")
		return
	}

	var updated models.Book
	if err := books.FindOne(ctx, bson.M{"_id": bookID}).Decode(&updated); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update book")
		return
	}

	invalidateBookCaches(ctx)
	writeJSON(w, http.StatusOK, updated)
}

// DeleteBook removes a book and its reviews (admin only).
func DeleteBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := objectIDParam(r, "bookID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var book models.Book
	err := database.DB.Collection("books").FindOneAndDelete(ctx, bson.M{"_id": bookID}).Decode(&book)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeError(w, http.StatusNotFound, "Book not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete book")
		return
	}

	if _, err := database.DB.Collection("reviews").DeleteMany(ctx, bson.M{"book": bookID}); err != nil {
		// Orphaned reviews are harmless but worth a warning.
		writeError(w, http.StatusInternalServerError, "Book deleted but reviews could not be removed")
		return
	}

	if blobStore != nil && book.CoverImage.Key != "" {
		_ = blobStore.Delete(ctx, book.CoverImage.Key)
	}

	invalidateBookCaches(ctx)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Book deleted",
	})
}

// UploadBookCover stores a cover image and attaches it to the book.
func UploadBookCover(w http.ResponseWriter, r *http.Request) {
	if blobStore == nil {
		writeError(w, http.StatusServiceUnavailable, "Image uploads are not configured")
		return
	}
	bookID, ok := objectIDParam(r, "bookID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
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

	books := database.DB.Collection("books")

	var book models.Book
	if err := books.FindOne(ctx, bson.M{"_id": bookID}).Decode(&book); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeError(w, http.StatusNotFound, "Book not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to upload cover")
		return
	}

	key, url, err := blobStore.PutFromHeader(ctx, header, "book-covers")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to upload cover")
		return
	}

	// Replace the old cover after the new one is stored.
	if book.CoverImage.Key != "" {
		_ = blobStore.Delete(ctx, book.CoverImage.Key)
	}

	cover := models.CoverImage{Key: key, URL: url}
	_, err = books.UpdateOne(ctx, bson.M{"_id": bookID},
		bson.M{"$set": bson.M{"cover_image": cover, "updated_at": time.Now()}})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to upload cover")
		return
	}

	writeJSON(w, http.StatusOK, cover)
}

func invalidateBookCaches(ctx context.Context) {
	_ = services.Cache.Delete(ctx, "books:top")
	_ = services.Cache.Delete(ctx, "books:new-releases")
	_ = services.Cache.Delete(ctx, "analytics:overview")
	_ = services.Cache.Delete(ctx, "analytics:genres")
}

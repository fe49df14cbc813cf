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

const chatWelcomeMessage = "Welcome to BookClub support! How can we help you today?"

// Canned responses keyed by keyword, scanned in order.
var chatAutoReplies = []struct {
	keyword string
	reply   string
}{
	{"password", "You can reset your password from your profile settings. If you are locked out, use the password reset option on the login page."},
	{"refund", "Our team handles refund requests within 2 business days. A moderator will follow up here shortly."},
	{"account", "For account issues a moderator will get back to you soon. In the meantime, check that your email address is up to date in your profile."},
	{"book", "If a book is missing or has wrong details, let us know the title and author and we'll look into it."},
}

func findOrCreateChat(ctx context.Context, userID primitive.ObjectID) (*models.Chat, error) {
	chats := database.DB.Collection("chats")

	var chat models.Chat
	err := chats.FindOne(ctx, bson.M{"user": userID}).Decode(&chat)
	if err == nil {
		return &chat, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	now := time.Now()
	chat = models.Chat{
		ID:   primitive.NewObjectID(),
		User: userID,
		Messages: []models.ChatMessage{{
			Sender:    models.ChatSenderSystem,
			Content:   chatWelcomeMessage,
			CreatedAt: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := chats.InsertOne(ctx, chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// GetChat returns the caller's support thread, creating it on first access.
func GetChat(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	chat, err := findOrCreateChat(ctx, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch chat")
		return
	}
	writeJSON(w, http.StatusOK, chat)
}

type ChatMessageRequest struct {
	Content string `json:"content"`
}

// SendChatMessage appends a user message to the support thread and may
// attach a canned reply. Both messages are published to the realtime
// channel.
func SendChatMessage(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}

	var req ChatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		writeError(w, http.StatusBadRequest, "Message content is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	chat, err := findOrCreateChat(ctx, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}

	now := time.Now()
	messages := []models.ChatMessage{{
		Sender:    models.ChatSenderUser,
		Content:   content,
		CreatedAt: now,
	}}

	lower := strings.ToLower(content)
	for _, auto := range chatAutoReplies {
		if strings.Contains(lower, auto.keyword) {
			messages = append(messages, models.ChatMessage{
				Sender:    models.ChatSenderSystem,
				Content:   auto.reply,
				CreatedAt: now,
			})
			break
		}
	}

	_, err = database.DB.Collection("chats").UpdateOne(ctx,
		bson.M{"_id": chat.ID},
		bson.M{
			"$push": bson.M{"messages": bson.M{"$each": messages}},
			"$set":  bson.M{"updated_at": now},
		},
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}

	for _, msg := range messages {
		services.PublishChatEvent(ctx, services.ChatEvent{
			UserID:    user.ID.Hex(),
			Sender:    msg.Sender,
			Content:   msg.Content,
			Timestamp: msg.CreatedAt,
		})
	}

	writeJSON(w, http.StatusCreated, messages)
}

// GetChats lists all support threads, most recently active first
// (moderator only).
func GetChats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection("chats").Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"updated_at": -1}))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch chats")
		return
	}
	defer cursor.Close(ctx)

	chats := []models.Chat{}
	if err := cursor.All(ctx, &chats); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch chats")
		return
	}
	writeJSON(w, http.StatusOK, chats)
}

// ModeratorReply appends a moderator message to a user's support thread.
func ModeratorReply(w http.ResponseWriter, r *http.Request) {
	userID, ok := objectIDParam(r, "userID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req ChatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		writeError(w, http.StatusBadRequest, "Message content is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	now := time.Now()
	message := models.ChatMessage{
		Sender:    models.ChatSenderModerator,
		Content:   content,
		CreatedAt: now,
	}

	res, err := database.DB.Collection("chats").UpdateOne(ctx,
		bson.M{"user": userID},
		bson.M{
			"$push": bson.M{"messages": message},
			"$set":  bson.M{"updated_at": now},
		},
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}
	if res.MatchedCount == 0 {
		writeError(w, http.StatusNotFound, "Chat not found")
		return
	}

	services.PublishChatEvent(ctx, services.ChatEvent{
		UserID:    userID.Hex(),
		Sender:    models.ChatSenderModerator,
		Content:   content,
		Timestamp: now,
	})

	writeJSON(w, http.StatusCreated, message)
}

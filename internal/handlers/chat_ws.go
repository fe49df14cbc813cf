package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/bookclubhq/bookclub-backend/internal/auth"
	"github.com/bookclubhq/bookclub-backend/internal/database"
	"github.com/bookclubhq/bookclub-backend/internal/middleware"
	"github.com/bookclubhq/bookclub-backend/internal/models"
	"github.com/bookclubhq/bookclub-backend/internal/services"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin access is policed by the CORS layer on the REST
	// surface; browsers cannot send custom headers on WS handshakes.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ChatStream upgrades the connection and streams the caller's support-chat
// events. Browsers cannot set the Authorization header on a WebSocket
// handshake, so the access token is also accepted as a query parameter.
func ChatStream(tokens *auth.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			tokenString = middleware.ExtractBearerToken(r.Header.Get("Authorization"))
		}
		if tokenString == "" {
			writeError(w, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		claims, err := tokens.Verify(tokenString, auth.TokenKindAccess)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}
		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		var user models.User
		err = database.DB.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
		cancel()
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
			return
		}
		if !user.IsActive {
			writeError(w, http.StatusForbidden, "Your account has been deactivated. Please contact support.")
			return
		}

		conn, err := chatUpgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("⚠️ WebSocket upgrade failed: %v", err)
			return
		}

		streamCtx, stop := context.WithCancel(context.Background())
		defer stop()
		defer conn.Close()

		events := services.SubscribeChatEvents(streamCtx, user.ID.Hex())

		// Reader goroutine: the client never sends data, but reading is
		// required to notice the peer closing.
		go func() {
			defer stop()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-streamCtx.Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteJSON(event); err != nil {
					return
				}
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}
}

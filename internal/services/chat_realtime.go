package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/bookclubhq/bookclub-backend/internal/database"
	"github.com/bookclubhq/bookclub-backend/internal/models"
)

// ChatEvent is the payload broadcast over Redis Pub/Sub and WebSocket when
// a support-chat thread receives a message.
type ChatEvent struct {
	UserID    string            `json:"user_id"`
	Sender    models.ChatSender `json:"sender"`
	Content   string            `json:"content"`
	Timestamp time.Time         `json:"timestamp"`
}

// chatChannelPrefix namespaces the per-user Pub/Sub channels.
const chatChannelPrefix = "chat-events:"

// PublishChatEvent fans a new message out to any WebSocket connection
// streaming the user's thread, possibly on another instance. Best-effort:
// persistence already happened, a missed broadcast only delays the client
// until its next history fetch.
func PublishChatEvent(ctx context.Context, event ChatEvent) {
	if database.RedisClient == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("chat: failed to marshal event: %v", err)
		return
	}
	if err := database.RedisClient.Publish(ctx, chatChannelPrefix+event.UserID, data).Err(); err != nil {
		log.Printf("chat: failed to publish event: %v", err)
	}
}

// SubscribeChatEvents subscribes to a user's chat channel. The returned
// channel closes when the context is canceled or the subscription drops.
func SubscribeChatEvents(ctx context.Context, userID string) <-chan ChatEvent {
	events := make(chan ChatEvent, 16)
	if database.RedisClient == nil {
		close(events)
		return events
	}
	sub := database.RedisClient.Subscribe(ctx, chatChannelPrefix+userID)

	go func() {
		defer close(events)
		defer sub.Close()

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event ChatEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}
				select {
				case events <- event:
				default:
					// Slow consumer; drop rather than block the subscriber.
				}
			}
		}
	}()

	return events
}

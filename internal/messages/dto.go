package messages

import (
	"time"

	"github.com/google/uuid"

	"github.com/alexvaldes/gigworks-backend/pkg/db/models"
)

// SendInput captures a durable chat message write.
type SendInput struct {
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	Content    string
	OrderID    *uuid.UUID
}

// List wraps paginated messages plus the next page cursor.
type List struct {
	Messages   []models.Message `json:"messages"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// ConversationSummary is one row of the conversation overview: the latest
// message in the thread plus how many are unread for the requesting user.
type ConversationSummary struct {
	ConversationID string    `json:"conversation_id"`
	LastSenderID   uuid.UUID `json:"last_sender_id"`
	LastReceiverID uuid.UUID `json:"last_receiver_id"`
	LastContent    string    `json:"last_content"`
	LastCreatedAt  time.Time `json:"last_created_at"`
	UnreadCount    int       `json:"unread_count"`
}

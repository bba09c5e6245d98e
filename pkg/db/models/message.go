package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is an append-only chat message between two users. ConversationID is
// the order-independent key derived from the participant pair.
type Message struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ConversationID string     `gorm:"column:conversation_id;type:text;not null;index:idx_messages_conversation"`
	SenderID       uuid.UUID  `gorm:"column:sender_id;type:uuid;not null;index"`
	ReceiverID     uuid.UUID  `gorm:"column:receiver_id;type:uuid;not null;index"`
	Content        string     `gorm:"column:content;type:text;not null"`
	OrderID        *uuid.UUID `gorm:"column:order_id;type:uuid;index"`
	IsRead         bool       `gorm:"column:is_read;not null;default:false"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime;index:idx_messages_conversation"`
}

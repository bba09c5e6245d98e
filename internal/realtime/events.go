package realtime

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Client to server event types.
const (
	EventIdentify    = "identify"
	EventJoinRoom    = "join_room"
	EventSendMessage = "send_message"
	EventTyping      = "typing"
)

// Server to client event types.
const (
	EventOnlineUsers   = "online_users"
	EventUserOnline    = "user_online"
	EventUserOffline   = "user_offline"
	EventRoomJoined    = "room_joined"
	EventUserJoined    = "user_joined"
	EventNewMessage    = "new_message"
	EventDirectMessage = "direct_message"
	EventMessageAck    = "message_ack"
	EventUserTyping    = "user_typing"
)

// Event is the wire envelope. Every frame carries a type tag and a payload
// whose schema is fixed per tag.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEvent builds an envelope from a typed payload.
func NewEvent(eventType string, payload any) (Event, error) {
	if payload == nil {
		return Event{Type: eventType}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: eventType, Data: data}, nil
}

type IdentifyPayload struct {
	UserID uuid.UUID `json:"user_id"`
}

type JoinRoomPayload struct {
	OrderID uuid.UUID `json:"order_id"`
	UserID  uuid.UUID `json:"user_id"`
}

type SendMessagePayload struct {
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	Content    string    `json:"content"`
	OrderID    uuid.UUID `json:"order_id"`
}

type TypingPayload struct {
	OrderID  uuid.UUID `json:"order_id"`
	UserID   uuid.UUID `json:"user_id"`
	IsTyping bool      `json:"is_typing"`
}

type OnlineUsersPayload struct {
	UserIDs []uuid.UUID `json:"user_ids"`
}

type PresencePayload struct {
	UserID uuid.UUID `json:"user_id"`
}

type RoomJoinedPayload struct {
	OrderID uuid.UUID `json:"order_id"`
	UserID  uuid.UUID `json:"user_id"`
}

// MessageEnvelope is the live chat payload. The id is transient and local to
// this delivery; it is not the durable message id.
type MessageEnvelope struct {
	ID         uuid.UUID `json:"id"`
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	Content    string    `json:"content"`
	OrderID    uuid.UUID `json:"order_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type MessageAckPayload struct {
	MessageID uuid.UUID `json:"message_id"`
}

type UserTypingPayload struct {
	UserID   uuid.UUID `json:"user_id"`
	IsTyping bool      `json:"is_typing"`
}

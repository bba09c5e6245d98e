package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexvaldes/gigworks-backend/pkg/logger"
	"github.com/alexvaldes/gigworks-backend/pkg/metrics"
)

// Session is the per-connection protocol state. A connection starts anonymous
// and must identify before any other event is accepted.
type Session struct {
	sender     Sender
	userID     uuid.UUID
	identified bool
}

// UserID returns the identity bound to the session, or uuid.Nil before
// identification.
func (s *Session) UserID() uuid.UUID {
	return s.userID
}

// Gateway dispatches inbound connection events against the shared presence
// and room state. Handlers never block on delivery and never terminate the
// connection on a bad payload.
type Gateway struct {
	presence *Registry
	rooms    *Broadcaster
	log      *logger.Logger
	metrics  *metrics.RealtimeMetrics
}

// NewGateway builds a gateway over the provided presence and room state.
func NewGateway(presence *Registry, rooms *Broadcaster, log *logger.Logger, m *metrics.RealtimeMetrics) (*Gateway, error) {
	if presence == nil {
		return nil, fmt.Errorf("presence registry required")
	}
	if rooms == nil {
		return nil, fmt.Errorf("room broadcaster required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Gateway{presence: presence, rooms: rooms, log: log, metrics: m}, nil
}

// Connect registers a new anonymous session for the connection.
func (g *Gateway) Connect(sender Sender) *Session {
	g.metrics.ConnOpened()
	return &Session{sender: sender}
}

// HandleMessage dispatches one inbound frame. Malformed frames and payloads
// are logged and dropped so the connection stays open for later valid events.
func (g *Gateway) HandleMessage(ctx context.Context, sess *Session, raw []byte) {
	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		g.log.Warn(g.log.WithField(ctx, "reason", "malformed frame"), "dropping realtime event")
		return
	}
	event.Type = strings.TrimSpace(event.Type)

	if !sess.identified && event.Type != EventIdentify {
		g.log.Warn(g.log.WithField(ctx, "event", event.Type), "event before identification")
		return
	}
	g.metrics.IncEvent(event.Type)

	switch event.Type {
	case EventIdentify:
		g.handleIdentify(ctx, sess, event.Data)
	case EventJoinRoom:
		g.handleJoinRoom(ctx, sess, event.Data)
	case EventSendMessage:
		g.handleSendMessage(ctx, sess, event.Data)
	case EventTyping:
		g.handleTyping(ctx, sess, event.Data)
	default:
		g.log.Warn(g.log.WithField(ctx, "event", event.Type), "unknown realtime event")
	}
}

// Disconnect tears the session down: presence entry, room memberships, and a
// single offline announcement when this was the user's current connection.
func (g *Gateway) Disconnect(ctx context.Context, sess *Session) {
	defer g.metrics.ConnClosed()

	g.rooms.LeaveAll(sess.sender)
	if !sess.identified {
		return
	}
	if wentOffline := g.presence.Remove(sess.userID, sess.sender); wentOffline {
		g.broadcastPresence(EventUserOffline, sess.userID, sess.sender)
		g.broadcastSnapshot()
	}
}

func (g *Gateway) handleIdentify(ctx context.Context, sess *Session, data json.RawMessage) {
	var payload IdentifyPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.UserID == uuid.Nil {
		g.log.Warn(g.log.WithField(ctx, "event", EventIdentify), "invalid payload")
		return
	}
	if sess.identified {
		return
	}

	sess.userID = payload.UserID
	sess.identified = true

	cameOnline := g.presence.AddOrReplace(payload.UserID, sess.sender)
	if cameOnline {
		g.broadcastPresence(EventUserOnline, payload.UserID, sess.sender)
	}
	g.sendTo(sess.sender, EventOnlineUsers, OnlineUsersPayload{UserIDs: g.presence.Snapshot()})
}

func (g *Gateway) handleJoinRoom(ctx context.Context, sess *Session, data json.RawMessage) {
	var payload JoinRoomPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.OrderID == uuid.Nil {
		g.log.Warn(g.log.WithField(ctx, "event", EventJoinRoom), "invalid payload")
		return
	}

	room := RoomName(payload.OrderID)
	notice, err := NewEvent(EventUserJoined, RoomJoinedPayload{OrderID: payload.OrderID, UserID: sess.userID})
	if err != nil {
		g.log.Error(ctx, "encode event", err)
		return
	}
	// Existing members hear about the join before the joiner is added, so the
	// notice never echoes back to self.
	g.countDropped(EventUserJoined, g.rooms.Broadcast(room, notice, sess.sender))

	g.rooms.Join(room, sess.userID, sess.sender)
	g.sendTo(sess.sender, EventRoomJoined, RoomJoinedPayload{OrderID: payload.OrderID, UserID: sess.userID})
}

func (g *Gateway) handleSendMessage(ctx context.Context, sess *Session, data json.RawMessage) {
	var payload SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		g.log.Warn(g.log.WithField(ctx, "event", EventSendMessage), "invalid payload")
		return
	}
	if payload.ReceiverID == uuid.Nil || payload.OrderID == uuid.Nil || strings.TrimSpace(payload.Content) == "" {
		g.log.Warn(g.log.WithField(ctx, "event", EventSendMessage), "invalid payload")
		return
	}

	envelope := MessageEnvelope{
		ID:         uuid.New(),
		SenderID:   sess.userID,
		ReceiverID: payload.ReceiverID,
		Content:    payload.Content,
		OrderID:    payload.OrderID,
		CreatedAt:  time.Now().UTC(),
	}

	room := RoomName(payload.OrderID)
	roomEvent, err := NewEvent(EventNewMessage, envelope)
	if err != nil {
		g.log.Error(ctx, "encode event", err)
		return
	}
	// Every joined connection gets the message, the sender's included.
	g.countDropped(EventNewMessage, g.rooms.Broadcast(room, roomEvent, nil))

	// A receiver who never joined the room still gets the message while
	// online. Skip it when their current connection already received the
	// room broadcast.
	if handle, online := g.presence.Lookup(payload.ReceiverID); online {
		if handle != sess.sender && !g.rooms.IsMember(room, handle) {
			g.sendTo(handle, EventDirectMessage, envelope)
		}
	}

	g.sendTo(sess.sender, EventMessageAck, MessageAckPayload{MessageID: envelope.ID})
}

func (g *Gateway) handleTyping(ctx context.Context, sess *Session, data json.RawMessage) {
	var payload TypingPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.OrderID == uuid.Nil {
		g.log.Warn(g.log.WithField(ctx, "event", EventTyping), "invalid payload")
		return
	}

	event, err := NewEvent(EventUserTyping, UserTypingPayload{UserID: sess.userID, IsTyping: payload.IsTyping})
	if err != nil {
		g.log.Error(ctx, "encode event", err)
		return
	}
	g.countDropped(EventUserTyping, g.rooms.Broadcast(RoomName(payload.OrderID), event, sess.sender))
}

// broadcastPresence announces an online or offline change to every other
// connected user.
func (g *Gateway) broadcastPresence(eventType string, userID uuid.UUID, except Sender) {
	event, err := NewEvent(eventType, PresencePayload{UserID: userID})
	if err != nil {
		return
	}
	g.presence.Each(func(_ uuid.UUID, handle Sender) {
		if handle == except {
			return
		}
		if !handle.Send(event) {
			g.metrics.IncDropped(eventType)
		}
	})
}

// broadcastSnapshot pushes the current online-set to every remaining
// connection after membership changes.
func (g *Gateway) broadcastSnapshot() {
	event, err := NewEvent(EventOnlineUsers, OnlineUsersPayload{UserIDs: g.presence.Snapshot()})
	if err != nil {
		return
	}
	g.presence.Each(func(_ uuid.UUID, handle Sender) {
		if !handle.Send(event) {
			g.metrics.IncDropped(EventOnlineUsers)
		}
	})
}

func (g *Gateway) sendTo(handle Sender, eventType string, payload any) {
	event, err := NewEvent(eventType, payload)
	if err != nil {
		return
	}
	if !handle.Send(event) {
		g.metrics.IncDropped(eventType)
	}
}

func (g *Gateway) countDropped(eventType string, dropped int) {
	for i := 0; i < dropped; i++ {
		g.metrics.IncDropped(eventType)
	}
}

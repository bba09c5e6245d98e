package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// RoomName derives the chat room name for an order.
func RoomName(orderID uuid.UUID) string {
	return "order_" + orderID.String()
}

// Broadcaster groups connections into order rooms and fans events out to
// them. Membership is connection scoped: a disconnect removes the handle
// from every room and empty rooms vanish with it.
type Broadcaster struct {
	mu     sync.RWMutex
	rooms  map[string]map[Sender]uuid.UUID
	byConn map[Sender]map[string]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		rooms:  make(map[string]map[Sender]uuid.UUID),
		byConn: make(map[Sender]map[string]struct{}),
	}
}

// Join adds a connection to a room.
func (b *Broadcaster) Join(room string, userID uuid.UUID, handle Sender) {
	b.mu.Lock()
	defer b.mu.Unlock()

	members, ok := b.rooms[room]
	if !ok {
		members = make(map[Sender]uuid.UUID)
		b.rooms[room] = members
	}
	members[handle] = userID

	joined, ok := b.byConn[handle]
	if !ok {
		joined = make(map[string]struct{})
		b.byConn[handle] = joined
	}
	joined[room] = struct{}{}
}

// LeaveAll removes a connection from every room it joined.
func (b *Broadcaster) LeaveAll(handle Sender) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for room := range b.byConn[handle] {
		members := b.rooms[room]
		delete(members, handle)
		if len(members) == 0 {
			delete(b.rooms, room)
		}
	}
	delete(b.byConn, handle)
}

// IsMember reports whether a connection currently belongs to the room.
func (b *Broadcaster) IsMember(room string, handle Sender) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, ok := b.rooms[room][handle]
	return ok
}

// Members returns the user ids currently joined to the room.
func (b *Broadcaster) Members(room string) []uuid.UUID {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(b.rooms[room]))
	for _, userID := range b.rooms[room] {
		ids = append(ids, userID)
	}
	return ids
}

// Broadcast delivers an event to every room member except the excluded
// connection, or to all members when except is nil. It returns how many
// sends were dropped.
func (b *Broadcaster) Broadcast(room string, event Event, except Sender) (dropped int) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for handle := range b.rooms[room] {
		if handle == except {
			continue
		}
		if !handle.Send(event) {
			dropped++
		}
	}
	return dropped
}

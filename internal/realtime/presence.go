package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// Sender delivers an event to one connection. Implementations must not block;
// they report false when the event could not be queued.
type Sender interface {
	Send(event Event) bool
}

// Registry tracks which users are online and the connection currently bound to
// each. One handle per user, last writer wins so reconnects replace the old
// handle instead of duplicating the entry.
type Registry struct {
	mu     sync.RWMutex
	byUser map[uuid.UUID]Sender
}

func NewRegistry() *Registry {
	return &Registry{byUser: make(map[uuid.UUID]Sender)}
}

// AddOrReplace binds a connection to a user. It reports whether the user just
// came online; a reconnect replaces the handle without a presence change.
func (r *Registry) AddOrReplace(userID uuid.UUID, handle Sender) (cameOnline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, wasOnline := r.byUser[userID]
	r.byUser[userID] = handle
	return !wasOnline
}

// Remove unbinds a connection. A stale handle left over from before a
// reconnect is ignored so the newer connection keeps the user online.
func (r *Registry) Remove(userID uuid.UUID, handle Sender) (wentOffline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byUser[userID]
	if !ok || current != handle {
		return false
	}
	delete(r.byUser, userID)
	return true
}

// Lookup returns the user's current connection, if any.
func (r *Registry) Lookup(userID uuid.UUID) (Sender, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handle, ok := r.byUser[userID]
	return handle, ok
}

// Snapshot returns the ids of all users currently online.
func (r *Registry) Snapshot() []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(r.byUser))
	for id := range r.byUser {
		ids = append(ids, id)
	}
	return ids
}

// Each invokes fn for every online user under the read lock.
func (r *Registry) Each(fn func(userID uuid.UUID, handle Sender)) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, handle := range r.byUser {
		fn(id, handle)
	}
}

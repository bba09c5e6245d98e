package payments

import (
	"context"
	"time"
)

// idempotencyStore is the subset of the redis client the guard needs.
type idempotencyStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
}

// EventGuard records processed gateway event ids so webhook retries and
// duplicate deliveries become no-ops. First writer wins.
type EventGuard struct {
	store idempotencyStore
	scope string
	ttl   time.Duration
}

// NewEventGuard builds a guard over the provided store.
func NewEventGuard(store idempotencyStore, scope string, ttl time.Duration) *EventGuard {
	return &EventGuard{store: store, scope: scope, ttl: ttl}
}

// FirstSeen returns true when this event id has not been processed before and
// claims it. A false return means another delivery already handled it.
func (g *EventGuard) FirstSeen(ctx context.Context, eventID string) (bool, error) {
	if g == nil || g.store == nil || eventID == "" {
		return true, nil
	}
	key := g.store.IdempotencyKey(g.scope, eventID)
	return g.store.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), g.ttl)
}

// Release drops a claim so the gateway's redelivery can retry after a
// processing failure.
func (g *EventGuard) Release(ctx context.Context, eventID string) error {
	if g == nil || g.store == nil || eventID == "" {
		return nil
	}
	return g.store.Del(ctx, g.store.IdempotencyKey(g.scope, eventID))
}

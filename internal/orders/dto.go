package orders

import (
	"github.com/google/uuid"

	"github.com/alexvaldes/gigworks-backend/pkg/db/models"
	"github.com/alexvaldes/gigworks-backend/pkg/enums"
)

// PaymentKey is the natural key a paid checkout resolves to. Two entry paths
// carrying the same key describe the same purchase.
type PaymentKey struct {
	GigID      uuid.UUID
	BuyerID    uuid.UUID
	SellerID   uuid.UUID
	PriceCents int64
}

// PlaceOrderInput captures a direct (non-payment) order request.
type PlaceOrderInput struct {
	GigID        uuid.UUID
	BuyerID      uuid.UUID
	Requirements string
}

// UpdateStatusInput carries a seller's lifecycle transition request.
type UpdateStatusInput struct {
	OrderID       uuid.UUID
	ActorID       uuid.UUID
	Target        enums.OrderStatus
	DeliveryFiles []string
}

// Filters describe the inputs supported by the order list.
type Filters struct {
	Status *enums.OrderStatus
	Role   string // "buyer", "seller", or empty for both
}

// List wraps the paginated orders plus the next page cursor.
type List struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

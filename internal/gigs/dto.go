package gigs

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alexvaldes/gigworks-backend/pkg/db/models"
)

// CreateInput captures a new gig listing.
type CreateInput struct {
	SellerID     uuid.UUID
	Title        string
	Description  string
	Category     string
	Price        decimal.Decimal
	DeliveryDays int
	Images       []string
	Tags         []string
}

// Filters describe the inputs supported by the public gig list.
type Filters struct {
	Category string
	Query    string
	SellerID *uuid.UUID
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// List wraps the paginated gigs plus the next page cursor.
type List struct {
	Gigs       []models.Gig `json:"gigs"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/alexvaldes/gigworks-backend/pkg/enums"
)

// Order tracks a purchase of a gig between a buyer and a seller.
//
// The (gig_id, buyer_id, seller_id, price_cents) tuple is the natural key used
// by payment reconciliation; uq_orders_payment_key enforces at most one order
// per tuple so the webhook and verify paths cannot double-create.
type Order struct {
	ID            uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	GigID         uuid.UUID         `gorm:"column:gig_id;type:uuid;not null;index;uniqueIndex:uq_orders_payment_key"`
	BuyerID       uuid.UUID         `gorm:"column:buyer_id;type:uuid;not null;index;uniqueIndex:uq_orders_payment_key"`
	SellerID      uuid.UUID         `gorm:"column:seller_id;type:uuid;not null;index;uniqueIndex:uq_orders_payment_key"`
	PriceCents    int64             `gorm:"column:price_cents;not null;uniqueIndex:uq_orders_payment_key"`
	Status        enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Requirements  string            `gorm:"column:requirements;type:text;not null;default:''"`
	DeliveryFiles pq.StringArray    `gorm:"column:delivery_files;type:text[];default:ARRAY[]::text[]"`
	DeliveredAt   *time.Time        `gorm:"column:delivered_at"`
	CompletedAt   *time.Time        `gorm:"column:completed_at"`
	CancelledAt   *time.Time        `gorm:"column:cancelled_at"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// IsParticipant reports whether the given user is the buyer or the seller.
func (o Order) IsParticipant(userID uuid.UUID) bool {
	return o.BuyerID == userID || o.SellerID == userID
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is the buyer's rating of a completed order. One review per order.
type Review struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	GigID      uuid.UUID `gorm:"column:gig_id;type:uuid;not null;index"`
	OrderID    uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex:uq_reviews_order"`
	ReviewerID uuid.UUID `gorm:"column:reviewer_id;type:uuid;not null;index"`
	SellerID   uuid.UUID `gorm:"column:seller_id;type:uuid;not null;index"`
	Rating     int       `gorm:"column:rating;not null"`
	Comment    string    `gorm:"column:comment;type:text;not null;default:''"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Gig is a purchasable unit of work published by a seller.
type Gig struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	// uq_gigs_seller_title in the migration is a partial index on
	// (seller_id, lower(title)) where is_active, which gorm tags cannot express.
	SellerID     uuid.UUID       `gorm:"column:seller_id;type:uuid;not null;index"`
	Title        string          `gorm:"column:title;type:text;not null"`
	Description  string          `gorm:"column:description;type:text;not null"`
	Category     string          `gorm:"column:category;type:text;not null;index"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	DeliveryDays int             `gorm:"column:delivery_days;not null"`
	Images       pq.StringArray  `gorm:"column:images;type:text[];default:ARRAY[]::text[]"`
	Tags         pq.StringArray  `gorm:"column:tags;type:text[];default:ARRAY[]::text[]"`
	IsActive     bool            `gorm:"column:is_active;not null;default:true"`
	Rating       decimal.Decimal `gorm:"column:rating;type:numeric(3,2);not null;default:0"`
	NumReviews   int             `gorm:"column:num_reviews;not null;default:0"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// PriceCents converts the decimal price into minor units for natural-key
// comparisons against gateway amounts.
func (g Gig) PriceCents() int64 {
	return g.Price.Mul(decimal.NewFromInt(100)).IntPart()
}

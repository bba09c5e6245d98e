package gigs

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/alexvaldes/gigworks-backend/pkg/db/models"
	"github.com/alexvaldes/gigworks-backend/pkg/pagination"
)

// Repository defines persistence operations for the gigs table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, gig *models.Gig) (*models.Gig, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Gig, error)
	List(ctx context.Context, params pagination.Params, filters Filters) (*List, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	UpdateRatingStats(ctx context.Context, id uuid.UUID, rating decimal.Decimal, numReviews int) error
}

// Service defines gig catalog operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Gig, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Gig, error)
	ListPublic(ctx context.Context, params pagination.Params, filters Filters) (*List, error)
	Deactivate(ctx context.Context, id, actorID uuid.UUID) error
}

package gigs

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/alexvaldes/gigworks-backend/pkg/db/models"
	"github.com/alexvaldes/gigworks-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a gigs repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, gig *models.Gig) (*models.Gig, error) {
	if err := r.db.WithContext(ctx).Create(gig).Error; err != nil {
		return nil, err
	}
	return gig, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Gig, error) {
	var gig models.Gig
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&gig).Error
	if err != nil {
		return nil, err
	}
	return &gig, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters Filters) (*List, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)
	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(params.Cursor))
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.Gig{}).
		Where("is_active = ?", true)

	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.SellerID != nil {
		query = query.Where("seller_id = ?", *filters.SellerID)
	}
	if q := strings.TrimSpace(filters.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if filters.MinPrice != nil {
		query = query.Where("price >= ?", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		query = query.Where("price <= ?", *filters.MaxPrice)
	}

	if decodedCursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}

	var rows []models.Gig
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limitWithBuffer).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &List{Gigs: rows}
	if len(rows) > normalizedLimit {
		list.Gigs = rows[:normalizedLimit]
		last := list.Gigs[len(list.Gigs)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}

func (r *repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Gig{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

func (r *repository) UpdateRatingStats(ctx context.Context, id uuid.UUID, rating decimal.Decimal, numReviews int) error {
	return r.db.WithContext(ctx).
		Model(&models.Gig{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"rating":      rating,
			"num_reviews": numReviews,
		}).Error
}

package gigs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/alexvaldes/gigworks-backend/pkg/db"
	"github.com/alexvaldes/gigworks-backend/pkg/db/models"
	"github.com/alexvaldes/gigworks-backend/pkg/pagination"
)

func setupGigsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	gigs := `
CREATE TABLE IF NOT EXISTS gigs (
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL,
  category TEXT NOT NULL,
  price NUMERIC NOT NULL,
  delivery_days INTEGER NOT NULL,
  images TEXT,
  tags TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  rating NUMERIC NOT NULL DEFAULT 0,
  num_reviews INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(gigs).Error)
	require.NoError(t, conn.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_gigs_seller_title ON gigs (seller_id, lower(title)) WHERE is_active;`,
	).Error)
	return conn
}

func seedGig(t *testing.T, conn *gorm.DB, seller uuid.UUID, title, category, price string, created time.Time) *models.Gig {
	t.Helper()

	gig := &models.Gig{
		ID:           uuid.New(),
		SellerID:     seller,
		Title:        title,
		Description:  "description of " + title,
		Category:     category,
		Price:        decimal.RequireFromString(price),
		DeliveryDays: 3,
		IsActive:     true,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	require.NoError(t, conn.Create(gig).Error)
	return gig
}

func TestRepositoryCreateDuplicateTitle(t *testing.T) {
	conn := setupGigsTestDB(t)
	repo := NewRepository(conn)

	seller := uuid.New()
	seedGig(t, conn, seller, "Logo design", "design", "50.00", time.Now().UTC())

	dup := &models.Gig{
		ID:           uuid.New(),
		SellerID:     seller,
		Title:        "Logo design",
		Description:  "another",
		Category:     "design",
		Price:        decimal.RequireFromString("60.00"),
		DeliveryDays: 2,
		IsActive:     true,
	}
	_, err := repo.Create(context.Background(), dup)
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, ""))

	// A case variant is still the same title.
	variant := &models.Gig{
		ID:           uuid.New(),
		SellerID:     seller,
		Title:        "LOGO DESIGN",
		Description:  "shouting",
		Category:     "design",
		Price:        decimal.RequireFromString("60.00"),
		DeliveryDays: 2,
		IsActive:     true,
	}
	_, err = repo.Create(context.Background(), variant)
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, ""))

	// Same title is fine for a different seller.
	other := &models.Gig{
		ID:           uuid.New(),
		SellerID:     uuid.New(),
		Title:        "Logo design",
		Description:  "different seller",
		Category:     "design",
		Price:        decimal.RequireFromString("60.00"),
		DeliveryDays: 2,
		IsActive:     true,
	}
	_, err = repo.Create(context.Background(), other)
	require.NoError(t, err)
}

func TestRepositoryCreateAfterDeactivateReleasesTitle(t *testing.T) {
	conn := setupGigsTestDB(t)
	repo := NewRepository(conn)

	seller := uuid.New()
	old := seedGig(t, conn, seller, "Logo design", "design", "50.00", time.Now().UTC())
	require.NoError(t, conn.Model(&models.Gig{}).Where("id = ?", old.ID).Update("is_active", false).Error)

	relisted := &models.Gig{
		ID:           uuid.New(),
		SellerID:     seller,
		Title:        "Logo design",
		Description:  "back on the shelf",
		Category:     "design",
		Price:        decimal.RequireFromString("75.00"),
		DeliveryDays: 2,
		IsActive:     true,
	}
	_, err := repo.Create(context.Background(), relisted)
	require.NoError(t, err)
}

func TestRepositoryListFiltersAndPagination(t *testing.T) {
	conn := setupGigsTestDB(t)
	repo := NewRepository(conn)

	seller := uuid.New()
	now := time.Now().UTC()
	seedGig(t, conn, seller, "Logo pack", "design", "50.00", now.Add(-2*time.Hour))
	seedGig(t, conn, seller, "Brand kit", "design", "150.00", now.Add(-time.Hour))
	api := seedGig(t, conn, seller, "API integration", "development", "300.00", now)

	inactive := seedGig(t, conn, seller, "Old gig", "design", "10.00", now)
	require.NoError(t, conn.Model(&models.Gig{}).Where("id = ?", inactive.ID).Update("is_active", false).Error)

	sellerID := seller
	all, err := repo.List(context.Background(), pagination.Params{}, Filters{SellerID: &sellerID})
	require.NoError(t, err)
	assert.Len(t, all.Gigs, 3, "inactive gigs are excluded")

	dev, err := repo.List(context.Background(), pagination.Params{}, Filters{SellerID: &sellerID, Category: "development"})
	require.NoError(t, err)
	require.Len(t, dev.Gigs, 1)
	assert.Equal(t, api.ID, dev.Gigs[0].ID)

	search, err := repo.List(context.Background(), pagination.Params{}, Filters{SellerID: &sellerID, Query: "brand"})
	require.NoError(t, err)
	require.Len(t, search.Gigs, 1)
	assert.Equal(t, "Brand kit", search.Gigs[0].Title)

	maxPrice := decimal.RequireFromString("100.00")
	cheap, err := repo.List(context.Background(), pagination.Params{}, Filters{SellerID: &sellerID, MaxPrice: &maxPrice})
	require.NoError(t, err)
	require.Len(t, cheap.Gigs, 1)
	assert.Equal(t, "Logo pack", cheap.Gigs[0].Title)

	page, err := repo.List(context.Background(), pagination.Params{Limit: 2}, Filters{SellerID: &sellerID})
	require.NoError(t, err)
	require.Len(t, page.Gigs, 2)
	require.NotEmpty(t, page.NextCursor)

	rest, err := repo.List(context.Background(), pagination.Params{Limit: 2, Cursor: page.NextCursor}, Filters{SellerID: &sellerID})
	require.NoError(t, err)
	require.Len(t, rest.Gigs, 1)
	assert.Empty(t, rest.NextCursor)
}

func TestRepositoryUpdateRatingStats(t *testing.T) {
	conn := setupGigsTestDB(t)
	repo := NewRepository(conn)

	gig := seedGig(t, conn, uuid.New(), "Rated gig", "design", "50.00", time.Now().UTC())

	err := repo.UpdateRatingStats(context.Background(), gig.ID, decimal.RequireFromString("4.50"), 2)
	require.NoError(t, err)

	reloaded, err := repo.FindByID(context.Background(), gig.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Rating.Equal(decimal.RequireFromString("4.50")))
	assert.Equal(t, 2, reloaded.NumReviews)
}

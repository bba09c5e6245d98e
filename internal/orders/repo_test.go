package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/alexvaldes/gigworks-backend/pkg/db"
	"github.com/alexvaldes/gigworks-backend/pkg/db/models"
	"github.com/alexvaldes/gigworks-backend/pkg/enums"
	"github.com/alexvaldes/gigworks-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  gig_id TEXT NOT NULL,
  buyer_id TEXT NOT NULL,
  seller_id TEXT NOT NULL,
  price_cents INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  requirements TEXT NOT NULL DEFAULT '',
  delivery_files TEXT,
  delivered_at DATETIME,
  completed_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (gig_id, buyer_id, seller_id, price_cents)
);`
	require.NoError(t, conn.Exec(orders).Error)
	return conn
}

func seedOrder(t *testing.T, conn *gorm.DB, buyer, seller uuid.UUID, priceCents int64, status enums.OrderStatus, created time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:         uuid.New(),
		GigID:      uuid.New(),
		BuyerID:    buyer,
		SellerID:   seller,
		PriceCents: priceCents,
		Status:     status,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	require.NoError(t, conn.Create(order).Error)
	return order
}

func TestRepositoryFindByPaymentKey(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)

	buyer := uuid.New()
	seller := uuid.New()
	order := seedOrder(t, conn, buyer, seller, 12550, enums.OrderStatusInProgress, time.Now().UTC())

	found, err := repo.FindByPaymentKey(context.Background(), PaymentKey{
		GigID:      order.GigID,
		BuyerID:    buyer,
		SellerID:   seller,
		PriceCents: 12550,
	})
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = repo.FindByPaymentKey(context.Background(), PaymentKey{
		GigID:      order.GigID,
		BuyerID:    buyer,
		SellerID:   seller,
		PriceCents: 9999,
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryCreateDuplicateNaturalKey(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)

	buyer := uuid.New()
	seller := uuid.New()
	first := seedOrder(t, conn, buyer, seller, 5000, enums.OrderStatusInProgress, time.Now().UTC())

	dup := &models.Order{
		ID:         uuid.New(),
		GigID:      first.GigID,
		BuyerID:    buyer,
		SellerID:   seller,
		PriceCents: 5000,
		Status:     enums.OrderStatusInProgress,
	}
	_, err := repo.Create(context.Background(), dup)
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, ""))
}

func TestRepositoryListForUser_pagination(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)

	buyer := uuid.New()
	seller := uuid.New()
	now := time.Now().UTC()
	older := seedOrder(t, conn, buyer, seller, 1000, enums.OrderStatusCompleted, now.Add(-time.Hour))
	newer := seedOrder(t, conn, buyer, seller, 2000, enums.OrderStatusInProgress, now)

	list, err := repo.ListForUser(context.Background(), buyer, pagination.Params{Limit: 1}, Filters{})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, newer.ID, list.Orders[0].ID)
	assert.NotEmpty(t, list.NextCursor)

	second, err := repo.ListForUser(context.Background(), buyer, pagination.Params{Limit: 1, Cursor: list.NextCursor}, Filters{})
	require.NoError(t, err)
	require.Len(t, second.Orders, 1)
	assert.Equal(t, older.ID, second.Orders[0].ID)
	assert.Empty(t, second.NextCursor)
}

func TestRepositoryListForUser_rolesAndStatus(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)

	user := uuid.New()
	other := uuid.New()
	now := time.Now().UTC()
	asBuyer := seedOrder(t, conn, user, other, 1000, enums.OrderStatusInProgress, now.Add(-time.Minute))
	asSeller := seedOrder(t, conn, other, user, 2000, enums.OrderStatusDelivered, now)

	both, err := repo.ListForUser(context.Background(), user, pagination.Params{}, Filters{})
	require.NoError(t, err)
	assert.Len(t, both.Orders, 2)

	buyerOnly, err := repo.ListForUser(context.Background(), user, pagination.Params{}, Filters{Role: "buyer"})
	require.NoError(t, err)
	require.Len(t, buyerOnly.Orders, 1)
	assert.Equal(t, asBuyer.ID, buyerOnly.Orders[0].ID)

	status := enums.OrderStatusDelivered
	delivered, err := repo.ListForUser(context.Background(), user, pagination.Params{}, Filters{Status: &status})
	require.NoError(t, err)
	require.Len(t, delivered.Orders, 1)
	assert.Equal(t, asSeller.ID, delivered.Orders[0].ID)
}

func TestRepositoryUpdateStampsStatus(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)

	order := seedOrder(t, conn, uuid.New(), uuid.New(), 3000, enums.OrderStatusInProgress, time.Now().UTC())

	now := time.Now().UTC()
	err := repo.Update(context.Background(), order.ID, map[string]any{
		"status":       enums.OrderStatusDelivered,
		"delivered_at": now,
	})
	require.NoError(t, err)

	reloaded, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, reloaded.Status)
	require.NotNil(t, reloaded.DeliveredAt)
}

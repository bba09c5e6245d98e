package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alexvaldes/gigworks-backend/pkg/db/models"
	"github.com/alexvaldes/gigworks-backend/pkg/pagination"
)

// Repository defines persistence operations for the orders table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByPaymentKey(ctx context.Context, key PaymentKey) (*models.Order, error)
	ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params, filters Filters) (*List, error)
	Update(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
}

// Service defines order lifecycle operations.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, orderID, actorID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, actorID uuid.UUID, params pagination.Params, filters Filters) (*List, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error)
}

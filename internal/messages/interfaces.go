package messages

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alexvaldes/gigworks-backend/pkg/db/models"
	"github.com/alexvaldes/gigworks-backend/pkg/pagination"
)

// Repository defines persistence operations for the messages table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, message *models.Message) (*models.Message, error)
	ListByConversation(ctx context.Context, conversationID string, params pagination.Params) (*List, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID, params pagination.Params) (*List, error)
	ListConversations(ctx context.Context, userID uuid.UUID) ([]ConversationSummary, error)
	MarkRead(ctx context.Context, conversationID string, readerID uuid.UUID) (int64, error)
}

// OrderReader exposes the order lookup needed for order-scoped threads.
type OrderReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// Service defines durable messaging operations.
type Service interface {
	Send(ctx context.Context, input SendInput) (*models.Message, error)
	ListWithUser(ctx context.Context, actorID, otherID uuid.UUID, params pagination.Params) (*List, error)
	ListConversation(ctx context.Context, actorID uuid.UUID, conversationID string, params pagination.Params) (*List, error)
	ListByOrder(ctx context.Context, actorID, orderID uuid.UUID, params pagination.Params) (*List, error)
	ListConversations(ctx context.Context, actorID uuid.UUID) ([]ConversationSummary, error)
}

package messages

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alexvaldes/gigworks-backend/pkg/db/models"
	"github.com/alexvaldes/gigworks-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a messages repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, message *models.Message) (*models.Message, error) {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

func (r *repository) ListByConversation(ctx context.Context, conversationID string, params pagination.Params) (*List, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("conversation_id = ?", conversationID)
	return r.paginate(ctx, query, params)
}

func (r *repository) ListByOrder(ctx context.Context, orderID uuid.UUID, params pagination.Params) (*List, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("order_id = ?", orderID)
	return r.paginate(ctx, query, params)
}

func (r *repository) paginate(ctx context.Context, query *gorm.DB, params pagination.Params) (*List, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)
	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(params.Cursor))
	if err != nil {
		return nil, err
	}

	if decodedCursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}

	var rows []models.Message
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limitWithBuffer).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &List{Messages: rows}
	if len(rows) > normalizedLimit {
		list.Messages = rows[:normalizedLimit]
		last := list.Messages[len(list.Messages)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}

func (r *repository) ListConversations(ctx context.Context, userID uuid.UUID) ([]ConversationSummary, error) {
	type row struct {
		ConversationID string
		SenderID       uuid.UUID
		ReceiverID     uuid.UUID
		Content        string
		CreatedAt      time.Time
		UnreadCount    int
	}

	var rows []row
	err := r.db.WithContext(ctx).Raw(`
SELECT m.conversation_id,
       m.sender_id,
       m.receiver_id,
       m.content,
       m.created_at,
       (SELECT COUNT(*) FROM messages u
        WHERE u.conversation_id = m.conversation_id
          AND u.receiver_id = ?
          AND u.is_read = ?) AS unread_count
FROM messages m
JOIN (
    SELECT conversation_id, MAX(created_at) AS last_created
    FROM messages
    WHERE sender_id = ? OR receiver_id = ?
    GROUP BY conversation_id
) latest ON latest.conversation_id = m.conversation_id
        AND m.created_at = latest.last_created
ORDER BY m.created_at DESC
`, userID, false, userID, userID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(rows))
	for _, rec := range rows {
		summaries = append(summaries, ConversationSummary{
			ConversationID: rec.ConversationID,
			LastSenderID:   rec.SenderID,
			LastReceiverID: rec.ReceiverID,
			LastContent:    rec.Content,
			LastCreatedAt:  rec.CreatedAt,
			UnreadCount:    rec.UnreadCount,
		})
	}
	return summaries, nil
}

func (r *repository) MarkRead(ctx context.Context, conversationID string, readerID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("conversation_id = ? AND receiver_id = ? AND is_read = ?", conversationID, readerID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

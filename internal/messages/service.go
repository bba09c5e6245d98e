package messages

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alexvaldes/gigworks-backend/pkg/db/models"
	pkgerrors "github.com/alexvaldes/gigworks-backend/pkg/errors"
	"github.com/alexvaldes/gigworks-backend/pkg/pagination"
)

const maxContentLength = 5000

type service struct {
	repo   Repository
	orders OrderReader
}

// NewService builds a messaging service with the required dependencies.
func NewService(repo Repository, orders OrderReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("messages repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order reader required")
	}
	return &service{repo: repo, orders: orders}, nil
}

func (s *service) Send(ctx context.Context, input SendInput) (*models.Message, error) {
	if input.SenderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ReceiverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receiver id required")
	}
	if input.SenderID == input.ReceiverID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot message yourself")
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content required")
	}
	if len(content) > maxContentLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content too long")
	}

	if input.OrderID != nil {
		order, err := s.orders.FindByID(ctx, *input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if !order.IsParticipant(input.SenderID) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
		}
	}

	message := &models.Message{
		ConversationID: ConversationKey(input.SenderID, input.ReceiverID),
		SenderID:       input.SenderID,
		ReceiverID:     input.ReceiverID,
		Content:        content,
		OrderID:        input.OrderID,
	}
	created, err := s.repo.Create(ctx, message)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create message")
	}
	return created, nil
}

func (s *service) ListWithUser(ctx context.Context, actorID, otherID uuid.UUID, params pagination.Params) (*List, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if otherID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	conversationID := ConversationKey(actorID, otherID)
	list, err := s.repo.ListByConversation(ctx, conversationID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messages")
	}

	// Fetching a thread marks the actor's incoming messages as read.
	if _, err := s.repo.MarkRead(ctx, conversationID, actorID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark messages read")
	}
	return list, nil
}

func (s *service) ListConversation(ctx context.Context, actorID uuid.UUID, conversationID string, params pagination.Params) (*List, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !strings.Contains(conversationID, actorID.String()) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "conversation does not belong to user")
	}

	list, err := s.repo.ListByConversation(ctx, conversationID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messages")
	}
	return list, nil
}

func (s *service) ListByOrder(ctx context.Context, actorID, orderID uuid.UUID, params pagination.Params) (*List, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !order.IsParticipant(actorID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}

	list, err := s.repo.ListByOrder(ctx, orderID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messages")
	}
	return list, nil
}

func (s *service) ListConversations(ctx context.Context, actorID uuid.UUID) ([]ConversationSummary, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	summaries, err := s.repo.ListConversations(ctx, actorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list conversations")
	}
	return summaries, nil
}

package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/alexvaldes/gigworks-backend/internal/gigs"
	"github.com/alexvaldes/gigworks-backend/pkg/db"
	"github.com/alexvaldes/gigworks-backend/pkg/db/models"
	"github.com/alexvaldes/gigworks-backend/pkg/enums"
	pkgerrors "github.com/alexvaldes/gigworks-backend/pkg/errors"
	"github.com/alexvaldes/gigworks-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// OrderReader exposes the order lookup the review flow needs.
type OrderReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	gigs   gigs.Repository
	orders OrderReader
}

// NewService builds a review service with the required dependencies.
func NewService(repo Repository, tx txRunner, gigRepo gigs.Repository, orders OrderReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if gigRepo == nil {
		return nil, fmt.Errorf("gigs repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order reader required")
	}
	return &service{repo: repo, tx: tx, gigs: gigRepo, orders: orders}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Review, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ReviewerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	order, err := s.orders.FindByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.BuyerID != input.ReviewerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the buyer can review an order")
	}
	if order.Status != enums.OrderStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order must be completed before review")
	}

	var created *models.Review
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		gigRepo := s.gigs.WithTx(tx)

		review := &models.Review{
			GigID:      order.GigID,
			OrderID:    order.ID,
			ReviewerID: input.ReviewerID,
			SellerID:   order.SellerID,
			Rating:     input.Rating,
			Comment:    input.Comment,
		}
		saved, err := repo.Create(ctx, review)
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "order already reviewed")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
		}

		gig, err := gigRepo.FindByID(ctx, order.GigID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gig for rating")
		}

		// Running average: no full recount on every review.
		count := decimal.NewFromInt(int64(gig.NumReviews))
		total := gig.Rating.Mul(count).Add(decimal.NewFromInt(int64(input.Rating)))
		newCount := gig.NumReviews + 1
		newAvg := total.Div(decimal.NewFromInt(int64(newCount))).Round(2)

		if err := gigRepo.UpdateRatingStats(ctx, gig.ID, newAvg, newCount); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update gig rating")
		}

		created = saved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) ListByGig(ctx context.Context, gigID uuid.UUID, params pagination.Params) (*List, error) {
	if gigID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gig id required")
	}

	list, err := s.repo.ListByGig(ctx, gigID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	return list, nil
}

package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/alexvaldes/gigworks-backend/pkg/db/models"
	"github.com/alexvaldes/gigworks-backend/pkg/enums"
	pkgerrors "github.com/alexvaldes/gigworks-backend/pkg/errors"
	"github.com/alexvaldes/gigworks-backend/pkg/pagination"
)

type stubOrdersRepo struct {
	order     *models.Order
	created   *models.Order
	createErr error
	updates   map[string]any
	updateErr error
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.created = order
	return order, nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.order
	return &copied, nil
}

func (s *stubOrdersRepo) FindByPaymentKey(ctx context.Context, key PaymentKey) (*models.Order, error) {
	if s.order == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.order, nil
}

func (s *stubOrdersRepo) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params, filters Filters) (*List, error) {
	if s.order != nil && s.order.IsParticipant(userID) {
		return &List{Orders: []models.Order{*s.order}}, nil
	}
	return &List{}, nil
}

func (s *stubOrdersRepo) Update(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updates = updates
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubGigReader struct {
	gig *models.Gig
	err error
}

func (s *stubGigReader) FindByID(ctx context.Context, id uuid.UUID) (*models.Gig, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.gig == nil || s.gig.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.gig, nil
}

func newTestGig(sellerID uuid.UUID, price string) *models.Gig {
	return &models.Gig{
		ID:       uuid.New(),
		SellerID: sellerID,
		Title:    "Logo design",
		Price:    decimal.RequireFromString(price),
		IsActive: true,
	}
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error with code %s, got %v", code, err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s", code, typed.Code())
	}
}

func TestPlaceOrderCreatesPending(t *testing.T) {
	seller := uuid.New()
	buyer := uuid.New()
	gig := newTestGig(seller, "125.50")

	repo := &stubOrdersRepo{}
	svc, err := NewService(repo, stubTxRunner{}, &stubGigReader{gig: gig})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	order, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		GigID:        gig.ID,
		BuyerID:      buyer,
		Requirements: "need it in blue",
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	if order.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending status, got %s", order.Status)
	}
	if order.PriceCents != 12550 {
		t.Fatalf("expected price_cents 12550, got %d", order.PriceCents)
	}
	if order.SellerID != seller || order.BuyerID != buyer {
		t.Fatal("participants not copied from gig")
	}
}

func TestPlaceOrderOwnGigRejected(t *testing.T) {
	seller := uuid.New()
	gig := newTestGig(seller, "40.00")

	svc, err := NewService(&stubOrdersRepo{}, stubTxRunner{}, &stubGigReader{gig: gig})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.PlaceOrder(context.Background(), PlaceOrderInput{GigID: gig.ID, BuyerID: seller})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestPlaceOrderInactiveGig(t *testing.T) {
	gig := newTestGig(uuid.New(), "40.00")
	gig.IsActive = false

	svc, err := NewService(&stubOrdersRepo{}, stubTxRunner{}, &stubGigReader{gig: gig})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.PlaceOrder(context.Background(), PlaceOrderInput{GigID: gig.ID, BuyerID: uuid.New()})
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

func TestPlaceOrderDuplicateMapsToConflict(t *testing.T) {
	gig := newTestGig(uuid.New(), "40.00")
	repo := &stubOrdersRepo{
		createErr: errors.New(`duplicate key value violates unique constraint "uq_orders_payment_key"`),
	}

	svc, err := NewService(repo, stubTxRunner{}, &stubGigReader{gig: gig})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.PlaceOrder(context.Background(), PlaceOrderInput{GigID: gig.ID, BuyerID: uuid.New()})
	expectCode(t, err, pkgerrors.CodeConflict)
}

func TestGetOrderParticipantOnly(t *testing.T) {
	order := &models.Order{
		ID:       uuid.New(),
		BuyerID:  uuid.New(),
		SellerID: uuid.New(),
		Status:   enums.OrderStatusInProgress,
	}
	repo := &stubOrdersRepo{order: order}

	svc, err := NewService(repo, stubTxRunner{}, &stubGigReader{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	got, err := svc.GetOrder(context.Background(), order.ID, order.BuyerID)
	if err != nil {
		t.Fatalf("get order as buyer: %v", err)
	}
	if got.ID != order.ID {
		t.Fatal("wrong order returned")
	}

	_, err = svc.GetOrder(context.Background(), order.ID, uuid.New())
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestUpdateStatusSellerOnly(t *testing.T) {
	order := &models.Order{
		ID:       uuid.New(),
		BuyerID:  uuid.New(),
		SellerID: uuid.New(),
		Status:   enums.OrderStatusInProgress,
	}
	repo := &stubOrdersRepo{order: order}

	svc, err := NewService(repo, stubTxRunner{}, &stubGigReader{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID: order.ID,
		ActorID: order.BuyerID,
		Target:  enums.OrderStatusDelivered,
	})
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestUpdateStatusDeliveredStampsTimestampAndFiles(t *testing.T) {
	order := &models.Order{
		ID:       uuid.New(),
		BuyerID:  uuid.New(),
		SellerID: uuid.New(),
		Status:   enums.OrderStatusInProgress,
	}
	repo := &stubOrdersRepo{order: order}

	svc, err := NewService(repo, stubTxRunner{}, &stubGigReader{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	updated, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID:       order.ID,
		ActorID:       order.SellerID,
		Target:        enums.OrderStatusDelivered,
		DeliveryFiles: []string{"https://cdn.example.com/final.zip"},
	})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}

	if updated.Status != enums.OrderStatusDelivered {
		t.Fatalf("expected delivered, got %s", updated.Status)
	}
	if updated.DeliveredAt == nil {
		t.Fatal("expected delivered_at to be stamped")
	}
	if _, ok := repo.updates["delivered_at"]; !ok {
		t.Fatal("expected delivered_at in updates")
	}
	if _, ok := repo.updates["delivery_files"]; !ok {
		t.Fatal("expected delivery_files in updates")
	}
}

func TestUpdateStatusIllegalTransition(t *testing.T) {
	order := &models.Order{
		ID:       uuid.New(),
		BuyerID:  uuid.New(),
		SellerID: uuid.New(),
		Status:   enums.OrderStatusPending,
	}
	repo := &stubOrdersRepo{order: order}

	svc, err := NewService(repo, stubTxRunner{}, &stubGigReader{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID: order.ID,
		ActorID: order.SellerID,
		Target:  enums.OrderStatusCompleted,
	})
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

func TestUpdateStatusCancelAfterDeliveredRejected(t *testing.T) {
	order := &models.Order{
		ID:       uuid.New(),
		BuyerID:  uuid.New(),
		SellerID: uuid.New(),
		Status:   enums.OrderStatusDelivered,
	}
	repo := &stubOrdersRepo{order: order}

	svc, err := NewService(repo, stubTxRunner{}, &stubGigReader{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID: order.ID,
		ActorID: order.SellerID,
		Target:  enums.OrderStatusCancelled,
	})
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

func TestUpdateStatusSameStateRejected(t *testing.T) {
	order := &models.Order{
		ID:       uuid.New(),
		BuyerID:  uuid.New(),
		SellerID: uuid.New(),
		Status:   enums.OrderStatusInProgress,
	}
	repo := &stubOrdersRepo{order: order}

	svc, err := NewService(repo, stubTxRunner{}, &stubGigReader{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID: order.ID,
		ActorID: order.SellerID,
		Target:  enums.OrderStatusInProgress,
	})
	expectCode(t, err, pkgerrors.CodeStateConflict)
	if repo.updates != nil {
		t.Fatal("no repo update expected for a rejected transition")
	}
}

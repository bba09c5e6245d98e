package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/alexvaldes/gigworks-backend/internal/orders"
	"github.com/alexvaldes/gigworks-backend/pkg/config"
	"github.com/alexvaldes/gigworks-backend/pkg/db"
	"github.com/alexvaldes/gigworks-backend/pkg/db/models"
	"github.com/alexvaldes/gigworks-backend/pkg/enums"
	pkgerrors "github.com/alexvaldes/gigworks-backend/pkg/errors"
	"github.com/alexvaldes/gigworks-backend/pkg/metrics"
)

// Reconciliation entry paths, used as metric labels.
const (
	PathWebhook = "webhook"
	PathVerify  = "verify"
)

// Metadata keys carried on the checkout session.
const (
	metaGigID        = "gig_id"
	metaBuyerID      = "buyer_id"
	metaSellerID     = "seller_id"
	metaRequirements = "requirements"
)

// CheckoutInput captures a buyer's request to pay for a gig.
type CheckoutInput struct {
	GigID        uuid.UUID
	BuyerID      uuid.UUID
	Requirements string
}

// ordersStore is the subset of the orders repository reconciliation needs.
type ordersStore interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByPaymentKey(ctx context.Context, key orders.PaymentKey) (*models.Order, error)
}

// GigReader exposes the gig lookup checkout needs.
type GigReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Gig, error)
}

// eventGuard claims gateway event ids, first writer wins. A claim is released
// when processing fails so the gateway's redelivery gets another attempt.
type eventGuard interface {
	FirstSeen(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}

// Service defines payment operations: session creation plus the two
// reconciliation entry paths.
type Service interface {
	CreateCheckoutSession(ctx context.Context, input CheckoutInput) (*CheckoutSession, error)
	HandleCheckoutCompleted(ctx context.Context, eventID string, session *CheckoutSession) (*models.Order, error)
	VerifySession(ctx context.Context, sessionID string, actorID uuid.UUID) (*models.Order, error)
}

type service struct {
	orders  ordersStore
	gigs    GigReader
	gateway Gateway
	guard   eventGuard
	cfg     config.CheckoutConfig
	metrics *metrics.ReconcilerMetrics
}

// NewService builds a payment service with the required dependencies.
func NewService(ordersRepo ordersStore, gigs GigReader, gateway Gateway, guard eventGuard, cfg config.CheckoutConfig, m *metrics.ReconcilerMetrics) (Service, error) {
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders store required")
	}
	if gigs == nil {
		return nil, fmt.Errorf("gig reader required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if guard == nil {
		return nil, fmt.Errorf("event guard required")
	}
	return &service{
		orders:  ordersRepo,
		gigs:    gigs,
		gateway: gateway,
		guard:   guard,
		cfg:     cfg,
		metrics: m,
	}, nil
}

func (s *service) CreateCheckoutSession(ctx context.Context, input CheckoutInput) (*CheckoutSession, error) {
	if input.GigID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gig id required")
	}
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	gig, err := s.gigs.FindByID(ctx, input.GigID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gig not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gig")
	}
	if !gig.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "gig is no longer available")
	}
	if gig.SellerID == input.BuyerID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot buy your own gig")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.cfg.SuccessURL),
		CancelURL:  stripe.String(s.cfg.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(s.cfg.Currency),
					UnitAmount: stripe.Int64(gig.PriceCents()),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(gig.Title),
						Description: stripe.String(gig.Category),
					},
				},
			},
		},
	}
	params.AddMetadata(metaGigID, gig.ID.String())
	params.AddMetadata(metaBuyerID, input.BuyerID.String())
	params.AddMetadata(metaSellerID, gig.SellerID.String())
	params.AddMetadata(metaRequirements, input.Requirements)

	sess, err := s.gateway.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}
	return sess, nil
}

// HandleCheckoutCompleted is the push entry path. Duplicate event deliveries
// and replays return the existing order without side effects.
func (s *service) HandleCheckoutCompleted(ctx context.Context, eventID string, session *CheckoutSession) (*models.Order, error) {
	if session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session payload required")
	}

	first, err := s.guard.FirstSeen(ctx, eventID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim event id")
	}
	if !first {
		s.metrics.IncOutcome(PathWebhook, "duplicate_event")
		return nil, nil
	}

	if !session.Paid() {
		s.metrics.IncOutcome(PathWebhook, "unpaid_ignored")
		return nil, nil
	}

	key, requirements, err := keyFromSession(session)
	if err != nil {
		s.releaseClaim(ctx, eventID)
		return nil, err
	}

	order, err := s.reconcile(ctx, PathWebhook, key, requirements)
	if err != nil {
		s.releaseClaim(ctx, eventID)
		return nil, err
	}
	return order, nil
}

// releaseClaim frees the event id after a failed reconcile. If the release
// itself fails the TTL still expires the claim.
func (s *service) releaseClaim(ctx context.Context, eventID string) {
	_ = s.guard.Release(ctx, eventID)
}

// VerifySession is the pull entry path: the client returns from hosted
// checkout and asks for its order.
func (s *service) VerifySession(ctx context.Context, sessionID string, actorID uuid.UUID) (*models.Order, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	session, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "retrieve checkout session")
	}
	if !session.Paid() {
		return nil, pkgerrors.New(pkgerrors.CodePaymentPending, "payment not completed")
	}

	key, requirements, err := keyFromSession(session)
	if err != nil {
		return nil, err
	}
	if key.BuyerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "session does not belong to user")
	}
	return s.reconcile(ctx, PathVerify, key, requirements)
}

// reconcile resolves a paid session to exactly one order. The insert is
// conditional: racing paths collide on uq_orders_payment_key and the loser
// refetches the winner's row.
func (s *service) reconcile(ctx context.Context, path string, key orders.PaymentKey, requirements string) (*models.Order, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveDuration(path, time.Since(start))
	}()

	existing, err := s.orders.FindByPaymentKey(ctx, key)
	if err == nil {
		s.metrics.IncOutcome(path, "existing")
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find order by payment key")
	}

	order := &models.Order{
		GigID:        key.GigID,
		BuyerID:      key.BuyerID,
		SellerID:     key.SellerID,
		PriceCents:   key.PriceCents,
		Status:       enums.OrderStatusInProgress,
		Requirements: requirements,
	}
	created, err := s.orders.Create(ctx, order)
	if err == nil {
		s.metrics.IncOutcome(path, "created")
		return created, nil
	}
	if !db.IsUniqueViolation(err, "") {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	// Lost the race: the other entry path inserted first.
	winner, err := s.orders.FindByPaymentKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found after reconcile")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refetch order after conflict")
	}
	s.metrics.IncOutcome(path, "existing")
	return winner, nil
}

func keyFromSession(session *CheckoutSession) (orders.PaymentKey, string, error) {
	gigID, err := uuid.Parse(session.Metadata[metaGigID])
	if err != nil {
		return orders.PaymentKey{}, "", pkgerrors.New(pkgerrors.CodeValidation, "session metadata missing gig id")
	}
	buyerID, err := uuid.Parse(session.Metadata[metaBuyerID])
	if err != nil {
		return orders.PaymentKey{}, "", pkgerrors.New(pkgerrors.CodeValidation, "session metadata missing buyer id")
	}
	sellerID, err := uuid.Parse(session.Metadata[metaSellerID])
	if err != nil {
		return orders.PaymentKey{}, "", pkgerrors.New(pkgerrors.CodeValidation, "session metadata missing seller id")
	}

	key := orders.PaymentKey{
		GigID:      gigID,
		BuyerID:    buyerID,
		SellerID:   sellerID,
		PriceCents: session.AmountTotalCents,
	}
	return key, session.Metadata[metaRequirements], nil
}

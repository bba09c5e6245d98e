package payments

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"

	pkgstripe "github.com/alexvaldes/gigworks-backend/pkg/stripe"
)

// CheckoutSession is the gateway-neutral view of a hosted checkout session.
type CheckoutSession struct {
	ID               string
	URL              string
	PaymentStatus    string
	AmountTotalCents int64
	Metadata         map[string]string
}

// Paid reports whether the gateway settled the session.
func (s CheckoutSession) Paid() bool {
	return s.PaymentStatus == string(stripe.CheckoutSessionPaymentStatusPaid)
}

// Gateway exposes the subset of Stripe operations the payment service needs.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error)
}

type stripeGateway struct{}

// NewStripeGateway wraps the initialized Stripe client so the payment service can be tested.
func NewStripeGateway(api *pkgstripe.Client) Gateway {
	if api == nil {
		return nil
	}
	return &stripeGateway{}
}

func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*CheckoutSession, error) {
	if params != nil {
		params.Context = ctx
	}
	sess, err := session.New(params)
	if err != nil {
		return nil, err
	}
	return FromStripeSession(sess), nil
}

func (g *stripeGateway) GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := session.Get(id, params)
	if err != nil {
		return nil, err
	}
	return FromStripeSession(sess), nil
}

// FromStripeSession converts a raw Stripe session into the gateway-neutral view.
func FromStripeSession(sess *stripe.CheckoutSession) *CheckoutSession {
	if sess == nil {
		return nil
	}
	return &CheckoutSession{
		ID:               sess.ID,
		URL:              sess.URL,
		PaymentStatus:    string(sess.PaymentStatus),
		AmountTotalCents: sess.AmountTotal,
		Metadata:         sess.Metadata,
	}
}

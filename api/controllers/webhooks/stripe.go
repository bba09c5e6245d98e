package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/alexvaldes/gigworks-backend/api/responses"
	"github.com/alexvaldes/gigworks-backend/internal/payments"
	"github.com/alexvaldes/gigworks-backend/pkg/db/models"
	pkgerrors "github.com/alexvaldes/gigworks-backend/pkg/errors"
	"github.com/alexvaldes/gigworks-backend/pkg/logger"
)

type CheckoutWebhookService interface {
	HandleCheckoutCompleted(ctx context.Context, eventID string, session *payments.CheckoutSession) (*models.Order, error)
}

type stripeClient interface {
	SigningSecret() string
}

// StripeWebhook receives checkout lifecycle events. Signature failures never
// mutate state; duplicate deliveries acknowledge without a second order.
func StripeWebhook(svc CheckoutWebhookService, client stripeClient, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if client == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stripe client unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		sigHeader := r.Header.Get("Stripe-Signature")
		if sigHeader == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeSignature, "stripe signature missing"))
			return
		}

		event, err := webhook.ConstructEvent(payload, sigHeader, client.SigningSecret())
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeSignature, err, "verify signature"))
			return
		}

		if event.Type != stripe.EventTypeCheckoutSessionCompleted {
			responses.WriteSuccess(w, nil)
			return
		}

		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout session"))
			return
		}

		order, err := svc.HandleCheckoutCompleted(ctx, event.ID, payments.FromStripeSession(&session))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil && order != nil {
			logCtx := logg.WithOrderID(ctx, order.ID.String())
			logg.Info(logCtx, "checkout reconciled from webhook")
		}
		responses.WriteSuccess(w, nil)
	}
}

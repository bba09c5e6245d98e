package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/alexvaldes/gigworks-backend/api/responses"
	"github.com/alexvaldes/gigworks-backend/api/validators"
	"github.com/alexvaldes/gigworks-backend/internal/payments"
	pkgerrors "github.com/alexvaldes/gigworks-backend/pkg/errors"
	"github.com/alexvaldes/gigworks-backend/pkg/logger"
)

type checkoutSessionPayload struct {
	GigID        string `json:"gig_id" validate:"required,uuid"`
	Requirements string `json:"requirements,omitempty" validate:"max=5000"`
}

// PaymentCheckoutSession starts a hosted checkout flow for a gig.
func PaymentCheckoutSession(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		buyerID, err := actorID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body checkoutSessionPayload
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		gigID, err := uuid.Parse(body.GigID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid identifier").WithDetails(map[string]any{"field": "gig_id"}))
			return
		}

		session, err := svc.CreateCheckoutSession(ctx, payments.CheckoutInput{
			GigID:        gigID,
			BuyerID:      buyerID,
			Requirements: body.Requirements,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{
			"session_id":   session.ID,
			"checkout_url": session.URL,
		})
	}
}

// PaymentVerify resolves a returning checkout session to its order. An unpaid
// session maps to a retryable 402 so the client can poll.
func PaymentVerify(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sessionID := strings.TrimSpace(chi.URLParam(r, "sessionId"))
		if sessionID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "session id required"))
			return
		}

		order, err := svc.VerifySession(ctx, sessionID, actor)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alexvaldes/gigworks-backend/api/responses"
	"github.com/alexvaldes/gigworks-backend/api/validators"
	"github.com/alexvaldes/gigworks-backend/internal/gigs"
	pkgerrors "github.com/alexvaldes/gigworks-backend/pkg/errors"
	"github.com/alexvaldes/gigworks-backend/pkg/logger"
)

type createGigPayload struct {
	Title        string   `json:"title" validate:"required,min=3,max=120"`
	Description  string   `json:"description" validate:"required,min=10"`
	Category     string   `json:"category" validate:"required"`
	Price        string   `json:"price" validate:"required"`
	DeliveryDays int      `json:"delivery_days" validate:"required,min=1,max=90"`
	Images       []string `json:"images,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// GigCreate lists a new gig for the authenticated seller.
func GigCreate(svc gigs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gigs service unavailable"))
			return
		}

		sellerID, err := actorID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body createGigPayload
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		price, err := decimal.NewFromString(strings.TrimSpace(body.Price))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "price must be a decimal amount"))
			return
		}

		gig, err := svc.Create(ctx, gigs.CreateInput{
			SellerID:     sellerID,
			Title:        body.Title,
			Description:  body.Description,
			Category:     body.Category,
			Price:        price,
			DeliveryDays: body.DeliveryDays,
			Images:       body.Images,
			Tags:         body.Tags,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, gig)
	}
}

// GigGet returns a single gig by id.
func GigGet(svc gigs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gigs service unavailable"))
			return
		}

		id, err := pathUUID(r, chi.URLParam(r, "gigId"), "gigId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		gig, err := svc.Get(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, gig)
	}
}

// GigList returns the public catalog page with optional filters.
func GigList(svc gigs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gigs service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		filters, err := buildGigFilters(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := svc.ListPublic(ctx, params, filters)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// GigDeactivate soft-deletes a gig. Only the owning seller may do this.
func GigDeactivate(svc gigs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gigs service unavailable"))
			return
		}

		sellerID, err := actorID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		id, err := pathUUID(r, chi.URLParam(r, "gigId"), "gigId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Deactivate(ctx, id, sellerID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}

func buildGigFilters(r *http.Request) (gigs.Filters, error) {
	query := r.URL.Query()
	filters := gigs.Filters{
		Category: strings.TrimSpace(query.Get("category")),
		Query:    strings.TrimSpace(query.Get("q")),
	}

	if raw := strings.TrimSpace(query.Get("seller_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return gigs.Filters{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid identifier").WithDetails(map[string]any{"field": "seller_id"})
		}
		filters.SellerID = &id
	}
	if raw := strings.TrimSpace(query.Get("min_price")); raw != "" {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return gigs.Filters{}, pkgerrors.New(pkgerrors.CodeValidation, "min_price must be a decimal amount")
		}
		filters.MinPrice = &value
	}
	if raw := strings.TrimSpace(query.Get("max_price")); raw != "" {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return gigs.Filters{}, pkgerrors.New(pkgerrors.CodeValidation, "max_price must be a decimal amount")
		}
		filters.MaxPrice = &value
	}
	return filters, nil
}

package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/alexvaldes/gigworks-backend/api/middleware"
	"github.com/alexvaldes/gigworks-backend/internal/orders"
	"github.com/alexvaldes/gigworks-backend/pkg/db/models"
	"github.com/alexvaldes/gigworks-backend/pkg/enums"
	pkgerrors "github.com/alexvaldes/gigworks-backend/pkg/errors"
	"github.com/alexvaldes/gigworks-backend/pkg/logger"
	"github.com/alexvaldes/gigworks-backend/pkg/pagination"
)

type stubOrdersService struct {
	placeInput  orders.PlaceOrderInput
	placeResult *models.Order
	placeErr    error

	updateInput  orders.UpdateStatusInput
	updateResult *models.Order
	updateErr    error
}

func (s *stubOrdersService) PlaceOrder(_ context.Context, input orders.PlaceOrderInput) (*models.Order, error) {
	s.placeInput = input
	return s.placeResult, s.placeErr
}

func (s *stubOrdersService) GetOrder(_ context.Context, orderID, _ uuid.UUID) (*models.Order, error) {
	return &models.Order{ID: orderID}, nil
}

func (s *stubOrdersService) ListOrders(_ context.Context, _ uuid.UUID, _ pagination.Params, _ orders.Filters) (*orders.List, error) {
	return &orders.List{}, nil
}

func (s *stubOrdersService) UpdateStatus(_ context.Context, input orders.UpdateStatusInput) (*models.Order, error) {
	s.updateInput = input
	return s.updateResult, s.updateErr
}

func controllerLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func authedRequest(method, target, body string, userID uuid.UUID) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func TestOrderPlaceCreatesOrder(t *testing.T) {
	buyerID := uuid.New()
	gigID := uuid.New()
	svc := &stubOrdersService{placeResult: &models.Order{ID: uuid.New(), BuyerID: buyerID, GigID: gigID}}
	handler := OrderPlace(svc, controllerLogger())

	body := `{"gig_id":"` + gigID.String() + `","requirements":"logo in svg"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/orders", body, buyerID))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.placeInput.GigID != gigID {
		t.Fatalf("expected gig %s, got %s", gigID, svc.placeInput.GigID)
	}
	if svc.placeInput.BuyerID != buyerID {
		t.Fatalf("buyer must come from the auth context, got %s", svc.placeInput.BuyerID)
	}
	if svc.placeInput.Requirements != "logo in svg" {
		t.Fatalf("unexpected requirements %q", svc.placeInput.Requirements)
	}
}

func TestOrderPlaceRejectsUnknownFields(t *testing.T) {
	svc := &stubOrdersService{}
	handler := OrderPlace(svc, controllerLogger())

	body := `{"gig_id":"` + uuid.NewString() + `","price_cents":1}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/orders", body, uuid.New()))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestOrderPlaceRequiresAuthContext(t *testing.T) {
	handler := OrderPlace(&stubOrdersService{}, controllerLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"gig_id":"`+uuid.NewString()+`"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestOrderUpdateStatusParsesTarget(t *testing.T) {
	sellerID := uuid.New()
	orderID := uuid.New()
	svc := &stubOrdersService{updateResult: &models.Order{ID: orderID, Status: enums.OrderStatusDelivered}}
	handler := OrderUpdateStatus(svc, controllerLogger())

	body := `{"status":"delivered","delivery_files":["https://cdn.gigworks.app/final.zip"]}`
	req := authedRequest(http.MethodPut, "/api/v1/orders/"+orderID.String()+"/status", body, sellerID)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderId", orderID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.updateInput.Target != enums.OrderStatusDelivered {
		t.Fatalf("expected delivered target, got %s", svc.updateInput.Target)
	}
	if len(svc.updateInput.DeliveryFiles) != 1 {
		t.Fatalf("expected delivery files forwarded, got %v", svc.updateInput.DeliveryFiles)
	}
}

func TestOrderUpdateStatusInvalidTarget(t *testing.T) {
	orderID := uuid.New()
	handler := OrderUpdateStatus(&stubOrdersService{}, controllerLogger())

	req := authedRequest(http.MethodPut, "/api/v1/orders/"+orderID.String()+"/status", `{"status":"shipped"}`, uuid.New())
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderId", orderID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestOrderUpdateStatusStateConflictMapsTo422(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrdersService{updateErr: pkgerrors.New(pkgerrors.CodeStateConflict, "cannot move from completed to delivered")}
	handler := OrderUpdateStatus(svc, controllerLogger())

	req := authedRequest(http.MethodPut, "/api/v1/orders/"+orderID.String()+"/status", `{"status":"delivered"}`, uuid.New())
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderId", orderID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Code != string(pkgerrors.CodeStateConflict) {
		t.Fatalf("unexpected code %q", body.Error.Code)
	}
}

package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	ordersvc "github.com/blackhawk-2003/Readjunction-Major-sub000/internal/orders"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/db/models"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/enums"
	pkgerrors "github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/errors"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/pagination"
)

type stubOrderService struct {
	order       *models.Order
	orders      []models.Order
	meta        pagination.Meta
	err         error
	lastActor   ordersvc.Actor
	lastStatus  *enums.OrderStatus
	lastUpdate  ordersvc.UpdateStatusInput
	deletedWith ordersvc.Actor
}

func (s *stubOrderService) Create(context.Context, uuid.UUID, ordersvc.CreateOrderInput) (*models.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) Get(_ context.Context, actor ordersvc.Actor, _ uuid.UUID) (*models.Order, error) {
	s.lastActor = actor
	return s.order, s.err
}

func (s *stubOrderService) ListForBuyer(_ context.Context, _ uuid.UUID, status *enums.OrderStatus, _ pagination.Params) ([]models.Order, pagination.Meta, error) {
	s.lastStatus = status
	return s.orders, s.meta, s.err
}

func (s *stubOrderService) ListForSeller(context.Context, uuid.UUID, pagination.Params) ([]models.Order, pagination.Meta, error) {
	return s.orders, s.meta, s.err
}

func (s *stubOrderService) UpdateStatus(_ context.Context, actor ordersvc.Actor, _ uuid.UUID, input ordersvc.UpdateStatusInput) (*models.Order, error) {
	s.lastActor = actor
	s.lastUpdate = input
	return s.order, s.err
}

func (s *stubOrderService) UpdatePaymentStatus(context.Context, ordersvc.Actor, uuid.UUID, enums.PaymentStatus, *string) (*models.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) SoftDelete(_ context.Context, actor ordersvc.Actor, _ uuid.UUID) error {
	s.deletedWith = actor
	return s.err
}

func (s *stubOrderService) SetGatewayOrder(context.Context, uuid.UUID, string) error {
	return s.err
}

func (s *stubOrderService) ConfirmPayment(context.Context, uuid.UUID, string) (*models.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) MarkRefunded(context.Context, ordersvc.Actor, uuid.UUID, string) (*models.Order, error) {
	return s.order, s.err
}

func withOrderID(req *http.Request, orderID uuid.UUID) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderId", orderID.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestOrderCreate(t *testing.T) {
	order := &models.Order{ID: uuid.New(), OrderNumber: "RJ2606170001", Status: enums.OrderStatusPending}
	handler := OrderCreate(&stubOrderService{order: order}, nil)

	body := `{"items":[{"product_id":"` + uuid.NewString() + `","quantity":2}],` +
		`"payment_method":"razorpay",` +
		`"shipping_address":{"full_name":"A","line1":"B","city":"C","state":"D","postal_code":"1","country":"IN"},` +
		`"shipping_method":"standard"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/orders", body, "buyer"))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data orderResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderNumber != "RJ2606170001" {
		t.Fatalf("unexpected order number: %s", envelope.Data.OrderNumber)
	}
}

func TestOrderCreateRejectsBadPayload(t *testing.T) {
	handler := OrderCreate(&stubOrderService{}, nil)

	for name, body := range map[string]string{
		"no items":        `{"items":[],"payment_method":"razorpay","shipping_address":{"full_name":"A","line1":"B","city":"C","state":"D","postal_code":"1","country":"IN"},"shipping_method":"standard"}`,
		"bad pay method":  `{"items":[{"product_id":"` + uuid.NewString() + `","quantity":1}],"payment_method":"barter","shipping_address":{"full_name":"A","line1":"B","city":"C","state":"D","postal_code":"1","country":"IN"},"shipping_method":"standard"}`,
		"bad ship method": `{"items":[{"product_id":"` + uuid.NewString() + `","quantity":1}],"payment_method":"razorpay","shipping_address":{"full_name":"A","line1":"B","city":"C","state":"D","postal_code":"1","country":"IN"},"shipping_method":"teleport"}`,
	} {
		t.Run(name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/orders", body, "buyer"))
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d: %s", resp.Code, resp.Body.String())
			}
		})
	}
}

func TestOrderListMineStatusFilter(t *testing.T) {
	stub := &stubOrderService{meta: pagination.Meta{Page: 1, Limit: 10}}
	handler := OrderListMine(stub, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/orders/my-orders?status=shipped", "", "buyer"))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if stub.lastStatus == nil || *stub.lastStatus != enums.OrderStatusShipped {
		t.Fatalf("status filter not forwarded: %v", stub.lastStatus)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/orders/my-orders?status=bogus", "", "buyer"))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bogus filter got %d", resp.Code)
	}
}

func TestOrderDetailForwardsActor(t *testing.T) {
	orderID := uuid.New()
	stub := &stubOrderService{order: &models.Order{ID: orderID}}
	handler := OrderDetail(stub, nil)

	req := withOrderID(authedRequest(http.MethodGet, "/api/v1/orders/"+orderID.String(), "", "seller"), orderID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if stub.lastActor.Role != enums.MemberRoleSeller {
		t.Fatalf("actor role not forwarded: %s", stub.lastActor.Role)
	}
}

func TestOrderDetailInvalidID(t *testing.T) {
	handler := OrderDetail(&stubOrderService{}, nil)

	req := authedRequest(http.MethodGet, "/api/v1/orders/not-a-uuid", "", "buyer")
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderId", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderUpdateStatus(t *testing.T) {
	orderID := uuid.New()
	stub := &stubOrderService{order: &models.Order{ID: orderID, Status: enums.OrderStatusConfirmed}}
	handler := OrderUpdateStatus(stub, nil)

	body := `{"status":"Confirmed","note":"looks good"}`
	req := withOrderID(authedRequest(http.MethodPatch, "/api/v1/orders/admin/"+orderID.String()+"/status", body, "seller"), orderID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.lastUpdate.Target != enums.OrderStatusConfirmed {
		t.Fatalf("status not normalized: %s", stub.lastUpdate.Target)
	}
	if stub.lastUpdate.Note == nil || *stub.lastUpdate.Note != "looks good" {
		t.Fatalf("note not forwarded")
	}
}

func TestOrderUpdateStatusForwardsShippingFields(t *testing.T) {
	orderID := uuid.New()
	stub := &stubOrderService{order: &models.Order{ID: orderID, Status: enums.OrderStatusShipped}}
	handler := OrderUpdateStatus(stub, nil)

	body := `{"status":"shipped","tracking_number":"TRK12345","estimated_delivery":"2026-09-05T00:00:00Z"}`
	req := withOrderID(authedRequest(http.MethodPatch, "/api/v1/orders/admin/"+orderID.String()+"/status", body, "seller"), orderID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.lastUpdate.TrackingNumber == nil || *stub.lastUpdate.TrackingNumber != "TRK12345" {
		t.Fatalf("tracking number not forwarded")
	}
	want := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	if stub.lastUpdate.EstimatedDelivery == nil || !stub.lastUpdate.EstimatedDelivery.Equal(want) {
		t.Fatalf("estimated delivery not forwarded: %v", stub.lastUpdate.EstimatedDelivery)
	}
}

func TestOrderUpdateStatusConflictPassesThrough(t *testing.T) {
	orderID := uuid.New()
	stub := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "transition not allowed")}
	handler := OrderUpdateStatus(stub, nil)

	body := `{"status":"delivered"}`
	req := withOrderID(authedRequest(http.MethodPatch, "/api/v1/orders/admin/"+orderID.String()+"/status", body, "buyer"), orderID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestOrderDelete(t *testing.T) {
	orderID := uuid.New()
	stub := &stubOrderService{}
	handler := OrderDelete(stub, nil)

	req := withOrderID(authedRequest(http.MethodDelete, "/api/v1/orders/admin/"+orderID.String(), "", "admin"), orderID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if stub.deletedWith.Role != enums.MemberRoleAdmin {
		t.Fatalf("actor not forwarded: %s", stub.deletedWith.Role)
	}
}

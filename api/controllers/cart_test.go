package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/blackhawk-2003/Readjunction-Major-sub000/api/middleware"
	cartsvc "github.com/blackhawk-2003/Readjunction-Major-sub000/internal/cart"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/db/models"
	pkgerrors "github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/errors"
)

type stubCartService struct {
	cart      *models.Cart
	err       error
	lastInput cartsvc.AddItemInput
}

func (s *stubCartService) GetCart(context.Context, uuid.UUID) (*models.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) AddItem(_ context.Context, _ uuid.UUID, input cartsvc.AddItemInput) (*models.Cart, error) {
	s.lastInput = input
	return s.cart, s.err
}

func (s *stubCartService) UpdateItemQuantity(context.Context, uuid.UUID, uuid.UUID, cartsvc.UpdateItemInput) (*models.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) RemoveItem(context.Context, uuid.UUID, uuid.UUID) (*models.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) ToggleSelection(context.Context, uuid.UUID, uuid.UUID) (*models.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) ApplyCoupon(context.Context, uuid.UUID, string) (*models.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) SetShipping(context.Context, uuid.UUID, cartsvc.SetShippingInput) (*models.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) Clear(context.Context, uuid.UUID) (*models.Cart, error) {
	return s.cart, s.err
}

func authedRequest(method, target, body, role string) *http.Request {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	ctx = middleware.WithRole(ctx, role)
	return req.WithContext(ctx)
}

func TestCartFetchSuccess(t *testing.T) {
	buyerID := uuid.New()
	cart := &models.Cart{
		ID:      uuid.New(),
		BuyerID: buyerID,
		Total:   decimal.NewFromInt(286),
	}
	handler := CartFetch(&stubCartService{cart: cart}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	ctx := middleware.WithUserID(req.Context(), buyerID.String())
	ctx = middleware.WithRole(ctx, "buyer")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req.WithContext(ctx))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data cartResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != cart.ID {
		t.Fatalf("unexpected cart id: %s", envelope.Data.ID)
	}
	if !envelope.Data.Totals.Total.Equal(decimal.NewFromInt(286)) {
		t.Fatalf("unexpected total: %s", envelope.Data.Totals.Total)
	}
}

func TestCartFetchMissingCredentials(t *testing.T) {
	handler := CartFetch(&stubCartService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartAddItem(t *testing.T) {
	stub := &stubCartService{cart: &models.Cart{ID: uuid.New()}}
	handler := CartAddItem(stub, nil)

	productID := uuid.New()
	body := `{"product_id":"` + productID.String() + `","quantity":3}`
	req := authedRequest(http.MethodPost, "/api/v1/cart", body, "buyer")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.lastInput.ProductID != productID || stub.lastInput.Quantity != 3 {
		t.Fatalf("service got wrong input: %+v", stub.lastInput)
	}
}

func TestCartAddItemRejectsBadPayload(t *testing.T) {
	handler := CartAddItem(&stubCartService{}, nil)

	for name, body := range map[string]string{
		"missing quantity": `{"product_id":"` + uuid.NewString() + `"}`,
		"zero quantity":    `{"product_id":"` + uuid.NewString() + `","quantity":0}`,
		"unknown field":    `{"product_id":"` + uuid.NewString() + `","quantity":1,"price":10}`,
		"not json":         `nope`,
	} {
		t.Run(name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart", body, "buyer"))
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d", resp.Code)
			}
		})
	}
}

func TestCartServiceErrorsMapToStatus(t *testing.T) {
	for name, tc := range map[string]struct {
		err  error
		want int
	}{
		"conflict":  {pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock"), http.StatusConflict},
		"not found": {pkgerrors.New(pkgerrors.CodeNotFound, "product not found"), http.StatusNotFound},
		"internal":  {pkgerrors.New(pkgerrors.CodeInternal, "boom"), http.StatusInternalServerError},
	} {
		t.Run(name, func(t *testing.T) {
			handler := CartAddItem(&stubCartService{err: tc.err}, nil)
			body := `{"product_id":"` + uuid.NewString() + `","quantity":1}`
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart", body, "buyer"))
			if resp.Code != tc.want {
				t.Fatalf("expected %d got %d", tc.want, resp.Code)
			}
		})
	}
}

func TestCartSetShippingRejectsUnknownMethod(t *testing.T) {
	handler := CartSetShipping(&stubCartService{cart: &models.Cart{}}, nil)
	body := `{"address":{"full_name":"A","line1":"B","city":"C","state":"D","postal_code":"1","country":"IN","phone":"9"},"method":"drone"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart/shipping", body, "buyer"))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

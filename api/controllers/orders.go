package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/blackhawk-2003/Readjunction-Major-sub000/api/responses"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/api/validators"
	ordersvc "github.com/blackhawk-2003/Readjunction-Major-sub000/internal/orders"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/db/models"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/enums"
	pkgerrors "github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/errors"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/logger"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/pagination"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/types"
)

type createOrderRequest struct {
	Items           []orderLinePayload `json:"items" validate:"required,min=1,dive"`
	PaymentMethod   string             `json:"payment_method" validate:"required"`
	ShippingAddress types.Address      `json:"shipping_address" validate:"required"`
	ShippingMethod  string             `json:"shipping_method" validate:"required"`
	CouponCode      *string            `json:"coupon_code,omitempty"`
	BuyerNotes      *string            `json:"buyer_notes,omitempty"`
}

type orderLinePayload struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

func (p createOrderRequest) toInput() (ordersvc.CreateOrderInput, error) {
	method, err := enums.ParsePaymentMethod(p.PaymentMethod)
	if err != nil {
		return ordersvc.CreateOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}
	shipping, err := enums.ParseShippingMethod(p.ShippingMethod)
	if err != nil {
		return ordersvc.CreateOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping method")
	}

	items := make([]ordersvc.OrderLineInput, 0, len(p.Items))
	for _, line := range p.Items {
		items = append(items, ordersvc.OrderLineInput{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	return ordersvc.CreateOrderInput{
		Items:           items,
		PaymentMethod:   method,
		ShippingAddress: p.ShippingAddress,
		ShippingMethod:  shipping,
		CouponCode:      p.CouponCode,
		BuyerNotes:      p.BuyerNotes,
	}, nil
}

// OrderCreate turns the checkout payload into a persisted order.
func OrderCreate(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := buyerIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), buyerID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}

// OrderListMine lists the buyer's own orders with optional status filter.
func OrderListMine(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := buyerIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := paginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := statusFilterFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, meta, err := svc.ListForBuyer(r.Context(), buyerID, status, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderListResponse(rows, meta))
	}
}

// OrderListSeller lists orders containing at least one of the seller's items.
func OrderListSeller(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := paginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, meta, err := svc.ListForSeller(r.Context(), actor.ID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderListResponse(rows, meta))
	}
}

// OrderDetail returns one order, scoped to the requesting actor.
func OrderDetail(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

type updateOrderStatusRequest struct {
	Status            string     `json:"status" validate:"required"`
	Note              *string    `json:"note,omitempty"`
	TrackingNumber    *string    `json:"tracking_number,omitempty"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
}

// OrderUpdateStatus applies a role-gated status transition.
func OrderUpdateStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.UpdateStatus(r.Context(), actor, orderID, ordersvc.UpdateStatusInput{
			Target:            enums.OrderStatus(strings.ToLower(strings.TrimSpace(payload.Status))),
			Note:              payload.Note,
			TrackingNumber:    payload.TrackingNumber,
			EstimatedDelivery: payload.EstimatedDelivery,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

type updatePaymentStatusRequest struct {
	PaymentStatus string  `json:"payment_status" validate:"required"`
	Note          *string `json:"note,omitempty"`
}

// OrderUpdatePayment lets an admin patch the payment status directly.
func OrderUpdatePayment(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updatePaymentStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := enums.PaymentStatus(strings.ToLower(strings.TrimSpace(payload.PaymentStatus)))
		if !status.IsValid() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status"))
			return
		}

		order, err := svc.UpdatePaymentStatus(r.Context(), actor, orderID, status, payload.Note)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// OrderDelete soft deletes an order so it disappears from all listings.
func OrderDelete(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SoftDelete(r.Context(), actor, orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func paginationFromQuery(r *http.Request) (pagination.Params, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<20)
	if err != nil {
		return pagination.Params{}, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Page: page, Limit: limit}, nil
}

func statusFilterFromQuery(r *http.Request) (*enums.OrderStatus, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("status"))
	if raw == "" {
		return nil, nil
	}
	status := enums.OrderStatus(strings.ToLower(raw))
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter").
			WithDetails(map[string]any{"status": raw})
	}
	return &status, nil
}

type orderResponse struct {
	ID          uuid.UUID           `json:"id"`
	OrderNumber string              `json:"order_number"`
	BuyerID     uuid.UUID           `json:"buyer_id"`
	Status      enums.OrderStatus   `json:"status"`
	Items       []orderItemResponse `json:"items"`
	StatusLog   []statusLogEntry    `json:"status_log,omitempty"`

	PaymentMethod  enums.PaymentMethod `json:"payment_method"`
	PaymentStatus  enums.PaymentStatus `json:"payment_status"`
	GatewayOrderID *string             `json:"gateway_order_id,omitempty"`
	TransactionID  *string             `json:"transaction_id,omitempty"`
	PaidAt         *time.Time          `json:"paid_at,omitempty"`

	ShippingAddress   *types.Address       `json:"shipping_address,omitempty"`
	ShippingMethod    enums.ShippingMethod `json:"shipping_method"`
	TrackingNumber    *string              `json:"tracking_number,omitempty"`
	EstimatedDelivery *time.Time           `json:"estimated_delivery,omitempty"`
	ShippedAt         *time.Time           `json:"shipped_at,omitempty"`
	DeliveredAt       *time.Time           `json:"delivered_at,omitempty"`

	Totals     totalsResponse `json:"totals"`
	CouponCode *string        `json:"coupon_code,omitempty"`

	BuyerNotes         *string `json:"buyer_notes,omitempty"`
	CancellationReason *string `json:"cancellation_reason,omitempty"`
	RefundReason       *string `json:"refund_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type orderItemResponse struct {
	ProductID    uuid.UUID       `json:"product_id"`
	SellerID     uuid.UUID       `json:"seller_id"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	ProductName  string          `json:"product_name"`
	ProductImage *string         `json:"product_image,omitempty"`
	SellerName   string          `json:"seller_name"`
}

type statusLogEntry struct {
	Status        enums.OrderStatus `json:"status"`
	Note          *string           `json:"note,omitempty"`
	UpdatedByRole enums.MemberRole  `json:"updated_by_role"`
	CreatedAt     time.Time         `json:"created_at"`
}

type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Meta   pagination.Meta `json:"meta"`
}

func newOrderResponse(order *models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ProductID:    item.ProductID,
			SellerID:     item.SellerID,
			Quantity:     item.Quantity,
			Price:        item.Price,
			ProductName:  item.ProductName,
			ProductImage: item.ProductImage,
			SellerName:   item.SellerName,
		})
	}

	log := make([]statusLogEntry, 0, len(order.StatusLog))
	for _, event := range order.StatusLog {
		log = append(log, statusLogEntry{
			Status:        event.Status,
			Note:          event.Note,
			UpdatedByRole: event.UpdatedByRole,
			CreatedAt:     event.CreatedAt,
		})
	}

	return orderResponse{
		ID:                 order.ID,
		OrderNumber:        order.OrderNumber,
		BuyerID:            order.BuyerID,
		Status:             order.Status,
		Items:              items,
		StatusLog:          log,
		PaymentMethod:      order.PaymentMethod,
		PaymentStatus:      order.PaymentStatus,
		GatewayOrderID:     order.GatewayOrderID,
		TransactionID:      order.TransactionID,
		PaidAt:             order.PaidAt,
		ShippingAddress:    order.ShippingAddress,
		ShippingMethod:     order.ShippingMethod,
		TrackingNumber:     order.TrackingNumber,
		EstimatedDelivery:  order.EstimatedDelivery,
		ShippedAt:          order.ShippedAt,
		DeliveredAt:        order.DeliveredAt,
		Totals: totalsResponse{
			Subtotal: order.Subtotal,
			Tax:      order.Tax,
			Shipping: order.Shipping,
			Discount: order.Discount,
			Total:    order.Total,
		},
		CouponCode:         order.CouponCode,
		BuyerNotes:         order.BuyerNotes,
		CancellationReason: order.CancellationReason,
		RefundReason:       order.RefundReason,
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
	}
}

func newOrderListResponse(rows []models.Order, meta pagination.Meta) orderListResponse {
	out := make([]orderResponse, 0, len(rows))
	for i := range rows {
		out = append(out, newOrderResponse(&rows[i]))
	}
	return orderListResponse{Orders: out, Meta: meta}
}

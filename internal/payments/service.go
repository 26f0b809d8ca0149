package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/blackhawk-2003/Readjunction-Major-sub000/internal/orders"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/db/models"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/enums"
	pkgerrors "github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/errors"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/razorpay"
)

// capturedStatus is the only gateway payment state we accept as settled.
const capturedStatus = "captured"

type gateway interface {
	CreateOrder(ctx context.Context, params razorpay.OrderCreateParams) (*razorpay.GatewayOrder, error)
	FetchPayment(ctx context.Context, paymentID string) (*razorpay.GatewayPayment, error)
	CreateRefund(ctx context.Context, params razorpay.RefundCreateParams) (*razorpay.GatewayRefund, error)
	VerifySignature(gatewayOrderID, paymentID, signature string) bool
	KeyID() string
	Currency() string
}

// CheckoutSession carries everything the client needs to open the hosted
// checkout widget for an order.
type CheckoutSession struct {
	OrderID        uuid.UUID       `json:"order_id"`
	OrderNumber    string          `json:"order_number"`
	GatewayOrderID string          `json:"gateway_order_id"`
	AmountPaise    int64           `json:"amount"`
	Currency       string          `json:"currency"`
	KeyID          string          `json:"key_id"`
	Amount         decimal.Decimal `json:"display_amount"`
}

// VerifyInput is the callback payload posted by the client after the
// gateway widget reports a successful payment.
type VerifyInput struct {
	OrderID        uuid.UUID `json:"order_id" validate:"required"`
	GatewayOrderID string    `json:"razorpay_order_id" validate:"required"`
	PaymentID      string    `json:"razorpay_payment_id" validate:"required"`
	Signature      string    `json:"razorpay_signature" validate:"required"`
}

// Service drives the payment lifecycle against the hosted gateway.
type Service interface {
	CreateGatewayOrder(ctx context.Context, buyerID, orderID uuid.UUID) (*CheckoutSession, error)
	Verify(ctx context.Context, buyerID uuid.UUID, input VerifyInput) (*models.Order, error)
	Refund(ctx context.Context, actor orders.Actor, orderID uuid.UUID, amount *decimal.Decimal, reason string) (*models.Order, error)
}

type service struct {
	gw     gateway
	orders orders.Service
}

func NewService(gw gateway, orderSvc orders.Service) (Service, error) {
	if gw == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if orderSvc == nil {
		return nil, fmt.Errorf("orders service required")
	}
	return &service{gw: gw, orders: orderSvc}, nil
}

// CreateGatewayOrder registers the order with the gateway and returns the
// checkout session. Calling it again for the same unpaid order reuses the
// gateway order already on file instead of opening a second one.
func (s *service) CreateGatewayOrder(ctx context.Context, buyerID, orderID uuid.UUID) (*CheckoutSession, error) {
	order, err := s.orders.Get(ctx, orders.Actor{ID: buyerID, Role: enums.MemberRoleBuyer}, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == enums.PaymentStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order is already paid")
	}
	if order.PaymentMethod != enums.PaymentMethodRazorpay {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not payable through the gateway")
	}

	amountPaise := toPaise(order.PaymentAmount)
	if amountPaise <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order amount must be positive")
	}

	if order.GatewayOrderID != nil && *order.GatewayOrderID != "" {
		return s.session(order, *order.GatewayOrderID, amountPaise), nil
	}

	gwOrder, err := s.gw.CreateOrder(ctx, razorpay.OrderCreateParams{
		AmountPaise: amountPaise,
		Receipt:     order.OrderNumber,
		Notes: map[string]string{
			"order_id":     order.ID.String(),
			"order_number": order.OrderNumber,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := s.orders.SetGatewayOrder(ctx, order.ID, gwOrder.ID); err != nil {
		return nil, err
	}
	return s.session(order, gwOrder.ID, amountPaise), nil
}

// Verify authenticates the gateway callback and, on success, confirms the
// order. The signature check runs before any network call so a forged
// payload never reaches the gateway.
func (s *service) Verify(ctx context.Context, buyerID uuid.UUID, input VerifyInput) (*models.Order, error) {
	order, err := s.orders.Get(ctx, orders.Actor{ID: buyerID, Role: enums.MemberRoleBuyer}, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == enums.PaymentStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order is already paid")
	}
	if order.GatewayOrderID == nil || *order.GatewayOrderID != input.GatewayOrderID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway order does not match this order")
	}

	if !s.gw.VerifySignature(input.GatewayOrderID, input.PaymentID, input.Signature) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "payment signature mismatch")
	}

	payment, err := s.gw.FetchPayment(ctx, input.PaymentID)
	if err != nil {
		return nil, err
	}
	if payment.GatewayOrderID != input.GatewayOrderID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment belongs to a different gateway order")
	}
	if payment.Status != capturedStatus {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("payment is %s, expected %s", payment.Status, capturedStatus))
	}

	return s.orders.ConfirmPayment(ctx, order.ID, payment.ID)
}

// Refund issues the gateway refund and then marks the order refunded.
// A nil amount refunds the full payment; a partial amount may not exceed
// it. Role and ownership checks are delegated to the orders service.
func (s *service) Refund(ctx context.Context, actor orders.Actor, orderID uuid.UUID, amount *decimal.Decimal, reason string) (*models.Order, error) {
	order, err := s.orders.Get(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != enums.PaymentStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only paid orders can be refunded")
	}
	if order.TransactionID == nil || *order.TransactionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order has no settled gateway payment")
	}

	refundAmount := order.PaymentAmount
	if amount != nil {
		if !amount.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
		}
		if amount.GreaterThan(order.PaymentAmount) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount exceeds the paid amount")
		}
		refundAmount = *amount
	}

	_, err = s.gw.CreateRefund(ctx, razorpay.RefundCreateParams{
		PaymentID:   *order.TransactionID,
		AmountPaise: toPaise(refundAmount),
		Notes: map[string]string{
			"order_number": order.OrderNumber,
			"reason":       reason,
		},
	})
	if err != nil {
		return nil, err
	}

	return s.orders.MarkRefunded(ctx, actor, order.ID, reason)
}

func (s *service) session(order *models.Order, gatewayOrderID string, amountPaise int64) *CheckoutSession {
	return &CheckoutSession{
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		GatewayOrderID: gatewayOrderID,
		AmountPaise:    amountPaise,
		Currency:       s.gw.Currency(),
		KeyID:          s.gw.KeyID(),
		Amount:         order.PaymentAmount,
	}
}

// toPaise converts a rupee amount to the gateway's integer minor unit.
func toPaise(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

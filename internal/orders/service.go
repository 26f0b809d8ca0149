package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/blackhawk-2003/Readjunction-Major-sub000/internal/inventory"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/internal/pricing"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/db/models"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/enums"
	pkgerrors "github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/errors"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/pagination"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type couponResolver interface {
	Resolve(ctx context.Context, code string) (*pricing.Coupon, error)
}

// Service defines the order lifecycle operations.
type Service interface {
	Create(ctx context.Context, buyerID uuid.UUID, input CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error)
	ListForBuyer(ctx context.Context, buyerID uuid.UUID, status *enums.OrderStatus, p pagination.Params) ([]models.Order, pagination.Meta, error)
	ListForSeller(ctx context.Context, sellerID uuid.UUID, p pagination.Params) ([]models.Order, pagination.Meta, error)
	UpdateStatus(ctx context.Context, actor Actor, orderID uuid.UUID, input UpdateStatusInput) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, actor Actor, orderID uuid.UUID, status enums.PaymentStatus, note *string) (*models.Order, error)
	SoftDelete(ctx context.Context, actor Actor, orderID uuid.UUID) error
	SetGatewayOrder(ctx context.Context, orderID uuid.UUID, gatewayOrderID string) error
	ConfirmPayment(ctx context.Context, orderID uuid.UUID, transactionID string) (*models.Order, error)
	MarkRefunded(ctx context.Context, actor Actor, orderID uuid.UUID, reason string) (*models.Order, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	inventory *inventory.Repository
	numbers   NumberSource
	coupons   couponResolver
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner, inv *inventory.Repository, numbers NumberSource, coupons couponResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if inv == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if numbers == nil {
		return nil, fmt.Errorf("order number source required")
	}
	if coupons == nil {
		return nil, fmt.Errorf("coupon resolver required")
	}
	return &service{repo: repo, tx: tx, inventory: inv, numbers: numbers, coupons: coupons}, nil
}

// OrderLineInput is one requested product/quantity pair at checkout.
type OrderLineInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateOrderInput captures the checkout payload.
type CreateOrderInput struct {
	Items           []OrderLineInput
	PaymentMethod   enums.PaymentMethod
	ShippingAddress types.Address
	ShippingMethod  enums.ShippingMethod
	CouponCode      *string
	BuyerNotes      *string
}

// UpdateStatusInput captures a requested status transition.
type UpdateStatusInput struct {
	Target            enums.OrderStatus
	Note              *string
	TrackingNumber    *string
	EstimatedDelivery *time.Time
}

// Create re-guards every item, debits stock, computes the frozen totals,
// and persists the order with its seeded history entry, all in one
// transaction. The order number is reserved up front from the daily
// counter.
func (s *service) Create(ctx context.Context, buyerID uuid.UUID, input CreateOrderInput) (*models.Order, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if !input.ShippingMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid shipping method")
	}
	if missing := input.ShippingAddress.Validate(); missing != "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("shipping address %s is required", missing))
	}

	var coupon *pricing.Coupon
	if input.CouponCode != nil && *input.CouponCode != "" {
		resolved, err := s.coupons.Resolve(ctx, *input.CouponCode)
		if err != nil {
			return nil, err
		}
		coupon = resolved
	}

	orderNumber, err := s.numbers.Next(ctx)
	if err != nil {
		return nil, err
	}

	var created *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		invRepo := s.inventory.WithTx(tx)
		guard := inventory.NewGuard(invRepo)

		lines := make([]pricing.Line, 0, len(input.Items))
		items := make([]models.OrderItem, 0, len(input.Items))
		for _, line := range input.Items {
			product, err := guard.CheckAvailability(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if err := invRepo.Debit(ctx, product.ID, line.Quantity); err != nil {
				return err
			}
			lines = append(lines, pricing.Line{UnitPrice: product.Price, Quantity: line.Quantity})
			items = append(items, models.OrderItem{
				ProductID:    product.ID,
				SellerID:     product.SellerID,
				Quantity:     line.Quantity,
				Price:        product.Price,
				ProductName:  product.Title,
				ProductImage: product.ImageURL,
				SellerName:   product.SellerName,
			})
		}

		totals := pricing.ComputeTotals(lines, input.ShippingMethod, coupon)
		address := input.ShippingAddress

		order := &models.Order{
			OrderNumber:     orderNumber,
			BuyerID:         buyerID,
			Items:           items,
			Status:          enums.OrderStatusPending,
			PaymentMethod:   input.PaymentMethod,
			PaymentStatus:   enums.PaymentStatusPending,
			PaymentAmount:   totals.Total,
			ShippingAddress: &address,
			ShippingMethod:  input.ShippingMethod,
			Subtotal:        totals.Subtotal,
			Tax:             totals.Tax,
			Shipping:        totals.Shipping,
			Discount:        totals.Discount,
			Total:           totals.Total,
			BuyerNotes:      input.BuyerNotes,
			IsActive:        true,
		}
		if coupon != nil {
			code := coupon.Code
			order.CouponCode = &code
		}

		seed := &models.OrderStatusEvent{
			Status:        enums.OrderStatusPending,
			UpdatedByID:   buyerID,
			UpdatedByRole: enums.MemberRoleBuyer,
		}
		if err := s.repo.WithTx(tx).Create(ctx, order, seed); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting order")
		}
		created = order
		return nil
	})
	if err != nil {
		if domainErr := pkgerrors.As(err); domainErr != nil {
			return nil, domainErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
	}
	return created, nil
}

// Get loads an order scoped to the requesting actor.
func (s *service) Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case enums.MemberRoleAdmin:
	case enums.MemberRoleBuyer:
		if order.BuyerID != actor.ID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to this buyer")
		}
	case enums.MemberRoleSeller:
		if !order.ContainsSeller(actor.ID) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "seller has no items in this order")
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "unknown actor role")
	}
	return order, nil
}

// ListForBuyer returns the buyer's orders with page metadata.
func (s *service) ListForBuyer(ctx context.Context, buyerID uuid.UUID, status *enums.OrderStatus, p pagination.Params) ([]models.Order, pagination.Meta, error) {
	if status != nil && !status.IsValid() {
		return nil, pagination.Meta{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status filter")
	}
	rows, total, err := s.repo.ListByBuyer(ctx, buyerID, status, p)
	if err != nil {
		return nil, pagination.Meta{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return rows, pagination.MetaFor(p, total), nil
}

// ListForSeller returns orders containing the seller's items.
func (s *service) ListForSeller(ctx context.Context, sellerID uuid.UUID, p pagination.Params) ([]models.Order, pagination.Meta, error) {
	rows, total, err := s.repo.ListBySeller(ctx, sellerID, p)
	if err != nil {
		return nil, pagination.Meta{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing seller orders")
	}
	return rows, pagination.MetaFor(p, total), nil
}

// UpdateStatus runs the role-gated transition, appending history and
// applying the status side effects (restock on cancel, shipping stamps).
func (s *service) UpdateStatus(ctx context.Context, actor Actor, orderID uuid.UUID, input UpdateStatusInput) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, order, input.Target); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	now := time.Now().UTC()
	restock := false

	switch input.Target {
	case enums.OrderStatusCancelled:
		restock = order.Status.IsCancellable()
		if input.Note != nil {
			fields["cancellation_reason"] = *input.Note
		}
	case enums.OrderStatusShipped:
		fields["shipped_at"] = now
		if input.TrackingNumber != nil {
			fields["tracking_number"] = *input.TrackingNumber
		}
		if input.EstimatedDelivery != nil {
			fields["estimated_delivery"] = *input.EstimatedDelivery
		}
	case enums.OrderStatusDelivered:
		fields["delivered_at"] = now
	case enums.OrderStatusRefunded:
		if input.Note != nil {
			fields["refund_reason"] = *input.Note
		}
	case enums.OrderStatusReturned:
		if input.Note != nil {
			fields["return_reason"] = *input.Note
		}
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		event := models.OrderStatusEvent{
			Note:          input.Note,
			UpdatedByID:   actor.ID,
			UpdatedByRole: actor.Role,
		}
		if err := txRepo.TransitionStatus(ctx, orderID, input.Target, event); err != nil {
			return err
		}
		if err := txRepo.UpdateFields(ctx, orderID, fields); err != nil {
			return err
		}
		if restock {
			invRepo := s.inventory.WithTx(tx)
			for _, item := range order.Items {
				if err := invRepo.Credit(ctx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		if domainErr := pkgerrors.As(err); domainErr != nil {
			return nil, domainErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order status")
	}

	return s.repo.FindByID(ctx, orderID)
}

// UpdatePaymentStatus is the admin override for the payment column,
// independent of the order status machine.
func (s *service) UpdatePaymentStatus(ctx context.Context, actor Actor, orderID uuid.UUID, status enums.PaymentStatus, note *string) (*models.Order, error) {
	if actor.Role != enums.MemberRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may update payment status")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status")
	}
	if _, err := s.repo.FindByID(ctx, orderID); err != nil {
		return nil, err
	}

	fields := map[string]any{"payment_status": status}
	if status == enums.PaymentStatusCompleted {
		fields["paid_at"] = time.Now().UTC()
	}
	if note != nil {
		fields["admin_notes"] = *note
	}
	if err := s.repo.UpdateFields(ctx, orderID, fields); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating payment status")
	}
	return s.repo.FindByID(ctx, orderID)
}

// SoftDelete hides the order; admin only.
func (s *service) SoftDelete(ctx context.Context, actor Actor, orderID uuid.UUID) error {
	if actor.Role != enums.MemberRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins may delete orders")
	}
	return s.repo.SoftDelete(ctx, orderID)
}

// SetGatewayOrder records the remote payment order id on the order.
func (s *service) SetGatewayOrder(ctx context.Context, orderID uuid.UUID, gatewayOrderID string) error {
	gateway := "razorpay"
	return s.repo.UpdateFields(ctx, orderID, map[string]any{
		"gateway_order_id": gatewayOrderID,
		"payment_gateway":  gateway,
	})
}

// ConfirmPayment atomically completes the payment and confirms the order
// as the system actor. Called only after signature and capture checks.
func (s *service) ConfirmPayment(ctx context.Context, orderID uuid.UUID, transactionID string) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == enums.PaymentStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order is already paid")
	}
	systemActor := Actor{Role: enums.MemberRoleSystem}
	if err := Authorize(systemActor, order, enums.OrderStatusConfirmed); err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		note := "payment verified"
		event := models.OrderStatusEvent{
			Note:          &note,
			UpdatedByRole: enums.MemberRoleSystem,
		}
		if err := txRepo.TransitionStatus(ctx, orderID, enums.OrderStatusConfirmed, event); err != nil {
			return err
		}
		return txRepo.UpdateFields(ctx, orderID, map[string]any{
			"payment_status": enums.PaymentStatusCompleted,
			"transaction_id": transactionID,
			"paid_at":        time.Now().UTC(),
		})
	})
	if err != nil {
		if domainErr := pkgerrors.As(err); domainErr != nil {
			return nil, domainErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "confirming payment")
	}

	return s.repo.FindByID(ctx, orderID)
}

// MarkRefunded moves a paid order to refunded after the gateway refund
// succeeded. Sellers may refund only orders containing their items.
func (s *service) MarkRefunded(ctx context.Context, actor Actor, orderID uuid.UUID, reason string) (*models.Order, error) {
	if actor.Role != enums.MemberRoleSeller && actor.Role != enums.MemberRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only sellers and admins may refund orders")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actor.Role == enums.MemberRoleSeller && !order.ContainsSeller(actor.ID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "seller has no items in this order")
	}
	if order.PaymentStatus != enums.PaymentStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only paid orders can be refunded")
	}
	if order.Status == enums.OrderStatusRefunded {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already refunded")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		event := models.OrderStatusEvent{
			Note:          &reason,
			UpdatedByID:   actor.ID,
			UpdatedByRole: actor.Role,
		}
		if err := txRepo.TransitionStatus(ctx, orderID, enums.OrderStatusRefunded, event); err != nil {
			return err
		}
		return txRepo.UpdateFields(ctx, orderID, map[string]any{
			"payment_status": enums.PaymentStatusRefunded,
			"refund_reason":  reason,
		})
	})
	if err != nil {
		if domainErr := pkgerrors.As(err); domainErr != nil {
			return nil, domainErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking order refunded")
	}

	return s.repo.FindByID(ctx, orderID)
}

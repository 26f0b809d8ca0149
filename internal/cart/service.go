package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/blackhawk-2003/Readjunction-Major-sub000/internal/pricing"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/db/models"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/enums"
	pkgerrors "github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/errors"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/types"
)

const (
	maxItemQuantity = 100
	maxNotesLength  = 200
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type availabilityGuard interface {
	CheckAvailability(ctx context.Context, productID uuid.UUID, qty int) (*models.Product, error)
}

// Service exposes the buyer cart operations.
type Service interface {
	GetCart(ctx context.Context, buyerID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, buyerID uuid.UUID, input AddItemInput) (*models.Cart, error)
	UpdateItemQuantity(ctx context.Context, buyerID, productID uuid.UUID, input UpdateItemInput) (*models.Cart, error)
	RemoveItem(ctx context.Context, buyerID, productID uuid.UUID) (*models.Cart, error)
	ToggleSelection(ctx context.Context, buyerID, productID uuid.UUID) (*models.Cart, error)
	ApplyCoupon(ctx context.Context, buyerID uuid.UUID, code string) (*models.Cart, error)
	SetShipping(ctx context.Context, buyerID uuid.UUID, input SetShippingInput) (*models.Cart, error)
	Clear(ctx context.Context, buyerID uuid.UUID) (*models.Cart, error)
}

type service struct {
	repo    CartRepository
	tx      txRunner
	guard   availabilityGuard
	coupons CouponResolver
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, guard availabilityGuard, coupons CouponResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if guard == nil {
		return nil, fmt.Errorf("inventory guard required")
	}
	if coupons == nil {
		return nil, fmt.Errorf("coupon resolver required")
	}
	return &service{repo: repo, tx: tx, guard: guard, coupons: coupons}, nil
}

// AddItemInput captures the payload for adding a product to the cart.
type AddItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	Notes     *string
}

// UpdateItemInput captures the payload for changing an existing line.
type UpdateItemInput struct {
	Quantity int
	Notes    *string
}

// SetShippingInput captures the checkout destination and method.
type SetShippingInput struct {
	Address types.Address
	Method  enums.ShippingMethod
}

// GetCart returns the buyer's active cart, creating an empty one on first
// fetch. Totals are recomputed from the items before being returned.
func (s *service) GetCart(ctx context.Context, buyerID uuid.UUID) (*models.Cart, error) {
	cart, err := s.getOrCreate(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	s.recompute(cart)
	return cart, nil
}

// AddItem puts a product in the cart, merging into an existing line when
// the product is already there.
func (s *service) AddItem(ctx context.Context, buyerID uuid.UUID, input AddItemInput) (*models.Cart, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if err := validateNotes(input.Notes); err != nil {
		return nil, err
	}

	cart, err := s.getOrCreate(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	target := input.Quantity
	idx := findItem(cart.Items, input.ProductID)
	if idx >= 0 {
		target = cart.Items[idx].Quantity + input.Quantity
	}
	if target > maxItemQuantity {
		target = maxItemQuantity
	}

	product, err := s.guard.CheckAvailability(ctx, input.ProductID, target)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if idx >= 0 {
		cart.Items[idx].Quantity = target
		cart.Items[idx].AddedAt = now
		if input.Notes != nil {
			cart.Items[idx].Notes = input.Notes
		}
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			CartID:       cart.ID,
			ProductID:    product.ID,
			SellerID:     product.SellerID,
			Quantity:     target,
			UnitPrice:    product.Price,
			ProductName:  product.Title,
			ProductImage: product.ImageURL,
			SellerName:   product.SellerName,
			IsSelected:   true,
			Notes:        input.Notes,
			AddedAt:      now,
		})
	}

	return s.persist(ctx, cart)
}

// UpdateItemQuantity re-guards the new quantity and updates the line.
func (s *service) UpdateItemQuantity(ctx context.Context, buyerID, productID uuid.UUID, input UpdateItemInput) (*models.Cart, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if err := validateNotes(input.Notes); err != nil {
		return nil, err
	}

	cart, err := s.getOrCreate(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	idx := findItem(cart.Items, productID)
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	}

	target := input.Quantity
	if target > maxItemQuantity {
		target = maxItemQuantity
	}

	if _, err := s.guard.CheckAvailability(ctx, productID, target); err != nil {
		return nil, err
	}

	cart.Items[idx].Quantity = target
	if input.Notes != nil {
		cart.Items[idx].Notes = input.Notes
	}

	return s.persist(ctx, cart)
}

// RemoveItem drops the product's line from the cart.
func (s *service) RemoveItem(ctx context.Context, buyerID, productID uuid.UUID) (*models.Cart, error) {
	cart, err := s.getOrCreate(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	idx := findItem(cart.Items, productID)
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

	return s.persist(ctx, cart)
}

// ToggleSelection flips whether the line participates in checkout totals.
func (s *service) ToggleSelection(ctx context.Context, buyerID, productID uuid.UUID) (*models.Cart, error) {
	cart, err := s.getOrCreate(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	idx := findItem(cart.Items, productID)
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	}
	cart.Items[idx].IsSelected = !cart.Items[idx].IsSelected

	return s.persist(ctx, cart)
}

// ApplyCoupon resolves the code and attaches its effect to the cart.
func (s *service) ApplyCoupon(ctx context.Context, buyerID uuid.UUID, code string) (*models.Cart, error) {
	coupon, err := s.coupons.Resolve(ctx, code)
	if err != nil {
		return nil, err
	}

	cart, err := s.getOrCreate(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	cart.CouponCode = &coupon.Code
	effect := coupon.Effect
	cart.CouponEffect = &effect
	cart.CouponValue = coupon.Value

	return s.persist(ctx, cart)
}

// SetShipping stores the destination address and shipping method.
func (s *service) SetShipping(ctx context.Context, buyerID uuid.UUID, input SetShippingInput) (*models.Cart, error) {
	if missing := input.Address.Validate(); missing != "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("shipping address %s is required", missing))
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid shipping method")
	}

	cart, err := s.getOrCreate(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	address := input.Address
	cart.ShippingAddress = &address
	cart.ShippingMethod = input.Method

	return s.persist(ctx, cart)
}

// Clear empties the cart and removes the applied coupon. The shipping
// address survives so the buyer does not retype it.
func (s *service) Clear(ctx context.Context, buyerID uuid.UUID) (*models.Cart, error) {
	cart, err := s.getOrCreate(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	cart.Items = nil
	cart.CouponCode = nil
	cart.CouponEffect = nil
	cart.CouponValue = decimal.Zero

	return s.persist(ctx, cart)
}

func (s *service) getOrCreate(ctx context.Context, buyerID uuid.UUID) (*models.Cart, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}

	cart, err := s.repo.FindActiveByBuyer(ctx, buyerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}

	created, err := s.repo.Create(ctx, &models.Cart{
		BuyerID:        buyerID,
		ShippingMethod: enums.ShippingMethodStandard,
		PaymentMethod:  enums.PaymentMethodRazorpay,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating cart")
	}
	return created, nil
}

// recompute refreshes the derived totals from the selected lines.
func (s *service) recompute(cart *models.Cart) {
	lines := make([]pricing.Line, 0, len(cart.Items))
	for _, item := range cart.Items {
		if !item.IsSelected {
			continue
		}
		lines = append(lines, pricing.Line{UnitPrice: item.UnitPrice, Quantity: item.Quantity})
	}

	var coupon *pricing.Coupon
	if cart.CouponCode != nil && cart.CouponEffect != nil {
		coupon = &pricing.Coupon{
			Code:   *cart.CouponCode,
			Effect: *cart.CouponEffect,
			Value:  cart.CouponValue,
		}
	}

	totals := pricing.ComputeTotals(lines, cart.ShippingMethod, coupon)
	cart.Subtotal = totals.Subtotal
	cart.Tax = totals.Tax
	cart.Shipping = totals.Shipping
	cart.Discount = totals.Discount
	cart.Total = totals.Total
}

func (s *service) persist(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	s.recompute(cart)

	var saved *models.Cart
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Save(ctx, cart); err != nil {
			return err
		}
		if err := txRepo.ReplaceItems(ctx, cart.ID, cart.Items); err != nil {
			return err
		}
		var err error
		saved, err = txRepo.FindActiveByBuyer(ctx, cart.BuyerID)
		return err
	}); err != nil {
		if domainErr := pkgerrors.As(err); domainErr != nil {
			return nil, domainErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting cart")
	}

	s.recompute(saved)
	return saved, nil
}

func findItem(items []models.CartItem, productID uuid.UUID) int {
	for i, item := range items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func validateNotes(notes *string) error {
	if notes != nil && len(*notes) > maxNotesLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "notes must be at most 200 characters")
	}
	return nil
}

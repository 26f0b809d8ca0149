package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/blackhawk-2003/Readjunction-Major-sub000/internal/inventory"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/db/models"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/enums"
	pkgerrors "github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/errors"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/types"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (g gormTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.Transaction(fn)
}

func setupCartTest(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Cart{}, &models.CartItem{}))

	guard := inventory.NewGuard(inventory.NewRepository(db))
	svc, err := NewService(NewRepository(db), gormTxRunner{db: db}, guard, StaticCoupons{})
	require.NoError(t, err)
	return svc, db
}

func seedCartProduct(t *testing.T, db *gorm.DB, price int64, mutate func(*models.Product)) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:               uuid.New(),
		SellerID:         uuid.New(),
		SellerName:       "Paper Trails",
		Title:            "Kafka on the Shore",
		Price:            decimal.NewFromInt(price),
		Status:           enums.ProductStatusActive,
		IsApproved:       true,
		Quantity:         50,
		TrackInventory:   true,
		MaxOrderQuantity: 100,
	}
	if mutate != nil {
		mutate(product)
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func testAddress() types.Address {
	return types.Address{
		FullName:   "Asha Nair",
		Line1:      "14 MG Road",
		City:       "Kochi",
		State:      "Kerala",
		PostalCode: "682016",
		Country:    "India",
		Phone:      "+919900112233",
	}
}

func TestGetCartCreatesLazily(t *testing.T) {
	svc, db := setupCartTest(t)
	ctx := context.Background()
	buyerID := uuid.New()

	cart, err := svc.GetCart(ctx, buyerID)
	require.NoError(t, err)
	assert.Equal(t, buyerID, cart.BuyerID)
	assert.True(t, cart.IsActive)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.Total.IsZero())

	again, err := svc.GetCart(ctx, buyerID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID, "second fetch must reuse the active cart")

	var count int64
	require.NoError(t, db.Model(&models.Cart{}).Where("buyer_id = ?", buyerID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAddItemSnapshotsAndTotals(t *testing.T) {
	svc, db := setupCartTest(t)
	ctx := context.Background()
	buyerID := uuid.New()
	product := seedCartProduct(t, db, 200, nil)

	cart, err := svc.AddItem(ctx, buyerID, AddItemInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	item := cart.Items[0]
	assert.Equal(t, product.Title, item.ProductName)
	assert.Equal(t, product.SellerID, item.SellerID)
	assert.True(t, item.UnitPrice.Equal(product.Price))
	assert.True(t, item.IsSelected)

	// 200 + 36 tax + 50 standard shipping
	assert.True(t, cart.Total.Equal(decimal.NewFromInt(286)), "total %s", cart.Total)
}

func TestAddItemMergesExistingLine(t *testing.T) {
	svc, db := setupCartTest(t)
	ctx := context.Background()
	buyerID := uuid.New()
	product := seedCartProduct(t, db, 100, nil)

	_, err := svc.AddItem(ctx, buyerID, AddItemInput{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, buyerID, AddItemInput{ProductID: product.ID, Quantity: 3})
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestAddItemQuantityClampsAtHundred(t *testing.T) {
	svc, db := setupCartTest(t)
	ctx := context.Background()
	buyerID := uuid.New()
	product := seedCartProduct(t, db, 10, func(p *models.Product) { p.Quantity = 500 })

	_, err := svc.AddItem(ctx, buyerID, AddItemInput{ProductID: product.ID, Quantity: 80})
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, buyerID, AddItemInput{ProductID: product.ID, Quantity: 80})
	require.NoError(t, err)

	assert.Equal(t, 100, cart.Items[0].Quantity)
}

func TestAddItemPropagatesGuardErrors(t *testing.T) {
	svc, db := setupCartTest(t)
	ctx := context.Background()
	buyerID := uuid.New()

	t.Run("unknown product", func(t *testing.T) {
		_, err := svc.AddItem(ctx, buyerID, AddItemInput{ProductID: uuid.New(), Quantity: 1})
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
	})

	t.Run("insufficient stock", func(t *testing.T) {
		product := seedCartProduct(t, db, 100, func(p *models.Product) { p.Quantity = 1 })
		_, err := svc.AddItem(ctx, buyerID, AddItemInput{ProductID: product.ID, Quantity: 2})
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
	})

	t.Run("unavailable listing", func(t *testing.T) {
		product := seedCartProduct(t, db, 100, func(p *models.Product) { p.IsApproved = false })
		_, err := svc.AddItem(ctx, buyerID, AddItemInput{ProductID: product.ID, Quantity: 1})
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
	})
}

func TestAddItemRejectsLongNotes(t *testing.T) {
	svc, db := setupCartTest(t)
	ctx := context.Background()
	product := seedCartProduct(t, db, 100, nil)

	long := make([]byte, 201)
	for i := range long {
		long[i] = 'a'
	}
	notes := string(long)
	_, err := svc.AddItem(ctx, uuid.New(), AddItemInput{ProductID: product.ID, Quantity: 1, Notes: &notes})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestUpdateItemQuantity(t *testing.T) {
	svc, db := setupCartTest(t)
	ctx := context.Background()
	buyerID := uuid.New()
	product := seedCartProduct(t, db, 100, nil)

	_, err := svc.AddItem(ctx, buyerID, AddItemInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	cart, err := svc.UpdateItemQuantity(ctx, buyerID, product.ID, UpdateItemInput{Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, cart.Items[0].Quantity)
	// 400 + 72 + 50
	assert.True(t, cart.Total.Equal(decimal.NewFromInt(522)), "total %s", cart.Total)

	t.Run("re-guards at the new quantity", func(t *testing.T) {
		_, err := svc.UpdateItemQuantity(ctx, buyerID, product.ID, UpdateItemInput{Quantity: 60})
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
	})

	t.Run("missing line", func(t *testing.T) {
		_, err := svc.UpdateItemQuantity(ctx, buyerID, uuid.New(), UpdateItemInput{Quantity: 1})
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
	})
}

func TestRemoveItem(t *testing.T) {
	svc, db := setupCartTest(t)
	ctx := context.Background()
	buyerID := uuid.New()
	product := seedCartProduct(t, db, 100, nil)

	_, err := svc.AddItem(ctx, buyerID, AddItemInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	cart, err := svc.RemoveItem(ctx, buyerID, product.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.Total.IsZero(), "empty cart totals reset, got %s", cart.Total)

	_, err = svc.RemoveItem(ctx, buyerID, product.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestToggleSelectionExcludesLineFromTotals(t *testing.T) {
	svc, db := setupCartTest(t)
	ctx := context.Background()
	buyerID := uuid.New()
	first := seedCartProduct(t, db, 100, nil)
	second := seedCartProduct(t, db, 300, nil)

	_, err := svc.AddItem(ctx, buyerID, AddItemInput{ProductID: first.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, buyerID, AddItemInput{ProductID: second.ID, Quantity: 1})
	require.NoError(t, err)

	cart, err := svc.ToggleSelection(ctx, buyerID, second.ID)
	require.NoError(t, err)

	// Only the 100 line is selected: 100 + 18 + 50.
	assert.True(t, cart.Subtotal.Equal(decimal.NewFromInt(100)), "subtotal %s", cart.Subtotal)
	assert.True(t, cart.Total.Equal(decimal.NewFromInt(168)), "total %s", cart.Total)

	t.Run("deselection survives a reload", func(t *testing.T) {
		var stored models.CartItem
		require.NoError(t, db.First(&stored, "cart_id = ? AND product_id = ?", cart.ID, second.ID).Error)
		assert.False(t, stored.IsSelected)

		reloaded, err := svc.GetCart(ctx, buyerID)
		require.NoError(t, err)
		assert.True(t, reloaded.Subtotal.Equal(decimal.NewFromInt(100)), "subtotal %s", reloaded.Subtotal)
	})

	cart, err = svc.ToggleSelection(ctx, buyerID, second.ID)
	require.NoError(t, err)
	assert.True(t, cart.Subtotal.Equal(decimal.NewFromInt(400)), "subtotal %s", cart.Subtotal)
}

func TestApplyCoupon(t *testing.T) {
	svc, db := setupCartTest(t)
	ctx := context.Background()
	buyerID := uuid.New()
	product := seedCartProduct(t, db, 500, nil)

	_, err := svc.AddItem(ctx, buyerID, AddItemInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	t.Run("percentage", func(t *testing.T) {
		cart, err := svc.ApplyCoupon(ctx, buyerID, "welcome10")
		require.NoError(t, err)
		require.NotNil(t, cart.CouponCode)
		assert.Equal(t, "WELCOME10", *cart.CouponCode)
		assert.True(t, cart.Discount.Equal(decimal.NewFromInt(50)), "discount %s", cart.Discount)
	})

	t.Run("free shipping", func(t *testing.T) {
		cart, err := svc.ApplyCoupon(ctx, buyerID, "FREESHIP")
		require.NoError(t, err)
		assert.True(t, cart.Shipping.IsZero(), "shipping %s", cart.Shipping)
		assert.True(t, cart.Discount.IsZero())
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := svc.ApplyCoupon(ctx, buyerID, "NOPE")
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
	})
}

func TestSetShipping(t *testing.T) {
	svc, db := setupCartTest(t)
	ctx := context.Background()
	buyerID := uuid.New()
	product := seedCartProduct(t, db, 100, nil)

	_, err := svc.AddItem(ctx, buyerID, AddItemInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	cart, err := svc.SetShipping(ctx, buyerID, SetShippingInput{
		Address: testAddress(),
		Method:  enums.ShippingMethodExpress,
	})
	require.NoError(t, err)
	require.NotNil(t, cart.ShippingAddress)
	assert.Equal(t, "Kochi", cart.ShippingAddress.City)
	assert.True(t, cart.Shipping.Equal(decimal.NewFromInt(100)), "shipping %s", cart.Shipping)

	t.Run("incomplete address", func(t *testing.T) {
		addr := testAddress()
		addr.PostalCode = ""
		_, err := svc.SetShipping(ctx, buyerID, SetShippingInput{Address: addr, Method: enums.ShippingMethodStandard})
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	})

	t.Run("invalid method", func(t *testing.T) {
		_, err := svc.SetShipping(ctx, buyerID, SetShippingInput{Address: testAddress(), Method: "drone"})
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	})
}

func TestClear(t *testing.T) {
	svc, db := setupCartTest(t)
	ctx := context.Background()
	buyerID := uuid.New()
	product := seedCartProduct(t, db, 100, nil)

	_, err := svc.AddItem(ctx, buyerID, AddItemInput{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = svc.ApplyCoupon(ctx, buyerID, "SAVE50")
	require.NoError(t, err)

	cart, err := svc.Clear(ctx, buyerID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Nil(t, cart.CouponCode)
	assert.True(t, cart.Total.IsZero())

	var itemCount int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&itemCount).Error)
	assert.EqualValues(t, 0, itemCount)
}

package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/db/models"
	pkgerrors "github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/errors"
)

// ProductSource loads catalog rows for availability checks.
type ProductSource interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
}

// Guard answers "can this quantity be bought right now" without touching
// stock. The authoritative check happens again at debit time inside the
// checkout transaction.
type Guard struct {
	products ProductSource
}

func NewGuard(products ProductSource) *Guard {
	return &Guard{products: products}
}

// CheckAvailability validates the listing state and stock level and returns
// the product snapshot used for cart/order lines.
func (g *Guard) CheckAvailability(ctx context.Context, productID uuid.UUID, qty int) (*models.Product, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	product, err := g.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if !product.Purchasable() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product is not available")
	}
	if product.MaxOrderQuantity > 0 && qty > product.MaxOrderQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity exceeds the per-order limit").
			WithDetails(map[string]any{"max_order_quantity": product.MaxOrderQuantity})
	}
	if product.TrackInventory && !product.AllowBackorder && product.Quantity < qty {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock for product").
			WithDetails(map[string]any{
				"product_id": product.ID.String(),
				"available":  product.Quantity,
				"requested":  qty,
			})
	}

	return product, nil
}

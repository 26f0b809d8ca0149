package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/enums"
)

// TaxRate is the flat GST applied to the goods subtotal.
var TaxRate = decimal.NewFromFloat(0.18)

var shippingRates = map[enums.ShippingMethod]decimal.Decimal{
	enums.ShippingMethodStandard:  decimal.NewFromInt(50),
	enums.ShippingMethodExpress:   decimal.NewFromInt(100),
	enums.ShippingMethodOvernight: decimal.NewFromInt(200),
}

// Line is one priced quantity entering the totals computation.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Coupon is the resolved discount applied to the whole cart.
type Coupon struct {
	Code   string
	Effect enums.CouponEffect
	Value  decimal.Decimal
}

// Totals is the five-line money breakdown persisted on carts and orders.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals derives the full money breakdown for the given lines. The
// function is pure: the same inputs always produce the same rounded output,
// so carts can recompute on every mutation without drift.
func ComputeTotals(lines []Line, method enums.ShippingMethod, coupon *Coupon) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	tax := subtotal.Mul(TaxRate)

	shipping := ShippingRate(method)
	if subtotal.IsZero() {
		shipping = decimal.Zero
	}

	discount := decimal.Zero
	if coupon != nil {
		switch coupon.Effect {
		case enums.CouponEffectPercentage:
			discount = subtotal.Mul(coupon.Value).Div(decimal.NewFromInt(100))
		case enums.CouponEffectFixed:
			discount = coupon.Value
		case enums.CouponEffectFreeShipping:
			shipping = decimal.Zero
		}
	}
	// A discount can never exceed the goods value.
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}

	subtotal = subtotal.Round(2)
	tax = tax.Round(2)
	shipping = shipping.Round(2)
	discount = discount.Round(2)

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Discount: discount,
		Total:    subtotal.Add(tax).Add(shipping).Sub(discount).Round(2),
	}
}

// ShippingRate returns the flat fee for the method, defaulting to standard.
func ShippingRate(method enums.ShippingMethod) decimal.Decimal {
	if rate, ok := shippingRates[method]; ok {
		return rate
	}
	return shippingRates[enums.ShippingMethodStandard]
}

// NormalizeTotals coerces corrupt or negative persisted values to zero so
// downstream arithmetic never propagates garbage.
func NormalizeTotals(t Totals) Totals {
	return Totals{
		Subtotal: normalize(t.Subtotal),
		Tax:      normalize(t.Tax),
		Shipping: normalize(t.Shipping),
		Discount: normalize(t.Discount),
		Total:    normalize(t.Total),
	}
}

func normalize(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d.Round(2)
}

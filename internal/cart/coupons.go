package cart

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/blackhawk-2003/Readjunction-Major-sub000/internal/pricing"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/enums"
	pkgerrors "github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/errors"
)

// CouponResolver looks a coupon code up at apply-time. The static table
// below is the current backing; a store-backed resolver can replace it
// without touching the cart service.
type CouponResolver interface {
	Resolve(ctx context.Context, code string) (*pricing.Coupon, error)
}

// StaticCoupons resolves codes from a fixed in-process table.
type StaticCoupons struct{}

var staticCouponTable = map[string]pricing.Coupon{
	"WELCOME10": {Code: "WELCOME10", Effect: enums.CouponEffectPercentage, Value: decimal.NewFromInt(10)},
	"SAVE50":    {Code: "SAVE50", Effect: enums.CouponEffectFixed, Value: decimal.NewFromInt(50)},
	"FREESHIP":  {Code: "FREESHIP", Effect: enums.CouponEffectFreeShipping, Value: decimal.Zero},
}

// Resolve returns the coupon descriptor or a not-found error.
func (StaticCoupons) Resolve(_ context.Context, code string) (*pricing.Coupon, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	coupon, ok := staticCouponTable[normalized]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	}
	return &coupon, nil
}

package enums

import "fmt"

// CouponEffect describes how a coupon alters the totals. Waiving shipping is
// modeled as its own effect so it never masquerades as a zero-value discount.
type CouponEffect string

const (
	CouponEffectPercentage   CouponEffect = "percentage"
	CouponEffectFixed        CouponEffect = "fixed"
	CouponEffectFreeShipping CouponEffect = "free_shipping"
)

var validCouponEffects = []CouponEffect{
	CouponEffectPercentage,
	CouponEffectFixed,
	CouponEffectFreeShipping,
}

// String implements fmt.Stringer.
func (c CouponEffect) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CouponEffect.
func (c CouponEffect) IsValid() bool {
	for _, candidate := range validCouponEffects {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCouponEffect converts raw input into a CouponEffect.
func ParseCouponEffect(value string) (CouponEffect, error) {
	for _, candidate := range validCouponEffects {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coupon effect %q", value)
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/enums"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/types"
)

// Cart is the buyer's single active pre-checkout selection. Totals are a
// derived cache: every mutation recomputes them from the items before the
// record is saved, and readers must never treat them as authoritative input.
type Cart struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	BuyerID         uuid.UUID            `gorm:"column:buyer_id;type:uuid;not null;uniqueIndex:carts_buyer_active_key,where:is_active"`
	Items           []CartItem           `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	ShippingAddress *types.Address       `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	ShippingMethod  enums.ShippingMethod `gorm:"column:shipping_method;type:text;not null;default:'standard'"`
	PaymentMethod   enums.PaymentMethod  `gorm:"column:payment_method;type:text;not null;default:'razorpay'"`
	CouponCode      *string              `gorm:"column:coupon_code"`
	CouponEffect    *enums.CouponEffect  `gorm:"column:coupon_effect;type:text"`
	CouponValue     decimal.Decimal      `gorm:"column:coupon_value;type:numeric(12,2);not null;default:0"`
	Subtotal        decimal.Decimal      `gorm:"column:subtotal;type:numeric(12,2);not null;default:0"`
	Tax             decimal.Decimal      `gorm:"column:tax;type:numeric(12,2);not null;default:0"`
	Shipping        decimal.Decimal      `gorm:"column:shipping;type:numeric(12,2);not null;default:0"`
	Discount        decimal.Decimal      `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	Total           decimal.Decimal      `gorm:"column:total;type:numeric(12,2);not null;default:0"`
	IsActive        bool                 `gorm:"column:is_active;not null;default:true"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

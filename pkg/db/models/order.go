package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/enums"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/types"
)

// Order is the financial record produced at checkout. Item snapshots and
// totals are frozen at creation; only status, payment, and shipping
// progression mutate afterward.
type Order struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber string             `gorm:"column:order_number;not null;uniqueIndex"`
	BuyerID     uuid.UUID          `gorm:"column:buyer_id;type:uuid;not null;index"`
	Items       []OrderItem        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Status      enums.OrderStatus  `gorm:"column:status;type:text;not null;default:'pending'"`
	StatusLog   []OrderStatusEvent `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	PaymentMethod  enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	PaymentStatus  enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	PaymentGateway *string             `gorm:"column:payment_gateway"`
	GatewayOrderID *string             `gorm:"column:gateway_order_id;index"`
	TransactionID  *string             `gorm:"column:transaction_id"`
	PaymentAmount  decimal.Decimal     `gorm:"column:payment_amount;type:numeric(12,2);not null;default:0"`
	PaidAt         *time.Time          `gorm:"column:paid_at"`

	ShippingAddress   *types.Address       `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	ShippingMethod    enums.ShippingMethod `gorm:"column:shipping_method;type:text;not null"`
	TrackingNumber    *string              `gorm:"column:tracking_number"`
	EstimatedDelivery *time.Time           `gorm:"column:estimated_delivery"`
	ShippedAt         *time.Time           `gorm:"column:shipped_at"`
	DeliveredAt       *time.Time           `gorm:"column:delivered_at"`

	Subtotal   decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Tax        decimal.Decimal `gorm:"column:tax;type:numeric(12,2);not null"`
	Shipping   decimal.Decimal `gorm:"column:shipping;type:numeric(12,2);not null"`
	Discount   decimal.Decimal `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	Total      decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`
	CouponCode *string         `gorm:"column:coupon_code"`

	BuyerNotes  *string `gorm:"column:buyer_notes"`
	SellerNotes *string `gorm:"column:seller_notes"`
	AdminNotes  *string `gorm:"column:admin_notes"`

	CancellationReason *string `gorm:"column:cancellation_reason"`
	RefundReason       *string `gorm:"column:refund_reason"`
	ReturnReason       *string `gorm:"column:return_reason"`

	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// ContainsSeller reports whether the seller owns at least one line item.
func (o Order) ContainsSeller(sellerID uuid.UUID) bool {
	for _, item := range o.Items {
		if item.SellerID == sellerID {
			return true
		}
	}
	return false
}

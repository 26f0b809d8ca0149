package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is a product snapshot inside a cart. UnitPrice is frozen at
// add-time; checkout re-validates against the live catalog row.
type CartItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CartID       uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	SellerID     uuid.UUID       `gorm:"column:seller_id;type:uuid;not null"`
	Quantity     int             `gorm:"column:quantity;not null"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	ProductName  string          `gorm:"column:product_name;not null"`
	ProductImage *string         `gorm:"column:product_image"`
	SellerName   string          `gorm:"column:seller_name;not null"`
	IsSelected   bool            `gorm:"column:is_selected;not null"`
	Notes        *string         `gorm:"column:notes"`
	AddedAt      time.Time       `gorm:"column:added_at;not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

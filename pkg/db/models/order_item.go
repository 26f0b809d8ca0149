package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is an immutable line snapshot; price and naming stay fixed no
// matter how the catalog row changes afterward.
type OrderItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID      uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	SellerID     uuid.UUID       `gorm:"column:seller_id;type:uuid;not null;index"`
	Quantity     int             `gorm:"column:quantity;not null"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	ProductName  string          `gorm:"column:product_name;not null"`
	ProductImage *string         `gorm:"column:product_image"`
	SellerName   string          `gorm:"column:seller_name;not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}

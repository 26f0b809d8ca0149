package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/enums"
)

// Product is the catalog listing the order core debits stock against. The
// write model for listing content lives in the catalog service; this core
// only mutates the inventory counters.
type Product struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	SellerID          uuid.UUID           `gorm:"column:seller_id;type:uuid;not null;index"`
	SellerName        string              `gorm:"column:seller_name;not null"`
	Title             string              `gorm:"column:title;not null"`
	ImageURL          *string             `gorm:"column:image_url"`
	Price             decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	Status            enums.ProductStatus `gorm:"column:status;type:text;not null;default:'draft'"`
	IsApproved        bool                `gorm:"column:is_approved;not null;default:false"`
	Quantity          int                 `gorm:"column:quantity;not null;default:0"`
	Sold              int                 `gorm:"column:sold;not null;default:0"`
	LowStockThreshold int                 `gorm:"column:low_stock_threshold;not null;default:5"`
	TrackInventory    bool                `gorm:"column:track_inventory;not null"`
	AllowBackorder    bool                `gorm:"column:allow_backorder;not null;default:false"`
	MaxOrderQuantity  int                 `gorm:"column:max_order_quantity;not null;default:100"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// Purchasable reports whether buyers may order this listing at all.
func (p Product) Purchasable() bool {
	return p.Status == enums.ProductStatusActive && p.IsApproved
}

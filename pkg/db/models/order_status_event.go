package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/enums"
)

// OrderStatusEvent is one append-only history entry. Rows are written by the
// repository in the same transaction as the status column change, never by
// callers directly.
type OrderStatusEvent struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OrderID       uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	Status        enums.OrderStatus `gorm:"column:status;type:text;not null"`
	Note          *string           `gorm:"column:note"`
	UpdatedByID   uuid.UUID         `gorm:"column:updated_by_id;type:uuid;not null"`
	UpdatedByRole enums.MemberRole  `gorm:"column:updated_by_role;type:text;not null"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
}

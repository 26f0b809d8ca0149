package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/db/models"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/enums"
	pkgerrors "github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/errors"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/pagination"
)

// Repository exposes persistence operations for orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order, seedEvent *models.OrderStatusEvent) error
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, status *enums.OrderStatus, p pagination.Params) ([]models.Order, int64, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, p pagination.Params) ([]models.Order, int64, error)
	TransitionStatus(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus, event models.OrderStatusEvent) error
	UpdateFields(ctx context.Context, orderID uuid.UUID, fields map[string]any) error
	SoftDelete(ctx context.Context, orderID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create inserts the order, its line snapshots, and the seeded history
// entry. Callers run this inside a transaction alongside the stock debit.
func (r *repository) Create(ctx context.Context, order *models.Order, seedEvent *models.OrderStatusEvent) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	items := order.Items
	order.Items = nil
	order.StatusLog = nil

	tx := r.db.WithContext(ctx)
	if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
		return err
	}

	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
	}
	order.Items = items

	if seedEvent != nil {
		seedEvent.ID = uuid.New()
		seedEvent.OrderID = order.ID
		if err := tx.Create(seedEvent).Error; err != nil {
			return err
		}
		order.StatusLog = []models.OrderStatusEvent{*seedEvent}
	}
	return nil
}

// FindByID loads an order with its items and full status history.
func (r *repository) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusLog", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ? AND is_active = ?", orderID, true).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return &order, nil
}

// ListByBuyer returns the buyer's orders newest first, optionally filtered
// by status.
func (r *repository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, status *enums.OrderStatus, p pagination.Params) ([]models.Order, int64, error) {
	p = p.Normalize()

	q := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("buyer_id = ? AND is_active = ?", buyerID, true)
	if status != nil {
		q = q.Where("status = ?", *status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Order
	err := q.Preload("Items").
		Order("created_at DESC").
		Offset(p.Offset()).
		Limit(p.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListBySeller returns orders containing at least one of the seller's
// items, newest first.
func (r *repository) ListBySeller(ctx context.Context, sellerID uuid.UUID, p pagination.Params) ([]models.Order, int64, error) {
	p = p.Normalize()

	sub := r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Select("order_id").
		Where("seller_id = ?", sellerID)
	q := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id IN (?) AND is_active = ?", sub, true)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Order
	err := q.Preload("Items").
		Order("created_at DESC").
		Offset(p.Offset()).
		Limit(p.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// TransitionStatus flips the status column and appends the history row in
// the bound connection. Callers wrap it in WithTx so the two writes commit
// or roll back together; there is no path that changes status without a
// history entry.
func (r *repository) TransitionStatus(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus, event models.OrderStatusEvent) error {
	tx := r.db.WithContext(ctx)

	res := tx.Model(&models.Order{}).
		Where("id = ? AND is_active = ?", orderID, true).
		Updates(map[string]any{"status": target, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	event.ID = uuid.New()
	event.OrderID = orderID
	event.Status = target
	return tx.Create(&event).Error
}

// UpdateFields patches arbitrary order columns.
func (r *repository) UpdateFields(ctx context.Context, orderID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}

// SoftDelete hides the order from every listing and lookup.
func (r *repository) SoftDelete(ctx context.Context, orderID uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND is_active = ?", orderID, true).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}

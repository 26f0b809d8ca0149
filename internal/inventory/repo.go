package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/db/models"
	pkgerrors "github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/errors"
)

// Repository owns the stock counters on the products table.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// GetProduct loads a catalog row for availability checks.
func (r *Repository) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return &product, nil
}

// Debit decrements stock and increments sold. The stock check lives in the
// WHERE clause so two concurrent checkouts can never both win the last
// unit; zero rows affected means the guard lost the race.
func (r *Repository) Debit(ctx context.Context, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "debit quantity must be positive")
	}
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND (track_inventory = ? OR allow_backorder = ? OR quantity >= ?)",
			productID, false, true, qty).
		Updates(map[string]any{
			"quantity": gorm.Expr("CASE WHEN track_inventory THEN quantity - ? ELSE quantity END", qty),
			"sold":     gorm.Expr("sold + ?", qty),
		})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "debiting stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock for product").
			WithDetails(map[string]any{"product_id": productID.String(), "requested": qty})
	}
	return nil
}

// Credit restores stock after a cancellation. Sold never goes below zero
// even if counters drifted.
func (r *Repository) Credit(ctx context.Context, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "credit quantity must be positive")
	}
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{
			"quantity": gorm.Expr("CASE WHEN track_inventory THEN quantity + ? ELSE quantity END", qty),
			"sold":     gorm.Expr("CASE WHEN sold >= ? THEN sold - ? ELSE 0 END", qty, qty),
		})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "crediting stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", productID))
	}
	return nil
}

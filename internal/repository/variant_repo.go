package repository

import (
	"context"
	"errors"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VariantRepo interface {
	Create(ctx context.Context, v *models.ProductVariant) error
	GetByProductAndSize(ctx context.Context, productID uuid.UUID, size string) (*models.ProductVariant, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.ProductVariant, error)

	// TryDecrement: if quantity >= qty then quantity -= qty. The guard and the
	// decrement are one statement, so two racing checkouts cannot both win the
	// last unit.
	TryDecrement(ctx context.Context, variantID uuid.UUID, qty int64) (bool, error)
	// Restock puts qty back (expiration sweep, cancellations).
	Restock(ctx context.Context, variantID uuid.UUID, qty int64) (bool, error)
	SetQuantity(ctx context.Context, variantID uuid.UUID, quantity int64) error
}

type variantRepo struct{ db *gorm.DB }

func NewVariantRepo(db *gorm.DB) VariantRepo { return &variantRepo{db: db} }

func (r *variantRepo) Create(ctx context.Context, v *models.ProductVariant) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *variantRepo) GetByProductAndSize(ctx context.Context, productID uuid.UUID, size string) (*models.ProductVariant, error) {
	var v models.ProductVariant
	err := r.db.WithContext(ctx).First(&v, "product_id = ? AND size = ?", productID, size).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &v, err
}

func (r *variantRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.ProductVariant, error) {
	var list []models.ProductVariant
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("size ASC").Find(&list).Error
	return list, err
}

func (r *variantRepo) TryDecrement(ctx context.Context, variantID uuid.UUID, qty int64) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE product_variants
SET quantity   = quantity - @q,
    updated_at = now()
WHERE id = @id
  AND quantity >= @q
`, map[string]any{
		"id": variantID,
		"q":  qty,
	})
	return tx.RowsAffected > 0, tx.Error
}

func (r *variantRepo) Restock(ctx context.Context, variantID uuid.UUID, qty int64) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE product_variants
SET quantity   = quantity + @q,
    updated_at = now()
WHERE id = @id
`, map[string]any{
		"id": variantID,
		"q":  qty,
	})
	return tx.RowsAffected > 0, tx.Error
}

func (r *variantRepo) SetQuantity(ctx context.Context, variantID uuid.UUID, quantity int64) error {
	return r.db.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("id = ?", variantID).
		Update("quantity", quantity).Error
}

package repository

import (
	"context"
	"errors"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderListFilter struct {
	UserID *uuid.UUID
	Status *models.OrderStatus
	Limit  int
	Offset int
}

type OrderRepo interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, f OrderListFilter) ([]*models.Order, int64, error)

	// MarkPaid flips PENDING -> PAID; reports whether this call did the flip.
	MarkPaid(ctx context.Context, id uuid.UUID) (bool, error)
	Cancel(ctx context.Context, id uuid.UUID, reason *string) (bool, error)
	SetPixPayment(ctx context.Context, id uuid.UUID, gatewayPaymentID, qrCode, qrCodeBase64 string) error
	SetGatewayPaymentID(ctx context.Context, id uuid.UUID, gatewayPaymentID string) error

	// ListStalePending returns PENDING orders created before the deadline,
	// lines preloaded, for the expiration sweep.
	ListStalePending(ctx context.Context, before time.Time, limit int) ([]*models.Order, error)

	WithTx(ctx context.Context, fn func(orders OrderRepo, lines OrderLineRepo, products ProductRepo, variants VariantRepo) error) error
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) OrderRepo { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).Preload("Lines").First(&ord, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *orderRepo) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).Preload("Lines").First(&ord, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *orderRepo) List(ctx context.Context, f OrderListFilter) ([]*models.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})

	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var list []*models.Order
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Preload("Lines").Find(&list).Error
	return list, total, err
}

func (r *orderRepo) MarkPaid(ctx context.Context, id uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, models.OrderStatusPending).
		Update("status", models.OrderStatusPaid)
	return tx.RowsAffected > 0, tx.Error
}

func (r *orderRepo) Cancel(ctx context.Context, id uuid.UUID, reason *string) (bool, error) {
	upd := map[string]any{"status": models.OrderStatusCanceled}
	if reason != nil {
		upd["cancel_reason"] = reason
	}
	tx := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, models.OrderStatusPending).
		Updates(upd)
	return tx.RowsAffected > 0, tx.Error
}

func (r *orderRepo) SetPixPayment(ctx context.Context, id uuid.UUID, gatewayPaymentID, qrCode, qrCodeBase64 string) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(map[string]any{
		"gateway_payment_id": gatewayPaymentID,
		"pix_qr_code":        qrCode,
		"pix_qr_code_base64": qrCodeBase64,
	}).Error
}

func (r *orderRepo) SetGatewayPaymentID(ctx context.Context, id uuid.UUID, gatewayPaymentID string) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).
		Update("gateway_payment_id", gatewayPaymentID).Error
}

func (r *orderRepo) ListStalePending(ctx context.Context, before time.Time, limit int) ([]*models.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	var list []*models.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", models.OrderStatusPending, before).
		Order("created_at ASC").
		Limit(limit).
		Preload("Lines").
		Find(&list).Error
	return list, err
}

func (r *orderRepo) WithTx(ctx context.Context, fn func(orders OrderRepo, lines OrderLineRepo, products ProductRepo, variants VariantRepo) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&orderRepo{db: tx}, &orderLineRepo{db: tx}, &productRepo{db: tx}, &variantRepo{db: tx})
	})
}

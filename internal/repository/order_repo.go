package repository

import (
	"context"
	"errors"

	"github.com/raquelxaviert/micangaria-sub002/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepo interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByExternalReference(ctx context.Context, ref string) (*models.Order, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*models.Order, error)

	// UpdateStatusGuarded — условный read-modify-write: статус меняется только
	// если строка всё ещё в from. false означает, что кто-то успел раньше.
	UpdateStatusGuarded(ctx context.Context, id uuid.UUID, from, to models.OrderStatus, paymentID *string) (bool, error)

	ExistsPaidForProduct(ctx context.Context, productID string) (bool, error)
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) OrderRepo { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&ord, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *orderRepo) GetByExternalReference(ctx context.Context, ref string) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&ord, "external_reference = ?", ref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *orderRepo) GetByPaymentID(ctx context.Context, paymentID string) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&ord, "payment_id = ?", paymentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *orderRepo) UpdateStatusGuarded(ctx context.Context, id uuid.UUID, from, to models.OrderStatus, paymentID *string) (bool, error) {
	upd := map[string]any{"status": to}
	if paymentID != nil {
		upd["payment_id"] = *paymentID
	}
	tx := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(upd)
	return tx.RowsAffected > 0, tx.Error
}

func (r *orderRepo) ExistsPaidForProduct(ctx context.Context, productID string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.product_id = ? AND orders.status = ?", productID, models.OrderStatusPaid).
		Count(&cnt).Error
	return cnt > 0, err
}

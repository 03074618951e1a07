package repository

import (
	"context"

	"github.com/raquelxaviert/micangaria-sub002/internal/models"

	"gorm.io/gorm"
)

// OrderItemRepo пишет снапшоты позиций; чтение всегда идёт через
// Preload("Items") на заказе.
type OrderItemRepo interface {
	BulkCreate(ctx context.Context, items []models.OrderItem) error
}

type orderItemRepo struct{ db *gorm.DB }

func NewOrderItemRepo(db *gorm.DB) OrderItemRepo { return &orderItemRepo{db: db} }

func (r *orderItemRepo) BulkCreate(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

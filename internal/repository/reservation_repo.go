package repository

import (
	"context"
	"errors"
	"time"

	"github.com/raquelxaviert/micangaria-sub002/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReservationRepo interface {
	// Create вставляет холд. Частичный уникальный индекс по (product_id)
	// WHERE status='active' превращает гонку двух покупателей в
	// gorm.ErrDuplicatedKey у проигравшего.
	Create(ctx context.Context, r *models.Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error)

	// CancelOwned отменяет холд только для его владельца.
	CancelOwned(ctx context.Context, id uuid.UUID, holderID string) (bool, error)

	// ExpireStale лениво переводит протухшие активные строки товара в expired.
	ExpireStale(ctx context.Context, productID string, now time.Time) (int64, error)

	ListActiveByHolder(ctx context.Context, holderID string, now time.Time) ([]models.Reservation, error)
	ActiveForProduct(ctx context.Context, productID string, now time.Time) (*models.Reservation, error)
	ConsumeForProducts(ctx context.Context, productIDs []string, now time.Time) (int64, error)
}

type reservationRepo struct{ db *gorm.DB }

func NewReservationRepo(db *gorm.DB) ReservationRepo { return &reservationRepo{db: db} }

func (r *reservationRepo) Create(ctx context.Context, res *models.Reservation) error {
	return r.db.WithContext(ctx).Create(res).Error
}

func (r *reservationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var res models.Reservation
	err := r.db.WithContext(ctx).First(&res, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &res, err
}

func (r *reservationRepo) CancelOwned(ctx context.Context, id uuid.UUID, holderID string) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ? AND holder_id = ? AND status = ?", id, holderID, models.ReservationActive).
		Update("status", models.ReservationCancelled)
	return tx.RowsAffected > 0, tx.Error
}

func (r *reservationRepo) ExpireStale(ctx context.Context, productID string, now time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("product_id = ? AND status = ? AND expires_at <= ?", productID, models.ReservationActive, now).
		Update("status", models.ReservationExpired)
	return tx.RowsAffected, tx.Error
}

func (r *reservationRepo) ListActiveByHolder(ctx context.Context, holderID string, now time.Time) ([]models.Reservation, error) {
	var list []models.Reservation
	err := r.db.WithContext(ctx).
		Where("holder_id = ? AND status = ? AND expires_at > ?", holderID, models.ReservationActive, now).
		Order("expires_at ASC").
		Find(&list).Error
	return list, err
}

func (r *reservationRepo) ActiveForProduct(ctx context.Context, productID string, now time.Time) (*models.Reservation, error) {
	var res models.Reservation
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND status = ? AND expires_at > ?", productID, models.ReservationActive, now).
		Order("expires_at DESC").
		First(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &res, err
}

func (r *reservationRepo) ConsumeForProducts(ctx context.Context, productIDs []string, now time.Time) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	tx := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("product_id IN ? AND status = ? AND expires_at > ?", productIDs, models.ReservationActive, now).
		Update("status", models.ReservationConsumed)
	return tx.RowsAffected, tx.Error
}

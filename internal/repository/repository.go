package repository

import "gorm.io/gorm"

type Repository struct {
	DB           *gorm.DB
	Orders       OrderRepo
	Items        OrderItemRepo
	Reservations ReservationRepo
}

func buildRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:           db,
		Orders:       NewOrderRepo(db),
		Items:        NewOrderItemRepo(db),
		Reservations: NewReservationRepo(db),
	}
}

func New(db *gorm.DB) *Repository { return buildRepository(db) }

// Глобальная транзакция на весь набор репо. Без *gorm.DB (юнит-тесты с
// моками) выполняется без транзакции.
func (r *Repository) WithTx(fn func(tx *Repository) error) error {
	if r.DB == nil {
		return fn(r)
	}
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return fn(buildRepository(tx))
	})
}

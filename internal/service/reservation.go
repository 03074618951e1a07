package service

import (
	"context"
	"time"

	"github.com/raquelxaviert/micangaria-sub002/internal/models"

	"github.com/google/uuid"
)

const (
	defaultReservationMinutes = 15
	maxReservationMinutes     = 60

	// Порог подсветки "скоро истечёт" в выдаче активных резерваций.
	nearExpirationThreshold = 2 * time.Minute
)

type ReservationInput struct {
	ProductID       string
	SessionID       string
	Quantity        int32 // 0 трактуется как 1
	DurationMinutes int   // 0 трактуется как defaultReservationMinutes
}

// ActiveReservation — резервация с производными полями для выдачи наружу.
type ActiveReservation struct {
	models.Reservation
	RemainingMinutes int
	NearExpiration   bool
}

// ProductAvailability — производное состояние товара. Флага на самом
// товаре нет: всё выводится из оплаченных заказов и активных холдов.
type ProductAvailability struct {
	IsSold     bool
	IsReserved bool
	ExpiresAt  *time.Time
}

func (a ProductAvailability) Available() bool { return !a.IsSold && !a.IsReserved }

type ReservationService interface {
	Create(ctx context.Context, in ReservationInput) (*models.Reservation, error)
	Cancel(ctx context.Context, id uuid.UUID) (bool, error)
	ListActive(ctx context.Context) ([]ActiveReservation, error)
	ProductStatus(ctx context.Context, productID string) (ProductAvailability, error)
	IsAvailable(ctx context.Context, productID string) (bool, error)
}

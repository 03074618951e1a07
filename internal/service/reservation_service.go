package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/raquelxaviert/micangaria-sub002/internal/models"
	"github.com/raquelxaviert/micangaria-sub002/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type reservationService struct {
	repo *repository.Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewReservationService(repo *repository.Repository, log *zap.Logger) *reservationService {
	return &reservationService{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

func requireHolder(ctx context.Context) (string, error) {
	holder, ok := HolderIDFromContext(ctx)
	if !ok {
		return "", ErrUnauthorized
	}
	return holder, nil
}

func (s *reservationService) Create(ctx context.Context, in ReservationInput) (*models.Reservation, error) {
	holder, err := requireHolder(ctx)
	if err != nil {
		return nil, err
	}

	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return nil, ErrInvalidInput
	}

	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return nil, ErrQuantityInvalid
	}

	minutes := in.DurationMinutes
	if minutes <= 0 {
		minutes = defaultReservationMinutes
	}
	if minutes > maxReservationMinutes {
		return nil, ErrInvalidInput
	}

	now := s.now()

	// Предварительная проверка доступности. Не сериализуема: авторитетом
	// остаётся частичный уникальный индекс на вставке ниже.
	avail, err := s.availability(ctx, productID, now)
	if err != nil {
		return nil, err
	}
	if !avail.Available() {
		return nil, ErrProductUnavailable
	}

	res := &models.Reservation{
		ProductID: productID,
		HolderID:  holder,
		SessionID: strings.TrimSpace(in.SessionID),
		Quantity:  qty,
		Status:    models.ReservationActive,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(minutes) * time.Minute),
	}

	err = s.repo.WithTx(func(tx *repository.Repository) error {
		// Ленивое протухание: строка с истёкшим expires_at всё ещё держит
		// частичный индекс, пока её статус active.
		if _, err := tx.Reservations.ExpireStale(ctx, productID, now); err != nil {
			return err
		}
		return tx.Reservations.Create(ctx, res)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Проигранная гонка двух покупателей за один товар.
			return nil, ErrProductUnavailable
		}
		return nil, err
	}

	s.log.Info("reservation created",
		zap.String("reservation_id", res.ID.String()),
		zap.String("product_id", productID),
		zap.Time("expires_at", res.ExpiresAt))
	return res, nil
}

func (s *reservationService) Cancel(ctx context.Context, id uuid.UUID) (bool, error) {
	holder, err := requireHolder(ctx)
	if err != nil {
		return false, err
	}
	ok, err := s.repo.Reservations.CancelOwned(ctx, id, holder)
	if err != nil {
		return false, err
	}
	if ok {
		s.log.Info("reservation cancelled", zap.String("reservation_id", id.String()))
	}
	return ok, nil
}

func (s *reservationService) ListActive(ctx context.Context) ([]ActiveReservation, error) {
	holder, err := requireHolder(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rows, err := s.repo.Reservations.ListActiveByHolder(ctx, holder, now)
	if err != nil {
		return nil, err
	}

	out := make([]ActiveReservation, 0, len(rows))
	for _, r := range rows {
		remaining := r.RemainingTime(now)
		out = append(out, ActiveReservation{
			Reservation:      r,
			RemainingMinutes: int(math.Floor(remaining.Minutes())),
			NearExpiration:   remaining <= nearExpirationThreshold,
		})
	}
	return out, nil
}

func (s *reservationService) ProductStatus(ctx context.Context, productID string) (ProductAvailability, error) {
	if strings.TrimSpace(productID) == "" {
		return ProductAvailability{}, ErrInvalidInput
	}
	return s.availability(ctx, productID, s.now())
}

func (s *reservationService) IsAvailable(ctx context.Context, productID string) (bool, error) {
	avail, err := s.ProductStatus(ctx, productID)
	if err != nil {
		return false, err
	}
	return avail.Available(), nil
}

func (s *reservationService) availability(ctx context.Context, productID string, now time.Time) (ProductAvailability, error) {
	sold, err := s.repo.Orders.ExistsPaidForProduct(ctx, productID)
	if err != nil {
		return ProductAvailability{}, err
	}

	active, err := s.repo.Reservations.ActiveForProduct(ctx, productID, now)
	if err != nil {
		return ProductAvailability{}, err
	}

	avail := ProductAvailability{IsSold: sold}
	if active != nil {
		avail.IsReserved = true
		expires := active.ExpiresAt
		avail.ExpiresAt = &expires
	}
	return avail, nil
}

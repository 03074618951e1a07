package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/raquelxaviert/micangaria-sub002/internal/models"
	"github.com/raquelxaviert/micangaria-sub002/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newReservationTestService(orders *MockOrderRepo, reservations *MockReservationRepo, at time.Time) *reservationService {
	s := NewReservationService(&repository.Repository{
		Orders:       orders,
		Reservations: reservations,
	}, zap.NewNop())
	s.now = func() time.Time { return at }
	return s
}

func holderCtx(holder string) context.Context {
	return WithHolderID(context.Background(), holder)
}

func TestReservationCreate_OK(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	var expiredFor string
	reservations := &MockReservationRepo{
		ExpireStaleFunc: func(ctx context.Context, productID string, now time.Time) (int64, error) {
			expiredFor = productID
			return 0, nil
		},
	}
	s := newReservationTestService(&MockOrderRepo{}, reservations, base)

	res, err := s.Create(holderCtx("h1"), ReservationInput{ProductID: "p1", DurationMinutes: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.HolderID != "h1" || res.Status != models.ReservationActive {
		t.Fatalf("unexpected reservation: %+v", res)
	}
	if !res.ExpiresAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("expires_at: got %v want %v", res.ExpiresAt, base.Add(time.Minute))
	}
	if res.Quantity != 1 {
		t.Fatalf("quantity must default to 1, got %d", res.Quantity)
	}
	if expiredFor != "p1" {
		t.Fatalf("stale rows must be expired before insert")
	}
}

func TestReservationCreate_DefaultDuration(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	s := newReservationTestService(&MockOrderRepo{}, &MockReservationRepo{}, base)

	res, err := s.Create(holderCtx("h1"), ReservationInput{ProductID: "p1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !res.ExpiresAt.Equal(base.Add(defaultReservationMinutes * time.Minute)) {
		t.Fatalf("default duration not applied: %v", res.ExpiresAt)
	}
}

func TestReservationCreate_Validation(t *testing.T) {
	base := time.Now()
	s := newReservationTestService(&MockOrderRepo{}, &MockReservationRepo{}, base)

	if _, err := s.Create(context.Background(), ReservationInput{ProductID: "p1"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("no holder: got %v want ErrUnauthorized", err)
	}
	if _, err := s.Create(holderCtx("h1"), ReservationInput{ProductID: "  "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty product: got %v", err)
	}
	if _, err := s.Create(holderCtx("h1"), ReservationInput{ProductID: "p1", Quantity: -1}); !errors.Is(err, ErrQuantityInvalid) {
		t.Fatalf("negative quantity: got %v", err)
	}
	if _, err := s.Create(holderCtx("h1"), ReservationInput{ProductID: "p1", DurationMinutes: maxReservationMinutes + 1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("too long duration: got %v", err)
	}
}

func TestReservationCreate_AlreadyReserved(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	reservations := &MockReservationRepo{
		ActiveForProductFunc: func(ctx context.Context, productID string, now time.Time) (*models.Reservation, error) {
			return &models.Reservation{ProductID: productID, Status: models.ReservationActive, ExpiresAt: now.Add(5 * time.Minute)}, nil
		},
	}
	s := newReservationTestService(&MockOrderRepo{}, reservations, base)

	if _, err := s.Create(holderCtx("h2"), ReservationInput{ProductID: "p1"}); !errors.Is(err, ErrProductUnavailable) {
		t.Fatalf("got %v want ErrProductUnavailable", err)
	}
}

func TestReservationCreate_SoldProduct(t *testing.T) {
	orders := &MockOrderRepo{
		ExistsPaidForProductFunc: func(ctx context.Context, productID string) (bool, error) {
			return true, nil
		},
	}
	s := newReservationTestService(orders, &MockReservationRepo{}, time.Now())

	if _, err := s.Create(holderCtx("h1"), ReservationInput{ProductID: "p1"}); !errors.Is(err, ErrProductUnavailable) {
		t.Fatalf("got %v want ErrProductUnavailable", err)
	}
}

func TestReservationCreate_LostRace(t *testing.T) {
	// Проверка доступности прошла, но вставка упёрлась в частичный
	// уникальный индекс — конкурент успел раньше.
	reservations := &MockReservationRepo{
		CreateFunc: func(ctx context.Context, r *models.Reservation) error {
			return gorm.ErrDuplicatedKey
		},
	}
	s := newReservationTestService(&MockOrderRepo{}, reservations, time.Now())

	if _, err := s.Create(holderCtx("h1"), ReservationInput{ProductID: "p1"}); !errors.Is(err, ErrProductUnavailable) {
		t.Fatalf("got %v want ErrProductUnavailable", err)
	}
}

func TestIsAvailable_AfterExpiry(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	created := &models.Reservation{
		ProductID: "p1",
		Status:    models.ReservationActive,
		CreatedAt: base,
		ExpiresAt: base.Add(time.Minute),
	}

	reservations := &MockReservationRepo{
		ActiveForProductFunc: func(ctx context.Context, productID string, now time.Time) (*models.Reservation, error) {
			// Репозиторий фильтрует по expires_at > now.
			if created.ExpiresAt.After(now) {
				return created, nil
			}
			return nil, nil
		},
	}

	s := newReservationTestService(&MockOrderRepo{}, reservations, base.Add(30*time.Second))
	ok, err := s.IsAvailable(context.Background(), "p1")
	if err != nil {
		t.Fatalf("IsAvailable: %v", err)
	}
	if ok {
		t.Fatalf("product must be unavailable while the hold lives")
	}

	// 61 секунда спустя минутный холд протух, даже без фоновой уборки.
	s.now = func() time.Time { return base.Add(61 * time.Second) }
	ok, err = s.IsAvailable(context.Background(), "p1")
	if err != nil {
		t.Fatalf("IsAvailable: %v", err)
	}
	if !ok {
		t.Fatalf("product must be available after the hold expires")
	}
}

func TestIsAvailable_SoldBeatsEverything(t *testing.T) {
	orders := &MockOrderRepo{
		ExistsPaidForProductFunc: func(ctx context.Context, productID string) (bool, error) {
			return true, nil
		},
	}
	s := newReservationTestService(orders, &MockReservationRepo{}, time.Now())

	ok, err := s.IsAvailable(context.Background(), "p1")
	if err != nil {
		t.Fatalf("IsAvailable: %v", err)
	}
	if ok {
		t.Fatalf("sold product is never available")
	}
}

func TestProductStatus_Fields(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	expires := base.Add(10 * time.Minute)
	reservations := &MockReservationRepo{
		ActiveForProductFunc: func(ctx context.Context, productID string, now time.Time) (*models.Reservation, error) {
			return &models.Reservation{ProductID: productID, Status: models.ReservationActive, ExpiresAt: expires}, nil
		},
	}
	s := newReservationTestService(&MockOrderRepo{}, reservations, base)

	avail, err := s.ProductStatus(context.Background(), "p1")
	if err != nil {
		t.Fatalf("ProductStatus: %v", err)
	}
	if !avail.IsReserved || avail.IsSold {
		t.Fatalf("unexpected availability: %+v", avail)
	}
	if avail.ExpiresAt == nil || !avail.ExpiresAt.Equal(expires) {
		t.Fatalf("expires_at not surfaced: %+v", avail.ExpiresAt)
	}
	if avail.Available() {
		t.Fatalf("reserved product is not available")
	}
}

func TestCancel_Ownership(t *testing.T) {
	id := uuid.New()
	reservations := &MockReservationRepo{
		CancelOwnedFunc: func(ctx context.Context, rid uuid.UUID, holderID string) (bool, error) {
			return rid == id && holderID == "owner", nil
		},
	}
	s := newReservationTestService(&MockOrderRepo{}, reservations, time.Now())

	ok, err := s.Cancel(holderCtx("owner"), id)
	if err != nil || !ok {
		t.Fatalf("owner cancel: ok=%v err=%v", ok, err)
	}

	ok, err = s.Cancel(holderCtx("stranger"), id)
	if err != nil {
		t.Fatalf("stranger cancel: %v", err)
	}
	if ok {
		t.Fatalf("foreign reservation must not be cancellable")
	}

	if _, err := s.Cancel(context.Background(), id); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("no holder: got %v", err)
	}
}

func TestListActive_DerivedFields(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	reservations := &MockReservationRepo{
		ListActiveByHolderFunc: func(ctx context.Context, holderID string, now time.Time) ([]models.Reservation, error) {
			return []models.Reservation{
				{ProductID: "far", Status: models.ReservationActive, ExpiresAt: base.Add(10*time.Minute + 30*time.Second)},
				{ProductID: "near", Status: models.ReservationActive, ExpiresAt: base.Add(90 * time.Second)},
			}, nil
		},
	}
	s := newReservationTestService(&MockOrderRepo{}, reservations, base)

	rows, err := s.ListActive(holderCtx("h1"))
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	far, near := rows[0], rows[1]
	if far.RemainingMinutes != 10 || far.NearExpiration {
		t.Fatalf("far: %+v", far)
	}
	if near.RemainingMinutes != 1 || !near.NearExpiration {
		t.Fatalf("near: %+v", near)
	}
}

package service

import (
	"context"
	"time"

	"github.com/raquelxaviert/micangaria-sub002/internal/models"
	"github.com/raquelxaviert/micangaria-sub002/internal/payment"

	"github.com/google/uuid"
)

// Моки для всех зависимостей сервисов

// MockReservationRepo
type MockReservationRepo struct {
	CreateFunc             func(ctx context.Context, r *models.Reservation) error
	GetByIDFunc            func(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	CancelOwnedFunc        func(ctx context.Context, id uuid.UUID, holderID string) (bool, error)
	ExpireStaleFunc        func(ctx context.Context, productID string, now time.Time) (int64, error)
	ListActiveByHolderFunc func(ctx context.Context, holderID string, now time.Time) ([]models.Reservation, error)
	ActiveForProductFunc   func(ctx context.Context, productID string, now time.Time) (*models.Reservation, error)
	ConsumeForProductsFunc func(ctx context.Context, productIDs []string, now time.Time) (int64, error)
}

func (m *MockReservationRepo) Create(ctx context.Context, r *models.Reservation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, r)
	}
	return nil
}

func (m *MockReservationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockReservationRepo) CancelOwned(ctx context.Context, id uuid.UUID, holderID string) (bool, error) {
	if m.CancelOwnedFunc != nil {
		return m.CancelOwnedFunc(ctx, id, holderID)
	}
	return false, nil
}

func (m *MockReservationRepo) ExpireStale(ctx context.Context, productID string, now time.Time) (int64, error) {
	if m.ExpireStaleFunc != nil {
		return m.ExpireStaleFunc(ctx, productID, now)
	}
	return 0, nil
}

func (m *MockReservationRepo) ListActiveByHolder(ctx context.Context, holderID string, now time.Time) ([]models.Reservation, error) {
	if m.ListActiveByHolderFunc != nil {
		return m.ListActiveByHolderFunc(ctx, holderID, now)
	}
	return nil, nil
}

func (m *MockReservationRepo) ActiveForProduct(ctx context.Context, productID string, now time.Time) (*models.Reservation, error) {
	if m.ActiveForProductFunc != nil {
		return m.ActiveForProductFunc(ctx, productID, now)
	}
	return nil, nil
}

func (m *MockReservationRepo) ConsumeForProducts(ctx context.Context, productIDs []string, now time.Time) (int64, error) {
	if m.ConsumeForProductsFunc != nil {
		return m.ConsumeForProductsFunc(ctx, productIDs, now)
	}
	return 0, nil
}

// MockOrderRepo
type MockOrderRepo struct {
	CreateFunc                 func(ctx context.Context, o *models.Order) error
	GetByIDFunc                func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByExternalReferenceFunc func(ctx context.Context, ref string) (*models.Order, error)
	GetByPaymentIDFunc         func(ctx context.Context, paymentID string) (*models.Order, error)
	UpdateStatusGuardedFunc    func(ctx context.Context, id uuid.UUID, from, to models.OrderStatus, paymentID *string) (bool, error)
	ExistsPaidForProductFunc   func(ctx context.Context, productID string) (bool, error)
}

func (m *MockOrderRepo) Create(ctx context.Context, o *models.Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, o)
	}
	return nil
}

func (m *MockOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockOrderRepo) GetByExternalReference(ctx context.Context, ref string) (*models.Order, error) {
	if m.GetByExternalReferenceFunc != nil {
		return m.GetByExternalReferenceFunc(ctx, ref)
	}
	return nil, nil
}

func (m *MockOrderRepo) GetByPaymentID(ctx context.Context, paymentID string) (*models.Order, error) {
	if m.GetByPaymentIDFunc != nil {
		return m.GetByPaymentIDFunc(ctx, paymentID)
	}
	return nil, nil
}

func (m *MockOrderRepo) UpdateStatusGuarded(ctx context.Context, id uuid.UUID, from, to models.OrderStatus, paymentID *string) (bool, error) {
	if m.UpdateStatusGuardedFunc != nil {
		return m.UpdateStatusGuardedFunc(ctx, id, from, to, paymentID)
	}
	return true, nil
}

func (m *MockOrderRepo) ExistsPaidForProduct(ctx context.Context, productID string) (bool, error) {
	if m.ExistsPaidForProductFunc != nil {
		return m.ExistsPaidForProductFunc(ctx, productID)
	}
	return false, nil
}

// MockOrderItemRepo
type MockOrderItemRepo struct {
	BulkCreateFunc func(ctx context.Context, items []models.OrderItem) error
}

func (m *MockOrderItemRepo) BulkCreate(ctx context.Context, items []models.OrderItem) error {
	if m.BulkCreateFunc != nil {
		return m.BulkCreateFunc(ctx, items)
	}
	return nil
}

// MockProvider
type MockProvider struct {
	GetPaymentFunc       func(ctx context.Context, id string) (*payment.Payment, error)
	CreatePreferenceFunc func(ctx context.Context, req payment.PreferenceRequest) (*payment.Preference, error)
}

func (m *MockProvider) GetPayment(ctx context.Context, id string) (*payment.Payment, error) {
	if m.GetPaymentFunc != nil {
		return m.GetPaymentFunc(ctx, id)
	}
	return nil, payment.ErrPaymentNotFound
}

func (m *MockProvider) CreatePreference(ctx context.Context, req payment.PreferenceRequest) (*payment.Preference, error) {
	if m.CreatePreferenceFunc != nil {
		return m.CreatePreferenceFunc(ctx, req)
	}
	return &payment.Preference{ID: "pref-1", InitPoint: "https://pay.example/init"}, nil
}

// MockEventBus
type MockEventBus struct {
	PublishOrderStatusFunc func(ctx context.Context, evt OrderStatusEvent) error
}

func (m *MockEventBus) PublishOrderStatus(ctx context.Context, evt OrderStatusEvent) error {
	if m.PublishOrderStatusFunc != nil {
		return m.PublishOrderStatusFunc(ctx, evt)
	}
	return nil
}

package service

import (
	"context"
	"time"

	"github.com/raquelxaviert/micangaria-sub002/internal/models"
	"github.com/raquelxaviert/micangaria-sub002/internal/payment"
)

// PaymentProvider — порт к REST API платёжного провайдера.
type PaymentProvider interface {
	GetPayment(ctx context.Context, id string) (*payment.Payment, error)
	CreatePreference(ctx context.Context, req payment.PreferenceRequest) (*payment.Preference, error)
}

// EventBus публикует события смены статуса заказа. nil отключает публикацию.
type EventBus interface {
	PublishOrderStatus(ctx context.Context, evt OrderStatusEvent) error
}

type OrderStatusEvent struct {
	OrderID           string             `json:"order_id"`
	ExternalReference string             `json:"external_reference"`
	Status            models.OrderStatus `json:"status"`
	PaymentID         *string            `json:"payment_id,omitempty"`
	OccurredAt        time.Time          `json:"occurred_at"`
}

type CheckoutItem struct {
	ProductID      string
	Title          string
	Quantity       int32
	UnitPriceCents int64
}

type CheckoutInput struct {
	Items []CheckoutItem
}

type CheckoutResult struct {
	Order        *models.Order
	PreferenceID string
	InitPoint    string
}

// StatusUpdate — ручное идемпотентное обновление со страницы успеха.
// ProviderStatus имеет приоритет над Status, если задан.
type StatusUpdate struct {
	ExternalReference string
	PaymentID         *string
	Status            string
	ProviderStatus    string
}

// ApplyResult: Updated=false означает, что переход уже был применён
// раньше (или событие сознательно проигнорировано) — это успех, не ошибка.
type ApplyResult struct {
	Updated bool
	Order   *models.Order
}

type OrderService interface {
	CreateCheckout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error)
	HandleProviderEvent(ctx context.Context, evt payment.Event) (ApplyResult, error)
	ApplyStatus(ctx context.Context, upd StatusUpdate) (ApplyResult, error)
	GetByExternalReference(ctx context.Context, ref string) (*models.Order, error)
}

// MapProviderStatus переводит код провайдера во внутренний статус.
// Незнакомые коды не применяются вслепую: ok=false, вызывающий логирует.
func MapProviderStatus(code string) (models.OrderStatus, bool) {
	switch code {
	case "approved":
		return models.OrderStatusPaid, true
	case "pending":
		return models.OrderStatusPending, true
	case "in_process":
		return models.OrderStatusProcessing, true
	case "rejected":
		return models.OrderStatusPaymentFailed, true
	case "cancelled":
		return models.OrderStatusCancelled, true
	case "refunded":
		return models.OrderStatusRefunded, true
	}
	return "", false
}

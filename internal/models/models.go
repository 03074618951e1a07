package models

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "active"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationExpired   ReservationStatus = "expired"
	ReservationConsumed  ReservationStatus = "consumed"
)

// Reservation — временный холд на единичный товар во время чекаута.
// Статус "active" сам по себе не авторитетен: истечение всегда
// пересчитывается от expires_at на чтении.
type Reservation struct {
	ID        uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID string            `gorm:"type:text;not null;index:ix_reservations_product_status_expires,priority:1"`
	HolderID  string            `gorm:"type:text;not null;index"`
	SessionID string            `gorm:"type:text"`
	Quantity  int32             `gorm:"not null;default:1"`
	Status    ReservationStatus `gorm:"type:text;not null;default:'active';index:ix_reservations_product_status_expires,priority:2"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	ExpiresAt time.Time `gorm:"not null;index:ix_reservations_product_status_expires,priority:3"`
}

func (Reservation) TableName() string { return "reservations" }

// Active сообщает, действует ли холд на момент now.
func (r *Reservation) Active(now time.Time) bool {
	return r.Status == ReservationActive && r.ExpiresAt.After(now)
}

// RemainingTime — сколько осталось до истечения, не меньше нуля.
func (r *Reservation) RemainingTime(now time.Time) time.Duration {
	d := r.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

type OrderStatus string

const (
	OrderStatusPending       OrderStatus = "pending"
	OrderStatusProcessing    OrderStatus = "processing"
	OrderStatusPaid          OrderStatus = "paid"
	OrderStatusPaymentFailed OrderStatus = "payment_failed"
	OrderStatusCancelled     OrderStatus = "cancelled"
	OrderStatusRefunded      OrderStatus = "refunded"
)

// Допустимые переходы. Терминальные статусы не имеют исходящих рёбер,
// за единственным исключением paid -> refunded.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusPaid, OrderStatusPaymentFailed, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusPaid, OrderStatusPaymentFailed, OrderStatusCancelled},
	OrderStatusPaid:       {OrderStatusRefunded},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusPaid, OrderStatusPaymentFailed, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusPaid,
		OrderStatusPaymentFailed, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

type Order struct {
	ID                uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ExternalReference string      `gorm:"type:text;not null;uniqueIndex:ux_orders_external_reference"`
	Status            OrderStatus `gorm:"type:text;not null;default:'pending';index"`
	PaymentID         *string     `gorm:"type:text;index:ix_orders_payment_id"`
	HolderID          string      `gorm:"type:text;not null;index"`
	TotalCents        int64       `gorm:"not null;default:0"`
	CurrencyCode      string      `gorm:"type:char(3);not null;default:'BRL'"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string { return "orders" }

// OrderItem — снапшот позиции на момент создания заказа. Каталог внешний,
// поэтому цена и название фиксируются здесь.
type OrderItem struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_order_items_order_product"`
	ProductID      string    `gorm:"type:text;not null;uniqueIndex:ux_order_items_order_product"`
	Title          string    `gorm:"type:text;not null"`
	Quantity       int32     `gorm:"type:int;not null"`
	UnitPriceCents int64     `gorm:"not null"`
	CurrencyCode   string    `gorm:"type:char(3);not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (OrderItem) TableName() string { return "order_items" }

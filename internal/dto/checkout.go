package dto

import (
	"encoding/json"
	"time"
)

type CheckoutItemRequest struct {
	ProductID      string `json:"product_id" binding:"required"`
	Title          string `json:"title"`
	Quantity       int32  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents" binding:"min=0"`
}

type CreatePreferenceRequest struct {
	Items []CheckoutItemRequest `json:"items" binding:"required,min=1,dive"`
}

type CreatePreferenceResponse struct {
	ExternalReference string `json:"external_reference"`
	PreferenceID      string `json:"preference_id"`
	InitPoint         string `json:"init_point"`
}

type CheckoutStatusRequest struct {
	ExternalReference string  `json:"external_reference" binding:"required"`
	PaymentID         *string `json:"payment_id"`
	Status            string  `json:"status"`
	MpStatus          string  `json:"mp_status"`
}

type ApplyStatusResponse struct {
	Success bool   `json:"success"`
	Updated bool   `json:"updated"`
	Status  string `json:"status,omitempty"`
}

type OrderItemView struct {
	ProductID      string `json:"product_id"`
	Title          string `json:"title"`
	Quantity       int32  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	CurrencyCode   string `json:"currency_code"`
}

type OrderView struct {
	ID                string          `json:"id"`
	ExternalReference string          `json:"external_reference"`
	Status            string          `json:"status"`
	PaymentID         *string         `json:"payment_id,omitempty"`
	TotalCents        int64           `json:"total_cents"`
	CurrencyCode      string          `json:"currency_code"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Items             []OrderItemView `json:"items"`
}

type CheckoutSessionRequest struct {
	Step            string          `json:"step" binding:"required"`
	CartItems       json.RawMessage `json:"cart_items"`
	CustomerData    json.RawMessage `json:"customer_data"`
	ShippingAddress json.RawMessage `json:"shipping_address"`
	ShippingOption  string          `json:"shipping_option"`
}

type CheckoutSessionView struct {
	Step            string          `json:"step"`
	CartItems       json.RawMessage `json:"cart_items,omitempty"`
	CustomerData    json.RawMessage `json:"customer_data,omitempty"`
	ShippingAddress json.RawMessage `json:"shipping_address,omitempty"`
	ShippingOption  string          `json:"shipping_option,omitempty"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type CheckoutSessionResponse struct {
	Session *CheckoutSessionView `json:"session"`
}

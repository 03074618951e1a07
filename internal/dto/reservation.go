package dto

import "time"

type CreateReservationRequest struct {
	ProductID                  string `json:"product_id" binding:"required"`
	SessionID                  string `json:"session_id"`
	Quantity                   int32  `json:"quantity"`
	ReservationDurationMinutes int    `json:"reservation_duration_minutes"`
}

type ReservationView struct {
	ID               string    `json:"id"`
	ProductID        string    `json:"product_id"`
	SessionID        string    `json:"session_id,omitempty"`
	Quantity         int32     `json:"quantity"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	ExpiresAt        time.Time `json:"expires_at"`
	RemainingMinutes int       `json:"remaining_minutes"`
	IsNearExpiration bool      `json:"is_near_expiration"`
}

type CreateReservationResponse struct {
	Reservation      ReservationView `json:"reservation"`
	ExpiresAt        time.Time       `json:"expires_at"`
	RemainingMinutes int             `json:"remaining_minutes"`
}

type ListReservationsResponse struct {
	Reservations []ReservationView `json:"reservations"`
}

type ProductStatusResponse struct {
	IsReserved bool       `json:"isReserved"`
	IsSold     bool       `json:"isSold"`
	ExpiresAt  *time.Time `json:"expiresAt"`
}

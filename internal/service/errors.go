package service

import "errors"

var (
	ErrUnauthorized = errors.New("unauthorized")

	ErrInvalidInput       = errors.New("invalid input")
	ErrProductUnavailable = errors.New("product unavailable")

	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyItems        = errors.New("empty items")
	ErrQuantityInvalid   = errors.New("quantity must be > 0")
	ErrIllegalTransition = errors.New("illegal order status transition")
	ErrStatusConflict    = errors.New("order status changed concurrently")
)

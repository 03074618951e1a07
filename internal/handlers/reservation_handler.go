package handlers

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/raquelxaviert/micangaria-sub002/internal/dto"
	"github.com/raquelxaviert/micangaria-sub002/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReservationHandler struct {
	svc service.ReservationService
	log *zap.Logger
}

func NewReservationHandler(svc service.ReservationService, log *zap.Logger) *ReservationHandler {
	return &ReservationHandler{svc: svc, log: log}
}

func (h *ReservationHandler) Create(c *gin.Context) {
	var req dto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid reservation request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	res, err := h.svc.Create(c.Request.Context(), service.ReservationInput{
		ProductID:       req.ProductID,
		SessionID:       req.SessionID,
		Quantity:        req.Quantity,
		DurationMinutes: req.ReservationDurationMinutes,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("missing session id"))
		case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrQuantityInvalid):
			c.JSON(http.StatusBadRequest, dto.NewValidationError(err.Error(), nil))
		case errors.Is(err, service.ErrProductUnavailable):
			// Для UI это «товар уже недоступен».
			c.JSON(http.StatusConflict, dto.NewConflictError("product is no longer available"))
		default:
			h.log.Error("create reservation failed", zap.String("product_id", req.ProductID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		}
		return
	}

	// Округление вверх: свежесозданный 15-минутный холд показывает 15,
	// а не 14 из-за микросекунд между вставкой и ответом.
	remaining := int(math.Ceil(res.RemainingTime(time.Now()).Minutes()))
	c.JSON(http.StatusOK, dto.CreateReservationResponse{
		Reservation:      reservationView(service.ActiveReservation{Reservation: *res, RemainingMinutes: remaining}),
		ExpiresAt:        res.ExpiresAt,
		RemainingMinutes: remaining,
	})
}

func (h *ReservationHandler) List(c *gin.Context) {
	list, err := h.svc.ListActive(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("missing session id"))
			return
		}
		h.log.Error("list reservations failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}

	views := make([]dto.ReservationView, 0, len(list))
	for _, r := range list {
		views = append(views, reservationView(r))
	}
	c.JSON(http.StatusOK, dto.ListReservationsResponse{Reservations: views})
}

func (h *ReservationHandler) Cancel(c *gin.Context) {
	raw := c.Query("reservation_id")
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid reservation_id", nil))
		return
	}

	ok, err := h.svc.Cancel(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("missing session id"))
			return
		}
		h.log.Error("cancel reservation failed", zap.String("reservation_id", raw), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, dto.NewNotFoundError("reservation not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ReservationHandler) ProductStatus(c *gin.Context) {
	avail, err := h.svc.ProductStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid product id", nil))
			return
		}
		h.log.Error("product status failed", zap.String("product_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}

	c.JSON(http.StatusOK, dto.ProductStatusResponse{
		IsReserved: avail.IsReserved,
		IsSold:     avail.IsSold,
		ExpiresAt:  avail.ExpiresAt,
	})
}

func reservationView(r service.ActiveReservation) dto.ReservationView {
	return dto.ReservationView{
		ID:               r.ID.String(),
		ProductID:        r.ProductID,
		SessionID:        r.SessionID,
		Quantity:         r.Quantity,
		Status:           string(r.Status),
		CreatedAt:        r.CreatedAt,
		ExpiresAt:        r.ExpiresAt,
		RemainingMinutes: r.RemainingMinutes,
		IsNearExpiration: r.NearExpiration,
	}
}

package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/raquelxaviert/micangaria-sub002/internal/dto"
	"github.com/raquelxaviert/micangaria-sub002/internal/payment"
	"github.com/raquelxaviert/micangaria-sub002/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	headerSignature = "Signature"
	headerRequestID = "Request-Id"
)

type WebhookHandler struct {
	orders    service.OrderService
	validator *payment.SignatureValidator
	log       *zap.Logger
}

func NewWebhookHandler(orders service.OrderService, validator *payment.SignatureValidator, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{orders: orders, validator: validator, log: log}
}

// Handle принимает уведомления провайдера. 200 — для любого обработанного
// или сознательно проигнорированного события (иначе провайдер устроит
// шторм ретраев); не-200 только для ошибок аутентификации/валидации,
// неизвестного заказа и сбоев хранилища.
func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("unreadable body", nil))
		return
	}

	evt := payment.ParseEvent(body, c.Request.URL.Query())

	if err := h.validator.Validate(c.GetHeader(headerSignature), c.GetHeader(headerRequestID), evt.ResourceID); err != nil {
		h.log.Warn("webhook signature rejected",
			zap.String("request_id", c.GetHeader(headerRequestID)),
			zap.Error(err))
		c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid webhook signature"))
		return
	}

	res, err := h.orders.HandleProviderEvent(c.Request.Context(), evt)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIllegalTransition):
			// Запоздавшее или продублированное уведомление: состояние уже
			// ушло дальше по машине статусов. Сознательно игнорируем.
			h.log.Warn("stale webhook ignored", zap.String("resource_id", evt.ResourceID))
			c.JSON(http.StatusOK, dto.ApplyStatusResponse{Success: true, Updated: false})
		case errors.Is(err, service.ErrOrderNotFound), errors.Is(err, payment.ErrPaymentNotFound):
			c.JSON(http.StatusNotFound, dto.NewNotFoundError("order not found"))
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, dto.NewValidationError("missing resource id", nil))
		default:
			h.log.Error("webhook processing failed", zap.String("resource_id", evt.ResourceID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		}
		return
	}

	c.JSON(http.StatusOK, dto.ApplyStatusResponse{Success: true, Updated: res.Updated})
}

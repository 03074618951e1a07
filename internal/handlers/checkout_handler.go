package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/raquelxaviert/micangaria-sub002/internal/dto"
	"github.com/raquelxaviert/micangaria-sub002/internal/middleware"
	"github.com/raquelxaviert/micangaria-sub002/internal/models"
	"github.com/raquelxaviert/micangaria-sub002/internal/service"
	"github.com/raquelxaviert/micangaria-sub002/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionStore — порт к хранилищу чекаут-сессий.
type SessionStore interface {
	Get(ctx context.Context, holderID string) (*session.CheckoutSession, error)
	Put(ctx context.Context, holderID string, sess *session.CheckoutSession) error
}

type CheckoutHandler struct {
	orders   service.OrderService
	sessions SessionStore
	log      *zap.Logger
}

func NewCheckoutHandler(orders service.OrderService, sessions SessionStore, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{orders: orders, sessions: sessions, log: log}
}

func (h *CheckoutHandler) CreatePreference(c *gin.Context) {
	var req dto.CreatePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid preference request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	items := make([]service.CheckoutItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, service.CheckoutItem{
			ProductID:      it.ProductID,
			Title:          it.Title,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
		})
	}

	result, err := h.orders.CreateCheckout(c.Request.Context(), service.CheckoutInput{Items: items})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("missing session id"))
		case errors.Is(err, service.ErrEmptyItems), errors.Is(err, service.ErrQuantityInvalid), errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, dto.NewValidationError(err.Error(), nil))
		case errors.Is(err, service.ErrProductUnavailable):
			c.JSON(http.StatusConflict, dto.NewConflictError("product is no longer available"))
		default:
			h.log.Error("create checkout failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		}
		return
	}

	c.JSON(http.StatusOK, dto.CreatePreferenceResponse{
		ExternalReference: result.Order.ExternalReference,
		PreferenceID:      result.PreferenceID,
		InitPoint:         result.InitPoint,
	})
}

// Status — идемпотентный фолбэк со страницы успеха: подтверждает оплату,
// если вебхук ещё не дошёл.
func (h *CheckoutHandler) Status(c *gin.Context) {
	var req dto.CheckoutStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid status request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	res, err := h.orders.ApplyStatus(c.Request.Context(), service.StatusUpdate{
		ExternalReference: req.ExternalReference,
		PaymentID:         req.PaymentID,
		Status:            req.Status,
		ProviderStatus:    req.MpStatus,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid status update", nil))
		case errors.Is(err, service.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, dto.NewNotFoundError("order not found"))
		case errors.Is(err, service.ErrIllegalTransition), errors.Is(err, service.ErrStatusConflict):
			c.JSON(http.StatusConflict, dto.NewConflictError("order status transition not allowed"))
		default:
			h.log.Error("apply status failed", zap.String("external_reference", req.ExternalReference), zap.Error(err))
			c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		}
		return
	}

	c.JSON(http.StatusOK, dto.ApplyStatusResponse{
		Success: true,
		Updated: res.Updated,
		Status:  string(res.Order.Status),
	})
}

func (h *CheckoutHandler) GetOrder(c *gin.Context) {
	ord, err := h.orders.GetByExternalReference(c.Request.Context(), c.Param("external_reference"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid external reference", nil))
		case errors.Is(err, service.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, dto.NewNotFoundError("order not found"))
		default:
			h.log.Error("get order failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		}
		return
	}
	c.JSON(http.StatusOK, orderView(ord))
}

func (h *CheckoutHandler) GetSession(c *gin.Context) {
	holder := c.GetString(middleware.CtxHolderID)

	sess, err := h.sessions.Get(c.Request.Context(), holder)
	if err != nil {
		h.log.Error("get checkout session failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}
	if sess == nil {
		// Истёкшая сессия неотличима от отсутствующей.
		c.JSON(http.StatusOK, dto.CheckoutSessionResponse{Session: nil})
		return
	}

	c.JSON(http.StatusOK, dto.CheckoutSessionResponse{Session: &dto.CheckoutSessionView{
		Step:            sess.Step,
		CartItems:       sess.CartItems,
		CustomerData:    sess.CustomerData,
		ShippingAddress: sess.ShippingAddress,
		ShippingOption:  sess.ShippingOption,
		UpdatedAt:       sess.UpdatedAt,
	}})
}

func (h *CheckoutHandler) PutSession(c *gin.Context) {
	holder := c.GetString(middleware.CtxHolderID)

	var req dto.CheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid session request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	sess := &session.CheckoutSession{
		Step:            req.Step,
		CartItems:       req.CartItems,
		CustomerData:    req.CustomerData,
		ShippingAddress: req.ShippingAddress,
		ShippingOption:  req.ShippingOption,
	}
	if err := h.sessions.Put(c.Request.Context(), holder, sess); err != nil {
		h.log.Error("put checkout session failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func orderView(ord *models.Order) dto.OrderView {
	items := make([]dto.OrderItemView, 0, len(ord.Items))
	for _, it := range ord.Items {
		items = append(items, dto.OrderItemView{
			ProductID:      it.ProductID,
			Title:          it.Title,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			CurrencyCode:   it.CurrencyCode,
		})
	}
	return dto.OrderView{
		ID:                ord.ID.String(),
		ExternalReference: ord.ExternalReference,
		Status:            string(ord.Status),
		PaymentID:         ord.PaymentID,
		TotalCents:        ord.TotalCents,
		CurrencyCode:      ord.CurrencyCode,
		CreatedAt:         ord.CreatedAt,
		UpdatedAt:         ord.UpdatedAt,
		Items:             items,
	}
}

package service

import (
	"context"
	"strings"
	"time"

	"github.com/raquelxaviert/micangaria-sub002/internal/models"
	"github.com/raquelxaviert/micangaria-sub002/internal/payment"
	"github.com/raquelxaviert/micangaria-sub002/internal/repository"

	"github.com/nanorand/nanorand"
	"go.uber.org/zap"
)

const (
	currencyBRL             = "BRL"
	externalReferencePrefix = "RUGE"
)

type orderService struct {
	repo          *repository.Repository
	provider      PaymentProvider
	events        EventBus
	publicBaseURL string
	log           *zap.Logger
	now           func() time.Time
}

func NewOrderService(repo *repository.Repository, provider PaymentProvider, events EventBus, publicBaseURL string, log *zap.Logger) *orderService {
	return &orderService{
		repo:          repo,
		provider:      provider,
		events:        events,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		log:           log,
		now:           time.Now,
	}
}

func (s *orderService) CreateCheckout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	holder, err := requireHolder(ctx)
	if err != nil {
		return nil, err
	}
	if len(in.Items) == 0 {
		return nil, ErrEmptyItems
	}

	now := s.now()
	var total int64
	itemsDB := make([]models.OrderItem, 0, len(in.Items))
	prefItems := make([]payment.PreferenceItem, 0, len(in.Items))

	for _, it := range in.Items {
		qty := it.Quantity
		if qty == 0 {
			qty = 1
		}
		if qty < 0 {
			return nil, ErrQuantityInvalid
		}
		if strings.TrimSpace(it.ProductID) == "" || it.UnitPriceCents < 0 {
			return nil, ErrInvalidInput
		}

		// Штучный товар: уже проданный не попадает в новый заказ.
		sold, err := s.repo.Orders.ExistsPaidForProduct(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if sold {
			return nil, ErrProductUnavailable
		}

		total += int64(qty) * it.UnitPriceCents
		itemsDB = append(itemsDB, models.OrderItem{
			ProductID:      it.ProductID,
			Title:          it.Title,
			Quantity:       qty,
			UnitPriceCents: it.UnitPriceCents,
			CurrencyCode:   currencyBRL,
			CreatedAt:      now,
		})
		prefItems = append(prefItems, payment.PreferenceItem{
			ID:        it.ProductID,
			Title:     it.Title,
			Quantity:  qty,
			UnitPrice: float64(it.UnitPriceCents) / 100,
		})
	}

	rng, err := nanorand.Gen(10)
	if err != nil {
		return nil, err
	}
	extRef := externalReferencePrefix + rng

	order := &models.Order{
		ExternalReference: extRef,
		Status:            models.OrderStatusPending,
		HolderID:          holder,
		TotalCents:        total,
		CurrencyCode:      currencyBRL,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = s.repo.WithTx(func(tx *repository.Repository) error {
		if err := tx.Orders.Create(ctx, order); err != nil {
			return err
		}
		for i := range itemsDB {
			itemsDB[i].OrderID = order.ID
		}
		return tx.Items.BulkCreate(ctx, itemsDB)
	})
	if err != nil {
		return nil, err
	}
	order.Items = itemsDB

	pref, err := s.provider.CreatePreference(ctx, payment.PreferenceRequest{
		Items:             prefItems,
		ExternalReference: extRef,
		NotificationURL:   s.publicBaseURL + "/webhooks/payment",
		BackURLs: payment.BackURLs{
			Success: s.publicBaseURL + "/checkout/success?external_reference=" + extRef,
			Pending: s.publicBaseURL + "/checkout/pending?external_reference=" + extRef,
			Failure: s.publicBaseURL + "/checkout/failure?external_reference=" + extRef,
		},
		AutoReturn: "approved",
	})
	if err != nil {
		// Заказ остаётся pending; повторная попытка создаст новую preference.
		s.log.Error("create preference failed", zap.String("external_reference", extRef), zap.Error(err))
		return nil, err
	}

	s.log.Info("checkout created",
		zap.String("external_reference", extRef),
		zap.String("preference_id", pref.ID),
		zap.Int64("total_cents", total))

	return &CheckoutResult{Order: order, PreferenceID: pref.ID, InitPoint: pref.InitPoint}, nil
}

func (s *orderService) HandleProviderEvent(ctx context.Context, evt payment.Event) (ApplyResult, error) {
	switch evt.Kind {
	case payment.EventPayment:
		return s.reconcilePayment(ctx, evt.ResourceID)
	case payment.EventMerchantOrder:
		// merchant_order не несёт ничего сверх платёжных уведомлений.
		s.log.Info("merchant_order event ignored", zap.String("resource_id", evt.ResourceID))
		return ApplyResult{}, nil
	default:
		s.log.Warn("unrecognized webhook event ignored", zap.String("resource_id", evt.ResourceID))
		return ApplyResult{}, nil
	}
}

func (s *orderService) reconcilePayment(ctx context.Context, paymentID string) (ApplyResult, error) {
	if paymentID == "" {
		return ApplyResult{}, ErrInvalidInput
	}

	p, err := s.provider.GetPayment(ctx, paymentID)
	if err != nil {
		return ApplyResult{}, err
	}

	next, known := MapProviderStatus(p.Status)
	if !known {
		s.log.Warn("unknown provider payment status, order left untouched",
			zap.String("payment_id", paymentID),
			zap.String("provider_status", p.Status))
		return ApplyResult{}, nil
	}

	ord, err := s.locateOrder(ctx, p.ExternalReference, p.ID.String())
	if err != nil {
		return ApplyResult{}, err
	}

	pid := p.ID.String()
	return s.apply(ctx, ord, next, &pid)
}

func (s *orderService) ApplyStatus(ctx context.Context, upd StatusUpdate) (ApplyResult, error) {
	if upd.ExternalReference == "" {
		return ApplyResult{}, ErrInvalidInput
	}

	var next models.OrderStatus
	switch {
	case upd.ProviderStatus != "":
		mapped, known := MapProviderStatus(upd.ProviderStatus)
		if !known {
			return ApplyResult{}, ErrInvalidInput
		}
		next = mapped
	case upd.Status != "":
		next = models.OrderStatus(upd.Status)
		if !next.Valid() {
			return ApplyResult{}, ErrInvalidInput
		}
	default:
		// Ничего не запрошено — подтверждение без статуса трактуем как paid:
		// эндпоинт существует ради фолбэка со страницы успеха.
		next = models.OrderStatusPaid
	}

	ord, err := s.repo.Orders.GetByExternalReference(ctx, upd.ExternalReference)
	if err != nil {
		return ApplyResult{}, err
	}
	if ord == nil {
		return ApplyResult{}, ErrOrderNotFound
	}

	// Уже оплаченный заказ ручной эндпоинт не трогает.
	if ord.Status == models.OrderStatusPaid {
		return ApplyResult{Updated: false, Order: ord}, nil
	}

	return s.apply(ctx, ord, next, upd.PaymentID)
}

func (s *orderService) GetByExternalReference(ctx context.Context, ref string) (*models.Order, error) {
	if ref == "" {
		return nil, ErrInvalidInput
	}
	ord, err := s.repo.Orders.GetByExternalReference(ctx, ref)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	return ord, nil
}

func (s *orderService) locateOrder(ctx context.Context, externalReference, paymentID string) (*models.Order, error) {
	if externalReference != "" {
		ord, err := s.repo.Orders.GetByExternalReference(ctx, externalReference)
		if err != nil {
			return nil, err
		}
		if ord != nil {
			return ord, nil
		}
	}
	if paymentID != "" {
		ord, err := s.repo.Orders.GetByPaymentID(ctx, paymentID)
		if err != nil {
			return nil, err
		}
		if ord != nil {
			return ord, nil
		}
	}
	return nil, ErrOrderNotFound
}

// apply — условный read-modify-write по таблице переходов. Повторная
// доставка того же статуса — no-op без побочных эффектов. При срыве
// guard-а одно перечитывание, дальше конфликт наружу.
func (s *orderService) apply(ctx context.Context, ord *models.Order, next models.OrderStatus, paymentID *string) (ApplyResult, error) {
	for attempt := 0; ; attempt++ {
		if ord.Status == next {
			return ApplyResult{Updated: false, Order: ord}, nil
		}
		if !ord.Status.CanTransitionTo(next) {
			return ApplyResult{Order: ord}, ErrIllegalTransition
		}

		ok, err := s.repo.Orders.UpdateStatusGuarded(ctx, ord.ID, ord.Status, next, paymentID)
		if err != nil {
			return ApplyResult{}, err
		}
		if ok {
			break
		}
		if attempt >= 1 {
			return ApplyResult{Order: ord}, ErrStatusConflict
		}

		reread, err := s.repo.Orders.GetByID(ctx, ord.ID)
		if err != nil {
			return ApplyResult{}, err
		}
		if reread == nil {
			return ApplyResult{}, ErrOrderNotFound
		}
		ord = reread
	}

	ord.Status = next
	if paymentID != nil {
		ord.PaymentID = paymentID
	}

	s.afterTransition(ctx, ord)

	s.log.Info("order status applied",
		zap.String("external_reference", ord.ExternalReference),
		zap.String("status", string(next)))
	return ApplyResult{Updated: true, Order: ord}, nil
}

// Побочные эффекты только для эффективного перехода: дубликат вебхука
// сюда не попадает.
func (s *orderService) afterTransition(ctx context.Context, ord *models.Order) {
	if ord.Status == models.OrderStatusPaid && len(ord.Items) > 0 {
		ids := make([]string, 0, len(ord.Items))
		for _, it := range ord.Items {
			ids = append(ids, it.ProductID)
		}
		n, err := s.repo.Reservations.ConsumeForProducts(ctx, ids, s.now())
		if err != nil {
			s.log.Error("failed to consume reservations", zap.String("external_reference", ord.ExternalReference), zap.Error(err))
		} else if n > 0 {
			s.log.Info("reservations consumed", zap.Int64("count", n), zap.String("external_reference", ord.ExternalReference))
		}
	}

	if s.events != nil {
		evt := OrderStatusEvent{
			OrderID:           ord.ID.String(),
			ExternalReference: ord.ExternalReference,
			Status:            ord.Status,
			PaymentID:         ord.PaymentID,
			OccurredAt:        s.now(),
		}
		if err := s.events.PublishOrderStatus(ctx, evt); err != nil {
			s.log.Error("failed to publish order status event", zap.String("external_reference", ord.ExternalReference), zap.Error(err))
		}
	}
}

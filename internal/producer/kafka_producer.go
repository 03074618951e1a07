package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/raquelxaviert/micangaria-sub002/internal/service"

	"github.com/segmentio/kafka-go"
)

// OrderEventProducer пишет события смены статуса заказа; их читает
// внешний сервис уведомлений.
type OrderEventProducer struct {
	writer *kafka.Writer
}

func NewOrderEventProducer(brokers []string, topic string) *OrderEventProducer {
	return &OrderEventProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

func (p *OrderEventProducer) PublishOrderStatus(ctx context.Context, evt service.OrderStatusEvent) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	value, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.ExternalReference),
		Value: value,
	})
}

func (p *OrderEventProducer) Close() error {
	return p.writer.Close()
}

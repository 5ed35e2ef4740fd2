package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"

	"github.com/openmart/martcart/internal/domain"
)

// Producer publishes order lifecycle events for downstream consumers
// (notifications, analytics, fulfilment).
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers ...string) *Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "order-events",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Producer{writer: w}
}

type orderCreatedEvent struct {
	OrderID    string              `json:"order_id"`
	UserID     string              `json:"user_id"`
	Status     string              `json:"status"`
	Items      []domain.LineItem   `json:"items"`
	Summary    domain.PriceSummary `json:"summary"`
	PaymentVia string              `json:"payment_method"`
}

func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	payload, err := json.Marshal(orderCreatedEvent{
		OrderID:    order.ID.String(),
		UserID:     order.UserID,
		Status:     order.Status.String(),
		Items:      order.Items,
		Summary:    order.Summary,
		PaymentVia: order.Payment.Method,
	})
	if err != nil {
		return fmt.Errorf("marshal order created event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.ID.String()),
		Value: payload,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order created event: %w", err)
	}
	return nil
}

func (p *Producer) Close() {
	if err := p.writer.Close(); err != nil {
		log.Printf("error closing kafka writer: %v", err)
	}
}

package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/openmart/martcart/internal/status"
)

// StatusEvent is the payload delivery backends publish when an order
// moves through its lifecycle.
type StatusEvent struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// StatusConsumer applies backend status events to stored orders.
type StatusConsumer struct {
	repo   Repository
	reader *kafka.Reader
}

func NewStatusConsumer(repo Repository, brokers ...string) *StatusConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    "order-status-events",
		GroupID:  "martcart-orders",
		MaxBytes: 10e6, // 10MB
	})
	return &StatusConsumer{repo, reader}
}

func (c *StatusConsumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *StatusConsumer) Close() {
	if err := c.reader.Close(); err != nil {
		log.Printf("error closing kafka reader: %v", err)
	}
}

func (c *StatusConsumer) processMessage(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("error reading message: %v", err)
		return
	}

	err = c.Apply(ctx, m.Value)
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrOrderNotFound):
		// stale or foreign event, drop it
		log.Printf("skipping status event: %v", err)
	default:
		log.Printf("failed to apply status event: %v", err)
	}
}

// Apply parses one status event and applies it to the store. Unknown
// statuses resolve to PENDING; applying PENDING to an order already
// past it fails the forward-only transition check and is reported as
// ErrInvalidTransition.
func (c *StatusConsumer) Apply(ctx context.Context, payload []byte) error {
	var event StatusEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("parse status event: %w", err)
	}

	orderID, err := uuid.Parse(event.OrderID)
	if err != nil {
		return fmt.Errorf("invalid order_id %q: %w", event.OrderID, err)
	}

	return c.repo.UpdateStatus(ctx, orderID, status.Resolve(event.Status).Key)
}

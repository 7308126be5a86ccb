package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/order"

	kafkaGo "github.com/segmentio/kafka-go"
)

// orderChangedEvent is the wire shape published for every accepted status
// transition. Keyed by order ID so per-order ordering survives partitioning.
type orderChangedEvent struct {
	OrderID      string         `json:"order_id"`
	CustomerID   string         `json:"customer_id"`
	RestaurantID string         `json:"restaurant_id"`
	Status       string         `json:"status"`
	ChangedBy    string         `json:"changed_by"`
	UserType     string         `json:"user_type"`
	Reason       string         `json:"reason,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	OccurredAt   time.Time      `json:"occurred_at"`
}

// KafkaOrderEventPublisher publishes order lifecycle events for consumers
// outside this process, including other instances fanning out to their own
// live connections.
type KafkaOrderEventPublisher struct {
	writer *kafkaGo.Writer
	logger *slog.Logger
}

// NewKafkaOrderEventPublisher creates a publisher writing to the
// order-changed topic.
func NewKafkaOrderEventPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaOrderEventPublisher {
	return &KafkaOrderEventPublisher{
		writer: &kafkaGo.Writer{
			Addr:         kafkaGo.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafkaGo.LeastBytes{},
			RequiredAcks: kafkaGo.RequireOne,
			MaxAttempts:  5,
		},
		logger: logger.With("component", "kafka-order-event-publisher"),
	}
}

func (p *KafkaOrderEventPublisher) PublishOrderChanged(
	ctx context.Context, aggregate *order.Order, event *order.StatusEvent,
) error {
	payload, err := json.Marshal(orderChangedEvent{
		OrderID:      aggregate.ID().String(),
		CustomerID:   aggregate.CustomerID().String(),
		RestaurantID: aggregate.RestaurantID().String(),
		Status:       event.Status().String(),
		ChangedBy:    event.ChangedBy().String(),
		UserType:     event.UserType().String(),
		Reason:       event.Reason(),
		Metadata:     event.Metadata(),
		OccurredAt:   event.CreatedAt(),
	})
	if err != nil {
		return fmt.Errorf("marshal order changed event for order %s: %w", aggregate.ID(), err)
	}

	err = p.writer.WriteMessages(ctx, kafkaGo.Message{
		Key:   []byte(aggregate.ID().String()),
		Value: payload,
	})
	if err != nil {
		p.logger.Error("failed to publish order changed event",
			"order_id", aggregate.ID().String(), "status", event.Status().String(), "err", err)
		return fmt.Errorf("publish order changed event for order %s: %w", aggregate.ID(), err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaOrderEventPublisher) Close() error {
	return p.writer.Close()
}

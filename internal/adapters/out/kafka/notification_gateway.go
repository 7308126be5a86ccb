// Package kafka contains the broker-backed notification and event adapters.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/kernel"

	kafkaGo "github.com/segmentio/kafka-go"
)

// notificationMessage is the wire shape consumed by the notification service.
type notificationMessage struct {
	UserID string         `json:"user_id"`
	Title  string         `json:"title"`
	Body   string         `json:"body"`
	Data   map[string]any `json:"data,omitempty"`
	SentAt time.Time      `json:"sent_at"`
}

// KafkaNotificationGateway publishes user notifications to the notification
// topic. Delivery to the end device is the consumer's problem; this gateway
// only guarantees the message reaches the broker.
type KafkaNotificationGateway struct {
	writer *kafkaGo.Writer
	logger *slog.Logger
}

// NewKafkaNotificationGateway creates a gateway writing to the given topic.
func NewKafkaNotificationGateway(brokers []string, topic string, logger *slog.Logger) *KafkaNotificationGateway {
	return &KafkaNotificationGateway{
		writer: &kafkaGo.Writer{
			Addr:         kafkaGo.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafkaGo.LeastBytes{},
			RequiredAcks: kafkaGo.RequireOne,
			MaxAttempts:  5,
		},
		logger: logger.With("component", "kafka-notification-gateway"),
	}
}

func (g *KafkaNotificationGateway) Dispatch(
	ctx context.Context, userID kernel.UUID, title, body string, data map[string]any,
) error {
	payload, err := json.Marshal(notificationMessage{
		UserID: userID.String(),
		Title:  title,
		Body:   body,
		Data:   data,
		SentAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal notification for user %s: %w", userID, err)
	}

	err = g.writer.WriteMessages(ctx, kafkaGo.Message{
		Key:   []byte(userID.String()),
		Value: payload,
	})
	if err != nil {
		g.logger.Error("failed to publish notification",
			"user_id", userID.String(), "title", title, "err", err)
		return fmt.Errorf("publish notification for user %s: %w", userID, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (g *KafkaNotificationGateway) Close() error {
	return g.writer.Close()
}

// Package dispatch contains the post-commit fan-out pipeline. Mutating
// handlers enqueue a task after their transaction commits; router workers
// re-read the committed state and push it to live subscribers, the
// notification gateway and the broker.
package dispatch

import (
	"context"
	"encoding/json"
	"log/slog"

	"orderflow/internal/core/domain/model/order"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Internal fan-out topics.
const (
	TopicOrderStatusChanged = "order.status_changed"
	TopicOrderCreated       = "order.created"
)

// statusChangedTask points a worker at a committed transition. The worker
// re-reads the order and the event, so a task never carries state the store
// could contradict.
type statusChangedTask struct {
	OrderID string `json:"order_id"`
	EventID string `json:"event_id"`
}

// newOrderTask points a worker at a freshly admitted order.
type newOrderTask struct {
	OrderID string `json:"order_id"`
}

// WatermillDispatchQueue enqueues fan-out tasks on an in-process pub/sub.
//
// Enqueue runs after the caller's transaction committed, so a failure here
// must not surface as a failure of the transition itself: it is logged and
// swallowed, and the callers always get nil back.
type WatermillDispatchQueue struct {
	publisher message.Publisher
	logger    *slog.Logger
}

// NewWatermillDispatchQueue creates a queue on top of the given publisher.
func NewWatermillDispatchQueue(publisher message.Publisher, logger *slog.Logger) *WatermillDispatchQueue {
	return &WatermillDispatchQueue{
		publisher: publisher,
		logger:    logger.With("component", "dispatch-queue"),
	}
}

func (q *WatermillDispatchQueue) EnqueueStatusChanged(
	ctx context.Context, aggregate *order.Order, event *order.StatusEvent,
) error {
	payload, err := json.Marshal(statusChangedTask{
		OrderID: aggregate.ID().String(),
		EventID: event.ID().String(),
	})
	if err != nil {
		q.logger.Error("failed to marshal status changed task",
			"order_id", aggregate.ID().String(), "err", err)
		return nil
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if err := q.publisher.Publish(TopicOrderStatusChanged, msg); err != nil {
		q.logger.Error("failed to enqueue status changed task",
			"order_id", aggregate.ID().String(), "event_id", event.ID().String(), "err", err)
	}
	return nil
}

func (q *WatermillDispatchQueue) EnqueueNewOrder(ctx context.Context, aggregate *order.Order) error {
	payload, err := json.Marshal(newOrderTask{OrderID: aggregate.ID().String()})
	if err != nil {
		q.logger.Error("failed to marshal new order task",
			"order_id", aggregate.ID().String(), "err", err)
		return nil
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if err := q.publisher.Publish(TopicOrderCreated, msg); err != nil {
		q.logger.Error("failed to enqueue new order task",
			"order_id", aggregate.ID().String(), "err", err)
	}
	return nil
}

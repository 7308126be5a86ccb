package dispatch

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// Fanout holds the side-effect targets a worker pushes committed state to.
type Fanout struct {
	Broadcaster ports.Broadcaster
	Notifier    ports.NotificationGateway
	Publisher   ports.OrderEventPublisher
}

// statusNotificationBodies maps an order status to the customer-facing
// message for it. Statuses absent here produce no notification.
var statusNotificationBodies = map[order.Status]string{
	order.StatusConfirmed:      "Your order has been confirmed by the restaurant.",
	order.StatusPreparing:      "The kitchen has started preparing your order.",
	order.StatusReadyForPickup: "Your order is packed and waiting for pickup.",
	order.StatusOutForDelivery: "Your order is on its way.",
	order.StatusDelivered:      "Your order has been delivered. Enjoy!",
	order.StatusCancelled:      "Your order has been cancelled.",
	order.StatusRejected:       "The restaurant could not take your order.",
	order.StatusFailed:         "Your order could not be completed.",
}

// NewDispatchRouter builds the fan-out router. Tasks land here only after
// their transaction committed; a task that keeps failing is logged and
// dropped, never pushed back at the committed transition.
func NewDispatchRouter(
	logger *slog.Logger,
	subscriber message.Subscriber,
	uowFactory ports.UnitOfWorkFactory,
	fanout Fanout,
) (*message.Router, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create dispatch router: %w", err)
	}

	router.AddMiddleware(
		dropOnFailure(logger),
		middleware.Retry{
			MaxRetries:      5,
			InitialInterval: 100 * time.Millisecond,
			Logger:          wmLogger,
		}.Middleware,
		middleware.Recoverer,
	)

	worker := fanoutWorker{
		logger:     logger.With("component", "dispatch-worker"),
		uowFactory: uowFactory,
		fanout:     fanout,
	}

	router.AddNoPublisherHandler(
		"order-status-changed-fanout", TopicOrderStatusChanged, subscriber, worker.handleStatusChanged)
	router.AddNoPublisherHandler(
		"order-created-fanout", TopicOrderCreated, subscriber, worker.handleNewOrder)

	return router, nil
}

// dropOnFailure acks a task whose retries are exhausted. The alternative is
// endless redelivery of a task whose transition is already committed.
func dropOnFailure(logger *slog.Logger) message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			produced, err := h(msg)
			if err != nil {
				logger.Error("dropping dispatch task after retries",
					"message_uuid", msg.UUID, "err", err)
				return nil, nil
			}
			return produced, nil
		}
	}
}

type fanoutWorker struct {
	logger     *slog.Logger
	uowFactory ports.UnitOfWorkFactory
	fanout     Fanout
}

func (w fanoutWorker) handleStatusChanged(msg *message.Message) error {
	var task statusChangedTask
	if err := json.Unmarshal(msg.Payload, &task); err != nil {
		return fmt.Errorf("unmarshal status changed task: %w", err)
	}

	orderID, err := kernel.UUIDFromString(task.OrderID)
	if err != nil {
		return err
	}
	eventID, err := kernel.UUIDFromString(task.EventID)
	if err != nil {
		return err
	}

	ctx := msg.Context()
	repo := w.uowFactory.Create().OrderRepository()

	aggregate, err := repo.Get(ctx, orderID)
	if err != nil {
		return fmt.Errorf("load order %s for fan-out: %w", orderID, err)
	}

	history, err := repo.GetStatusHistory(ctx, orderID)
	if err != nil {
		return fmt.Errorf("load history of order %s for fan-out: %w", orderID, err)
	}
	var event *order.StatusEvent
	for _, candidate := range history {
		if candidate.ID().IsEqual(eventID) {
			event = candidate
			break
		}
	}
	if event == nil {
		return fmt.Errorf("status event %s of order %s is not in history", eventID, orderID)
	}

	if err := w.fanout.Broadcaster.BroadcastStatus(ctx, aggregate, event); err != nil {
		w.logger.Error("status broadcast failed",
			"order_id", orderID.String(), "status", event.Status().String(), "err", err)
	}

	if err := w.fanout.Publisher.PublishOrderChanged(ctx, aggregate, event); err != nil {
		return err
	}

	if body, ok := statusNotificationBodies[event.Status()]; ok {
		err = w.fanout.Notifier.Dispatch(ctx, aggregate.CustomerID(), "Order update", body,
			map[string]any{"order_id": orderID.String(), "status": event.Status().String()})
		if err != nil {
			w.logger.Error("customer notification failed",
				"order_id", orderID.String(), "err", err)
		}
	}

	return nil
}

func (w fanoutWorker) handleNewOrder(msg *message.Message) error {
	var task newOrderTask
	if err := json.Unmarshal(msg.Payload, &task); err != nil {
		return fmt.Errorf("unmarshal new order task: %w", err)
	}

	orderID, err := kernel.UUIDFromString(task.OrderID)
	if err != nil {
		return err
	}

	ctx := msg.Context()
	repo := w.uowFactory.Create().OrderRepository()

	aggregate, err := repo.Get(ctx, orderID)
	if err != nil {
		return fmt.Errorf("load order %s for fan-out: %w", orderID, err)
	}

	if err := w.fanout.Broadcaster.BroadcastNewOrder(ctx, aggregate); err != nil {
		w.logger.Error("new order broadcast failed", "order_id", orderID.String(), "err", err)
	}

	err = w.fanout.Notifier.Dispatch(ctx, aggregate.RestaurantID(), "New order",
		"A new order is waiting for confirmation.",
		map[string]any{"order_id": orderID.String()})
	if err != nil {
		w.logger.Error("restaurant notification failed", "order_id", orderID.String(), "err", err)
	}

	return nil
}

package ports

import (
	"context"

	"orderflow/internal/core/domain/model/assignment"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// NotificationGateway delivers user notifications. Dispatch is fire-and-forget
// from the caller's perspective: a failure after a committed transition is
// logged and retried by the gateway, never propagated back to fail the
// transition.
type NotificationGateway interface {
	Dispatch(ctx context.Context, userID kernel.UUID, title, body string, data map[string]any) error
}

// PaymentAuthority is the external payment boundary. It is consulted before
// quota consumption; the subsystem never moves money itself.
type PaymentAuthority interface {
	IsPaid(ctx context.Context, orderID kernel.UUID) (bool, error)
}

// Broadcaster fans a message out to every live connection subscribed to an
// order's topic. Implementations must not let one slow subscriber block the
// others.
type Broadcaster interface {
	// BroadcastStatus pushes an accepted status transition to the order's
	// subscribers.
	BroadcastStatus(ctx context.Context, aggregate *order.Order, event *order.StatusEvent) error

	// BroadcastLocation pushes a partner position update to the order's
	// subscribers.
	BroadcastLocation(ctx context.Context, orderID kernel.UUID, location assignment.PartnerLocation) error

	// BroadcastNewOrder pushes a freshly admitted order to the owning
	// restaurant's subscribers.
	BroadcastNewOrder(ctx context.Context, aggregate *order.Order) error
}

// OrderEventPublisher publishes order lifecycle events to the message broker
// for downstream consumers outside this process.
type OrderEventPublisher interface {
	PublishOrderChanged(ctx context.Context, aggregate *order.Order, event *order.StatusEvent) error
}

// DispatchQueue hands committed transitions off for asynchronous fan-out
// (broadcast, notifications, broker publish). Enqueue happens after commit;
// the queue owns retries, so a dispatch failure never unwinds the committed
// transition. Implementations absorb their own publish failures (log and
// drop) rather than failing the caller.
type DispatchQueue interface {
	// EnqueueStatusChanged schedules fan-out of an accepted status transition.
	EnqueueStatusChanged(ctx context.Context, aggregate *order.Order, event *order.StatusEvent) error

	// EnqueueNewOrder schedules fan-out of a freshly admitted order to the
	// owning restaurant.
	EnqueueNewOrder(ctx context.Context, aggregate *order.Order) error
}

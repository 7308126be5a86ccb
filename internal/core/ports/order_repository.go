package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates and
// their immutable status-event history.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	// The order must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate using a
	// compare-and-swap on the aggregate version. A stale version fails with
	// a version error and writes nothing.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// AppendStatusEvent appends one immutable status event to the order's
	// history. Events are never updated or deleted.
	AppendStatusEvent(ctx context.Context, event *order.StatusEvent) error

	// GetStatusHistory retrieves the order's status events ordered by
	// creation time, oldest first.
	GetStatusHistory(ctx context.Context, orderID kernel.UUID) ([]*order.StatusEvent, error)

	// GetAllActiveByRestaurant retrieves the restaurant's orders that have
	// not reached a terminal status.
	GetAllActiveByRestaurant(ctx context.Context, restaurantID kernel.UUID) ([]*order.Order, error)
}

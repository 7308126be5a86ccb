package ports

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/assignment"
	"orderflow/internal/core/domain/model/kernel"
)

// AssignmentRepository defines the persistence contract for delivery
// assignments. The store enforces the invariant that at most one non-terminal
// assignment exists per order.
type AssignmentRepository interface {
	// Add persists a new assignment. Fails with a state error if the order
	// already has a live assignment.
	Add(ctx context.Context, aggregate *assignment.DeliveryAssignment) error

	// Update persists changes to an existing assignment using a
	// compare-and-swap on the aggregate version.
	Update(ctx context.Context, aggregate *assignment.DeliveryAssignment) error

	// Get retrieves an assignment by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*assignment.DeliveryAssignment, error)

	// GetActiveByOrder retrieves the order's single non-terminal assignment.
	// Returns a not-found error if the order has no live assignment.
	GetActiveByOrder(ctx context.Context, orderID kernel.UUID) (*assignment.DeliveryAssignment, error)

	// GetAllAssignedBefore retrieves assignments still awaiting partner
	// response that were created before the cutoff. Used by the acceptance
	// timeout job.
	GetAllAssignedBefore(ctx context.Context, cutoff time.Time) ([]*assignment.DeliveryAssignment, error)

	// GetDeclinedPartnerIDs retrieves the partners whose assignments for the
	// order ended in rejected or cancelled. Reassignment excludes them.
	GetDeclinedPartnerIDs(ctx context.Context, orderID kernel.UUID) ([]kernel.UUID, error)
}

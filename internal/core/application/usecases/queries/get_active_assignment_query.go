package queries

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrGetActiveAssignmentQueryIsNotConstructed = errors.New(
	"GetActiveAssignmentQuery must be created via NewGetActiveAssignmentQuery constructor",
)

// GetActiveAssignmentQuery retrieves the live delivery assignment of one
// order, if any.
type GetActiveAssignmentQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetActiveAssignmentQuery creates a query for an order's live assignment.
func NewGetActiveAssignmentQuery(orderID kernel.UUID) (GetActiveAssignmentQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetActiveAssignmentQuery{}, err
	}
	return GetActiveAssignmentQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetActiveAssignmentQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveAssignmentQueryIsNotConstructed)
}

// OrderID returns the requested order's identifier.
func (q GetActiveAssignmentQuery) OrderID() kernel.UUID {
	return q.orderID
}

// GetActiveAssignmentQueryResponse is the live assignment snapshot: its
// sub-status, the working partner and the partner's last reported position.
type GetActiveAssignmentQueryResponse struct {
	ID        kernel.UUID
	OrderID   kernel.UUID
	PartnerID kernel.UUID

	Status     string
	AssignedAt time.Time
	AcceptedAt *time.Time
	PickedUpAt *time.Time

	LastLat        *float64
	LastLng        *float64
	LastReportedAt *time.Time
}

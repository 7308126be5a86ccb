package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrUpdateLocationCommandIsNotConstructed = errors.New(
	"UpdateLocationCommand must be created via NewUpdateLocationCommand constructor",
)

// UpdateLocationCommand carries a position report from an assigned partner.
// Location updates bypass the status transition engine entirely.
type UpdateLocationCommand struct { //nolint:recvcheck //using for validation
	assignmentID kernel.UUID
	partnerID    kernel.UUID
	point        kernel.GeoPoint

	guard guard.ConstructorGuard
}

// NewUpdateLocationCommand creates a position report for the assignment.
func NewUpdateLocationCommand(assignmentID, partnerID kernel.UUID, point kernel.GeoPoint) (UpdateLocationCommand, error) {
	cmd := UpdateLocationCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(assignmentID.Validate(), partnerID.Validate(), point.Validate()); err != nil {
		return UpdateLocationCommand{}, err
	}

	cmd.assignmentID = assignmentID
	cmd.partnerID = partnerID
	cmd.point = point
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c UpdateLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdateLocationCommandIsNotConstructed)
}

// AssignmentID returns the assignment being tracked.
func (c UpdateLocationCommand) AssignmentID() kernel.UUID {
	return c.assignmentID
}

// PartnerID returns the reporting partner.
func (c UpdateLocationCommand) PartnerID() kernel.UUID {
	return c.partnerID
}

// Point returns the reported position.
func (c UpdateLocationCommand) Point() kernel.GeoPoint {
	return c.point
}

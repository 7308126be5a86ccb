package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrAssignPartnerCommandIsNotConstructed = errors.New(
	"AssignPartnerCommand must be created via NewAssignPartnerCommand constructor",
)

// AssignPartnerCommand requests a delivery partner for an order. When no
// partner is named, one is selected from the available pool; partners who
// already declined this order are excluded automatically.
type AssignPartnerCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	partnerID *kernel.UUID

	guard guard.ConstructorGuard
}

// NewAssignPartnerCommand creates an assignment request. partnerID may be nil
// to let the selection policy pick one.
func NewAssignPartnerCommand(orderID kernel.UUID, partnerID *kernel.UUID) (AssignPartnerCommand, error) {
	cmd := AssignPartnerCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setOrderID(orderID); err != nil {
		return AssignPartnerCommand{}, err
	}
	if partnerID != nil {
		if err := partnerID.Validate(); err != nil {
			return AssignPartnerCommand{}, err
		}
		cmd.partnerID = partnerID
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c AssignPartnerCommand) Validate() error {
	return c.guard.Validate(ErrAssignPartnerCommandIsNotConstructed)
}

// OrderID returns the order needing a partner.
func (c AssignPartnerCommand) OrderID() kernel.UUID {
	return c.orderID
}

// PartnerID returns the explicitly requested partner, or nil for automatic
// selection.
func (c AssignPartnerCommand) PartnerID() *kernel.UUID {
	return c.partnerID
}

func (c *AssignPartnerCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

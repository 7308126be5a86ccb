package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var ErrChangeOrderStatusCommandIsNotConstructed = errors.New(
	"ChangeOrderStatusCommand must be created via NewChangeOrderStatusCommand constructor",
)

// ChangeOrderStatusCommand represents a proposal to move an order to a new
// status on behalf of an authenticated actor.
type ChangeOrderStatusCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	target   order.Status
	actor    kernel.UUID
	role     order.Role
	reason   string
	metadata map[string]any

	guard guard.ConstructorGuard
}

// NewChangeOrderStatusCommand creates a status transition proposal.
// Reason and metadata are optional; everything else must be valid.
func NewChangeOrderStatusCommand(
	orderID kernel.UUID,
	target order.Status,
	actor kernel.UUID,
	role order.Role,
	reason string,
	metadata map[string]any,
) (ChangeOrderStatusCommand, error) {
	cmd := ChangeOrderStatusCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setActor(actor),
		target.Validate(),
		role.Validate(),
	); err != nil {
		return ChangeOrderStatusCommand{}, err
	}

	cmd.target = target
	cmd.role = role
	cmd.reason = reason
	cmd.metadata = metadata

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ChangeOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeOrderStatusCommandIsNotConstructed)
}

// OrderID returns the order being transitioned.
func (c ChangeOrderStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Target returns the proposed status.
func (c ChangeOrderStatusCommand) Target() order.Status {
	return c.target
}

// Actor returns the identity proposing the transition.
func (c ChangeOrderStatusCommand) Actor() kernel.UUID {
	return c.actor
}

// Role returns the actor's role.
func (c ChangeOrderStatusCommand) Role() order.Role {
	return c.role
}

// Reason returns the optional human-readable reason.
func (c ChangeOrderStatusCommand) Reason() string {
	return c.reason
}

// Metadata returns the optional structured context for the transition.
func (c ChangeOrderStatusCommand) Metadata() map[string]any {
	return c.metadata
}

func (c *ChangeOrderStatusCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *ChangeOrderStatusCommand) setActor(actor kernel.UUID) error {
	if err := actor.Validate(); err != nil {
		return err
	}

	c.actor = actor
	return nil
}

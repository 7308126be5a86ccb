package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var (
	ErrAcceptAssignmentCommandIsNotConstructed = errors.New(
		"AcceptAssignmentCommand must be created via NewAcceptAssignmentCommand constructor",
	)
	ErrRejectAssignmentCommandIsNotConstructed = errors.New(
		"RejectAssignmentCommand must be created via NewRejectAssignmentCommand constructor",
	)
)

// AcceptAssignmentCommand is a partner's commitment to a delivery assignment.
type AcceptAssignmentCommand struct { //nolint:recvcheck //using for validation
	assignmentID kernel.UUID
	partnerID    kernel.UUID

	guard guard.ConstructorGuard
}

// NewAcceptAssignmentCommand creates an acceptance for the given assignment.
func NewAcceptAssignmentCommand(assignmentID, partnerID kernel.UUID) (AcceptAssignmentCommand, error) {
	cmd := AcceptAssignmentCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(assignmentID.Validate(), partnerID.Validate()); err != nil {
		return AcceptAssignmentCommand{}, err
	}

	cmd.assignmentID = assignmentID
	cmd.partnerID = partnerID
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c AcceptAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrAcceptAssignmentCommandIsNotConstructed)
}

// AssignmentID returns the assignment being accepted.
func (c AcceptAssignmentCommand) AssignmentID() kernel.UUID {
	return c.assignmentID
}

// PartnerID returns the accepting partner.
func (c AcceptAssignmentCommand) PartnerID() kernel.UUID {
	return c.partnerID
}

// RejectAssignmentCommand is a partner's refusal of a delivery assignment.
// Rejection requeues the order for reassignment with this partner excluded.
type RejectAssignmentCommand struct { //nolint:recvcheck //using for validation
	assignmentID kernel.UUID
	partnerID    kernel.UUID
	reason       string

	guard guard.ConstructorGuard
}

// NewRejectAssignmentCommand creates a rejection for the given assignment.
// The reason is optional.
func NewRejectAssignmentCommand(assignmentID, partnerID kernel.UUID, reason string) (RejectAssignmentCommand, error) {
	cmd := RejectAssignmentCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(assignmentID.Validate(), partnerID.Validate()); err != nil {
		return RejectAssignmentCommand{}, err
	}

	cmd.assignmentID = assignmentID
	cmd.partnerID = partnerID
	cmd.reason = reason
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c RejectAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrRejectAssignmentCommandIsNotConstructed)
}

// AssignmentID returns the assignment being rejected.
func (c RejectAssignmentCommand) AssignmentID() kernel.UUID {
	return c.assignmentID
}

// PartnerID returns the rejecting partner.
func (c RejectAssignmentCommand) PartnerID() kernel.UUID {
	return c.partnerID
}

// Reason returns the optional rejection reason.
func (c RejectAssignmentCommand) Reason() string {
	return c.reason
}

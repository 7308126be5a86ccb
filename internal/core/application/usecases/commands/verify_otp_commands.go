package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var (
	ErrVerifyPickupOtpCommandIsNotConstructed = errors.New(
		"VerifyPickupOtpCommand must be created via NewVerifyPickupOtpCommand constructor",
	)
	ErrVerifyDeliveryOtpCommandIsNotConstructed = errors.New(
		"VerifyDeliveryOtpCommand must be created via NewVerifyDeliveryOtpCommand constructor",
	)
	ErrOtpCodeIsRequired = errors.New("verification code is required")
)

// VerifyPickupOtpCommand presents the restaurant handover code for an
// assignment.
type VerifyPickupOtpCommand struct { //nolint:recvcheck //using for validation
	assignmentID kernel.UUID
	partnerID    kernel.UUID
	code         string

	guard guard.ConstructorGuard
}

// NewVerifyPickupOtpCommand creates a pickup verification attempt.
func NewVerifyPickupOtpCommand(assignmentID, partnerID kernel.UUID, code string) (VerifyPickupOtpCommand, error) {
	cmd := VerifyPickupOtpCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(assignmentID.Validate(), partnerID.Validate(), validateOtpCode(code)); err != nil {
		return VerifyPickupOtpCommand{}, err
	}

	cmd.assignmentID = assignmentID
	cmd.partnerID = partnerID
	cmd.code = code
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c VerifyPickupOtpCommand) Validate() error {
	return c.guard.Validate(ErrVerifyPickupOtpCommandIsNotConstructed)
}

// AssignmentID returns the assignment being verified.
func (c VerifyPickupOtpCommand) AssignmentID() kernel.UUID {
	return c.assignmentID
}

// PartnerID returns the presenting partner.
func (c VerifyPickupOtpCommand) PartnerID() kernel.UUID {
	return c.partnerID
}

// Code returns the presented verification code.
func (c VerifyPickupOtpCommand) Code() string {
	return c.code
}

// VerifyDeliveryOtpCommand presents the customer handover code for an
// assignment.
type VerifyDeliveryOtpCommand struct { //nolint:recvcheck //using for validation
	assignmentID kernel.UUID
	partnerID    kernel.UUID
	code         string

	guard guard.ConstructorGuard
}

// NewVerifyDeliveryOtpCommand creates a delivery verification attempt.
func NewVerifyDeliveryOtpCommand(assignmentID, partnerID kernel.UUID, code string) (VerifyDeliveryOtpCommand, error) {
	cmd := VerifyDeliveryOtpCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(assignmentID.Validate(), partnerID.Validate(), validateOtpCode(code)); err != nil {
		return VerifyDeliveryOtpCommand{}, err
	}

	cmd.assignmentID = assignmentID
	cmd.partnerID = partnerID
	cmd.code = code
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c VerifyDeliveryOtpCommand) Validate() error {
	return c.guard.Validate(ErrVerifyDeliveryOtpCommandIsNotConstructed)
}

// AssignmentID returns the assignment being verified.
func (c VerifyDeliveryOtpCommand) AssignmentID() kernel.UUID {
	return c.assignmentID
}

// PartnerID returns the presenting partner.
func (c VerifyDeliveryOtpCommand) PartnerID() kernel.UUID {
	return c.partnerID
}

// Code returns the presented verification code.
func (c VerifyDeliveryOtpCommand) Code() string {
	return c.code
}

func validateOtpCode(code string) error {
	if code == "" {
		return ErrOtpCodeIsRequired
	}
	return nil
}

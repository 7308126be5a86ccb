package commands

import (
	"errors"
	"time"

	"orderflow/internal/pkg/guard"
)

var (
	ErrExpireAssignmentsCommandIsNotConstructed = errors.New(
		"ExpireAssignmentsCommand must be created via NewExpireAssignmentsCommand constructor",
	)
	ErrAcceptanceWindowIsInvalid = errors.New("acceptance window must be greater than 0")
)

// ExpireAssignmentsCommand sweeps assignments whose partner never responded
// within the acceptance window. Each expired assignment is treated as an
// implicit rejection and the order is requeued for reassignment.
type ExpireAssignmentsCommand struct { //nolint:recvcheck //using for validation
	acceptanceWindow time.Duration

	guard guard.ConstructorGuard
}

// NewExpireAssignmentsCommand creates a sweep with the given acceptance window.
func NewExpireAssignmentsCommand(acceptanceWindow time.Duration) (ExpireAssignmentsCommand, error) {
	cmd := ExpireAssignmentsCommand{
		guard: guard.NewConstructorGuard(),
	}

	if acceptanceWindow <= 0 {
		return ExpireAssignmentsCommand{}, ErrAcceptanceWindowIsInvalid
	}

	cmd.acceptanceWindow = acceptanceWindow
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ExpireAssignmentsCommand) Validate() error {
	return c.guard.Validate(ErrExpireAssignmentsCommandIsNotConstructed)
}

// AcceptanceWindow returns how long a partner may sit on an assignment.
func (c ExpireAssignmentsCommand) AcceptanceWindow() time.Duration {
	return c.acceptanceWindow
}

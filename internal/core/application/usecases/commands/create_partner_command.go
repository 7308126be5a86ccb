package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var (
	ErrCreatePartnerCommandIsNotConstructed = errors.New(
		"CreatePartnerCommand must be created via NewCreatePartnerCommand constructor",
	)
	ErrPartnerNameIsRequired = errors.New("partner name is required")
)

// CreatePartnerCommand registers a delivery partner in the directory so the
// selection policy can consider them.
type CreatePartnerCommand struct { //nolint:recvcheck //using for validation
	partnerID kernel.UUID
	name      string
	location  kernel.GeoPoint
	rating    float64

	guard guard.ConstructorGuard
}

// NewCreatePartnerCommand creates a partner registration.
func NewCreatePartnerCommand(
	partnerID kernel.UUID,
	name string,
	location kernel.GeoPoint,
	rating float64,
) (CreatePartnerCommand, error) {
	cmd := CreatePartnerCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setPartnerID(partnerID),
		cmd.setName(name),
		location.Validate(),
	); err != nil {
		return CreatePartnerCommand{}, err
	}

	cmd.location = location
	cmd.rating = rating
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreatePartnerCommand) Validate() error {
	return c.guard.Validate(ErrCreatePartnerCommandIsNotConstructed)
}

// PartnerID returns the identifier for the new partner.
func (c CreatePartnerCommand) PartnerID() kernel.UUID {
	return c.partnerID
}

// Name returns the partner's display name.
func (c CreatePartnerCommand) Name() string {
	return c.name
}

// Location returns the partner's starting position.
func (c CreatePartnerCommand) Location() kernel.GeoPoint {
	return c.location
}

// Rating returns the partner's rating.
func (c CreatePartnerCommand) Rating() float64 {
	return c.rating
}

func (c *CreatePartnerCommand) setPartnerID(partnerID kernel.UUID) error {
	if err := partnerID.Validate(); err != nil {
		return err
	}

	c.partnerID = partnerID
	return nil
}

func (c *CreatePartnerCommand) setName(name string) error {
	if name == "" {
		return ErrPartnerNameIsRequired
	}

	c.name = name
	return nil
}

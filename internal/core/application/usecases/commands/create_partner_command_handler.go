package commands

import (
	"context"

	"orderflow/internal/core/domain/model/partner"
)

// CreatePartnerCommandHandler handles delivery partner registration.
type CreatePartnerCommandHandler struct {
	uowFactory PartnerUoWFactory
}

// NewCreatePartnerCommandHandler creates a handler for partner registration.
func NewCreatePartnerCommandHandler(uowFactory PartnerUoWFactory) CreatePartnerCommandHandler {
	return CreatePartnerCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the registration command. New partners start available
// with an empty assignment load.
func (h *CreatePartnerCommandHandler) Handle(ctx context.Context, cmd CreatePartnerCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := partner.NewDeliveryPartner(cmd.PartnerID(), cmd.Name(), cmd.Location(), cmd.Rating())
	if err != nil {
		return err
	}

	if err = uow.PartnerRepository().Add(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

package commands

import (
	"context"
	"errors"
	"time"

	"orderflow/internal/core/domain/model/assignment"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/partner"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/locker"
)

// AssignPartnerCommandHandler creates delivery assignments. It enforces the
// single-live-assignment invariant, consults the partner selector when no
// partner is named, and notifies the chosen partner after commit.
type AssignPartnerCommandHandler struct {
	uowFactory AssignmentUoWFactory
	selector   services.PartnerSelector
	orderLocks *locker.KeyedMutex
	notifier   ports.NotificationGateway
}

// NewAssignPartnerCommandHandler creates a handler for partner assignment.
func NewAssignPartnerCommandHandler(
	uowFactory AssignmentUoWFactory,
	selector services.PartnerSelector,
	orderLocks *locker.KeyedMutex,
	notifier ports.NotificationGateway,
) AssignPartnerCommandHandler {
	return AssignPartnerCommandHandler{
		uowFactory: uowFactory,
		selector:   selector,
		orderLocks: orderLocks,
		notifier:   notifier,
	}
}

// Handle processes one assignment request.
//
// The new assignment starts in the assigned state and does not itself change
// the order's status; the partner's response does that later. Creating the
// record and bumping the partner's load commit together.
func (h *AssignPartnerCommandHandler) Handle(ctx context.Context, cmd AssignPartnerCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	key := cmd.OrderID().String()
	h.orderLocks.Lock(key)
	defer h.orderLocks.Unlock(key)

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	if aggregate.DeliveryType() != order.DeliveryTypeDelivery {
		return errs.NewInvalidStateError("order delivery type", aggregate.DeliveryType().String())
	}
	if aggregate.Status().IsTerminal() {
		return errs.NewInvalidStateError("order status", aggregate.Status().String())
	}

	assignmentRepo := uow.AssignmentRepository()
	if existing, getErr := assignmentRepo.GetActiveByOrder(ctx, cmd.OrderID()); getErr == nil {
		return errs.NewInvalidStateErrorWithCause("order assignment", existing.Status().String(),
			errors.New("order already has a live assignment"))
	} else if !errors.Is(getErr, errs.ErrObjectNotFound) {
		return getErr
	}

	chosen, err := h.choosePartner(ctx, uow, cmd, aggregate)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	record, err := assignment.NewDeliveryAssignment(kernel.NewUUID(), aggregate.ID(), chosen.ID(), now)
	if err != nil {
		return err
	}

	if err = assignmentRepo.Add(ctx, record); err != nil {
		return err
	}

	if err = chosen.TakeAssignment(); err != nil {
		return err
	}
	if err = uow.PartnerRepository().Update(ctx, chosen); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	// The gateway owns retries for failed deliveries.
	_ = h.notifier.Dispatch(ctx, chosen.ID(), "New delivery assignment",
		"You have a new delivery waiting for your response.",
		map[string]any{"orderId": aggregate.ID().String(), "assignmentId": record.ID().String()})

	return nil
}

func (h *AssignPartnerCommandHandler) choosePartner(
	ctx context.Context,
	uow AssignmentUoW,
	cmd AssignPartnerCommand,
	aggregate *order.Order,
) (*partner.DeliveryPartner, error) {
	partnerRepo := uow.PartnerRepository()

	if cmd.PartnerID() != nil {
		return partnerRepo.Get(ctx, *cmd.PartnerID())
	}

	if aggregate.Address() == nil {
		return nil, errs.NewValueIsRequiredError("delivery address")
	}

	excluded, err := uow.AssignmentRepository().GetDeclinedPartnerIDs(ctx, aggregate.ID())
	if err != nil {
		return nil, err
	}

	pickup := aggregate.Address().Point()
	candidates, err := partnerRepo.FindAvailable(ctx, pickup, h.selector.RadiusKm())
	if err != nil {
		return nil, err
	}

	return h.selector.Select(pickup, candidates, excluded)
}

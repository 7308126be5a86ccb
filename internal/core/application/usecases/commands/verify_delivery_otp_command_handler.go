package commands

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/assignment"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/locker"
)

// VerifyDeliveryOtpCommandHandler confirms the customer handover. A correct
// code completes the assignment, advances the order to delivered and releases
// the partner's load; a mismatch mutates nothing.
type VerifyDeliveryOtpCommandHandler struct {
	uowFactory    AssignmentUoWFactory
	locks         *locker.KeyedMutex
	otpStore      ports.OtpStore
	dispatchQueue ports.DispatchQueue
}

// NewVerifyDeliveryOtpCommandHandler creates a handler for delivery verification.
func NewVerifyDeliveryOtpCommandHandler(
	uowFactory AssignmentUoWFactory,
	locks *locker.KeyedMutex,
	otpStore ports.OtpStore,
	dispatchQueue ports.DispatchQueue,
) VerifyDeliveryOtpCommandHandler {
	return VerifyDeliveryOtpCommandHandler{
		uowFactory:    uowFactory,
		locks:         locks,
		otpStore:      otpStore,
		dispatchQueue: dispatchQueue,
	}
}

// Handle processes a delivery verification attempt. On success the assignment
// completes, the order reaches its terminal delivered status and the partner
// becomes selectable again, all in one transaction.
func (h *VerifyDeliveryOtpCommandHandler) Handle(ctx context.Context, cmd VerifyDeliveryOtpCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if err := h.otpStore.Verify(ctx, cmd.AssignmentID(), ports.OtpStepDelivery, cmd.Code()); err != nil {
		return err
	}

	key := cmd.AssignmentID().String()
	h.locks.Lock(key)
	defer h.locks.Unlock(key)

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	now := time.Now().UTC()

	record, err := uow.AssignmentRepository().Get(ctx, cmd.AssignmentID())
	if err != nil {
		return err
	}
	if err = record.MarkDelivered(cmd.PartnerID(), now); err != nil {
		return err
	}
	if err = uow.AssignmentRepository().Update(ctx, record); err != nil {
		return err
	}

	partnerRepo := uow.PartnerRepository()
	assignee, err := partnerRepo.Get(ctx, cmd.PartnerID())
	if err != nil {
		return err
	}
	if err = assignee.ReleaseAssignment(); err != nil {
		return err
	}
	if err = partnerRepo.Update(ctx, assignee); err != nil {
		return err
	}

	target, _ := assignment.OrderTargetFor(assignment.StatusDelivered)

	orderRepo := uow.OrderRepository()
	aggregate, err := orderRepo.Get(ctx, record.OrderID())
	if err != nil {
		return err
	}
	event, err := aggregate.ProposeTransition(
		target, cmd.PartnerID(), order.RoleDeliveryPartner, "delivery code verified", nil, now)
	if err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return err
	}
	if event != nil {
		if err = orderRepo.AppendStatusEvent(ctx, event); err != nil {
			return err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if event == nil {
		return nil
	}
	return h.dispatchQueue.EnqueueStatusChanged(ctx, aggregate, event)
}

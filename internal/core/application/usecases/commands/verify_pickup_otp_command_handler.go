package commands

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/assignment"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/locker"
)

// VerifyPickupOtpCommandHandler confirms the restaurant handover. The code is
// checked before anything is touched: a mismatch leaves both state machines
// exactly as they were, and repeated mismatches lock the step in the store.
type VerifyPickupOtpCommandHandler struct {
	uowFactory    AssignmentUoWFactory
	locks         *locker.KeyedMutex
	otpStore      ports.OtpStore
	dispatchQueue ports.DispatchQueue
}

// NewVerifyPickupOtpCommandHandler creates a handler for pickup verification.
func NewVerifyPickupOtpCommandHandler(
	uowFactory AssignmentUoWFactory,
	locks *locker.KeyedMutex,
	otpStore ports.OtpStore,
	dispatchQueue ports.DispatchQueue,
) VerifyPickupOtpCommandHandler {
	return VerifyPickupOtpCommandHandler{
		uowFactory:    uowFactory,
		locks:         locks,
		otpStore:      otpStore,
		dispatchQueue: dispatchQueue,
	}
}

// Handle processes a pickup verification attempt. On success the assignment
// moves to picked_up and the order advances to out_for_delivery in the same
// transaction.
func (h *VerifyPickupOtpCommandHandler) Handle(ctx context.Context, cmd VerifyPickupOtpCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if err := h.otpStore.Verify(ctx, cmd.AssignmentID(), ports.OtpStepPickup, cmd.Code()); err != nil {
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
	if err = record.MarkPickedUp(cmd.PartnerID(), now); err != nil {
		return err
	}
	if err = uow.AssignmentRepository().Update(ctx, record); err != nil {
		return err
	}

	target, _ := assignment.OrderTargetFor(assignment.StatusPickedUp)

	orderRepo := uow.OrderRepository()
	aggregate, err := orderRepo.Get(ctx, record.OrderID())
	if err != nil {
		return err
	}
	event, err := aggregate.ProposeTransition(
		target, cmd.PartnerID(), order.RoleDeliveryPartner, "pickup code verified", nil, now)
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

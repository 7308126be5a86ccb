package commands

import (
	"context"
	"time"

	"orderflow/internal/pkg/locker"
)

// AssignmentRequeuer re-runs partner assignment for an order. Implemented by
// AssignPartnerCommandHandler; abstracted so rejection and the acceptance
// timeout job can requeue without a hard dependency.
type AssignmentRequeuer interface {
	Handle(ctx context.Context, cmd AssignPartnerCommand) error
}

// RejectAssignmentCommandHandler processes a partner's refusal and requeues
// the order for reassignment with the refusing partner excluded.
type RejectAssignmentCommandHandler struct {
	uowFactory AssignmentUoWFactory
	locks      *locker.KeyedMutex
	requeuer   AssignmentRequeuer
}

// NewRejectAssignmentCommandHandler creates a handler for assignment rejection.
func NewRejectAssignmentCommandHandler(
	uowFactory AssignmentUoWFactory,
	locks *locker.KeyedMutex,
	requeuer AssignmentRequeuer,
) RejectAssignmentCommandHandler {
	return RejectAssignmentCommandHandler{
		uowFactory: uowFactory,
		locks:      locks,
		requeuer:   requeuer,
	}
}

// Handle processes a rejection.
//
// The rejection and the partner's load release commit together; reassignment
// runs after commit. Exhausting the candidate pool surfaces as a
// no-partner-available error while the rejection itself stays committed.
func (h *RejectAssignmentCommandHandler) Handle(ctx context.Context, cmd RejectAssignmentCommand) error {
	if err := cmd.Validate(); err != nil {
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
	if err = record.Reject(cmd.PartnerID(), cmd.Reason(), now); err != nil {
		return err
	}
	if err = uow.AssignmentRepository().Update(ctx, record); err != nil {
		return err
	}

	partnerRepo := uow.PartnerRepository()
	rejector, err := partnerRepo.Get(ctx, cmd.PartnerID())
	if err != nil {
		return err
	}
	if err = rejector.ReleaseAssignment(); err != nil {
		return err
	}
	if err = partnerRepo.Update(ctx, rejector); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	requeue, err := NewAssignPartnerCommand(record.OrderID(), nil)
	if err != nil {
		return err
	}
	return h.requeuer.Handle(ctx, requeue)
}

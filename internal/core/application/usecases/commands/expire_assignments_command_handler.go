package commands

import (
	"context"
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/services"
)

// ExpireAssignmentsCommandHandler cancels timed-out assignments and requeues
// their orders. Each assignment is handled in its own transaction so one bad
// record does not stall the sweep.
type ExpireAssignmentsCommandHandler struct {
	uowFactory AssignmentUoWFactory
	requeuer   AssignmentRequeuer
}

// NewExpireAssignmentsCommandHandler creates a handler for the acceptance
// timeout sweep.
func NewExpireAssignmentsCommandHandler(
	uowFactory AssignmentUoWFactory,
	requeuer AssignmentRequeuer,
) ExpireAssignmentsCommandHandler {
	return ExpireAssignmentsCommandHandler{
		uowFactory: uowFactory,
		requeuer:   requeuer,
	}
}

// Handle processes one sweep. An exhausted candidate pool on requeue is not
// an error for the sweep; the next sweep or a manual assignment picks the
// order up.
func (h *ExpireAssignmentsCommandHandler) Handle(ctx context.Context, cmd ExpireAssignmentsCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	cutoff := now.Add(-cmd.AcceptanceWindow())

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	stale, err := uow.AssignmentRepository().GetAllAssignedBefore(ctx, cutoff)
	if rollbackErr := uow.Rollback(ctx); rollbackErr != nil && err == nil {
		err = rollbackErr
	}
	if err != nil {
		return err
	}

	var sweepErrs []error
	for _, record := range stale {
		if expireErr := h.expireOne(ctx, record.ID(), now); expireErr != nil {
			sweepErrs = append(sweepErrs, expireErr)
			continue
		}

		requeue, cmdErr := NewAssignPartnerCommand(record.OrderID(), nil)
		if cmdErr != nil {
			sweepErrs = append(sweepErrs, cmdErr)
			continue
		}
		if requeueErr := h.requeuer.Handle(ctx, requeue); requeueErr != nil &&
			!errors.Is(requeueErr, services.ErrNoPartnerAvailable) {
			sweepErrs = append(sweepErrs, requeueErr)
		}
	}

	return errors.Join(sweepErrs...)
}

// expireOne cancels a single timed-out assignment and releases the partner's
// load in one transaction.
func (h *ExpireAssignmentsCommandHandler) expireOne(ctx context.Context, assignmentID kernel.UUID, now time.Time) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	record, err := uow.AssignmentRepository().Get(ctx, assignmentID)
	if err != nil {
		return err
	}
	if err = record.Cancel(now); err != nil {
		return err
	}
	if err = uow.AssignmentRepository().Update(ctx, record); err != nil {
		return err
	}

	partnerRepo := uow.PartnerRepository()
	assignee, err := partnerRepo.Get(ctx, record.PartnerID())
	if err != nil {
		return err
	}
	if err = assignee.ReleaseAssignment(); err != nil {
		return err
	}
	if err = partnerRepo.Update(ctx, assignee); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

package commands

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/assignment"
	"orderflow/internal/core/ports"
)

// UpdateLocationCommandHandler ingests partner position reports. The report
// is persisted on the assignment and republished to the order's subscribers
// directly; it never touches the status transition engine and never enters
// the immutable status history.
type UpdateLocationCommandHandler struct {
	uowFactory  AssignmentUoWFactory
	broadcaster ports.Broadcaster
}

// NewUpdateLocationCommandHandler creates a handler for location ingestion.
func NewUpdateLocationCommandHandler(
	uowFactory AssignmentUoWFactory,
	broadcaster ports.Broadcaster,
) UpdateLocationCommandHandler {
	return UpdateLocationCommandHandler{
		uowFactory:  uowFactory,
		broadcaster: broadcaster,
	}
}

// Handle processes one position report. Only the currently assigned partner
// is authorized; anyone else fails without a write.
func (h *UpdateLocationCommandHandler) Handle(ctx context.Context, cmd UpdateLocationCommand) error {
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

	now := time.Now().UTC()

	record, err := uow.AssignmentRepository().Get(ctx, cmd.AssignmentID())
	if err != nil {
		return err
	}
	if err = record.ReportLocation(cmd.PartnerID(), cmd.Point(), now); err != nil {
		return err
	}
	if err = uow.AssignmentRepository().Update(ctx, record); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	return h.broadcaster.BroadcastLocation(ctx, record.OrderID(),
		assignment.PartnerLocation{Point: cmd.Point(), UpdatedAt: now})
}

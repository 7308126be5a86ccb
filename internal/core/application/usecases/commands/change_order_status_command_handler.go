package commands

import (
	"context"
	"time"

	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/locker"
)

// ChangeOrderStatusCommandHandler runs the status transition engine for one
// proposal. Proposals for the same order are serialized through a keyed mutex
// so two concurrent proposals cannot both win against a stale read; proposals
// for different orders proceed in parallel.
type ChangeOrderStatusCommandHandler struct {
	uowFactory    OrderUoWFactory
	orderLocks    *locker.KeyedMutex
	dispatchQueue ports.DispatchQueue
}

// NewChangeOrderStatusCommandHandler creates a handler for status transitions.
func NewChangeOrderStatusCommandHandler(
	uowFactory OrderUoWFactory,
	orderLocks *locker.KeyedMutex,
	dispatchQueue ports.DispatchQueue,
) ChangeOrderStatusCommandHandler {
	return ChangeOrderStatusCommandHandler{
		uowFactory:    uowFactory,
		orderLocks:    orderLocks,
		dispatchQueue: dispatchQueue,
	}
}

// Handle processes one transition proposal.
//
// The order row update and the status-event append commit in one transaction;
// fan-out is enqueued only after that commit, so subscribers never observe a
// status the store could still roll back. An idempotent re-proposal of the
// current status commits nothing and broadcasts nothing.
func (h *ChangeOrderStatusCommandHandler) Handle(ctx context.Context, cmd ChangeOrderStatusCommand) error {
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

	orderRepo := uow.OrderRepository()
	aggregate, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	event, err := aggregate.ProposeTransition(
		cmd.Target(), cmd.Actor(), cmd.Role(), cmd.Reason(), cmd.Metadata(), time.Now().UTC())
	if err != nil {
		return err
	}
	if event == nil {
		return nil
	}

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return err
	}
	if err = orderRepo.AppendStatusEvent(ctx, event); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	return h.dispatchQueue.EnqueueStatusChanged(ctx, aggregate, event)
}

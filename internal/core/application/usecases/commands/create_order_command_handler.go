package commands

import (
	"context"
	"errors"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// CreateOrderCommandHandler handles the business logic for order admission.
// The restaurant's quota is checked before the order is persisted; quota is
// consumed only once payment is confirmed, never before.
type CreateOrderCommandHandler struct {
	uowFactory       AdmissionUoWFactory
	paymentAuthority ports.PaymentAuthority
	dispatchQueue    ports.DispatchQueue
}

// NewCreateOrderCommandHandler creates a handler for order admission.
func NewCreateOrderCommandHandler(
	uowFactory AdmissionUoWFactory,
	paymentAuthority ports.PaymentAuthority,
	dispatchQueue ports.DispatchQueue,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory:       uowFactory,
		paymentAuthority: paymentAuthority,
		dispatchQueue:    dispatchQueue,
	}
}

// Handle processes the order admission command.
//
// Order of operations matters here: the quota check happens before the order
// row exists, so a denied restaurant never leaves a partial order behind; the
// quota consumption happens after the payment authority confirms settlement,
// inside the same transaction as the order insert. The restaurant's live
// subscribers are told about the new order only after commit.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	quotaRepo := uow.QuotaRepository()
	quotaRecord, err := quotaRepo.GetActiveByRestaurant(ctx, cmd.RestaurantID(), now)
	if err != nil {
		// No active quota record means the restaurant may not admit orders.
		if errors.Is(err, errs.ErrObjectNotFound) {
			return errs.NewQuotaExceededErrorWithCause(cmd.RestaurantID().String(), "none", 0, err)
		}
		return err
	}

	decision := quotaRecord.Check(now)
	if !decision.Allowed {
		return errs.NewQuotaExceededError(cmd.RestaurantID().String(), decision.Plan, decision.Remaining)
	}

	aggregate, err := order.NewOrder(
		cmd.OrderID(),
		cmd.CustomerID(),
		cmd.RestaurantID(),
		cmd.Items(),
		cmd.Tax(),
		cmd.DeliveryFee(),
		cmd.PlatformFee(),
		cmd.DeliveryType(),
		cmd.Address(),
		cmd.Payment(),
		cmd.GroupOrder(),
		now,
	)
	if err != nil {
		return err
	}

	if err = uow.OrderRepository().Add(ctx, aggregate); err != nil {
		return err
	}

	paid, err := h.paymentAuthority.IsPaid(ctx, aggregate.ID())
	if err != nil {
		return err
	}
	if paid {
		consumed, consumeErr := quotaRepo.Consume(ctx, cmd.RestaurantID(), now)
		if consumeErr != nil {
			return consumeErr
		}
		// A concurrent admission may have taken the last slot between the
		// check above and here; the conditional update is the arbiter.
		if !consumed {
			return errs.NewQuotaExceededError(cmd.RestaurantID().String(), decision.Plan, 0)
		}
		if err = aggregate.MarkPaymentStatus(order.PaymentStatusPaid, now); err != nil {
			return err
		}
		if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
			return err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	return h.dispatchQueue.EnqueueNewOrder(ctx, aggregate)
}

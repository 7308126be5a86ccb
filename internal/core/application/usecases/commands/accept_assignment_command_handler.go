package commands

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/locker"
)

// otpCodeDigits is the length of the generated handover codes.
const otpCodeDigits = 6

// AcceptAssignmentCommandHandler commits a partner to an assignment. On
// acceptance the partner is recorded on the order and the two handover codes
// are issued: the pickup code goes to the restaurant, the delivery code to
// the customer.
type AcceptAssignmentCommandHandler struct {
	uowFactory AssignmentUoWFactory
	locks      *locker.KeyedMutex
	otpStore   ports.OtpStore
	otpTTL     time.Duration
	notifier   ports.NotificationGateway
}

// NewAcceptAssignmentCommandHandler creates a handler for assignment acceptance.
func NewAcceptAssignmentCommandHandler(
	uowFactory AssignmentUoWFactory,
	locks *locker.KeyedMutex,
	otpStore ports.OtpStore,
	otpTTL time.Duration,
	notifier ports.NotificationGateway,
) AcceptAssignmentCommandHandler {
	return AcceptAssignmentCommandHandler{
		uowFactory: uowFactory,
		locks:      locks,
		otpStore:   otpStore,
		otpTTL:     otpTTL,
		notifier:   notifier,
	}
}

// Handle processes an acceptance.
//
// The sub-status change and the partner reference on the order commit
// together. Handover codes are issued after commit; issuing replaces any
// previous code, so a retry after a partial failure is safe.
func (h *AcceptAssignmentCommandHandler) Handle(ctx context.Context, cmd AcceptAssignmentCommand) error {
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
	if err = record.Accept(cmd.PartnerID(), now); err != nil {
		return err
	}
	if err = uow.AssignmentRepository().Update(ctx, record); err != nil {
		return err
	}

	orderRepo := uow.OrderRepository()
	aggregate, err := orderRepo.Get(ctx, record.OrderID())
	if err != nil {
		return err
	}
	if err = aggregate.AssignDeliveryPartner(cmd.PartnerID(), now); err != nil {
		return err
	}
	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	pickupCode, err := generateOtpCode()
	if err != nil {
		return err
	}
	deliveryCode, err := generateOtpCode()
	if err != nil {
		return err
	}
	if err = h.otpStore.Issue(ctx, record.ID(), ports.OtpStepPickup, pickupCode, h.otpTTL); err != nil {
		return err
	}
	if err = h.otpStore.Issue(ctx, record.ID(), ports.OtpStepDelivery, deliveryCode, h.otpTTL); err != nil {
		return err
	}

	// The gateway owns retries for failed deliveries.
	_ = h.notifier.Dispatch(ctx, aggregate.RestaurantID(), "Delivery partner confirmed",
		"Share the pickup code with the delivery partner at handover.",
		map[string]any{"orderId": aggregate.ID().String(), "pickupCode": pickupCode})
	_ = h.notifier.Dispatch(ctx, aggregate.CustomerID(), "Delivery partner confirmed",
		"Share the delivery code with the partner when your order arrives.",
		map[string]any{"orderId": aggregate.ID().String(), "deliveryCode": deliveryCode})

	return nil
}

// generateOtpCode produces a zero-padded numeric handover code.
func generateOtpCode() (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < otpCodeDigits; i++ {
		limit.Mul(limit, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpCodeDigits, n), nil
}

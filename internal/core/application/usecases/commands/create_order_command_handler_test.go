package commands_test

import (
	"errors"
	"testing"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	cmd := fixtureCreateOrderCommand(t)

	orderRepo := new(MockOrderRepository)
	quotaRepo := new(MockQuotaRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("QuotaRepository").Return(quotaRepo).Once(),
		quotaRepo.On("GetActiveByRestaurant", mock.Anything, cmd.RestaurantID(), mock.Anything).
			Return(fixtureQuota(t, cmd.RestaurantID(), 10), nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Add", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockAdmissionUoWFactory)
	factory.On("Create").Return(uow).Once()

	payments := new(MockPaymentAuthority)
	payments.On("IsPaid", mock.Anything, cmd.OrderID()).Return(false, nil).Once()

	queue := new(MockDispatchQueue)
	queue.On("EnqueueNewOrder", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once()

	h := commands.NewCreateOrderCommandHandler(factory, payments, queue)
	err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	orderRepo.AssertExpectations(t)
	quotaRepo.AssertExpectations(t)
	payments.AssertExpectations(t)
	queue.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestCreateOrderCommandHandler_Handle_ConsumesQuotaWhenPaid(t *testing.T) {
	ctx := t.Context()
	cmd := fixtureCreateOrderCommand(t)

	orderRepo := new(MockOrderRepository)
	quotaRepo := new(MockQuotaRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("QuotaRepository").Return(quotaRepo).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	quotaRepo.On("GetActiveByRestaurant", mock.Anything, cmd.RestaurantID(), mock.Anything).
		Return(fixtureQuota(t, cmd.RestaurantID(), 10), nil).Once()
	quotaRepo.On("Consume", mock.Anything, cmd.RestaurantID(), mock.Anything).Return(true, nil).Once()
	orderRepo.On("Add", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once()
	orderRepo.On("Update", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once()

	factory := new(MockAdmissionUoWFactory)
	factory.On("Create").Return(uow).Once()

	payments := new(MockPaymentAuthority)
	payments.On("IsPaid", mock.Anything, cmd.OrderID()).Return(true, nil).Once()

	queue := new(MockDispatchQueue)
	queue.On("EnqueueNewOrder", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once()

	h := commands.NewCreateOrderCommandHandler(factory, payments, queue)
	err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	quotaRepo.AssertExpectations(t)
	orderRepo.AssertExpectations(t)
}

func TestCreateOrderCommandHandler_Handle_ConsumeLosesLastSlot(t *testing.T) {
	ctx := t.Context()
	cmd := fixtureCreateOrderCommand(t)

	orderRepo := new(MockOrderRepository)
	quotaRepo := new(MockQuotaRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("QuotaRepository").Return(quotaRepo).Once(),
		quotaRepo.On("GetActiveByRestaurant", mock.Anything, cmd.RestaurantID(), mock.Anything).
			Return(fixtureQuota(t, cmd.RestaurantID(), 1), nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Add", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		// A concurrent admission takes the last slot; the conditional
		// update matches no row.
		quotaRepo.On("Consume", mock.Anything, cmd.RestaurantID(), mock.Anything).
			Return(false, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockAdmissionUoWFactory)
	factory.On("Create").Return(uow).Once()

	payments := new(MockPaymentAuthority)
	payments.On("IsPaid", mock.Anything, cmd.OrderID()).Return(true, nil).Once()

	queue := new(MockDispatchQueue)

	h := commands.NewCreateOrderCommandHandler(factory, payments, queue)
	err := h.Handle(ctx, cmd)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrQuotaExceeded)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
	queue.AssertNotCalled(t, "EnqueueNewOrder", mock.Anything, mock.Anything)
	quotaRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestCreateOrderCommandHandler_Handle_QuotaExhausted(t *testing.T) {
	ctx := t.Context()
	cmd := fixtureCreateOrderCommand(t)

	exhausted := fixtureQuota(t, cmd.RestaurantID(), 0)

	quotaRepo := new(MockQuotaRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("QuotaRepository").Return(quotaRepo).Once(),
		quotaRepo.On("GetActiveByRestaurant", mock.Anything, cmd.RestaurantID(), mock.Anything).
			Return(exhausted, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockAdmissionUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewCreateOrderCommandHandler(factory, new(MockPaymentAuthority), new(MockDispatchQueue))
	err := h.Handle(ctx, cmd)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrQuotaExceeded)
	uow.AssertExpectations(t)
}

func TestCreateOrderCommandHandler_Handle_NoQuotaRecord(t *testing.T) {
	ctx := t.Context()
	cmd := fixtureCreateOrderCommand(t)

	quotaRepo := new(MockQuotaRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("QuotaRepository").Return(quotaRepo).Once(),
		quotaRepo.On("GetActiveByRestaurant", mock.Anything, cmd.RestaurantID(), mock.Anything).
			Return(nil, errs.NewObjectNotFoundError("quota", cmd.RestaurantID())).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockAdmissionUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewCreateOrderCommandHandler(factory, new(MockPaymentAuthority), new(MockDispatchQueue))
	err := h.Handle(ctx, cmd)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrQuotaExceeded)
}

func TestCreateOrderCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	cmd := commands.CreateOrderCommand{} // not constructed properly

	h := commands.NewCreateOrderCommandHandler(
		new(MockAdmissionUoWFactory), new(MockPaymentAuthority), new(MockDispatchQueue))
	err := h.Handle(ctx, cmd)
	require.Error(t, err)
}

func TestCreateOrderCommandHandler_Handle_AddError(t *testing.T) {
	ctx := t.Context()
	cmd := fixtureCreateOrderCommand(t)

	orderRepo := new(MockOrderRepository)
	quotaRepo := new(MockQuotaRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("QuotaRepository").Return(quotaRepo).Once(),
		quotaRepo.On("GetActiveByRestaurant", mock.Anything, cmd.RestaurantID(), mock.Anything).
			Return(fixtureQuota(t, cmd.RestaurantID(), 10), nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Add", mock.Anything, mock.AnythingOfType("*order.Order")).
			Return(errors.New("add error")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockAdmissionUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewCreateOrderCommandHandler(factory, new(MockPaymentAuthority), new(MockDispatchQueue))
	err := h.Handle(ctx, cmd)
	require.Error(t, err)
	uow.AssertExpectations(t)
}

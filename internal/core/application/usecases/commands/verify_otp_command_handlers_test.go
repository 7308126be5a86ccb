package commands_test

import (
	"testing"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/assignment"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/locker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fixtureHandoff returns an order ready for pickup together with an accepted
// assignment held by partnerID.
func fixtureHandoff(t *testing.T, partnerID kernel.UUID) (*order.Order, *assignment.DeliveryAssignment) {
	t.Helper()
	now := time.Now().UTC()

	aggregate := fixtureOrder(t)
	for _, target := range []order.Status{order.StatusConfirmed, order.StatusPreparing, order.StatusReadyForPickup} {
		_, err := aggregate.ProposeTransition(target, aggregate.RestaurantID(), order.RoleRestaurant, "", nil, now)
		require.NoError(t, err)
	}
	require.NoError(t, aggregate.AssignDeliveryPartner(partnerID, now))

	record := fixtureAssignment(t, aggregate.ID(), partnerID)
	require.NoError(t, record.Accept(partnerID, now))
	return aggregate, record
}

func TestVerifyPickupOtpCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	partnerID := kernel.NewUUID()
	aggregate, record := fixtureHandoff(t, partnerID)
	cmd, err := commands.NewVerifyPickupOtpCommand(record.ID(), partnerID, "482913")
	require.NoError(t, err)

	otpStore := new(MockOtpStore)
	otpStore.On("Verify", mock.Anything, record.ID(), ports.OtpStepPickup, "482913").Return(nil).Once()

	orderRepo := new(MockOrderRepository)
	assignmentRepo := new(MockAssignmentRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("AssignmentRepository").Return(assignmentRepo)
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	assignmentRepo.On("Get", mock.Anything, record.ID()).Return(record, nil).Once()
	assignmentRepo.On("Update", mock.Anything, record).Return(nil).Once()
	orderRepo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once()
	orderRepo.On("Update", mock.Anything, aggregate).Return(nil).Once()
	orderRepo.On("AppendStatusEvent", mock.Anything, mock.AnythingOfType("*order.StatusEvent")).Return(nil).Once()

	factory := new(MockAssignmentUoWFactory)
	factory.On("Create").Return(uow).Once()

	queue := new(MockDispatchQueue)
	queue.On("EnqueueStatusChanged", mock.Anything, aggregate, mock.AnythingOfType("*order.StatusEvent")).
		Return(nil).Once()

	h := commands.NewVerifyPickupOtpCommandHandler(factory, locker.NewKeyedMutex(), otpStore, queue)
	err = h.Handle(ctx, cmd)
	require.NoError(t, err)

	assert.Equal(t, assignment.StatusPickedUp, record.Status())
	assert.Equal(t, order.StatusOutForDelivery, aggregate.Status())
	queue.AssertExpectations(t)
}

func TestVerifyPickupOtpCommandHandler_Handle_MismatchTouchesNothing(t *testing.T) {
	ctx := t.Context()
	partnerID := kernel.NewUUID()
	_, record := fixtureHandoff(t, partnerID)
	cmd, err := commands.NewVerifyPickupOtpCommand(record.ID(), partnerID, "000000")
	require.NoError(t, err)

	otpStore := new(MockOtpStore)
	otpStore.On("Verify", mock.Anything, record.ID(), ports.OtpStepPickup, "000000").
		Return(ports.ErrOtpMismatch).Once()

	factory := new(MockAssignmentUoWFactory)

	h := commands.NewVerifyPickupOtpCommandHandler(factory, locker.NewKeyedMutex(), otpStore, new(MockDispatchQueue))
	err = h.Handle(ctx, cmd)
	require.Error(t, err)
	require.ErrorIs(t, err, ports.ErrOtpMismatch)
	assert.Equal(t, assignment.StatusAccepted, record.Status())
	factory.AssertNotCalled(t, "Create")
}

func TestVerifyPickupOtpCommandHandler_Handle_LockedStep(t *testing.T) {
	ctx := t.Context()
	partnerID := kernel.NewUUID()
	_, record := fixtureHandoff(t, partnerID)
	cmd, err := commands.NewVerifyPickupOtpCommand(record.ID(), partnerID, "111111")
	require.NoError(t, err)

	otpStore := new(MockOtpStore)
	otpStore.On("Verify", mock.Anything, record.ID(), ports.OtpStepPickup, "111111").
		Return(ports.ErrOtpLocked).Once()

	h := commands.NewVerifyPickupOtpCommandHandler(
		new(MockAssignmentUoWFactory), locker.NewKeyedMutex(), otpStore, new(MockDispatchQueue))
	err = h.Handle(ctx, cmd)
	require.ErrorIs(t, err, ports.ErrOtpLocked)
}

func TestVerifyDeliveryOtpCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	assignee := fixturePartner(t, "Mira")
	require.NoError(t, assignee.TakeAssignment())
	aggregate, record := fixtureHandoff(t, assignee.ID())

	now := time.Now().UTC()
	require.NoError(t, record.MarkPickedUp(assignee.ID(), now))
	_, err := aggregate.ProposeTransition(
		order.StatusOutForDelivery, assignee.ID(), order.RoleDeliveryPartner, "", nil, now)
	require.NoError(t, err)

	cmd, err := commands.NewVerifyDeliveryOtpCommand(record.ID(), assignee.ID(), "775310")
	require.NoError(t, err)

	otpStore := new(MockOtpStore)
	otpStore.On("Verify", mock.Anything, record.ID(), ports.OtpStepDelivery, "775310").Return(nil).Once()

	orderRepo := new(MockOrderRepository)
	assignmentRepo := new(MockAssignmentRepository)
	partnerRepo := new(MockPartnerRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("AssignmentRepository").Return(assignmentRepo)
	uow.On("PartnerRepository").Return(partnerRepo)
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	assignmentRepo.On("Get", mock.Anything, record.ID()).Return(record, nil).Once()
	assignmentRepo.On("Update", mock.Anything, record).Return(nil).Once()
	orderRepo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once()
	orderRepo.On("Update", mock.Anything, aggregate).Return(nil).Once()
	orderRepo.On("AppendStatusEvent", mock.Anything, mock.AnythingOfType("*order.StatusEvent")).Return(nil).Once()
	partnerRepo.On("Get", mock.Anything, assignee.ID()).Return(assignee, nil).Once()
	partnerRepo.On("Update", mock.Anything, assignee).Return(nil).Once()

	factory := new(MockAssignmentUoWFactory)
	factory.On("Create").Return(uow).Once()

	queue := new(MockDispatchQueue)
	queue.On("EnqueueStatusChanged", mock.Anything, aggregate, mock.AnythingOfType("*order.StatusEvent")).
		Return(nil).Once()

	h := commands.NewVerifyDeliveryOtpCommandHandler(factory, locker.NewKeyedMutex(), otpStore, queue)
	err = h.Handle(ctx, cmd)
	require.NoError(t, err)

	assert.Equal(t, assignment.StatusDelivered, record.Status())
	assert.Equal(t, order.StatusDelivered, aggregate.Status())
	assert.Equal(t, 0, assignee.ActiveAssignments())
	queue.AssertExpectations(t)
}

func TestVerifyDeliveryOtpCommandHandler_Handle_BeforePickup(t *testing.T) {
	ctx := t.Context()
	partnerID := kernel.NewUUID()
	_, record := fixtureHandoff(t, partnerID)
	cmd, err := commands.NewVerifyDeliveryOtpCommand(record.ID(), partnerID, "991144")
	require.NoError(t, err)

	otpStore := new(MockOtpStore)
	otpStore.On("Verify", mock.Anything, record.ID(), ports.OtpStepDelivery, "991144").Return(nil).Once()

	assignmentRepo := new(MockAssignmentRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("AssignmentRepository").Return(assignmentRepo)
	uow.On("Rollback", ctx).Return(nil).Once()
	assignmentRepo.On("Get", mock.Anything, record.ID()).Return(record, nil).Once()

	factory := new(MockAssignmentUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewVerifyDeliveryOtpCommandHandler(factory, locker.NewKeyedMutex(), otpStore, new(MockDispatchQueue))
	err = h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.Equal(t, assignment.StatusAccepted, record.Status())
	assignmentRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

package commands_test

import (
	"testing"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/partner"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/locker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func fixturePartner(t *testing.T, name string) *partner.DeliveryPartner {
	t.Helper()
	p, err := partner.NewDeliveryPartner(kernel.NewUUID(), name, fixturePoint(t), 4.5)
	require.NoError(t, err)
	return p
}

func newAssignHandler(factory *MockAssignmentUoWFactory, notifier *MockNotificationGateway) commands.AssignPartnerCommandHandler {
	return commands.NewAssignPartnerCommandHandler(
		factory, services.NewPartnerSelector(services.DefaultSelectionPolicy()), locker.NewKeyedMutex(), notifier)
}

func TestAssignPartnerCommandHandler_Handle_SelectsPartner(t *testing.T) {
	ctx := t.Context()
	aggregate := fixtureOrder(t)
	cmd, err := commands.NewAssignPartnerCommand(aggregate.ID(), nil)
	require.NoError(t, err)

	candidate := fixturePartner(t, "Ravi")

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

	orderRepo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once()
	assignmentRepo.On("GetActiveByOrder", mock.Anything, aggregate.ID()).
		Return(nil, errs.NewObjectNotFoundError("assignment", aggregate.ID())).Once()
	assignmentRepo.On("GetDeclinedPartnerIDs", mock.Anything, aggregate.ID()).
		Return([]kernel.UUID{}, nil).Once()
	partnerRepo.On("FindAvailable", mock.Anything, mock.Anything, mock.Anything).
		Return([]*partner.DeliveryPartner{candidate}, nil).Once()
	assignmentRepo.On("Add", mock.Anything, mock.AnythingOfType("*assignment.DeliveryAssignment")).
		Return(nil).Once()
	partnerRepo.On("Update", mock.Anything, candidate).Return(nil).Once()

	factory := new(MockAssignmentUoWFactory)
	factory.On("Create").Return(uow).Once()

	notifier := new(MockNotificationGateway)
	notifier.On("Dispatch", mock.Anything, candidate.ID(), mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	h := newAssignHandler(factory, notifier)
	err = h.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, 1, candidate.ActiveAssignments())
	assignmentRepo.AssertExpectations(t)
	partnerRepo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestAssignPartnerCommandHandler_Handle_DuplicateActiveAssignment(t *testing.T) {
	ctx := t.Context()
	aggregate := fixtureOrder(t)
	cmd, err := commands.NewAssignPartnerCommand(aggregate.ID(), nil)
	require.NoError(t, err)

	existing := fixtureAssignment(t, aggregate.ID(), kernel.NewUUID())

	orderRepo := new(MockOrderRepository)
	assignmentRepo := new(MockAssignmentRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("AssignmentRepository").Return(assignmentRepo)
	uow.On("Rollback", ctx).Return(nil).Once()
	orderRepo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once()
	assignmentRepo.On("GetActiveByOrder", mock.Anything, aggregate.ID()).Return(existing, nil).Once()

	factory := new(MockAssignmentUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := newAssignHandler(factory, new(MockNotificationGateway))
	err = h.Handle(ctx, cmd)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrInvalidState)
	assignmentRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestAssignPartnerCommandHandler_Handle_NoPartnerAvailable(t *testing.T) {
	ctx := t.Context()
	aggregate := fixtureOrder(t)
	cmd, err := commands.NewAssignPartnerCommand(aggregate.ID(), nil)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	assignmentRepo := new(MockAssignmentRepository)
	partnerRepo := new(MockPartnerRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("AssignmentRepository").Return(assignmentRepo)
	uow.On("PartnerRepository").Return(partnerRepo)
	uow.On("Rollback", ctx).Return(nil).Once()
	orderRepo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once()
	assignmentRepo.On("GetActiveByOrder", mock.Anything, aggregate.ID()).
		Return(nil, errs.NewObjectNotFoundError("assignment", aggregate.ID())).Once()
	assignmentRepo.On("GetDeclinedPartnerIDs", mock.Anything, aggregate.ID()).
		Return([]kernel.UUID{}, nil).Once()
	partnerRepo.On("FindAvailable", mock.Anything, mock.Anything, mock.Anything).
		Return([]*partner.DeliveryPartner{}, nil).Once()

	factory := new(MockAssignmentUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := newAssignHandler(factory, new(MockNotificationGateway))
	err = h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrNoPartnerAvailable)
}

func TestAssignPartnerCommandHandler_Handle_ExplicitPartner(t *testing.T) {
	ctx := t.Context()
	aggregate := fixtureOrder(t)
	chosen := fixturePartner(t, "Named")
	chosenID := chosen.ID()
	cmd, err := commands.NewAssignPartnerCommand(aggregate.ID(), &chosenID)
	require.NoError(t, err)

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
	orderRepo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once()
	assignmentRepo.On("GetActiveByOrder", mock.Anything, aggregate.ID()).
		Return(nil, errs.NewObjectNotFoundError("assignment", aggregate.ID())).Once()
	partnerRepo.On("Get", mock.Anything, chosenID).Return(chosen, nil).Once()
	assignmentRepo.On("Add", mock.Anything, mock.AnythingOfType("*assignment.DeliveryAssignment")).
		Return(nil).Once()
	partnerRepo.On("Update", mock.Anything, chosen).Return(nil).Once()

	factory := new(MockAssignmentUoWFactory)
	factory.On("Create").Return(uow).Once()

	notifier := new(MockNotificationGateway)
	notifier.On("Dispatch", mock.Anything, chosenID, mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	h := newAssignHandler(factory, notifier)
	err = h.Handle(ctx, cmd)
	require.NoError(t, err)
	partnerRepo.AssertNotCalled(t, "FindAvailable", mock.Anything, mock.Anything, mock.Anything)
}

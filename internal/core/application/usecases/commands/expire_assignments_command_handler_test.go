package commands_test

import (
	"testing"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/assignment"
	"orderflow/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExpireAssignmentsCommandHandler_Handle_CancelsAndRequeues(t *testing.T) {
	ctx := t.Context()
	assignee := fixturePartner(t, "Slow")
	require.NoError(t, assignee.TakeAssignment())
	orderID := fixtureOrder(t).ID()
	stale := fixtureAssignment(t, orderID, assignee.ID())

	cmd, err := commands.NewExpireAssignmentsCommand(2 * time.Minute)
	require.NoError(t, err)

	sweepRepo := new(MockAssignmentRepository)
	sweepUow := new(MockUoW)
	sweepUow.On("Begin", ctx).Return(nil).Once()
	sweepUow.On("AssignmentRepository").Return(sweepRepo)
	sweepUow.On("Rollback", ctx).Return(nil).Once()
	sweepRepo.On("GetAllAssignedBefore", mock.Anything, mock.AnythingOfType("time.Time")).
		Return([]*assignment.DeliveryAssignment{stale}, nil).Once()

	expireRepo := new(MockAssignmentRepository)
	partnerRepo := new(MockPartnerRepository)
	expireUow := new(MockUoW)
	expireUow.On("Begin", ctx).Return(nil).Once()
	expireUow.On("AssignmentRepository").Return(expireRepo)
	expireUow.On("PartnerRepository").Return(partnerRepo)
	expireUow.On("Commit", ctx).Return(nil).Once()
	expireUow.On("Rollback", ctx).Return(nil).Once()
	expireRepo.On("Get", mock.Anything, stale.ID()).Return(stale, nil).Once()
	expireRepo.On("Update", mock.Anything, stale).Return(nil).Once()
	partnerRepo.On("Get", mock.Anything, assignee.ID()).Return(assignee, nil).Once()
	partnerRepo.On("Update", mock.Anything, assignee).Return(nil).Once()

	factory := new(MockAssignmentUoWFactory)
	factory.On("Create").Return(sweepUow).Once()
	factory.On("Create").Return(expireUow).Once()

	requeuer := new(MockRequeuer)
	requeuer.On("Handle", mock.Anything, mock.MatchedBy(func(c commands.AssignPartnerCommand) bool {
		return c.OrderID() == orderID
	})).Return(nil).Once()

	h := commands.NewExpireAssignmentsCommandHandler(factory, requeuer)
	err = h.Handle(ctx, cmd)
	require.NoError(t, err)

	assert.Equal(t, assignment.StatusCancelled, stale.Status())
	assert.Equal(t, 0, assignee.ActiveAssignments())
	requeuer.AssertExpectations(t)
}

func TestExpireAssignmentsCommandHandler_Handle_SwallowsNoPartner(t *testing.T) {
	ctx := t.Context()
	assignee := fixturePartner(t, "Slow")
	require.NoError(t, assignee.TakeAssignment())
	stale := fixtureAssignment(t, fixtureOrder(t).ID(), assignee.ID())

	cmd, err := commands.NewExpireAssignmentsCommand(time.Minute)
	require.NoError(t, err)

	sweepRepo := new(MockAssignmentRepository)
	sweepUow := new(MockUoW)
	sweepUow.On("Begin", ctx).Return(nil).Once()
	sweepUow.On("AssignmentRepository").Return(sweepRepo)
	sweepUow.On("Rollback", ctx).Return(nil).Once()
	sweepRepo.On("GetAllAssignedBefore", mock.Anything, mock.AnythingOfType("time.Time")).
		Return([]*assignment.DeliveryAssignment{stale}, nil).Once()

	expireRepo := new(MockAssignmentRepository)
	partnerRepo := new(MockPartnerRepository)
	expireUow := new(MockUoW)
	expireUow.On("Begin", ctx).Return(nil).Once()
	expireUow.On("AssignmentRepository").Return(expireRepo)
	expireUow.On("PartnerRepository").Return(partnerRepo)
	expireUow.On("Commit", ctx).Return(nil).Once()
	expireUow.On("Rollback", ctx).Return(nil).Once()
	expireRepo.On("Get", mock.Anything, stale.ID()).Return(stale, nil).Once()
	expireRepo.On("Update", mock.Anything, stale).Return(nil).Once()
	partnerRepo.On("Get", mock.Anything, assignee.ID()).Return(assignee, nil).Once()
	partnerRepo.On("Update", mock.Anything, assignee).Return(nil).Once()

	factory := new(MockAssignmentUoWFactory)
	factory.On("Create").Return(sweepUow).Once()
	factory.On("Create").Return(expireUow).Once()

	requeuer := new(MockRequeuer)
	requeuer.On("Handle", mock.Anything, mock.Anything).Return(services.ErrNoPartnerAvailable).Once()

	h := commands.NewExpireAssignmentsCommandHandler(factory, requeuer)
	err = h.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, assignment.StatusCancelled, stale.Status())
}

func TestExpireAssignmentsCommandHandler_Handle_NothingStale(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewExpireAssignmentsCommand(time.Minute)
	require.NoError(t, err)

	sweepRepo := new(MockAssignmentRepository)
	sweepUow := new(MockUoW)
	sweepUow.On("Begin", ctx).Return(nil).Once()
	sweepUow.On("AssignmentRepository").Return(sweepRepo)
	sweepUow.On("Rollback", ctx).Return(nil).Once()
	sweepRepo.On("GetAllAssignedBefore", mock.Anything, mock.AnythingOfType("time.Time")).
		Return([]*assignment.DeliveryAssignment{}, nil).Once()

	factory := new(MockAssignmentUoWFactory)
	factory.On("Create").Return(sweepUow).Once()

	requeuer := new(MockRequeuer)
	h := commands.NewExpireAssignmentsCommandHandler(factory, requeuer)
	require.NoError(t, h.Handle(ctx, cmd))
	requeuer.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestNewExpireAssignmentsCommand_InvalidWindow(t *testing.T) {
	_, err := commands.NewExpireAssignmentsCommand(0)
	require.Error(t, err)
}

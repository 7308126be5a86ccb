package redis_test

import (
	"context"
	"testing"
	"time"

	redis_adapter "orderflow/internal/adapters/out/redis"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// OtpStoreIntegrationTestSuite exercises the Redis code store against a real
// Redis instance.
type OtpStoreIntegrationTestSuite struct {
	suite.Suite
	container testcontainers.Container
	client    *goredis.Client
	store     *redis_adapter.RedisOtpStore
}

func (suite *OtpStoreIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	suite.Require().NoError(err)
	suite.container = container

	host, err := container.Host(ctx)
	suite.Require().NoError(err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	suite.Require().NoError(err)

	suite.client = goredis.NewClient(&goredis.Options{Addr: host + ":" + port.Port()})
	suite.store = redis_adapter.NewRedisOtpStore(suite.client, 5*time.Minute)
}

func (suite *OtpStoreIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.client.FlushAll(context.Background()).Err())
}

func (suite *OtpStoreIntegrationTestSuite) TearDownSuite() {
	if suite.client != nil {
		suite.Require().NoError(suite.client.Close())
	}
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OtpStoreIntegrationTestSuite) TestVerify_CorrectCode_ConsumesCode() {
	ctx := context.Background()
	assignmentID := kernel.NewUUID()

	err := suite.store.Issue(ctx, assignmentID, ports.OtpStepPickup, "4821", time.Minute)
	suite.Require().NoError(err)

	err = suite.store.Verify(ctx, assignmentID, ports.OtpStepPickup, "4821")
	suite.Require().NoError(err)

	// Single use: the same code does not verify twice
	err = suite.store.Verify(ctx, assignmentID, ports.OtpStepPickup, "4821")
	suite.Require().Error(err)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OtpStoreIntegrationTestSuite) TestVerify_WrongCode_ReturnsMismatch() {
	ctx := context.Background()
	assignmentID := kernel.NewUUID()

	err := suite.store.Issue(ctx, assignmentID, ports.OtpStepDelivery, "4821", time.Minute)
	suite.Require().NoError(err)

	err = suite.store.Verify(ctx, assignmentID, ports.OtpStepDelivery, "0000")
	suite.Require().ErrorIs(err, ports.ErrOtpMismatch)

	// The real code still works after a single mismatch
	err = suite.store.Verify(ctx, assignmentID, ports.OtpStepDelivery, "4821")
	suite.Require().NoError(err)
}

func (suite *OtpStoreIntegrationTestSuite) TestVerify_ThreeMismatches_LocksStep() {
	ctx := context.Background()
	assignmentID := kernel.NewUUID()

	err := suite.store.Issue(ctx, assignmentID, ports.OtpStepPickup, "4821", time.Minute)
	suite.Require().NoError(err)

	suite.Require().ErrorIs(
		suite.store.Verify(ctx, assignmentID, ports.OtpStepPickup, "1111"), ports.ErrOtpMismatch)
	suite.Require().ErrorIs(
		suite.store.Verify(ctx, assignmentID, ports.OtpStepPickup, "2222"), ports.ErrOtpMismatch)
	suite.Require().ErrorIs(
		suite.store.Verify(ctx, assignmentID, ports.OtpStepPickup, "3333"), ports.ErrOtpLocked)

	// Locked even with the correct code
	err = suite.store.Verify(ctx, assignmentID, ports.OtpStepPickup, "4821")
	suite.Require().ErrorIs(err, ports.ErrOtpLocked)
}

func (suite *OtpStoreIntegrationTestSuite) TestIssue_ReplacesCodeAndClearsLock() {
	ctx := context.Background()
	assignmentID := kernel.NewUUID()

	suite.Require().NoError(
		suite.store.Issue(ctx, assignmentID, ports.OtpStepPickup, "4821", time.Minute))
	for _, wrong := range []string{"1111", "2222", "3333"} {
		_ = suite.store.Verify(ctx, assignmentID, ports.OtpStepPickup, wrong)
	}
	suite.Require().ErrorIs(
		suite.store.Verify(ctx, assignmentID, ports.OtpStepPickup, "4821"), ports.ErrOtpLocked)

	// Re-issuing resets the step entirely
	suite.Require().NoError(
		suite.store.Issue(ctx, assignmentID, ports.OtpStepPickup, "9944", time.Minute))
	suite.Require().NoError(
		suite.store.Verify(ctx, assignmentID, ports.OtpStepPickup, "9944"))
}

func (suite *OtpStoreIntegrationTestSuite) TestVerify_ExpiredCode_NotFound() {
	ctx := context.Background()
	assignmentID := kernel.NewUUID()

	err := suite.store.Issue(ctx, assignmentID, ports.OtpStepDelivery, "4821", 50*time.Millisecond)
	suite.Require().NoError(err)

	time.Sleep(100 * time.Millisecond)

	err = suite.store.Verify(ctx, assignmentID, ports.OtpStepDelivery, "4821")
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OtpStoreIntegrationTestSuite) TestSteps_AreIndependent() {
	ctx := context.Background()
	assignmentID := kernel.NewUUID()

	suite.Require().NoError(
		suite.store.Issue(ctx, assignmentID, ports.OtpStepPickup, "1111", time.Minute))
	suite.Require().NoError(
		suite.store.Issue(ctx, assignmentID, ports.OtpStepDelivery, "2222", time.Minute))

	suite.Require().NoError(suite.store.Verify(ctx, assignmentID, ports.OtpStepPickup, "1111"))
	suite.Require().NoError(suite.store.Verify(ctx, assignmentID, ports.OtpStepDelivery, "2222"))
}

func TestOtpStoreIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OtpStoreIntegrationTestSuite))
}

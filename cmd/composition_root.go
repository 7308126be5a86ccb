package cmd

import (
	"log/slog"

	httpin "orderflow/internal/adapters/in/http"
	"orderflow/internal/adapters/in/live"
	"orderflow/internal/adapters/out/dispatch"
	"orderflow/internal/adapters/out/kafka"
	"orderflow/internal/adapters/out/payments"
	"orderflow/internal/adapters/out/postgres"
	redisout "orderflow/internal/adapters/out/redis"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/jobs"
	"orderflow/internal/pkg/locker"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CompositionRoot wires every adapter and use case together. Shared
// infrastructure (kafka writers, the redis client, the in-process dispatch
// bus, the live hub) is built once here; handlers are built on demand.
type CompositionRoot struct {
	config Config
	gormDB *gorm.DB
	logger *slog.Logger

	uowFactory *postgres.GormUnitOfWorkFactory
	locks      *locker.KeyedMutex

	redisClient         *goredis.Client
	otpStore            *redisout.RedisOtpStore
	notificationGateway *kafka.KafkaNotificationGateway
	orderEventPublisher *kafka.KafkaOrderEventPublisher
	paymentAuthority    *payments.HTTPPaymentAuthority

	pubSub        *gochannel.GoChannel
	dispatchQueue *dispatch.WatermillDispatchQueue

	liveRegistry *live.ConnectionRegistry
	liveTopics   *live.TopicRouter
	hub          *live.Hub
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) *CompositionRoot {
	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
	})

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewSlogLogger(logger))

	liveRegistry := live.NewConnectionRegistry()
	liveTopics := live.NewTopicRouter()

	return &CompositionRoot{
		config: config,
		gormDB: gormDB,
		logger: logger,

		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		locks:      locker.NewKeyedMutex(),

		redisClient:         redisClient,
		otpStore:            redisout.NewRedisOtpStore(redisClient, config.OtpLockCoolDown),
		notificationGateway: kafka.NewKafkaNotificationGateway(config.KafkaHosts, config.KafkaNotificationTopic, logger),
		orderEventPublisher: kafka.NewKafkaOrderEventPublisher(config.KafkaHosts, config.KafkaOrderChangedTopic, logger),
		paymentAuthority:    payments.NewHTTPPaymentAuthority(config.PaymentServiceURL),

		pubSub:        pubSub,
		dispatchQueue: dispatch.NewWatermillDispatchQueue(pubSub, logger),

		liveRegistry: liveRegistry,
		liveTopics:   liveTopics,
		hub:          live.NewHub(liveRegistry, liveTopics, logger),
	}
}

// Close releases shared infrastructure. Call it on shutdown, after the HTTP
// server and the dispatch router have stopped.
func (c *CompositionRoot) Close() {
	if err := c.notificationGateway.Close(); err != nil {
		c.logger.Error("closing notification gateway", "error", err)
	}
	if err := c.orderEventPublisher.Close(); err != nil {
		c.logger.Error("closing order event publisher", "error", err)
	}
	if err := c.pubSub.Close(); err != nil {
		c.logger.Error("closing dispatch bus", "error", err)
	}
	if err := c.redisClient.Close(); err != nil {
		c.logger.Error("closing redis client", "error", err)
	}
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.AdmissionUoWFactory = FuncAdmissionUoWFactory(func() commands.AdmissionUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f, c.paymentAuthority, c.dispatchQueue)
}

func (c *CompositionRoot) CreateChangeOrderStatusCommandHandler() commands.ChangeOrderStatusCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewChangeOrderStatusCommandHandler(f, c.locks, c.dispatchQueue)
}

func (c *CompositionRoot) CreateAssignPartnerCommandHandler() commands.AssignPartnerCommandHandler {
	selector := services.NewPartnerSelector(services.SelectionPolicy{
		RadiusKm: c.config.PartnerSearchRadiusKm,
	})
	return commands.NewAssignPartnerCommandHandler(
		c.assignmentUoWFactory(), selector, c.locks, c.notificationGateway)
}

func (c *CompositionRoot) CreateAcceptAssignmentCommandHandler() commands.AcceptAssignmentCommandHandler {
	return commands.NewAcceptAssignmentCommandHandler(
		c.assignmentUoWFactory(), c.locks, c.otpStore, c.config.OtpTTL, c.notificationGateway)
}

func (c *CompositionRoot) CreateRejectAssignmentCommandHandler() commands.RejectAssignmentCommandHandler {
	return commands.NewRejectAssignmentCommandHandler(
		c.assignmentUoWFactory(), c.locks, c.assignmentRequeuer())
}

func (c *CompositionRoot) CreateVerifyPickupOtpCommandHandler() commands.VerifyPickupOtpCommandHandler {
	return commands.NewVerifyPickupOtpCommandHandler(
		c.assignmentUoWFactory(), c.locks, c.otpStore, c.dispatchQueue)
}

func (c *CompositionRoot) CreateVerifyDeliveryOtpCommandHandler() commands.VerifyDeliveryOtpCommandHandler {
	return commands.NewVerifyDeliveryOtpCommandHandler(
		c.assignmentUoWFactory(), c.locks, c.otpStore, c.dispatchQueue)
}

func (c *CompositionRoot) CreateUpdateLocationCommandHandler() commands.UpdateLocationCommandHandler {
	return commands.NewUpdateLocationCommandHandler(c.assignmentUoWFactory(), c.hub)
}

func (c *CompositionRoot) CreateExpireAssignmentsCommandHandler() commands.ExpireAssignmentsCommandHandler {
	return commands.NewExpireAssignmentsCommandHandler(c.assignmentUoWFactory(), c.assignmentRequeuer())
}

func (c *CompositionRoot) CreateCreatePartnerCommandHandler() commands.CreatePartnerCommandHandler {
	var f commands.PartnerUoWFactory = FuncPartnerUoWFactory(func() commands.PartnerUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreatePartnerCommandHandler(f)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrderHistoryQueryHandler() queries.GetOrderHistoryQueryHandler {
	return queries.NewGetOrderHistoryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetActiveAssignmentQueryHandler() queries.GetActiveAssignmentQueryHandler {
	return queries.NewGetActiveAssignmentQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetAvailablePartnersQueryHandler() queries.GetAvailablePartnersQueryHandler {
	return queries.NewGetAvailablePartnersQueryHandler(c.gormDB)
}

// CreateHTTPServer builds the REST server with every handler wired.
func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(
		c.CreateCreateOrderCommandHandler(),
		c.CreateChangeOrderStatusCommandHandler(),
		c.CreateAssignPartnerCommandHandler(),
		c.CreateAcceptAssignmentCommandHandler(),
		c.CreateRejectAssignmentCommandHandler(),
		c.CreateVerifyPickupOtpCommandHandler(),
		c.CreateVerifyDeliveryOtpCommandHandler(),
		c.CreateUpdateLocationCommandHandler(),
		c.CreateCreatePartnerCommandHandler(),
		c.CreateGetOrderQueryHandler(),
		c.CreateGetOrderHistoryQueryHandler(),
		c.CreateGetActiveAssignmentQueryHandler(),
		c.CreateGetAvailablePartnersQueryHandler(),
	)
}

// CreateLiveHandler builds the websocket endpoint handler.
func (c *CompositionRoot) CreateLiveHandler() *live.Handler {
	return live.NewHandler(
		live.NewAuthenticator(c.config.JWTSecret),
		c.liveRegistry,
		c.liveTopics,
		c.uowFactory,
		c.CreateUpdateLocationCommandHandler(),
		c.logger,
	)
}

// CreateDispatchRouter builds the post-commit fan-out router.
func (c *CompositionRoot) CreateDispatchRouter() (*message.Router, error) {
	return dispatch.NewDispatchRouter(c.logger, c.pubSub, c.uowFactory, dispatch.Fanout{
		Broadcaster: c.hub,
		Notifier:    c.notificationGateway,
		Publisher:   c.orderEventPublisher,
	})
}

// CreateJobManager builds the background job manager.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateExpireAssignmentsCommandHandler(),
		c.config.AssignmentAcceptanceWindow,
		c.logger,
	)
}

func (c *CompositionRoot) assignmentUoWFactory() commands.AssignmentUoWFactory {
	return FuncAssignmentUoWFactory(func() commands.AssignmentUoW {
		return c.uowFactory.Create()
	})
}

// assignmentRequeuer routes rejected and timed-out assignments back through
// the assignment handler, which excludes previous rejectors.
func (c *CompositionRoot) assignmentRequeuer() commands.AssignmentRequeuer {
	handler := c.CreateAssignPartnerCommandHandler()
	return &handler
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncAdmissionUoWFactory func() commands.AdmissionUoW

func (f FuncAdmissionUoWFactory) Create() commands.AdmissionUoW {
	return f()
}

type FuncPartnerUoWFactory func() commands.PartnerUoW

func (f FuncPartnerUoWFactory) Create() commands.PartnerUoW {
	return f()
}

type FuncAssignmentUoWFactory func() commands.AssignmentUoW

func (f FuncAssignmentUoWFactory) Create() commands.AssignmentUoW {
	return f()
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	httpadapter "courier-dispatch/internal/adapters/in/http"
	inkafka "courier-dispatch/internal/adapters/in/kafka"
	"courier-dispatch/internal/adapters/out/grpc/geo"
	outkafka "courier-dispatch/internal/adapters/out/kafka"
	"courier-dispatch/internal/adapters/out/postgres"
	"courier-dispatch/internal/adapters/out/postgres/outboxrepo"
	redisadapter "courier-dispatch/internal/adapters/out/redis"
	"courier-dispatch/internal/core/application/usecases/commands"
	"courier-dispatch/internal/core/application/usecases/queries"
	"courier-dispatch/internal/core/domain/model/kernel"
	"courier-dispatch/internal/core/domain/services"
	"courier-dispatch/internal/core/ports"
	"courier-dispatch/internal/jobs"
	"courier-dispatch/internal/metrics"
	"courier-dispatch/internal/pkg/resilience"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// CompositionRoot builds every adapter and use case from Config. Optional
// dependencies (geo, kafka, redis) are left out when not configured.
type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	rnd        kernel.RandomSource
	metrics    *metrics.Metrics
	logger     *slog.Logger

	geo     ports.GeoClient
	locker  jobs.Locker
	closers []func() error
}

func NewCompositionRoot(ctx context.Context, cfg Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		rnd:        kernel.GlobalRandom{},
		metrics:    metrics.New(),
		logger:     logger,
		locker:     jobs.NoopLocker{},
	}
	if cfg.RandomSeed != 0 {
		c.rnd = kernel.NewSeededRandom(cfg.RandomSeed)
	}

	if cfg.GeoServiceGrpcHost != "" {
		geoCfg := geo.DefaultConfig(cfg.GeoServiceGrpcHost)
		if cfg.GeoTimeout > 0 {
			geoCfg.Timeout = cfg.GeoTimeout
		}
		client, err := geo.NewClient(geoCfg, c.breaker("geo", geo.IsFailure), logger)
		if err != nil {
			return nil, err
		}
		c.geo = client
		c.closers = append(c.closers, client.Close)
	}

	if cfg.RedisAddr != "" {
		client, err := redisadapter.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		c.locker = redisadapter.NewJobLock(client)
		c.closers = append(c.closers, client.Close)
	}

	return c, nil
}

// Close releases the clients opened by NewCompositionRoot.
func (c *CompositionRoot) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}
	c.closers = nil
	return errors.Join(errs...)
}

func (c *CompositionRoot) Metrics() *metrics.Metrics {
	return c.metrics
}

func (c *CompositionRoot) breaker(name string, isFailure func(error) bool) *resilience.Breaker {
	return resilience.NewBreaker(resilience.DefaultSettings(name), isFailure, c.metrics.SetBreakerState, c.logger)
}

func (c *CompositionRoot) CreateAddStoragePlaceCommandHandler() commands.AddStoragePlaceCommandHandler {
	var f commands.CourierUoWFactory = FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
	return commands.NewAddStoragePlaceCommandHandler(f)
}

func (c *CompositionRoot) CreateCreateCourierCommandHandler() commands.CreateCourierCommandHandler {
	var f commands.CourierUoWFactory = FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateCourierCommandHandler(f, c.rnd)
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f, c.geo, c.rnd)
}

func (c *CompositionRoot) CreateAdvanceCouriersCommandHandler() commands.AdvanceCouriersCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewAdvanceCouriersCommandHandler(f, c.logger)
}

func (c *CompositionRoot) CreateAssignPendingOrdersCommandHandler() commands.AssignPendingOrdersCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewAssignPendingOrdersCommandHandler(f, services.NewDispatchService(), c.logger)
}

func (c *CompositionRoot) CreateGetAllCouriersQueryHandler() queries.GetAllCouriersQueryHandler {
	return queries.NewGetAllCouriersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetUncompletedOrdersQueryHandler() queries.GetUncompletedOrdersQueryHandler {
	return queries.NewGetUncompletedOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateHTTPRouter() (*echo.Echo, error) {
	server := httpadapter.NewServer(
		c.CreateCreateCourierCommandHandler(),
		c.CreateAddStoragePlaceCommandHandler(),
		c.CreateCreateOrderCommandHandler(),
		c.CreateGetAllCouriersQueryHandler(),
		c.CreateGetUncompletedOrdersQueryHandler(),
	)
	return httpadapter.NewRouter(httpadapter.RouterConfig{
		Server:  server,
		Health:  c.ping,
		Metrics: c.metrics.Handler(),
		Logger:  c.logger,
	})
}

func (c *CompositionRoot) ping(ctx context.Context) error {
	sqlDB, err := c.gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (c *CompositionRoot) jobOptions() jobs.Options {
	return jobs.Options{
		Locker:  c.locker,
		Timeout: c.cfg.JobTimeout,
		Metrics: c.metrics,
		Logger:  c.logger,
	}
}

func (c *CompositionRoot) CreateAssignmentJob() (*jobs.Job, error) {
	return jobs.NewCourierAssignmentJob(
		c.CreateAssignPendingOrdersCommandHandler(), c.cfg.AssignBatchSize, c.cfg.AssignSchedule, c.jobOptions())
}

func (c *CompositionRoot) CreateMovementJob() *jobs.Job {
	return jobs.NewCourierMovementJob(c.CreateAdvanceCouriersCommandHandler(), c.cfg.AdvanceSchedule, c.jobOptions())
}

func (c *CompositionRoot) CreateJobManager() (*jobs.JobManager, error) {
	assign, err := c.CreateAssignmentJob()
	if err != nil {
		return nil, err
	}
	return jobs.NewJobManager(c.logger, assign, c.CreateMovementJob()), nil
}

// KafkaEnabled reports whether brokers are configured.
func (c *CompositionRoot) KafkaEnabled() bool {
	return len(c.cfg.KafkaBrokers) > 0
}

func (c *CompositionRoot) CreateBasketConfirmedConsumer() *inkafka.BasketConfirmedConsumer {
	consumer := inkafka.NewBasketConfirmedConsumer(
		c.cfg.KafkaBrokers,
		c.cfg.KafkaConsumerGroup,
		c.cfg.KafkaBasketConfirmedTopic,
		c.CreateCreateOrderCommandHandler(),
		c.metrics,
		c.logger,
	)
	c.closers = append(c.closers, consumer.Close)
	return consumer
}

// CreateOutboxRelay returns the relay and the listener that wakes it up.
// Both have to run.
func (c *CompositionRoot) CreateOutboxRelay() (*jobs.OutboxRelay, *jobs.OutboxListener, error) {
	producer := outkafka.NewOrderStatusChangedProducer(
		c.cfg.KafkaBrokers,
		c.cfg.KafkaOrderChangedTopic,
		c.breaker("kafka-producer", nil),
		c.logger,
	)
	c.closers = append(c.closers, producer.Close)

	listener, err := jobs.NewOutboxListener(c.cfg.DSN(), outboxrepo.NotifyChannel, c.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("outbox listener: %w", err)
	}

	relay := jobs.NewOutboxRelay(
		outboxrepo.NewGormOutboxRepository(c.gormDB),
		producer,
		c.cfg.OutboxBatchSize,
		c.cfg.OutboxPollInterval,
		listener.Wakeups(),
		c.metrics,
		c.logger,
	)
	return relay, listener, nil
}

type FuncCourierUoWFactory func() commands.CourierUoW

func (f FuncCourierUoWFactory) Create() commands.CourierUoW {
	return f()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

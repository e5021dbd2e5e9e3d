package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"familycal/internal/application/common"
	"familycal/internal/application/query"
	"familycal/internal/application/recurrence"
	"familycal/internal/application/repo"
	"familycal/internal/application/service"
	"familycal/internal/application/use-cases"
	"familycal/internal/controllers/cron"
	"familycal/internal/controllers/handler"
	"familycal/internal/controllers/listener"
	"familycal/internal/transport/directory"
	"familycal/internal/transport/producer"
	"familycal/pkg/broker"
	"familycal/pkg/config"
	"familycal/pkg/db"
	"familycal/pkg/httpclient"
	"familycal/pkg/metrics"
)

// consumerRetryDelay пауза перед переподключением consumer group после ошибки
const consumerRetryDelay = 2 * time.Second

type App struct {
	ctx            context.Context
	conf           *config.Config
	logger         *zap.SugaredLogger
	httpServer     *fiber.App
	kafka          *broker.KafkaBroker
	cronController *cron.Controller
	httpClient     *httpclient.Client
	wg             sync.WaitGroup
}

func NewApp(
	ctx context.Context,
	conf *config.Config,
	logger *zap.SugaredLogger,
	postgres *db.Postgres,
	httpServer *fiber.App,
	kafkaBroker *broker.KafkaBroker,
	m *metrics.Metrics) (*App, error) {
	//Логируем версию приложения
	logger.Infof("Запуск Family Calendar Service версии: %s", common.Version)

	app := &App{
		ctx:        ctx,
		conf:       conf,
		logger:     logger,
		httpServer: httpServer,
		kafka:      kafkaBroker,
	}

	store := repo.NewRepo(postgres, logger, m)
	tx := repo.NewTransactions(store, logger)

	dir, err := app.newDirectory(store, m)
	if err != nil {
		return nil, err
	}

	generator := recurrence.NewGenerator(conf.Recurrence.MaxIterations)
	calendar := query.NewCoordinator(store, dir, generator, logger, m)
	kafkaProducer := producer.NewProducer(kafkaBroker, logger, conf.Broker.Kafka.MaxAttempts, m)

	srv := service.NewService(store, tx, kafkaProducer, dir, calendar, generator, logger, &conf.Relay, m)
	uc := use_cases.NewUseCase(srv, logger, conf)

	h := handler.NewEventHandler(uc, logger)
	handler.NewRouter(h, httpServer, conf, logger).RegisterRouter()

	// Инициализация cron контроллера
	app.cronController = cron.NewController(ctx, logger)
	if err := app.cronController.RegisterPurgeJob(uc, conf.Cron); err != nil {
		return nil, err
	}
	app.cronController.Start()

	app.wg.Add(2)
	go func() {
		defer app.wg.Done()
		uc.RunRelay(ctx)
	}()
	go func() {
		defer app.wg.Done()
		app.runConsumer(ctx, uc, m)
	}()

	return app, nil
}

// newDirectory источник связей родитель-ребёнок по directory.mode
func (a *App) newDirectory(store *repo.RepoImpl, m *metrics.Metrics) (service.UserDirectory, error) {
	switch a.conf.Directory.Mode {
	case config.DirectoryPostgres, "":
		a.logger.Info("user directory: postgres family_links")
		return store, nil
	case config.DirectoryHTTP:
		if a.conf.Directory.BaseURL == "" {
			return nil, errors.New("directory.baseUrl is required for http mode")
		}
		a.httpClient = httpclient.NewClient(a.conf.HTTPClient)
		client := httpclient.NewRetryClient(a.httpClient, a.conf.HTTPClient.MaxRetries, a.logger.Named("directory"))
		a.logger.Infof("user directory: %s", a.conf.Directory.BaseURL)
		return directory.NewHTTPDirectory(client, a.conf.Directory.BaseURL, a.conf.Directory.Timeout, a.logger, m), nil
	default:
		return nil, fmt.Errorf("unknown directory.mode %q", a.conf.Directory.Mode)
	}
}

func (a *App) Run() error {
	return a.httpServer.Listen(fmt.Sprintf(":%s", a.conf.Server.Port))
}

// Shutdown ожидает, что корневой ctx уже отменён: relay и consumer выходят по нему
func (a *App) Shutdown() error {
	// Останавливаем cron задачи
	if a.cronController != nil {
		a.cronController.Stop()
	}

	err := a.httpServer.Shutdown()

	a.wg.Wait()
	a.logger.Info("relay and consumer stopped")

	if a.httpClient != nil {
		a.httpClient.CloseIdle()
	}
	return errors.Join(err, a.kafka.Close())
}

func (a *App) runConsumer(ctx context.Context, usecase use_cases.UseCaser, m *metrics.Metrics) {
	a.logger.Infof("Запуск consumer для топика: %s", a.kafka.ConsumerTopic)

	kafkaBrokerConsumer := listener.NewKafkaBrokerConsumer(usecase, a.logger, m)

	for {
		err := a.kafka.ConsumerGroup.Consume(ctx, []string{a.kafka.ConsumerTopic}, kafkaBrokerConsumer)
		if ctx.Err() != nil {
			a.logger.Info("Consumer остановлен по контексту")
			return
		}
		if err != nil {
			a.logger.Errorf("Ошибка consumer: %v", err)
			if err := common.SleepCtx(ctx, consumerRetryDelay); err != nil {
				return
			}
		}
	}
}

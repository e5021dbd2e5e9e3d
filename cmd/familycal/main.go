package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"familycal/docs"
	"familycal/internal/application"
	"familycal/internal/application/common"
	"familycal/pkg/broker"
	"familycal/pkg/config"
	"familycal/pkg/db"
	"familycal/pkg/httpserver"
	"familycal/pkg/metrics"
	"familycal/pkg/observability"
)

// @title           Family Calendar Service API
// @version         1.0
// @description     Семейный календарь: события родителей и детей, повторяющиеся события, экспорт в iCalendar

// @BasePath /calendar/api

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conf, err := config.NewConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := observability.InitLogger(conf.LoggingLevel, common.Version)
	defer func() { _ = logger.Sync() }()

	logger.Infof("LOGGING_LEVEL = %s", conf.LoggingLevel)
	if strings.ToLower(conf.LoggingLevel) == "debug" {
		broker.EnableSaramaZapLogs(logger)
	}

	docs.SwaggerInfo.Host = conf.Server.SwaggerHost
	docs.SwaggerInfo.Schemes = []string{conf.Server.SwaggerSchema}

	m := metrics.New(prometheus.DefaultRegisterer)

	fiberServer := httpserver.NewFiber(conf.Server, m, prometheus.DefaultGatherer)

	store, err := db.NewPostgres(ctx, conf.Postgres, logger)
	if err != nil {
		logger.Fatal(err)
	}

	kafka, err := broker.NewKafkaBroker(conf.Broker.Kafka, logger)
	if err != nil {
		logger.Fatal(err)
	}

	server, err := application.NewApp(ctx, &conf, logger, store, fiberServer, kafka, m)
	if err != nil {
		logger.Fatal(err)
	}

	logger.Info("Family calendar service started successfully")
	logger.Infof("Server config: %+v", conf.Server)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Fatalf("error listening for server: %v", err)
				return
			}

			logger.Infof("server %v closed", conf.Server.Port)
		}
	}()

	//graceful shutdown
	osSignal := <-interrupt
	switch osSignal {
	case os.Interrupt:
		logger.Infof("%v Got SIGINT...", conf.Server.Port)
	case syscall.SIGTERM:
		logger.Infof("%v Got SIGTERM...", conf.Server.Port)
	}

	cancel()

	if err := server.Shutdown(); err != nil {
		logger.Errorf("server %v shutdown: %v", conf.Server.Port, err)
	}

	store.Close()
	logger.Infof("postgres db connection closed")

	logger.Infof("server shutdown %v done", conf.Server.Port)
}

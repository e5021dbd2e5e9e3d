package cron

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	use_cases "familycal/internal/application/use-cases"
	"familycal/pkg/config"
)

const defaultSpec = "@every 1h"

type Controller struct {
	scheduler *Scheduler
	logger    *zap.SugaredLogger
}

func NewController(ctx context.Context, logger *zap.SugaredLogger) *Controller {
	return &Controller{
		scheduler: NewScheduler(ctx, logger),
		logger:    logger,
	}
}

// RegisterPurgeJob регистрирует очистку устаревших событий.
// Schedule (cron с секундами, например "0 0 3 * * *") важнее Interval ("@every 1h").
func (c *Controller) RegisterPurgeJob(usecase use_cases.UseCaser, conf config.Cron) error {
	if conf.DaysToDelete <= 0 {
		c.logger.Warnf("cron.daysToDelete=%d, очистка событий отключена", conf.DaysToDelete)
		return nil
	}
	return c.register(NewPurgeJob(usecase, c.logger), specOf(conf))
}

func (c *Controller) register(job Job, spec string) error {
	entryID, err := c.scheduler.Add(spec, job)
	if err != nil {
		return fmt.Errorf("не удалось зарегистрировать задачу %s: %w", job.Name(), err)
	}
	c.logger.Infof("Задача %s зарегистрирована с ID: %d, расписание: %s", job.Name(), entryID, spec)
	return nil
}

func specOf(conf config.Cron) string {
	switch {
	case conf.Schedule != "":
		return conf.Schedule
	case conf.Interval != "":
		return conf.Interval
	default:
		return defaultSpec
	}
}

// Start запускает планировщик задач
func (c *Controller) Start() {
	c.logger.Info("Запуск планировщика cron задач")
	c.scheduler.Start()
}

// Stop останавливает планировщик задач
func (c *Controller) Stop() {
	c.logger.Info("Остановка планировщика cron задач")
	c.scheduler.Stop()
	c.logger.Info("Планировщик cron задач остановлен")
}

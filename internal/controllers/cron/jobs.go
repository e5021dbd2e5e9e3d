package cron

import (
	"context"
	"time"

	"go.uber.org/zap"

	use_cases "familycal/internal/application/use-cases"
)

// PurgeJob удаляет завершившиеся события старше cron.daysToDelete
type PurgeJob struct {
	usecase use_cases.UseCaser
	logger  *zap.SugaredLogger
}

func NewPurgeJob(usecase use_cases.UseCaser, logger *zap.SugaredLogger) *PurgeJob {
	return &PurgeJob{
		usecase: usecase,
		logger:  logger,
	}
}

func (j *PurgeJob) Name() string {
	return "purge_expired_events"
}

func (j *PurgeJob) Run(ctx context.Context) {
	start := time.Now()
	j.logger.Infof("Запуск задачи %s", j.Name())

	defer func() {
		if r := recover(); r != nil {
			j.logger.Errorf("Паника при выполнении задачи %s: %v", j.Name(), r)
		}
	}()

	j.usecase.DeleteExpiredEvents(ctx)
	j.logger.Infof("Задача %s завершена за %s", j.Name(), time.Since(start))
}

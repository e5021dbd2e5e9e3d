package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// jobTimeout верхняя граница одного запуска задачи
const jobTimeout = 55 * time.Minute

type Job interface {
	Name() string
	Run(ctx context.Context)
}

type Scheduler struct {
	c   *cron.Cron
	ctx context.Context
}

func NewScheduler(ctx context.Context, logger *zap.SugaredLogger) *Scheduler {
	cl := cronLogger{l: logger}
	// Формат с секундами плюс дескрипторы (@every, @daily, ...).
	// Пока предыдущий запуск не закончился, следующий пропускается.
	c := cron.New(
		cron.WithParser(cron.NewParser(
			cron.Second|cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor,
		)),
		cron.WithChain(cron.SkipIfStillRunning(cl)),
		cron.WithLogger(cl),
	)
	return &Scheduler{c: c, ctx: ctx}
}

func (s *Scheduler) Add(spec string, job Job) (cron.EntryID, error) {
	return s.c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
		defer cancel()
		job.Run(ctx)
	})
}

// Next время следующего запуска задачи
func (s *Scheduler) Next(id cron.EntryID) time.Time {
	return s.c.Entry(id).Next
}

func (s *Scheduler) Start() {
	s.c.Start()
}

// Stop ждёт завершения уже запущенных задач
func (s *Scheduler) Stop() {
	ctx := s.c.Stop()
	<-ctx.Done()
}

// cronLogger направляет логи планировщика в zap
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw("cron: "+msg, append(keysAndValues, "err", err)...)
}

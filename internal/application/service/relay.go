package service

import (
	"context"
	"sync"
	"time"

	"familycal/internal/application/common"
	"familycal/internal/application/entity"
)

// RelayEventRun забирает пачки из outbox и раздаёт их воркерам до отмены ctx
func (s *ServiceImpl) RelayEventRun(ctx context.Context) {
	s.logger.Infow("relay started", "workers", s.cfg.Workers, "batch", s.cfg.BatchSize, "lease", s.cfg.Lease.String())

	workers := max(s.cfg.Workers, 1)
	jobs := make(chan entity.OutboxEvent, max(s.cfg.BatchSize, 1)*2)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.worker(ctx, i, jobs)
		}()
	}
	defer wg.Wait()

	s.m.Go.InternalGoroutines.WithLabelValues("relay").Inc()
	defer s.m.Go.InternalGoroutines.WithLabelValues("relay").Dec()

	ticker := time.NewTicker(s.cfg.PollPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Infow("relay stopping")
			return
		case <-ticker.C:
			events, err := s.transactions.GetOperationsFromOutbox(ctx, *s.cfg)
			if err != nil {
				s.logger.Errorw("get operations from outbox failed", "err", err)
				continue
			}

			s.logger.Debugf("len jobs: %d, len events: %d", len(jobs), len(events))
			for _, e := range events {
				select {
				case jobs <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

func (s *ServiceImpl) worker(ctx context.Context, id int, jobs <-chan entity.OutboxEvent) {
	s.m.Go.InternalGoroutines.WithLabelValues("relay_worker").Inc()
	defer s.m.Go.InternalGoroutines.WithLabelValues("relay_worker").Dec()

	s.logger.Infow("worker started", "id", id)
	for {
		select {
		case <-ctx.Done():
			s.logger.Infow("worker stopping", "id", id)
			return
		case e := <-jobs:
			s.ProcessOne(ctx, id, e)
		}
	}
}

// ProcessOne отправляет одну запись outbox в Kafka и отмечает результат
func (s *ServiceImpl) ProcessOne(ctx context.Context, wid int, e entity.OutboxEvent) {
	s.logger.Debugf("[outbox %d, event: %s] relay-process started, workerID: %d", e.ID, e.AggregateID, wid)

	if err := s.kafkaProducer.ProduceMessage(ctx, e); err != nil {
		s.logger.Errorf("[outbox %d, event: %s] kafka send failed, err: %v", e.ID, e.AggregateID, err)
		// ctx может быть уже отменён, статус всё равно нужно записать
		if err := s.markOutboxFailedOrGaveUp(context.WithoutCancel(ctx), e); err != nil {
			s.logger.Errorf("[outbox %d] mark failed: %v", e.ID, err)
		}
		return
	}

	if err := s.transactions.MarkSent(ctx, e.ID); err != nil {
		// сообщение уже ушло, повторно слать нельзя
		s.logger.Errorf("[outbox %d, event: %s] mark sent failed, err: %v", e.ID, e.AggregateID, err)
		if err := s.repo.MarkGaveUp(context.WithoutCancel(ctx), e.ID); err != nil {
			s.logger.Errorf("[outbox %d] mark gave up failed: %v", e.ID, err)
		}
		s.relayed(e, "gave_up")
		return
	}

	s.relayed(e, "sent")
	s.logger.Infof("[outbox %d, event: %s] %s relayed", e.ID, e.AggregateID, e.EventType)
}

func (s *ServiceImpl) markOutboxFailedOrGaveUp(ctx context.Context, e entity.OutboxEvent) error {
	if e.LastAttempt(s.cfg.MaxAttempts) {
		s.logger.Warnf("[outbox %d] gave up after %d attempts", e.ID, e.Attempts+1)
		s.relayed(e, "gave_up")
		return s.repo.MarkGaveUp(ctx, e.ID)
	}
	s.relayed(e, "retry")
	next := s.now().UTC().Add(common.NextBackoffWithJitter(e.Attempts))
	return s.repo.MarkFailedWithBackoff(ctx, e.ID, next)
}

func (s *ServiceImpl) relayed(e entity.OutboxEvent, result string) {
	s.m.Outbox.RelayedTotal.WithLabelValues(string(e.EventType), result).Inc()
}

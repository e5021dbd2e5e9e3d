package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"familycal/internal/application/entity"
	"familycal/internal/application/query"
	"familycal/internal/application/recurrence"
	"familycal/internal/application/repo"
	"familycal/internal/application/scope"
	"familycal/internal/transport/producer"
	"familycal/pkg/config"
	"familycal/pkg/metrics"
)

type Service interface {
	CreateEvent(ctx context.Context, viewer entity.Viewer, in entity.EventInput) (*entity.Event, error)
	GetEvent(ctx context.Context, viewer entity.Viewer, id string) (*entity.Event, error)
	UpdateEvent(ctx context.Context, viewer entity.Viewer, id string, patch entity.EventPatch) (*entity.Event, error)
	DeleteEvent(ctx context.Context, viewer entity.Viewer, id string) error
	QueryCalendar(ctx context.Context, viewer entity.Viewer, w recurrence.Window) (query.Result, error)

	CreateCategory(ctx context.Context, viewer entity.Viewer, in entity.CategoryInput) (*entity.EventCategory, error)
	ListCategories(ctx context.Context, viewer entity.Viewer) ([]entity.EventCategory, error)
	UpdateCategory(ctx context.Context, viewer entity.Viewer, id string, patch entity.CategoryPatch) (*entity.EventCategory, error)
	DeleteCategory(ctx context.Context, viewer entity.Viewer, id string) error

	ApplyFamilyLink(ctx context.Context, msg entity.FamilyLinkMessage) error
	DeleteExpiredEvents(ctx context.Context, days *int) (int64, error)
	RelayEventRun(ctx context.Context)

	HealthCheck(ctx context.Context) entity.HealthStatus
}

// UserDirectory связи родитель-ребёнок и принадлежность к семье
type UserDirectory interface {
	scope.Directory
	IsParentOf(ctx context.Context, parentID, childID string) (bool, error)
	FamilyOf(ctx context.Context, userID string) (string, error)
	HealthCheck(ctx context.Context) error
}

// Calendar запрос календаря с разворачиванием повторяющихся событий
type Calendar interface {
	Query(ctx context.Context, viewer entity.Viewer, w recurrence.Window) (query.Result, error)
}

type ServiceImpl struct {
	repo          repo.Repo
	transactions  repo.Transactions
	kafkaProducer producer.Producer
	directory     UserDirectory
	calendar      Calendar
	generator     *recurrence.Generator
	logger        *zap.SugaredLogger
	cfg           *config.RelayConfig
	m             *metrics.Metrics
	now           func() time.Time
	newID         func() (string, error)
}

func NewService(
	repo repo.Repo,
	transactions repo.Transactions,
	kafkaProducer producer.Producer,
	directory UserDirectory,
	calendar Calendar,
	generator *recurrence.Generator,
	logger *zap.SugaredLogger,
	cfg *config.RelayConfig,
	m *metrics.Metrics) *ServiceImpl {
	return &ServiceImpl{
		repo:          repo,
		transactions:  transactions,
		kafkaProducer: kafkaProducer,
		directory:     directory,
		calendar:      calendar,
		generator:     generator,
		logger:        logger,
		cfg:           cfg,
		m:             m,
		now:           time.Now,
		newID:         newUUID,
	}
}

// HealthCheck проверяет БД, Kafka и каталог пользователей по отдельности
func (s *ServiceImpl) HealthCheck(ctx context.Context) entity.HealthStatus {
	status := entity.HealthStatus{
		Database:  s.repo.HealthCheck(ctx),
		Kafka:     s.kafkaProducer.HealthCheck(ctx),
		Directory: s.directory.HealthCheck(ctx),
	}
	if !status.Healthy() {
		s.logger.Warnf("health check failed: database: %v, kafka: %v, directory: %v",
			status.Database, status.Kafka, status.Directory)
	}
	return status
}

func (s *ServiceImpl) QueryCalendar(ctx context.Context, viewer entity.Viewer, w recurrence.Window) (query.Result, error) {
	s.logger.Debugf("[user: %s] QueryCalendar started", viewer.UserID)
	return s.calendar.Query(ctx, viewer, w)
}

func (s *ServiceImpl) ApplyFamilyLink(ctx context.Context, msg entity.FamilyLinkMessage) error {
	s.logger.Debugf("[parent: %s, child: %s] ApplyFamilyLink %s", msg.ParentID, msg.ChildID, msg.Action)
	return s.transactions.ApplyFamilyLink(ctx, msg)
}

// DeleteExpiredEvents чистит завершившиеся события, заодно и обработанные записи outbox
func (s *ServiceImpl) DeleteExpiredEvents(ctx context.Context, days *int) (int64, error) {
	s.logger.Debugf("DeleteExpiredEvents started")
	deleted, err := s.repo.DeleteExpiredEvents(ctx, days)
	if err != nil {
		return 0, err
	}
	s.m.Outbox.PurgedTotal.WithLabelValues("events").Add(float64(deleted))

	if days != nil {
		outbox, err := s.repo.DeleteProcessedOutbox(ctx, *days)
		if err != nil {
			s.logger.Warnf("purge processed outbox failed: %v", err)
		}
		s.m.Outbox.PurgedTotal.WithLabelValues("outbox").Add(float64(outbox))
	}
	return deleted, nil
}

// notification тело сообщения outbox
func (s *ServiceImpl) notification(kind entity.OutboxEventType, evt *entity.Event, actor entity.Viewer) ([]byte, error) {
	n := entity.Notification{
		Type:     kind,
		EventID:  evt.ID,
		FamilyID: evt.FamilyID,
		ActorID:  actor.UserID,
		SentAt:   s.now().UTC(),
	}
	if kind != entity.EventDeleted {
		n.Event = evt
	}

	payload, err := json.Marshal(n)
	if err != nil {
		s.logger.Errorf("[event: %s] failed to marshal notification: %v", evt.ID, err)
		return nil, fmt.Errorf("failed to marshal notification: %w", err)
	}
	return payload, nil
}

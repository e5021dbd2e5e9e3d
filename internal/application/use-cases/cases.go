package use_cases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"familycal/internal/application/entity"
	"familycal/internal/application/export"
	"familycal/internal/application/query"
	"familycal/internal/application/recurrence"
	"familycal/internal/application/service"
	"familycal/pkg/config"
	"familycal/pkg/validator"
)

// ErrMalformedMessage сообщение из Kafka не разбирается или не проходит валидацию,
// повторная доставка его не исправит
var ErrMalformedMessage = errors.New("malformed family link message")

type UseCaser interface {
	CreateEvent(ctx context.Context, viewer entity.Viewer, in entity.EventInput) (*entity.Event, error)
	GetEvent(ctx context.Context, viewer entity.Viewer, id string) (*entity.Event, error)
	UpdateEvent(ctx context.Context, viewer entity.Viewer, id string, patch entity.EventPatch) (*entity.Event, error)
	DeleteEvent(ctx context.Context, viewer entity.Viewer, id string) error
	QueryCalendar(ctx context.Context, viewer entity.Viewer, w recurrence.Window) (query.Result, error)
	ExportICS(ctx context.Context, viewer entity.Viewer, w recurrence.Window) ([]byte, query.Result, error)

	CreateCategory(ctx context.Context, viewer entity.Viewer, in entity.CategoryInput) (*entity.EventCategory, error)
	ListCategories(ctx context.Context, viewer entity.Viewer) ([]entity.EventCategory, error)
	UpdateCategory(ctx context.Context, viewer entity.Viewer, id string, patch entity.CategoryPatch) (*entity.EventCategory, error)
	DeleteCategory(ctx context.Context, viewer entity.Viewer, id string) error

	DeleteExpiredEvents(ctx context.Context)
	RunRelay(ctx context.Context)
	ConsumerMessage(ctx context.Context, msg []byte, msgTime time.Time) error

	HealthCheck(ctx context.Context) entity.HealthStatus
}

type UseCase struct {
	service service.Service
	logger  *zap.SugaredLogger
	conf    *config.Config
	now     func() time.Time
}

func NewUseCase(service service.Service, logger *zap.SugaredLogger, conf *config.Config) *UseCase {
	return &UseCase{
		service: service,
		logger:  logger,
		conf:    conf,
		now:     time.Now,
	}
}

func (u *UseCase) HealthCheck(ctx context.Context) entity.HealthStatus {
	return u.service.HealthCheck(ctx)
}

func (u *UseCase) CreateEvent(ctx context.Context, viewer entity.Viewer, in entity.EventInput) (*entity.Event, error) {
	u.logger.Debugf("[user: %s] CreateEvent started", viewer.UserID)
	return u.service.CreateEvent(ctx, viewer, in)
}

func (u *UseCase) GetEvent(ctx context.Context, viewer entity.Viewer, id string) (*entity.Event, error) {
	u.logger.Debugf("[event: %s] GetEvent started", id)
	return u.service.GetEvent(ctx, viewer, id)
}

func (u *UseCase) UpdateEvent(ctx context.Context, viewer entity.Viewer, id string, patch entity.EventPatch) (*entity.Event, error) {
	u.logger.Debugf("[event: %s] UpdateEvent started", id)
	return u.service.UpdateEvent(ctx, viewer, id, patch)
}

func (u *UseCase) DeleteEvent(ctx context.Context, viewer entity.Viewer, id string) error {
	u.logger.Debugf("[event: %s] DeleteEvent started", id)
	return u.service.DeleteEvent(ctx, viewer, id)
}

func (u *UseCase) QueryCalendar(ctx context.Context, viewer entity.Viewer, w recurrence.Window) (query.Result, error) {
	u.logger.Debugf("[user: %s, window: %s] QueryCalendar started", viewer.UserID, w)
	return u.service.QueryCalendar(ctx, viewer, w)
}

// ExportICS тот же запрос календаря, отрендеренный в iCalendar
func (u *UseCase) ExportICS(ctx context.Context, viewer entity.Viewer, w recurrence.Window) ([]byte, query.Result, error) {
	u.logger.Debugf("[user: %s, window: %s] ExportICS started", viewer.UserID, w)
	res, err := u.service.QueryCalendar(ctx, viewer, w)
	if err != nil {
		return nil, query.Result{}, err
	}
	body, err := export.ICS(res.Events, u.now())
	if err != nil {
		return nil, query.Result{}, err
	}
	return body, res, nil
}

func (u *UseCase) CreateCategory(ctx context.Context, viewer entity.Viewer, in entity.CategoryInput) (*entity.EventCategory, error) {
	return u.service.CreateCategory(ctx, viewer, in)
}

func (u *UseCase) ListCategories(ctx context.Context, viewer entity.Viewer) ([]entity.EventCategory, error) {
	return u.service.ListCategories(ctx, viewer)
}

func (u *UseCase) UpdateCategory(ctx context.Context, viewer entity.Viewer, id string, patch entity.CategoryPatch) (*entity.EventCategory, error) {
	u.logger.Debugf("[category: %s] UpdateCategory started", id)
	return u.service.UpdateCategory(ctx, viewer, id, patch)
}

func (u *UseCase) DeleteCategory(ctx context.Context, viewer entity.Viewer, id string) error {
	u.logger.Debugf("[category: %s] DeleteCategory started", id)
	return u.service.DeleteCategory(ctx, viewer, id)
}

func (u *UseCase) DeleteExpiredEvents(ctx context.Context) {
	days := u.conf.Cron.DaysToDelete
	u.logger.Infof("DeleteExpiredEvents called with daysToDelete=%d", days)
	n, err := u.service.DeleteExpiredEvents(ctx, &days)
	if err != nil {
		u.logger.Errorf("delete expired events failed: %v", err)
		return
	}
	u.logger.Infof("deleted %d expired events", n)
}

func (u *UseCase) RunRelay(ctx context.Context) {
	u.logger.Debug("relay started")
	u.service.RelayEventRun(ctx)
}

// ConsumerMessage применяет сообщение о связи родитель-ребёнок из сервиса пользователей
func (u *UseCase) ConsumerMessage(ctx context.Context, msg []byte, msgTime time.Time) error {
	u.logger.Debugf("consumer message: %s, time: %v", msg, msgTime)

	var link entity.FamilyLinkMessage
	if err := json.Unmarshal(msg, &link); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if err := validator.Validate.Struct(link); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	if err := u.service.ApplyFamilyLink(ctx, link); err != nil {
		return fmt.Errorf("apply family link: %w", err)
	}
	u.logger.Infof("[parent: %s, child: %s] family link %s applied", link.ParentID, link.ChildID, link.Action)
	return nil
}

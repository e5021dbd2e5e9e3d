package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"familycal/internal/application/entity"
	"familycal/internal/application/query"
	"familycal/internal/application/recurrence"
	"familycal/internal/application/scope"
	"familycal/pkg/config"
)

type repoMock struct{ mock.Mock }

func (m *repoMock) CreateEvent(ctx context.Context, evt *entity.Event) (bool, error) {
	a := m.Called(evt)
	return a.Bool(0), a.Error(1)
}

func (m *repoMock) GetEvent(ctx context.Context, id string) (*entity.Event, error) {
	a := m.Called(id)
	evt, _ := a.Get(0).(*entity.Event)
	return evt, a.Error(1)
}

func (m *repoMock) FindEventsVisibleTo(ctx context.Context, f scope.Filter, w recurrence.Window) ([]entity.Event, error) {
	a := m.Called(f, w)
	events, _ := a.Get(0).([]entity.Event)
	return events, a.Error(1)
}

func (m *repoMock) UpdateEvent(ctx context.Context, evt *entity.Event) error {
	return m.Called(evt).Error(0)
}

func (m *repoMock) DeleteEvent(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

func (m *repoMock) DeleteExpiredEvents(ctx context.Context, days *int) (int64, error) {
	a := m.Called(days)
	return a.Get(0).(int64), a.Error(1)
}

func (m *repoMock) CreateCategory(ctx context.Context, c *entity.EventCategory) error {
	return m.Called(c).Error(0)
}

func (m *repoMock) GetCategory(ctx context.Context, id string) (*entity.EventCategory, error) {
	a := m.Called(id)
	c, _ := a.Get(0).(*entity.EventCategory)
	return c, a.Error(1)
}

func (m *repoMock) ListCategories(ctx context.Context, familyID string) ([]entity.EventCategory, error) {
	a := m.Called(familyID)
	list, _ := a.Get(0).([]entity.EventCategory)
	return list, a.Error(1)
}

func (m *repoMock) UpdateCategory(ctx context.Context, c *entity.EventCategory) error {
	return m.Called(c).Error(0)
}

func (m *repoMock) DeleteCategory(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

func (m *repoMock) SaveFamilyMember(ctx context.Context, fm entity.FamilyMember) error {
	return m.Called(fm).Error(0)
}

func (m *repoMock) SaveFamilyLink(ctx context.Context, l entity.FamilyLink) error {
	return m.Called(l).Error(0)
}

func (m *repoMock) DeleteFamilyLink(ctx context.Context, parentID, childID string) error {
	return m.Called(parentID, childID).Error(0)
}

func (m *repoMock) ChildrenOf(ctx context.Context, parentID string) ([]string, error) {
	a := m.Called(parentID)
	children, _ := a.Get(0).([]string)
	return children, a.Error(1)
}

func (m *repoMock) IsParentOf(ctx context.Context, parentID, childID string) (bool, error) {
	a := m.Called(parentID, childID)
	return a.Bool(0), a.Error(1)
}

func (m *repoMock) FamilyOf(ctx context.Context, userID string) (string, error) {
	a := m.Called(userID)
	return a.String(0), a.Error(1)
}

func (m *repoMock) InsertOutbox(ctx context.Context, e *entity.OutboxEvent) error {
	return m.Called(e).Error(0)
}

func (m *repoMock) ReserveOutboxBatch(ctx context.Context, lease time.Duration, limit, maxAttempts int) ([]entity.OutboxEvent, error) {
	a := m.Called(lease, limit, maxAttempts)
	events, _ := a.Get(0).([]entity.OutboxEvent)
	return events, a.Error(1)
}

func (m *repoMock) MarkFailedWithBackoff(ctx context.Context, outboxID int, nextAttemptAt time.Time) error {
	return m.Called(outboxID, nextAttemptAt).Error(0)
}

func (m *repoMock) MarkGaveUp(ctx context.Context, outboxID int) error {
	return m.Called(outboxID).Error(0)
}

func (m *repoMock) DeleteProcessedOutbox(ctx context.Context, days int) (int64, error) {
	a := m.Called(days)
	return a.Get(0).(int64), a.Error(1)
}

func (m *repoMock) HealthCheck(ctx context.Context) error {
	return m.Called().Error(0)
}

type transactionsMock struct{ mock.Mock }

func (m *transactionsMock) CreateEvent(ctx context.Context, in *entity.Event, payload []byte) error {
	return m.Called(in, payload).Error(0)
}

func (m *transactionsMock) UpdateEvent(ctx context.Context, in *entity.Event, payload []byte) error {
	return m.Called(in, payload).Error(0)
}

func (m *transactionsMock) DeleteEvent(ctx context.Context, id string, payload []byte) error {
	return m.Called(id, payload).Error(0)
}

func (m *transactionsMock) ApplyFamilyLink(ctx context.Context, msg entity.FamilyLinkMessage) error {
	return m.Called(msg).Error(0)
}

func (m *transactionsMock) GetOperationsFromOutbox(ctx context.Context, c config.RelayConfig) ([]entity.OutboxEvent, error) {
	a := m.Called(c)
	events, _ := a.Get(0).([]entity.OutboxEvent)
	return events, a.Error(1)
}

func (m *transactionsMock) MarkSent(ctx context.Context, outboxID int) error {
	return m.Called(outboxID).Error(0)
}

type producerMock struct{ mock.Mock }

func (m *producerMock) ProduceMessage(ctx context.Context, e entity.OutboxEvent) error {
	return m.Called(e).Error(0)
}

func (m *producerMock) HealthCheck(ctx context.Context) error {
	return m.Called().Error(0)
}

type directoryMock struct{ mock.Mock }

func (m *directoryMock) ChildrenOf(ctx context.Context, parentID string) ([]string, error) {
	a := m.Called(parentID)
	children, _ := a.Get(0).([]string)
	return children, a.Error(1)
}

func (m *directoryMock) IsParentOf(ctx context.Context, parentID, childID string) (bool, error) {
	a := m.Called(parentID, childID)
	return a.Bool(0), a.Error(1)
}

func (m *directoryMock) FamilyOf(ctx context.Context, userID string) (string, error) {
	a := m.Called(userID)
	return a.String(0), a.Error(1)
}

func (m *directoryMock) HealthCheck(ctx context.Context) error {
	return m.Called().Error(0)
}

type calendarMock struct{ mock.Mock }

func (m *calendarMock) Query(ctx context.Context, viewer entity.Viewer, w recurrence.Window) (query.Result, error) {
	a := m.Called(viewer, w)
	return a.Get(0).(query.Result), a.Error(1)
}

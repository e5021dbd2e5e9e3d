package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"familycal/internal/application/entity"
	"familycal/internal/application/recurrence"
	"familycal/internal/application/scope"
	"familycal/pkg/db"
	"familycal/pkg/metrics"
)

const (
	defaultDeleteDays = 365
)

type Repo interface {
	CreateEvent(ctx context.Context, evt *entity.Event) (bool, error)
	GetEvent(ctx context.Context, id string) (*entity.Event, error)
	FindEventsVisibleTo(ctx context.Context, f scope.Filter, w recurrence.Window) ([]entity.Event, error)
	UpdateEvent(ctx context.Context, evt *entity.Event) error
	DeleteEvent(ctx context.Context, id string) error
	DeleteExpiredEvents(ctx context.Context, days *int) (int64, error)

	CreateCategory(ctx context.Context, c *entity.EventCategory) error
	GetCategory(ctx context.Context, id string) (*entity.EventCategory, error)
	ListCategories(ctx context.Context, familyID string) ([]entity.EventCategory, error)
	UpdateCategory(ctx context.Context, c *entity.EventCategory) error
	DeleteCategory(ctx context.Context, id string) error

	SaveFamilyMember(ctx context.Context, m entity.FamilyMember) error
	SaveFamilyLink(ctx context.Context, l entity.FamilyLink) error
	DeleteFamilyLink(ctx context.Context, parentID, childID string) error
	ChildrenOf(ctx context.Context, parentID string) ([]string, error)
	IsParentOf(ctx context.Context, parentID, childID string) (bool, error)
	FamilyOf(ctx context.Context, userID string) (string, error)

	InsertOutbox(ctx context.Context, e *entity.OutboxEvent) error
	ReserveOutboxBatch(ctx context.Context, lease time.Duration, limit, maxAttempts int) ([]entity.OutboxEvent, error)
	MarkFailedWithBackoff(ctx context.Context, outboxID int, nextAttemptAt time.Time) error
	MarkGaveUp(ctx context.Context, outboxID int) error
	DeleteProcessedOutbox(ctx context.Context, days int) (int64, error)

	HealthCheck(ctx context.Context) error
}

type RepoImpl struct {
	db     db.DB
	logger *zap.SugaredLogger
	m      *metrics.Metrics
}

func NewRepo(db db.DB, logger *zap.SugaredLogger, m *metrics.Metrics) *RepoImpl {
	return &RepoImpl{db: db, logger: logger, m: m}
}

func (r *RepoImpl) HealthCheck(ctx context.Context) error {
	// Проверяем доступность БД через простой запрос
	var result int
	err := r.db.QueryRow(ctx, "SELECT 1").Scan(&result)
	if err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// observe учитывает запрос в метриках репозитория, вызывать через defer с итоговой ошибкой
func (r *RepoImpl) observe(op, name string) func(err error) {
	started := time.Now()
	r.m.Repo.InFlight.WithLabelValues(op, name).Inc()

	return func(err error) {
		r.m.Repo.InFlight.WithLabelValues(op, name).Dec()

		result, kind := "ok", "none"
		if err != nil {
			result, kind = "error", errorKind(err)
		}
		r.m.Repo.RequestsTotal.WithLabelValues(op, name, result, kind).Inc()
		r.m.Repo.DurationSeconds.WithLabelValues(op, name, result).Observe(time.Since(started).Seconds())
	}
}

func errorKind(err error) string {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &pgErr):
		return "pg_" + pgErr.Code
	default:
		return "other"
	}
}

// isDuplicateKeyError проверяет, является ли ошибка ошибкой дубликата ключа (SQLSTATE 23505)
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isInvalidTextError строка не приводится к uuid (SQLSTATE 22P02)
func isInvalidTextError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

// isForeignKeyError ссылка на несуществующую запись (SQLSTATE 23503)
func isForeignKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

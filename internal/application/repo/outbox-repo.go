package repo

import (
	"context"
	"fmt"
	"time"

	"familycal/internal/application/common"
	"familycal/internal/application/entity"
)

func (r *RepoImpl) InsertOutbox(ctx context.Context, e *entity.OutboxEvent) (err error) {
	defer func(done func(error)) { done(err) }(r.observe("insert", "outbox"))
	r.logger.Debugf("[event: %s] InsertOutbox %s", e.AggregateID, e.EventType)

	_, err = r.db.Exec(ctx, insertOutboxQuery,
		e.AggregateID, e.AggregateType, e.EventType, []byte(e.Payload), string(e.Status),
	)
	if err != nil {
		return fmt.Errorf("insert outbox_event: %w", err)
	}

	return nil
}

func (r *RepoImpl) ReserveOutboxBatch(ctx context.Context, lease time.Duration, limit, maxAttempts int) (res []entity.OutboxEvent, err error) {
	defer func(done func(error)) { done(err) }(r.observe("update", "outbox_reserve"))

	rows, err := r.db.Query(ctx, reserveBatchSQL, common.PgInterval(lease), limit, maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("reserve outbox batch: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e entity.OutboxEvent
		var status string
		if err := rows.Scan(
			&e.ID, &e.AggregateID, &e.AggregateType, &e.EventType,
			&e.Payload, &status, &e.Attempts, &e.NextAttemptAt, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan reserved outbox: %w", err)
		}
		e.Status = entity.OutboxStatus(status)
		res = append(res, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reserve rows err: %w", err)
	}

	if len(res) > 0 {
		r.logger.Debugf("[lease: %s, limit: %d] reserved %d outbox rows", lease, limit, len(res))
	}
	return res, nil
}

func (r *RepoImpl) MarkFailedWithBackoff(ctx context.Context, outboxID int, nextAttemptAt time.Time) (err error) {
	defer func(done func(error)) { done(err) }(r.observe("update", "outbox_failed"))
	return r.markOutbox(ctx, markFailedSQL, outboxID, entity.OutboxFailed, nextAttemptAt)
}

func (r *RepoImpl) MarkGaveUp(ctx context.Context, outboxID int) (err error) {
	defer func(done func(error)) { done(err) }(r.observe("update", "outbox_gave_up"))
	return r.markOutbox(ctx, markGaveUpSQL, outboxID, entity.OutboxGaveUp)
}

func (r *RepoImpl) markOutbox(ctx context.Context, query string, outboxID int, status entity.OutboxStatus, args ...any) error {
	result, err := r.db.Exec(ctx, query, append([]any{outboxID, status}, args...)...)
	if err != nil {
		return fmt.Errorf("outbox mark %s: %w", status, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("[ID %d] outbox not found", outboxID)
	}
	return nil
}

// DeleteProcessedOutbox удаляет отправленные и брошенные записи outbox старше days дней
func (r *RepoImpl) DeleteProcessedOutbox(ctx context.Context, days int) (deleted int64, err error) {
	if days <= 0 {
		return 0, nil
	}
	defer func(done func(error)) { done(err) }(r.observe("delete", "processed_outbox"))

	result, err := r.db.Exec(ctx, deleteProcessedOutboxSQL, days, entity.OutboxSent, entity.OutboxGaveUp)
	if err != nil {
		return 0, fmt.Errorf("delete processed outbox: %w", err)
	}
	deleted = result.RowsAffected()
	r.logger.Infof("deleted %d processed outbox rows (older than %d days)", deleted, days)
	return deleted, nil
}

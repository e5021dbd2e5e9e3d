package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/mo"

	"familycal/internal/appers"
	"familycal/internal/application/entity"
	"familycal/internal/application/recurrence"
	"familycal/internal/application/scope"
)

func (r *RepoImpl) CreateEvent(ctx context.Context, evt *entity.Event) (inserted bool, err error) {
	defer func(done func(error)) { done(err) }(r.observe("insert", "event"))
	r.logger.Debugf("[event: %s] start inserting into DB", evt.ID)

	err = r.db.QueryRow(ctx, createEvent,
		evt.ID, evt.FamilyID, evt.Title, evt.Description, evt.Location, evt.StartTime, evt.EndTime,
		evt.AssignedToID, evt.EventCategoryID, evt.CreatedByID,
		evt.IsRecurring, evt.RecurrenceRule, evt.RecurringEndDate).Scan(&evt.CreatedAt, &evt.UpdatedAt)

	switch {
	case err == nil:
		r.logger.Debugf("[event: %s] inserted into DB successfully", evt.ID)
		return true, nil
	case errors.Is(err, pgx.ErrNoRows):
		// ON CONFLICT DO NOTHING вернул 0 строк - событие уже существует
		r.logger.Warnf("[event: %s] inserting event: already exists (conflict)", evt.ID)
		return false, appers.ErrEventAlreadyExists
	case isDuplicateKeyError(err):
		r.logger.Warnf("[event: %s] inserting event: already exists (duplicate key)", evt.ID)
		return false, appers.ErrEventAlreadyExists
	case isForeignKeyError(err):
		r.logger.Warnf("[event: %s] inserting event: category does not exist", evt.ID)
		return false, appers.ErrCategoryNotFound
	default:
		r.logger.Errorf("[event: %s] error inserting into DB: %v", evt.ID, err)
		return false, fmt.Errorf("error inserting into DB: %w", err)
	}
}

func (r *RepoImpl) GetEvent(ctx context.Context, id string) (evt *entity.Event, err error) {
	defer func(done func(error)) { done(err) }(r.observe("select", "event"))
	r.logger.Debugf("[event: %s] start getting from DB", id)

	e, err := scanEvent(r.db.QueryRow(ctx, getEventByID, id))
	switch {
	case err == nil:
		return &e, nil
	case errors.Is(err, pgx.ErrNoRows), isInvalidTextError(err):
		return nil, appers.ErrEventNotFound
	default:
		r.logger.Errorf("[event: %s] error getting from DB: %v", id, err)
		return nil, fmt.Errorf("error getting from DB: %w", err)
	}
}

// FindEventsVisibleTo выборка кандидатов для календаря.
// Фильтр по создателю/исполнителю и окну сужает выборку, окончательная проверка за координатором.
func (r *RepoImpl) FindEventsVisibleTo(ctx context.Context, f scope.Filter, w recurrence.Window) (events []entity.Event, err error) {
	defer func(done func(error)) { done(err) }(r.observe("select", "events_visible"))
	r.logger.Debugf("[creators: %v, assignees: %v] start getting from DB", f.CreatorIDs, f.AssigneeIDs)

	rows, err := r.db.Query(ctx, findEventsVisibleTo,
		f.CreatorIDs, f.AssigneeIDs, optionalTime(w.Start), optionalTime(w.End))
	if err != nil {
		r.logger.Errorf("error getting visible events from DB: %v", err)
		return nil, fmt.Errorf("error getting from DB: %w", err)
	}
	defer rows.Close()

	events = make([]entity.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("visible events rows err: %w", err)
	}

	r.logger.Debugf("got %d candidate events from DB", len(events))
	return events, nil
}

func (r *RepoImpl) UpdateEvent(ctx context.Context, evt *entity.Event) (err error) {
	defer func(done func(error)) { done(err) }(r.observe("update", "event"))
	r.logger.Debugf("[event: %s] start updating in DB", evt.ID)

	err = r.db.QueryRow(ctx, updateEvent,
		evt.ID, evt.Title, evt.Description, evt.Location, evt.StartTime, evt.EndTime,
		evt.AssignedToID, evt.EventCategoryID,
		evt.IsRecurring, evt.RecurrenceRule, evt.RecurringEndDate).Scan(&evt.UpdatedAt)

	switch {
	case err == nil:
		r.logger.Debugf("[event: %s] updated in DB successfully", evt.ID)
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		r.logger.Warnf("[event: %s] no rows updated", evt.ID)
		return appers.ErrEventNotFound
	case isForeignKeyError(err):
		return appers.ErrCategoryNotFound
	default:
		r.logger.Errorf("[event: %s] error updating in DB: %v", evt.ID, err)
		return fmt.Errorf("error updating in DB: %w", err)
	}
}

func (r *RepoImpl) DeleteEvent(ctx context.Context, id string) (err error) {
	defer func(done func(error)) { done(err) }(r.observe("delete", "event"))
	r.logger.Debugf("[event: %s] start deleting from DB", id)

	result, err := r.db.Exec(ctx, deleteEvent, id)
	if err != nil {
		r.logger.Errorf("[event: %s] error deleting from DB: %v", id, err)
		return fmt.Errorf("error deleting from DB: %w", err)
	}
	if result.RowsAffected() == 0 {
		r.logger.Warnf("[event: %s] no rows deleted", id)
		return appers.ErrEventNotFound
	}
	r.logger.Debugf("[event: %s] deleted from DB successfully", id)
	return nil
}

// DeleteExpiredEvents удаляет прошедшие разовые события и завершившиеся серии старше days дней
func (r *RepoImpl) DeleteExpiredEvents(ctx context.Context, days *int) (deleted int64, err error) {
	d := defaultDeleteDays
	if days != nil && *days > 0 {
		d = *days
	} else if days != nil && *days == 0 {
		r.logger.Warnf("daysToDelete is 0, skipping deletion to prevent deleting all events")
		return 0, nil
	}

	defer func(done func(error)) { done(err) }(r.observe("delete", "expired_events"))
	r.logger.Infof("start deleting expired events from DB: ended more than %d days ago", d)

	result, err := r.db.Exec(ctx, deleteExpiredEvents, d)
	if err != nil {
		r.logger.Errorf("error deleting expired events from DB: %v", err)
		return 0, fmt.Errorf("error deleting expired events from DB: %w", err)
	}

	deleted = result.RowsAffected()
	r.logger.Infof("deleted %d expired events from DB (older than %d days)", deleted, d)
	return deleted, nil
}

func scanEvent(row pgx.Row) (entity.Event, error) {
	var (
		e                         entity.Event
		categoryName, categoryHex *string
		assigneeName, creatorName *string
	)
	err := row.Scan(
		&e.ID, &e.FamilyID, &e.Title, &e.Description, &e.Location, &e.StartTime, &e.EndTime,
		&e.AssignedToID, &e.EventCategoryID, &e.CreatedByID,
		&e.IsRecurring, &e.RecurrenceRule, &e.RecurringEndDate, &e.CreatedAt, &e.UpdatedAt,
		&categoryName, &categoryHex, &assigneeName, &creatorName,
	)
	if err != nil {
		return entity.Event{}, err
	}

	e.StartTime = e.StartTime.UTC()
	e.EndTime = e.EndTime.UTC()
	if e.RecurringEndDate != nil {
		d := e.RecurringEndDate.UTC()
		e.RecurringEndDate = &d
	}

	if e.EventCategoryID != nil && categoryName != nil {
		e.Category = &entity.CategoryRef{
			CategoryID: *e.EventCategoryID,
			Name:       *categoryName,
			Color:      deref(categoryHex),
		}
	}
	if e.AssignedToID != nil {
		e.AssignedTo = &entity.UserRef{UserID: *e.AssignedToID, DisplayName: deref(assigneeName)}
	}
	e.CreatedBy = &entity.UserRef{UserID: e.CreatedByID, DisplayName: deref(creatorName)}

	return e, nil
}

func optionalTime(o mo.Option[time.Time]) any {
	if t, ok := o.Get(); ok {
		return t
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package repo

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"familycal/internal/appers"
	"familycal/internal/application/entity"
	"familycal/internal/application/recurrence"
	"familycal/internal/application/scope"
	"familycal/pkg/metrics"
)

type dbMock struct {
	mock.Mock
}

func (m *dbMock) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	a := m.Called(sql, args)
	return a.Get(0).(pgconn.CommandTag), a.Error(1)
}

func (m *dbMock) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	a := m.Called(sql, args)
	if v := a.Get(0); v != nil {
		return v.(pgx.Rows), a.Error(1)
	}
	return nil, a.Error(1)
}

func (m *dbMock) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	a := m.Called(sql, args)
	return a.Get(0).(pgx.Row)
}

func (m *dbMock) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *dbMock) Close() {}

// fakeRow раскладывает values по указателям в Scan
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return errors.New("fakeRow: column count mismatch")
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		if r.values[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		target.Set(reflect.ValueOf(r.values[i]))
	}
	return nil
}

func newTestRepo(t *testing.T) (*RepoImpl, *dbMock, *metrics.Metrics) {
	t.Helper()
	db := &dbMock{}
	m := metrics.New(prometheus.NewRegistry())
	return NewRepo(db, zap.NewNop().Sugar(), m), db, m
}

func strp(s string) *string { return &s }

const eventID = "3b7a3c1e-2f57-4a43-9f4c-0d3c3f0d8d11"

func TestDeleteExpiredEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("zero days is a no-op", func(t *testing.T) {
		r, db, _ := newTestRepo(t)
		zero := 0
		n, err := r.DeleteExpiredEvents(ctx, &zero)
		require.NoError(t, err)
		assert.Zero(t, n)
		db.AssertNotCalled(t, "Exec", mock.Anything, mock.Anything)
	})

	t.Run("default retention", func(t *testing.T) {
		r, db, _ := newTestRepo(t)
		db.On("Exec", deleteExpiredEvents, []any{defaultDeleteDays}).Return(pgconn.NewCommandTag("DELETE 3"), nil)

		n, err := r.DeleteExpiredEvents(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		db.AssertExpectations(t)
	})

	t.Run("explicit days", func(t *testing.T) {
		r, db, _ := newTestRepo(t)
		days := 30
		db.On("Exec", deleteExpiredEvents, []any{30}).Return(pgconn.NewCommandTag("DELETE 0"), nil)

		n, err := r.DeleteExpiredEvents(ctx, &days)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestDeleteEvent(t *testing.T) {
	ctx := context.Background()
	r, db, m := newTestRepo(t)
	db.On("Exec", deleteEvent, []any{"missing"}).Return(pgconn.NewCommandTag("DELETE 0"), nil)
	db.On("Exec", deleteEvent, []any{eventID}).Return(pgconn.NewCommandTag("DELETE 1"), nil)

	require.ErrorIs(t, r.DeleteEvent(ctx, "missing"), appers.ErrEventNotFound)
	require.NoError(t, r.DeleteEvent(ctx, eventID))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Repo.RequestsTotal.WithLabelValues("delete", "event", "ok", "none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Repo.RequestsTotal.WithLabelValues("delete", "event", "error", "other")))
	assert.Zero(t, testutil.ToFloat64(m.Repo.InFlight.WithLabelValues("delete", "event")))
}

func TestOutboxMarks(t *testing.T) {
	ctx := context.Background()
	r, db, m := newTestRepo(t)
	next := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	db.On("Exec", markFailedSQL, []any{7, entity.OutboxFailed, next}).Return(pgconn.NewCommandTag("UPDATE 1"), nil)
	db.On("Exec", markGaveUpSQL, []any{8, entity.OutboxGaveUp}).Return(pgconn.NewCommandTag("UPDATE 0"), nil)

	require.NoError(t, r.MarkFailedWithBackoff(ctx, 7, next))
	require.Error(t, r.MarkGaveUp(ctx, 8))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Repo.RequestsTotal.WithLabelValues("update", "outbox_failed", "ok", "none")))
	db.AssertExpectations(t)
}

func TestDeleteProcessedOutbox(t *testing.T) {
	ctx := context.Background()
	r, db, _ := newTestRepo(t)
	db.On("Exec", deleteProcessedOutboxSQL, []any{14, entity.OutboxSent, entity.OutboxGaveUp}).
		Return(pgconn.NewCommandTag("DELETE 12"), nil)

	n, err := r.DeleteProcessedOutbox(ctx, 14)
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)

	n, err = r.DeleteProcessedOutbox(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, n)
	db.AssertNumberOfCalls(t, "Exec", 1)
}

func TestCreateEventConflicts(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"on conflict do nothing", pgx.ErrNoRows, appers.ErrEventAlreadyExists},
		{"duplicate key", &pgconn.PgError{Code: "23505"}, appers.ErrEventAlreadyExists},
		{"unknown category", &pgconn.PgError{Code: "23503"}, appers.ErrCategoryNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, db, _ := newTestRepo(t)
			db.On("QueryRow", createEvent, mock.Anything).Return(fakeRow{err: tt.err})

			inserted, err := r.CreateEvent(ctx, &entity.Event{ID: eventID})
			assert.False(t, inserted)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGetEventScansAssociations(t *testing.T) {
	ctx := context.Background()
	r, db, _ := newTestRepo(t)

	start := time.Date(2024, 1, 2, 12, 0, 0, 0, time.FixedZone("MSK", 3*3600))
	end := start.Add(30 * time.Minute)
	created := time.Date(2023, 12, 20, 10, 0, 0, 0, time.UTC)
	until := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	db.On("QueryRow", getEventByID, []any{eventID}).Return(fakeRow{values: []any{
		eventID, "fam", "Бассейн", strp("взять шапочку"), (*string)(nil), start, end,
		strp("kid"), strp("cat"), "mom",
		true, strp("FREQ=WEEKLY;BYDAY=TU"), &until, created, created,
		strp("Спорт"), strp("#0af"), strp("Петя"), (*string)(nil),
	}})

	e, err := r.GetEvent(ctx, eventID)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC), e.StartTime)
	assert.Equal(t, time.UTC, e.StartTime.Location())
	assert.Equal(t, &entity.CategoryRef{CategoryID: "cat", Name: "Спорт", Color: "#0af"}, e.Category)
	assert.Equal(t, &entity.UserRef{UserID: "kid", DisplayName: "Петя"}, e.AssignedTo)
	assert.Equal(t, &entity.UserRef{UserID: "mom"}, e.CreatedBy)
	require.NotNil(t, e.RecurringEndDate)
	assert.Equal(t, until, *e.RecurringEndDate)
	assert.Nil(t, e.Location)
}

func TestGetEventNotFound(t *testing.T) {
	ctx := context.Background()
	r, db, _ := newTestRepo(t)
	db.On("QueryRow", getEventByID, []any{"nope"}).Return(fakeRow{err: pgx.ErrNoRows})
	db.On("QueryRow", getEventByID, []any{"not-a-uuid"}).Return(fakeRow{err: &pgconn.PgError{Code: "22P02"}})

	_, err := r.GetEvent(ctx, "nope")
	require.ErrorIs(t, err, appers.ErrEventNotFound)
	_, err = r.GetEvent(ctx, "not-a-uuid")
	require.ErrorIs(t, err, appers.ErrEventNotFound)
}

func TestFindEventsVisibleToPassesWindow(t *testing.T) {
	ctx := context.Background()
	r, db, _ := newTestRepo(t)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	w := recurrence.Window{Start: mo.Some(start), End: mo.None[time.Time]()}
	boom := errors.New("boom")
	db.On("Query", findEventsVisibleTo, []any{[]string{"kid"}, []string{"kid"}, start, nil}).Return(nil, boom)

	_, err := r.FindEventsVisibleTo(ctx, scope.Filter{CreatorIDs: []string{"kid"}, AssigneeIDs: []string{"kid"}}, w)
	require.ErrorIs(t, err, boom)
	db.AssertExpectations(t)
}

func TestFamilyOf(t *testing.T) {
	ctx := context.Background()
	r, db, _ := newTestRepo(t)
	db.On("QueryRow", familyOf, []any{"kid"}).Return(fakeRow{values: []any{"fam"}})
	db.On("QueryRow", familyOf, []any{"ghost"}).Return(fakeRow{err: pgx.ErrNoRows})

	fam, err := r.FamilyOf(ctx, "kid")
	require.NoError(t, err)
	assert.Equal(t, "fam", fam)

	_, err = r.FamilyOf(ctx, "ghost")
	require.ErrorIs(t, err, appers.ErrNoFamily)
}

func TestTransactionsCreateEventWritesOutbox(t *testing.T) {
	ctx := context.Background()
	r, db, _ := newTestRepo(t)
	tx := NewTransactions(r, zap.NewNop().Sugar())

	now := time.Now().UTC()
	db.On("QueryRow", createEvent, mock.Anything).Return(fakeRow{values: []any{now, now}})
	db.On("Exec", insertOutboxQuery, mock.MatchedBy(func(args []any) bool {
		return len(args) == 5 &&
			args[0] == uuid.FromStringOrNil(eventID) &&
			args[1] == entity.AggregateEvent &&
			args[2] == entity.EventCreated &&
			args[4] == string(entity.OutboxNew)
	})).Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	evt := &entity.Event{ID: eventID, Title: "Кружок"}
	payload, err := json.Marshal(evt)
	require.NoError(t, err)

	require.NoError(t, tx.CreateEvent(ctx, evt, payload))
	assert.Equal(t, now, evt.CreatedAt)
	db.AssertExpectations(t)
}

func TestTransactionsDeleteEventStopsOnMissing(t *testing.T) {
	ctx := context.Background()
	r, db, _ := newTestRepo(t)
	tx := NewTransactions(r, zap.NewNop().Sugar())
	db.On("Exec", deleteEvent, []any{eventID}).Return(pgconn.NewCommandTag("DELETE 0"), nil)

	err := tx.DeleteEvent(ctx, eventID, []byte(`{}`))
	require.ErrorIs(t, err, appers.ErrEventNotFound)
	db.AssertNotCalled(t, "Exec", insertOutboxQuery, mock.Anything)
}

func TestApplyFamilyLink(t *testing.T) {
	ctx := context.Background()

	t.Run("linked", func(t *testing.T) {
		r, db, _ := newTestRepo(t)
		tx := NewTransactions(r, zap.NewNop().Sugar())
		db.On("Exec", upsertFamilyMember, []any{"mom", "fam", "Мама"}).Return(pgconn.NewCommandTag("INSERT 0 1"), nil).Once()
		db.On("Exec", upsertFamilyMember, []any{"kid", "fam", ""}).Return(pgconn.NewCommandTag("INSERT 0 1"), nil).Once()
		db.On("Exec", upsertFamilyLink, []any{"mom", "kid", "fam"}).Return(pgconn.NewCommandTag("INSERT 0 1"), nil).Once()

		err := tx.ApplyFamilyLink(ctx, entity.FamilyLinkMessage{
			Action: entity.FamilyLinked, ParentID: "mom", ChildID: "kid", FamilyID: "fam", ParentName: "Мама",
		})
		require.NoError(t, err)
		db.AssertExpectations(t)
	})

	t.Run("unlinked", func(t *testing.T) {
		r, db, _ := newTestRepo(t)
		tx := NewTransactions(r, zap.NewNop().Sugar())
		db.On("Exec", deleteFamilyLink, []any{"mom", "kid"}).Return(pgconn.NewCommandTag("DELETE 1"), nil).Once()

		err := tx.ApplyFamilyLink(ctx, entity.FamilyLinkMessage{
			Action: entity.FamilyUnlinked, ParentID: "mom", ChildID: "kid",
		})
		require.NoError(t, err)
		db.AssertExpectations(t)
	})
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "canceled", errorKind(context.Canceled))
	assert.Equal(t, "timeout", errorKind(context.DeadlineExceeded))
	assert.Equal(t, "pg_23505", errorKind(&pgconn.PgError{Code: "23505"}))
	assert.Equal(t, "other", errorKind(errors.New("x")))
}

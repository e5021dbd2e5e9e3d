package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"familycal/internal/application/entity"
	"familycal/internal/application/recurrence"
	"familycal/internal/application/scope"
	"familycal/pkg/metrics"
)

type finderMock struct {
	mock.Mock
}

func (m *finderMock) FindEventsVisibleTo(ctx context.Context, f scope.Filter, w recurrence.Window) ([]entity.Event, error) {
	args := m.Called(ctx, f, w)
	if v := args.Get(0); v != nil {
		return v.([]entity.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

type directoryMock struct {
	mock.Mock
}

func (m *directoryMock) ChildrenOf(ctx context.Context, parentID string) ([]string, error) {
	args := m.Called(ctx, parentID)
	if v := args.Get(0); v != nil {
		return v.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func at(y int, m time.Month, d, h, minute int) time.Time {
	return time.Date(y, m, d, h, minute, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

var (
	child  = entity.Viewer{UserID: "kid", Role: entity.RoleChild}
	parent = entity.Viewer{UserID: "mom", Role: entity.RoleParent}
	jan    = recurrence.NewWindow(at(2024, 1, 1, 0, 0), at(2024, 1, 31, 0, 0))
)

func swimming() entity.Event {
	return entity.Event{
		ID:             "swim",
		Title:          "Бассейн",
		StartTime:      at(2024, 1, 2, 9, 0),
		EndTime:        at(2024, 1, 2, 9, 30),
		CreatedByID:    "mom",
		AssignedToID:   ptr("kid"),
		IsRecurring:    true,
		RecurrenceRule: ptr("FREQ=WEEKLY;INTERVAL=1;BYDAY=TU"),
	}
}

func single(id string, start time.Time, createdBy string, assignedTo *string) entity.Event {
	return entity.Event{
		ID:           id,
		Title:        id,
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
		CreatedByID:  createdBy,
		AssignedToID: assignedTo,
	}
}

func newCoordinator(t *testing.T, finder EventFinder, dir scope.Directory) (*Coordinator, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	return NewCoordinator(finder, dir, recurrence.NewGenerator(0), zap.NewNop().Sugar(), m), m
}

func TestQueryExpandsWeeklyTemplate(t *testing.T) {
	finder := &finderMock{}
	finder.On("FindEventsVisibleTo", mock.Anything, scope.NewChildScope("kid").Filter(), jan).
		Return([]entity.Event{swimming()}, nil)

	c, _ := newCoordinator(t, finder, &directoryMock{})
	res, err := c.Query(context.Background(), child, jan)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	require.Len(t, res.Events, 5)
	for i, day := range []int{2, 9, 16, 23, 30} {
		e := res.Events[i]
		assert.Equal(t, at(2024, 1, day, 9, 0), e.StartTime)
		assert.Equal(t, at(2024, 1, day, 9, 30), e.EndTime)
		assert.Equal(t, recurrence.OccurrenceID("swim", e.StartTime), e.ID)
		require.NotNil(t, e.OriginalEventID)
		assert.Equal(t, "swim", *e.OriginalEventID)
		assert.False(t, e.IsRecurring)
	}
	finder.AssertExpectations(t)
}

func TestQueryMergesAndSorts(t *testing.T) {
	events := []entity.Event{
		single("b-dentist", at(2024, 1, 9, 9, 0), "mom", ptr("kid")),
		swimming(),
		single("a-school", at(2024, 1, 9, 9, 0), "kid", nil),
		single("late", at(2024, 1, 5, 18, 0), "kid", nil),
		single("outside", at(2024, 2, 5, 18, 0), "kid", nil),
	}
	finder := &finderMock{}
	finder.On("FindEventsVisibleTo", mock.Anything, mock.Anything, jan).Return(events, nil)

	c, _ := newCoordinator(t, finder, &directoryMock{})
	res, err := c.Query(context.Background(), child, jan)
	require.NoError(t, err)

	var ids []string
	for _, e := range res.Events {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{
		"swim_2024-01-02",
		"late",
		"a-school",
		"b-dentist",
		"swim_2024-01-09",
		"swim_2024-01-16",
		"swim_2024-01-23",
		"swim_2024-01-30",
	}, ids)
}

func TestQueryWindowContainment(t *testing.T) {
	daily := swimming()
	daily.ID = "daily"
	daily.RecurrenceRule = ptr("FREQ=DAILY;INTERVAL=3")
	daily.StartTime = at(2023, 12, 1, 23, 0)
	daily.EndTime = at(2023, 12, 2, 1, 0)

	monthly := swimming()
	monthly.ID = "monthly"
	monthly.RecurrenceRule = ptr("FREQ=MONTHLY;COUNT=12")
	monthly.StartTime = at(2023, 6, 10, 7, 0)
	monthly.EndTime = at(2023, 6, 10, 8, 15)

	finder := &finderMock{}
	finder.On("FindEventsVisibleTo", mock.Anything, mock.Anything, mock.Anything).
		Return([]entity.Event{daily, monthly, swimming()}, nil)

	c, _ := newCoordinator(t, finder, &directoryMock{})
	w := recurrence.NewWindow(at(2024, 1, 10, 12, 0), at(2024, 1, 20, 12, 0))
	res, err := c.Query(context.Background(), child, w)
	require.NoError(t, err)
	require.NotEmpty(t, res.Events)

	start, _ := w.Start.Get()
	end, _ := w.End.Get()
	for _, e := range res.Events {
		assert.False(t, e.StartTime.Before(start), e.ID)
		assert.False(t, e.StartTime.After(end), e.ID)

		switch *e.OriginalEventID {
		case "daily":
			assert.Equal(t, 2*time.Hour, e.Duration())
		case "monthly":
			assert.Equal(t, 75*time.Minute, e.Duration())
		case "swim":
			assert.Equal(t, 30*time.Minute, e.Duration())
		}
	}
}

func TestQueryPartialFailure(t *testing.T) {
	broken := swimming()
	broken.ID = "broken"
	broken.RecurrenceRule = ptr("FREQ=FORTNIGHTLY")

	endless := swimming()
	endless.ID = "endless"
	endless.RecurrenceRule = ptr("FREQ=DAILY")

	events := []entity.Event{broken, single("party", at(2024, 1, 20, 15, 0), "kid", nil), swimming(), endless}
	finder := &finderMock{}
	finder.On("FindEventsVisibleTo", mock.Anything, mock.Anything, mock.Anything).Return(events, nil)

	c, m := newCoordinator(t, finder, &directoryMock{})

	// окно без конца: бесконечное правило развернуть нельзя
	w := recurrence.Window{Start: jan.Start, End: recurrence.OpenWindow().End}
	res, err := c.Query(context.Background(), child, w)
	require.NoError(t, err)

	require.Len(t, res.Warnings, 3)
	kinds := map[string]string{}
	for _, wr := range res.Warnings {
		kinds[wr.EventID] = wr.Kind
		assert.NotEmpty(t, wr.Message)
	}
	assert.Equal(t, map[string]string{
		"broken":  WarningMalformedRule,
		"endless": WarningUnbounded,
		"swim":    WarningUnbounded,
	}, kinds)

	var ids []string
	for _, e := range res.Events {
		ids = append(ids, e.ID)
	}
	assert.ElementsMatch(t, []string{"broken", "endless", "swim", "party"}, ids)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calendar.ExpansionFailuresTotal.WithLabelValues(WarningMalformedRule)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Calendar.ExpansionFailuresTotal.WithLabelValues(WarningUnbounded)))

	// с конечным окном ломается только неразборное правило
	res, err = c.Query(context.Background(), child, jan)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "broken", res.Warnings[0].EventID)

	var templates, occurrences int
	for _, e := range res.Events {
		switch {
		case e.ID == "broken":
			templates++
			assert.True(t, e.IsRecurring)
		case e.IsOccurrence():
			occurrences++
		}
	}
	assert.Equal(t, 1, templates)
	// swim: 5 вторников, endless: каждый день со 2 по 30 января
	assert.Equal(t, 5+29, occurrences)
}

func TestQueryIterationLimit(t *testing.T) {
	// ежедневно с 1700 года: до января 2024 больше ста тысяч шагов
	ancient := swimming()
	ancient.ID = "ancient"
	ancient.StartTime = at(1700, 1, 1, 9, 0)
	ancient.EndTime = at(1700, 1, 1, 9, 30)
	ancient.RecurrenceRule = ptr("FREQ=DAILY")

	finder := &finderMock{}
	finder.On("FindEventsVisibleTo", mock.Anything, mock.Anything, jan).Return([]entity.Event{ancient, swimming()}, nil)

	c, m := newCoordinator(t, finder, &directoryMock{})
	res, err := c.Query(context.Background(), child, jan)
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "ancient", res.Warnings[0].EventID)
	assert.Equal(t, WarningIterationLimit, res.Warnings[0].Kind)
	assert.Contains(t, res.Warnings[0].Message, "iteration limit")

	var templates, occurrences int
	for _, e := range res.Events {
		if e.IsOccurrence() {
			occurrences++
			continue
		}
		templates++
		assert.Equal(t, "ancient", e.ID)
	}
	assert.Equal(t, 1, templates)
	assert.Equal(t, 5, occurrences)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calendar.ExpansionFailuresTotal.WithLabelValues(WarningIterationLimit)))
}

func TestQueryWithoutWindowReturnsTemplates(t *testing.T) {
	finder := &finderMock{}
	finder.On("FindEventsVisibleTo", mock.Anything, mock.Anything, mock.Anything).
		Return([]entity.Event{swimming(), single("party", at(2024, 1, 20, 15, 0), "kid", nil)}, nil)

	c, _ := newCoordinator(t, finder, &directoryMock{})
	res, err := c.Query(context.Background(), child, recurrence.OpenWindow())
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	require.Len(t, res.Events, 2)
	assert.Equal(t, "swim", res.Events[0].ID)
	assert.True(t, res.Events[0].IsRecurring)
	assert.Equal(t, "party", res.Events[1].ID)
}

func TestQuerySkipsRecurrenceOutsideWindow(t *testing.T) {
	ended := swimming()
	ended.ID = "ended"
	ended.RecurringEndDate = ptr(at(2023, 12, 31, 0, 0))
	ended.StartTime = at(2023, 9, 5, 9, 0)
	ended.EndTime = at(2023, 9, 5, 9, 30)

	future := swimming()
	future.ID = "future"
	future.RecurrenceRule = ptr("FREQ=FORTNIGHTLY")
	future.StartTime = at(2024, 3, 5, 9, 0)
	future.EndTime = at(2024, 3, 5, 9, 30)

	finder := &finderMock{}
	finder.On("FindEventsVisibleTo", mock.Anything, mock.Anything, mock.Anything).
		Return([]entity.Event{ended, future}, nil)

	c, _ := newCoordinator(t, finder, &directoryMock{})
	res, err := c.Query(context.Background(), child, jan)
	require.NoError(t, err)
	assert.Empty(t, res.Events)
	assert.Empty(t, res.Warnings)
}

func TestQueryScope(t *testing.T) {
	ctx := context.Background()
	events := []entity.Event{
		single("mine", at(2024, 1, 3, 10, 0), "kid", nil),
		single("for-me", at(2024, 1, 4, 10, 0), "mom", ptr("kid")),
		single("sister", at(2024, 1, 5, 10, 0), "sis", ptr("sis")),
		single("moms", at(2024, 1, 6, 10, 0), "mom", nil),
		single("stranger", at(2024, 1, 7, 10, 0), "stranger", ptr("stranger")),
	}

	t.Run("child", func(t *testing.T) {
		finder := &finderMock{}
		finder.On("FindEventsVisibleTo", ctx, mock.Anything, jan).Return(events, nil)
		c, _ := newCoordinator(t, finder, &directoryMock{})

		res, err := c.Query(ctx, child, jan)
		require.NoError(t, err)
		for _, e := range res.Events {
			mine := e.CreatedByID == "kid" || (e.AssignedToID != nil && *e.AssignedToID == "kid")
			assert.True(t, mine, e.ID)
		}
		assert.Len(t, res.Events, 2)
	})

	t.Run("parent", func(t *testing.T) {
		dir := &directoryMock{}
		dir.On("ChildrenOf", ctx, "mom").Return([]string{"kid", "sis"}, nil).Once()
		finder := &finderMock{}
		finder.On("FindEventsVisibleTo", ctx, scope.NewParentScope("mom", []string{"kid", "sis"}).Filter(), jan).
			Return(events, nil)
		c, _ := newCoordinator(t, finder, dir)

		res, err := c.Query(ctx, parent, jan)
		require.NoError(t, err)

		var ids []string
		for _, e := range res.Events {
			ids = append(ids, e.ID)
		}
		// "mine" создано ребёнком без исполнителя, родителю не видно
		assert.Equal(t, []string{"for-me", "sister", "moms"}, ids)
		dir.AssertExpectations(t)
		finder.AssertExpectations(t)
	})
}

func TestQueryDeterministic(t *testing.T) {
	events := []entity.Event{
		swimming(),
		single("x", at(2024, 1, 16, 9, 0), "kid", nil),
		single("a", at(2024, 1, 16, 9, 0), "kid", nil),
	}
	finder := &finderMock{}
	finder.On("FindEventsVisibleTo", mock.Anything, mock.Anything, mock.Anything).Return(events, nil)

	c, _ := newCoordinator(t, finder, &directoryMock{})
	first, err := c.Query(context.Background(), child, jan)
	require.NoError(t, err)
	second, err := c.Query(context.Background(), child, jan)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// сдвинутое окно даёт те же идентификаторы для общих вхождений
	shifted, err := c.Query(context.Background(), child,
		recurrence.NewWindow(at(2024, 1, 15, 0, 0), at(2024, 2, 15, 0, 0)))
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(shifted.Events), 3)
	assert.Equal(t, "a", shifted.Events[0].ID)
	assert.Equal(t, "swim_2024-01-16", shifted.Events[1].ID)
	assert.Equal(t, "x", shifted.Events[2].ID)
}

func TestQueryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("storage failure aborts", func(t *testing.T) {
		finder := &finderMock{}
		finder.On("FindEventsVisibleTo", ctx, mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))
		c, _ := newCoordinator(t, finder, &directoryMock{})

		_, err := c.Query(ctx, child, jan)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
	})

	t.Run("directory failure aborts", func(t *testing.T) {
		dir := &directoryMock{}
		dir.On("ChildrenOf", ctx, "mom").Return(nil, errors.New("timeout"))
		finder := &finderMock{}
		c, _ := newCoordinator(t, finder, dir)

		_, err := c.Query(ctx, parent, jan)
		require.Error(t, err)
		finder.AssertNotCalled(t, "FindEventsVisibleTo", mock.Anything, mock.Anything, mock.Anything)
	})
}

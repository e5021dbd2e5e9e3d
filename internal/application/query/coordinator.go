package query

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"go.uber.org/zap"

	"familycal/internal/appers"
	"familycal/internal/application/entity"
	"familycal/internal/application/recurrence"
	"familycal/internal/application/scope"
	"familycal/pkg/metrics"
)

const (
	WarningMalformedRule  = "malformed_rule"
	WarningUnbounded      = "unbounded"
	WarningIterationLimit = "iteration_limit"
	WarningExpansion      = "expansion"
)

// EventFinder хранилище событий. Фильтр и окно - подсказка для выборки,
// результат всё равно перепроверяется на стороне координатора.
type EventFinder interface {
	FindEventsVisibleTo(ctx context.Context, f scope.Filter, w recurrence.Window) ([]entity.Event, error)
}

// Warning повторяющееся событие, которое вернулось неразвернутым
type Warning struct {
	EventID string `json:"eventId"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type Result struct {
	Events   []entity.Event
	Warnings []Warning
}

type Coordinator struct {
	finder    EventFinder
	directory scope.Directory
	generator *recurrence.Generator
	logger    *zap.SugaredLogger
	m         *metrics.Metrics
}

func NewCoordinator(
	finder EventFinder,
	directory scope.Directory,
	generator *recurrence.Generator,
	logger *zap.SugaredLogger,
	m *metrics.Metrics) *Coordinator {
	return &Coordinator{
		finder:    finder,
		directory: directory,
		generator: generator,
		logger:    logger,
		m:         m,
	}
}

// Query события зрителя в окне, отсортированные по startTime, при равенстве по eventId.
// Ошибка разворачивания одного события не прерывает запрос: шаблон возвращается как есть плюс Warning.
func (c *Coordinator) Query(ctx context.Context, viewer entity.Viewer, w recurrence.Window) (Result, error) {
	started := time.Now()

	sc, err := scope.For(ctx, viewer, c.directory)
	if err != nil {
		return Result{}, err
	}

	candidates, err := c.finder.FindEventsVisibleTo(ctx, sc.Filter(), w)
	if err != nil {
		return Result{}, fmt.Errorf("find events visible to %s: %w", viewer.UserID, err)
	}

	res := Result{Events: make([]entity.Event, 0, len(candidates))}
	for i := range candidates {
		e := candidates[i]
		if !sc.Visible(&e) {
			continue
		}

		if !e.IsRecurring {
			if w.Overlaps(e.StartTime, e.EndTime) {
				res.Events = append(res.Events, e)
			}
			continue
		}

		if w.IsOpen() {
			res.Events = append(res.Events, e)
			continue
		}
		if !recurringRangeOverlaps(&e, w) {
			continue
		}

		occurrences, err := c.generator.Expand(e, w)
		if err != nil {
			res.Warnings = append(res.Warnings, c.degrade(&e, err))
			res.Events = append(res.Events, e)
			continue
		}
		c.m.Calendar.OccurrencesExpanded.Observe(float64(len(occurrences)))
		res.Events = append(res.Events, occurrences...)
	}

	slices.SortFunc(res.Events, func(a, b entity.Event) int {
		if d := a.StartTime.Compare(b.StartTime); d != 0 {
			return d
		}
		return cmp.Compare(a.ID, b.ID)
	})

	c.m.Calendar.QueryDuration.
		WithLabelValues(string(viewer.Role), strconv.FormatBool(!w.IsOpen())).
		Observe(time.Since(started).Seconds())
	c.logger.Debugf("[viewer: %s] календарь: %d событий, %d предупреждений", viewer.UserID, len(res.Events), len(res.Warnings))

	return res, nil
}

func (c *Coordinator) degrade(e *entity.Event, err error) Warning {
	kind := WarningExpansion
	var ruleErr *appers.MalformedRuleError
	switch {
	case errors.As(err, &ruleErr):
		kind = WarningMalformedRule
	case errors.Is(err, appers.ErrUnboundedQuery):
		kind = WarningUnbounded
	case errors.Is(err, appers.ErrIterationLimit):
		kind = WarningIterationLimit
	}

	c.m.Calendar.ExpansionFailuresTotal.WithLabelValues(kind).Inc()
	c.logger.Warnf("[event: %s] повторяющееся событие возвращено без разворачивания: %v", e.ID, err)

	return Warning{EventID: e.ID, Kind: kind, Message: err.Error()}
}

// recurringRangeOverlaps пересекается ли [startTime, recurringEndDate] с окном
func recurringRangeOverlaps(e *entity.Event, w recurrence.Window) bool {
	if end, ok := w.End.Get(); ok && e.StartTime.After(end) {
		return false
	}
	if e.RecurringEndDate != nil {
		if start, ok := w.Start.Get(); ok && recurrence.EndOfDay(*e.RecurringEndDate).Before(start) {
			return false
		}
	}
	return true
}

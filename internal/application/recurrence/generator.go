package recurrence

import (
	"iter"
	"time"

	"github.com/teambition/rrule-go"

	"familycal/internal/appers"
)

const DefaultMaxIterations = 100_000

// Generator перечисляет даты вхождений правила.
// MaxIterations ограничивает число шагов итератора на одно событие.
type Generator struct {
	maxIterations int
}

func NewGenerator(maxIterations int) *Generator {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &Generator{maxIterations: maxIterations}
}

// Occurrences возвращает возрастающую последовательность моментов начала вхождений.
//
// anchor - начало исходного события, первое вхождение никогда не раньше него.
// cutoff - recurringEndDate события, включительно до конца указанного дня.
// COUNT считается от anchor, поэтому вхождения до начала окна тоже расходуют счётчик.
// Последовательность можно обходить повторно, каждый обход начинается заново.
// При достижении потолка итераций последовательность просто обрывается, см. Expand.
func (g *Generator) Occurrences(rule Rule, anchor time.Time, cutoff *time.Time, w Window) (iter.Seq[time.Time], error) {
	walk, err := g.walker(rule, anchor, cutoff, w)
	if err != nil {
		return nil, err
	}
	return func(yield func(time.Time) bool) {
		walk(yield)
	}, nil
}

// walk обходит даты и возвращает false, если обход оборвал потолок итераций
type walk func(yield func(time.Time) bool) bool

func (g *Generator) walker(rule Rule, anchor time.Time, cutoff *time.Time, w Window) (walk, error) {
	anchor = anchor.UTC().Truncate(time.Second)

	limit, hasLimit := effectiveLimit(rule, cutoff)
	if !hasLimit && rule.Bound.IsUnbounded() && !w.End.IsPresent() {
		return nil, appers.ErrUnboundedQuery
	}

	opt := rrule.ROption{
		Freq:     rule.Freq.rrule(),
		Dtstart:  anchor,
		Interval: rule.Interval,
		Wkst:     rrule.MO,
	}
	if n, ok := rule.Bound.Count(); ok {
		opt.Count = n
	}
	for _, wd := range rule.ByWeekday {
		opt.Byweekday = append(opt.Byweekday, wd.rrule())
	}

	rr, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, &appers.MalformedRuleError{Rule: rule.String(), Reason: err.Error()}
	}

	windowStart, hasStart := w.Start.Get()
	windowEnd, hasEnd := w.End.Get()
	maxIterations := g.maxIterations

	return func(yield func(time.Time) bool) bool {
		next := rr.Iterator()
		for range maxIterations {
			t, ok := next()
			if !ok {
				return true
			}
			t = t.UTC()
			if t.Before(anchor) {
				continue
			}
			if hasLimit && t.After(limit) {
				return true
			}
			if hasEnd && t.After(windowEnd) {
				return true
			}
			if hasStart && t.Before(windowStart) {
				continue
			}
			if !yield(t) {
				return true
			}
		}
		return false
	}, nil
}

// effectiveLimit меньшая из границ UNTIL и recurringEndDate
func effectiveLimit(rule Rule, cutoff *time.Time) (time.Time, bool) {
	until, hasUntil := rule.Bound.Until()
	if cutoff == nil {
		return until, hasUntil
	}
	end := EndOfDay(*cutoff)
	if hasUntil && until.Before(end) {
		return until, true
	}
	return end, true
}

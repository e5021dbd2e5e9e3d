package recurrence

import (
	"fmt"
	"time"

	"familycal/internal/appers"
	"familycal/internal/application/entity"
)

// Expand разворачивает шаблон в вхождения внутри окна: разбор правила, генерация дат, материализация.
// Ошибки относятся только к этому шаблону: *appers.MalformedRuleError, appers.ErrUnboundedQuery
// или appers.ErrIterationLimit, если до конца окна не дошли за отведённое число шагов.
func (g *Generator) Expand(template entity.Event, w Window) ([]entity.Event, error) {
	if template.RecurrenceRule == nil {
		return nil, &appers.MalformedRuleError{Reason: "recurring event has no rule"}
	}

	rule, err := Parse(*template.RecurrenceRule)
	if err != nil {
		return nil, err
	}

	walk, err := g.walker(rule, template.StartTime, template.RecurringEndDate, w)
	if err != nil {
		return nil, err
	}

	var out []entity.Event
	complete := walk(func(date time.Time) bool {
		out = append(out, Materialize(template, date))
		return true
	})
	if !complete {
		return nil, fmt.Errorf("%w: %d steps from %s", appers.ErrIterationLimit, g.maxIterations,
			template.StartTime.UTC().Format(time.DateOnly))
	}
	return out, nil
}

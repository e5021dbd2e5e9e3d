package recurrence

import (
	"strings"
	"time"

	"familycal/internal/application/entity"
)

const occurrenceDateLayout = "2006-01-02"

// Materialize строит вхождение шаблона на дату date.
// Берётся календарный день date (UTC) и время суток начала шаблона, длительность сохраняется.
func Materialize(template entity.Event, date time.Time) entity.Event {
	d := date.UTC()
	clock := template.StartTime.UTC()
	start := time.Date(d.Year(), d.Month(), d.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), time.UTC)

	originalID := template.ID

	occ := template
	occ.ID = OccurrenceID(template.ID, start)
	occ.OriginalEventID = &originalID
	occ.StartTime = start
	occ.EndTime = start.Add(template.Duration())
	occ.IsRecurring = false
	occ.RecurrenceRule = nil
	occ.RecurringEndDate = nil

	return occ
}

// OccurrenceID идентификатор вхождения: <id шаблона>_<YYYY-MM-DD>
func OccurrenceID(templateID string, date time.Time) string {
	return templateID + "_" + date.UTC().Format(occurrenceDateLayout)
}

// ParseOccurrenceID разбирает идентификатор вхождения обратно на шаблон и дату
func ParseOccurrenceID(id string) (string, time.Time, bool) {
	i := strings.LastIndexByte(id, '_')
	if i <= 0 || i == len(id)-1 {
		return "", time.Time{}, false
	}
	date, err := time.ParseInLocation(occurrenceDateLayout, id[i+1:], time.UTC)
	if err != nil {
		return "", time.Time{}, false
	}
	return id[:i], date, true
}

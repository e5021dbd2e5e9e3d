package recurrence

import (
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

type Frequency int

const (
	Daily Frequency = iota + 1
	Weekly
	Monthly
	Yearly
)

var frequencyNames = map[Frequency]string{
	Daily:   "DAILY",
	Weekly:  "WEEKLY",
	Monthly: "MONTHLY",
	Yearly:  "YEARLY",
}

func (f Frequency) String() string {
	if s, ok := frequencyNames[f]; ok {
		return s
	}
	return "UNKNOWN"
}

func (f Frequency) rrule() rrule.Frequency {
	switch f {
	case Daily:
		return rrule.DAILY
	case Weekly:
		return rrule.WEEKLY
	case Monthly:
		return rrule.MONTHLY
	default:
		return rrule.YEARLY
	}
}

// Weekday день недели из BYDAY, N - порядковый номер (1MO, -1FR), 0 если не задан
type Weekday struct {
	Day time.Weekday
	N   int
}

var weekdayCodes = map[time.Weekday]string{
	time.Monday:    "MO",
	time.Tuesday:   "TU",
	time.Wednesday: "WE",
	time.Thursday:  "TH",
	time.Friday:    "FR",
	time.Saturday:  "SA",
	time.Sunday:    "SU",
}

func (w Weekday) String() string {
	if w.N == 0 {
		return weekdayCodes[w.Day]
	}
	return strconv.Itoa(w.N) + weekdayCodes[w.Day]
}

func (w Weekday) rrule() rrule.Weekday {
	var wd rrule.Weekday
	switch w.Day {
	case time.Monday:
		wd = rrule.MO
	case time.Tuesday:
		wd = rrule.TU
	case time.Wednesday:
		wd = rrule.WE
	case time.Thursday:
		wd = rrule.TH
	case time.Friday:
		wd = rrule.FR
	case time.Saturday:
		wd = rrule.SA
	default:
		wd = rrule.SU
	}
	if w.N != 0 {
		return wd.Nth(w.N)
	}
	return wd
}

type boundKind int

const (
	boundUnbounded boundKind = iota
	boundCount
	boundUntil
)

// Bound ограничение правила: ровно одно из COUNT, UNTIL или без ограничения.
// Конструируется только через Count, Until и Unbounded.
type Bound struct {
	kind  boundKind
	count int
	until time.Time
}

func Count(n int) Bound {
	return Bound{kind: boundCount, count: n}
}

// Until включительная верхняя граница
func Until(t time.Time) Bound {
	return Bound{kind: boundUntil, until: t.UTC()}
}

func Unbounded() Bound {
	return Bound{}
}

func (b Bound) Count() (int, bool) {
	return b.count, b.kind == boundCount
}

func (b Bound) Until() (time.Time, bool) {
	return b.until, b.kind == boundUntil
}

func (b Bound) IsUnbounded() bool {
	return b.kind == boundUnbounded
}

// Rule разобранное правило повторения
type Rule struct {
	Freq      Frequency
	Interval  int
	ByWeekday []Weekday
	Bound     Bound
}

// String каноническая форма правила, неизвестные поля исходной строки в неё не попадают
func (r Rule) String() string {
	parts := []string{
		"FREQ=" + r.Freq.String(),
		"INTERVAL=" + strconv.Itoa(r.Interval),
	}
	if len(r.ByWeekday) > 0 {
		days := make([]string, 0, len(r.ByWeekday))
		for _, wd := range r.ByWeekday {
			days = append(days, wd.String())
		}
		parts = append(parts, "BYDAY="+strings.Join(days, ","))
	}
	if n, ok := r.Bound.Count(); ok {
		parts = append(parts, "COUNT="+strconv.Itoa(n))
	}
	if t, ok := r.Bound.Until(); ok {
		parts = append(parts, "UNTIL="+t.Format(untilLayoutUTC))
	}
	return strings.Join(parts, ";")
}

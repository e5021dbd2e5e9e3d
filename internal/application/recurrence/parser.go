package recurrence

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"familycal/internal/appers"
)

const (
	untilLayoutUTC      = "20060102T150405Z"
	untilLayoutFloating = "20060102T150405"
	untilLayoutDate     = "20060102"
)

var byDayPattern = regexp.MustCompile(`^([+-]?\d{1,2})?(MO|TU|WE|TH|FR|SA|SU)$`)

var weekdayByCode = map[string]time.Weekday{
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
	"SU": time.Sunday,
}

// Parse разбирает строку правила в формате RRULE (FREQ=WEEKLY;INTERVAL=1;BYDAY=TU).
// Префикс "RRULE:" и регистр ключей не важны, неизвестные поля пропускаются.
// Любая ошибка возвращается как *appers.MalformedRuleError.
func Parse(raw string) (Rule, error) {
	text := strings.TrimSpace(raw)
	if len(text) >= 6 && strings.EqualFold(text[:6], "RRULE:") {
		text = strings.TrimSpace(text[6:])
	}
	if text == "" {
		return Rule{}, malformed(raw, "empty rule")
	}

	rule := Rule{Interval: 1}
	var (
		hasFreq  bool
		hasCount bool
		hasUntil bool
		count    int
		until    time.Time
	)

	for _, part := range strings.Split(text, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return Rule{}, malformed(raw, fmt.Sprintf("part %q is not KEY=VALUE", part))
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "FREQ":
			freq, err := parseFrequency(value)
			if err != nil {
				return Rule{}, malformed(raw, err.Error())
			}
			rule.Freq = freq
			hasFreq = true
		case "INTERVAL":
			n, err := positiveInt(value)
			if err != nil {
				return Rule{}, malformed(raw, "INTERVAL "+err.Error())
			}
			rule.Interval = n
		case "COUNT":
			n, err := positiveInt(value)
			if err != nil {
				return Rule{}, malformed(raw, "COUNT "+err.Error())
			}
			count = n
			hasCount = true
		case "UNTIL":
			t, err := parseUntil(value)
			if err != nil {
				return Rule{}, malformed(raw, err.Error())
			}
			until = t
			hasUntil = true
		case "BYDAY":
			days, err := parseByDay(value)
			if err != nil {
				return Rule{}, malformed(raw, err.Error())
			}
			rule.ByWeekday = days
		}
	}

	if !hasFreq {
		return Rule{}, malformed(raw, "FREQ is required")
	}

	switch {
	case hasCount && hasUntil:
		return Rule{}, malformed(raw, "COUNT and UNTIL are mutually exclusive")
	case hasCount:
		rule.Bound = Count(count)
	case hasUntil:
		rule.Bound = Until(until)
	default:
		rule.Bound = Unbounded()
	}

	return rule, nil
}

func malformed(raw, reason string) error {
	return &appers.MalformedRuleError{Rule: raw, Reason: reason}
}

func parseFrequency(value string) (Frequency, error) {
	switch strings.ToUpper(value) {
	case "DAILY":
		return Daily, nil
	case "WEEKLY":
		return Weekly, nil
	case "MONTHLY":
		return Monthly, nil
	case "YEARLY":
		return Yearly, nil
	default:
		return 0, fmt.Errorf("unsupported FREQ %q", value)
	}
}

func positiveInt(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", value)
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}

// parseUntil понимает UTC, "плавающее" время (считаем UTC) и дату.
// Дата без времени включает весь день.
func parseUntil(value string) (time.Time, error) {
	value = strings.ToUpper(value)
	if t, err := time.Parse(untilLayoutUTC, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(untilLayoutFloating, value, time.UTC); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(untilLayoutDate, value, time.UTC); err == nil {
		return EndOfDay(t), nil
	}
	return time.Time{}, fmt.Errorf("UNTIL %q is not a date", value)
}

func parseByDay(value string) ([]Weekday, error) {
	tokens := strings.Split(value, ",")
	days := make([]Weekday, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.ToUpper(strings.TrimSpace(tok))
		m := byDayPattern.FindStringSubmatch(tok)
		if m == nil {
			return nil, fmt.Errorf("BYDAY token %q is invalid", tok)
		}
		wd := Weekday{Day: weekdayByCode[m[2]]}
		if m[1] != "" {
			n, _ := strconv.Atoi(m[1])
			if n == 0 || n < -53 || n > 53 {
				return nil, fmt.Errorf("BYDAY ordinal in %q is out of range", tok)
			}
			wd.N = n
		}
		days = append(days, wd)
	}
	return days, nil
}

// EndOfDay последняя наносекунда календарного дня t в UTC
func EndOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Add(24*time.Hour - time.Nanosecond)
}

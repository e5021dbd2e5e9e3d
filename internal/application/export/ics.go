package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-ical"

	"familycal/internal/application/entity"
)

const productID = "-//familycal//Family Calendar//RU"

// ICS собирает VCALENDAR, по одному VEVENT на событие или вхождение.
// Вхождения уже развёрнуты, поэтому RRULE не выгружается.
func ICS(events []entity.Event, stamp time.Time) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText(ical.PropVersion, "2.0")

	if len(events) == 0 {
		// ical.Encoder отказывается кодировать VCALENDAR без компонентов
		return emptyCalendar(), nil
	}
	for i := range events {
		cal.Children = append(cal.Children, vevent(&events[i], stamp).Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}

func vevent(e *entity.Event, stamp time.Time) *ical.Event {
	ve := ical.NewEvent()
	ve.Props.SetText(ical.PropUID, e.ID)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, e.StartTime.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeEnd, e.EndTime.UTC())
	ve.Props.SetText(ical.PropSummary, e.Title)
	if e.Description != nil {
		ve.Props.SetText(ical.PropDescription, *e.Description)
	}
	if e.Location != nil {
		ve.Props.SetText(ical.PropLocation, *e.Location)
	}
	if e.Category != nil {
		ve.Props.SetText(ical.PropCategories, e.Category.Name)
	}
	return ve
}

func emptyCalendar() []byte {
	var buf bytes.Buffer
	buf.WriteString("BEGIN:VCALENDAR\r\n")
	buf.WriteString("PRODID:" + productID + "\r\n")
	buf.WriteString("VERSION:2.0\r\n")
	buf.WriteString("END:VCALENDAR\r\n")
	return buf.Bytes()
}

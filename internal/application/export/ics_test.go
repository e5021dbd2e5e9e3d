package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familycal/internal/application/entity"
)

func TestICS(t *testing.T) {
	templateID := "e0000000-0000-4000-8000-000000000001"
	location := "Бассейн №3"
	events := []entity.Event{
		{
			ID:              templateID + "_2024-01-09",
			Title:           "Плавание",
			Location:        &location,
			StartTime:       time.Date(2024, 1, 9, 9, 0, 0, 0, time.UTC),
			EndTime:         time.Date(2024, 1, 9, 9, 30, 0, 0, time.UTC),
			OriginalEventID: &templateID,
			Category:        &entity.CategoryRef{Name: "Спорт"},
		},
		{
			ID:        "e0000000-0000-4000-8000-000000000002",
			Title:     "Врач",
			StartTime: time.Date(2024, 1, 10, 15, 0, 0, 0, time.FixedZone("MSK", 3*3600)),
			EndTime:   time.Date(2024, 1, 10, 16, 0, 0, 0, time.FixedZone("MSK", 3*3600)),
		},
	}
	stamp := time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)

	raw, err := ICS(events, stamp)
	require.NoError(t, err)

	cal, err := ical.NewDecoder(bytes.NewReader(raw)).Decode()
	require.NoError(t, err)

	version, err := cal.Props.Text(ical.PropVersion)
	require.NoError(t, err)
	assert.Equal(t, "2.0", version)

	vevents := cal.Events()
	require.Len(t, vevents, 2)

	uid, err := vevents[0].Props.Text(ical.PropUID)
	require.NoError(t, err)
	assert.Equal(t, templateID+"_2024-01-09", uid)

	loc, err := vevents[0].Props.Text(ical.PropLocation)
	require.NoError(t, err)
	assert.Equal(t, location, loc)

	start, err := vevents[1].DateTimeStart(time.UTC)
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)))

	end, err := vevents[1].DateTimeEnd(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, end.Sub(start))

	assert.Nil(t, vevents[1].Props.Get(ical.PropDescription))
	assert.Contains(t, string(raw), "DTSTAMP:20240108T120000Z")
}

func TestICSEmpty(t *testing.T) {
	raw, err := ICS(nil, time.Now())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "BEGIN:VCALENDAR")
	assert.NotContains(t, string(raw), "BEGIN:VEVENT")
}

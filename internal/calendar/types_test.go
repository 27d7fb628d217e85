package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"
)

var seoul = time.FixedZone("KST", 9*60*60)

func TestParseEventTime(t *testing.T) {
	t.Run("timed event is converted to the target zone", func(t *testing.T) {
		got, allDay, err := parseEventTime(&gcal.EventDateTime{DateTime: "2026-09-01T10:00:00-04:00"}, seoul)
		require.NoError(t, err)
		assert.False(t, allDay)
		assert.Equal(t, seoul, got.Location())
		// 10:00 UTC-4 is 23:00 in UTC+9.
		assert.Equal(t, 23, got.Hour())
		assert.True(t, got.Equal(time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)))
	})

	t.Run("all-day event is anchored at local midnight", func(t *testing.T) {
		got, allDay, err := parseEventTime(&gcal.EventDateTime{Date: "2026-09-01"}, seoul)
		require.NoError(t, err)
		assert.True(t, allDay)
		assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, seoul), got)
	})

	t.Run("missing time", func(t *testing.T) {
		_, _, err := parseEventTime(nil, seoul)
		assert.Error(t, err)
	})

	t.Run("garbage datetime", func(t *testing.T) {
		_, _, err := parseEventTime(&gcal.EventDateTime{DateTime: "yesterday-ish"}, seoul)
		assert.Error(t, err)
	})
}

func TestAllDayComparableAgainstTimed(t *testing.T) {
	allDay, _, err := parseEventTime(&gcal.EventDateTime{Date: "2026-09-01"}, seoul)
	require.NoError(t, err)
	timed, _, err := parseEventTime(&gcal.EventDateTime{DateTime: "2026-09-01T08:30:00+09:00"}, seoul)
	require.NoError(t, err)

	assert.True(t, allDay.Before(timed))
}

func TestToCalendarNamePreference(t *testing.T) {
	tests := []struct {
		name  string
		entry gcal.CalendarListEntry
		want  string
	}{
		{"override wins", gcal.CalendarListEntry{Id: "c1", Summary: "Team", SummaryOverride: "My Team"}, "My Team"},
		{"summary when no override", gcal.CalendarListEntry{Id: "c1", Summary: "Team"}, "Team"},
		{"id as last resort", gcal.CalendarListEntry{Id: "c1"}, "c1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toCalendar(&tt.entry, "work")
			assert.Equal(t, tt.want, got.Summary)
			assert.Equal(t, "work", got.Account)
		})
	}
}

func TestToEventStampsProvenance(t *testing.T) {
	item := &gcal.Event{
		Id:      "ev1",
		Summary: "Standup",
		Start:   &gcal.EventDateTime{DateTime: "2026-09-01T09:00:00+09:00"},
		End:     &gcal.EventDateTime{DateTime: "2026-09-01T09:15:00+09:00"},
		Attendees: []*gcal.EventAttendee{
			{Email: "a@example.com"},
			{Email: "b@example.com"},
		},
	}

	ev, err := toEvent(item, "work", "cal-id", "Team", seoul)
	require.NoError(t, err)
	assert.Equal(t, "work", ev.Account)
	assert.Equal(t, "cal-id", ev.CalendarID)
	assert.Equal(t, "Team", ev.CalendarName)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, ev.Attendees)
	assert.False(t, ev.AllDay)
}

func TestToEventUntitledFallback(t *testing.T) {
	item := &gcal.Event{
		Id:    "ev1",
		Start: &gcal.EventDateTime{Date: "2026-09-01"},
		End:   &gcal.EventDateTime{Date: "2026-09-02"},
	}

	ev, err := toEvent(item, "work", "cal-id", "Team", seoul)
	require.NoError(t, err)
	assert.Equal(t, "(No title)", ev.Summary)
	assert.True(t, ev.AllDay)
}

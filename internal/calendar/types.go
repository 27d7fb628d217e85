package calendar

import (
	"fmt"
	"time"

	gcal "google.golang.org/api/calendar/v3"
)

// Access roles reported by the remote service.
const (
	RoleOwner          = "owner"
	RoleWriter         = "writer"
	RoleReader         = "reader"
	RoleFreeBusyReader = "freeBusyReader"
)

// Calendar describes one calendar within an account.
type Calendar struct {
	ID         string
	Summary    string // display name; the user-override name when one exists
	AccessRole string
	Account    string
	TimeZone   string
	ColorID    string
	Primary    bool
}

// Event is one calendar event, stamped with its owning account and
// calendar. Location and description are opaque passthrough.
type Event struct {
	ID           string
	Summary      string
	Start        time.Time
	End          time.Time
	AllDay       bool
	Account      string
	CalendarID   string
	CalendarName string
	Location     string
	Description  string
	HTMLLink     string
	HangoutLink  string
	Attendees    []string
	ColorID      string
	Status       string
}

// EventInput is the payload for creating an event.
type EventInput struct {
	Summary     string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Location    string
	Description string
	Attendees   []string
}

// toCalendar converts a calendar list entry. The display name prefers the
// user's override name over the original; the owner renamed it on purpose.
func toCalendar(entry *gcal.CalendarListEntry, account string) Calendar {
	summary := entry.SummaryOverride
	if summary == "" {
		summary = entry.Summary
	}
	if summary == "" {
		summary = entry.Id
	}
	return Calendar{
		ID:         entry.Id,
		Summary:    summary,
		AccessRole: entry.AccessRole,
		Account:    account,
		TimeZone:   entry.TimeZone,
		ColorID:    entry.ColorId,
		Primary:    entry.Primary,
	}
}

// parseEventTime parses a remote event time into the target timezone.
// Date-only values mark all-day events and are anchored at midnight in the
// target zone so they compare cleanly against timed events.
func parseEventTime(edt *gcal.EventDateTime, loc *time.Location) (time.Time, bool, error) {
	if edt == nil {
		return time.Time{}, false, fmt.Errorf("event time missing")
	}
	if edt.Date != "" {
		t, err := time.ParseInLocation("2006-01-02", edt.Date, loc)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("invalid event date %q: %w", edt.Date, err)
		}
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, edt.DateTime)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid event time %q: %w", edt.DateTime, err)
	}
	return t.In(loc), false, nil
}

// toEvent converts a remote event, stamping account and calendar identity.
func toEvent(item *gcal.Event, account, calendarID, calendarName string, loc *time.Location) (Event, error) {
	start, allDay, err := parseEventTime(item.Start, loc)
	if err != nil {
		return Event{}, fmt.Errorf("event %s: %w", item.Id, err)
	}
	end, _, err := parseEventTime(item.End, loc)
	if err != nil {
		return Event{}, fmt.Errorf("event %s: %w", item.Id, err)
	}

	summary := item.Summary
	if summary == "" {
		summary = "(No title)"
	}

	ev := Event{
		ID:           item.Id,
		Summary:      summary,
		Start:        start,
		End:          end,
		AllDay:       allDay,
		Account:      account,
		CalendarID:   calendarID,
		CalendarName: calendarName,
		Location:     item.Location,
		Description:  item.Description,
		HTMLLink:     item.HtmlLink,
		HangoutLink:  item.HangoutLink,
		ColorID:      item.ColorId,
		Status:       item.Status,
	}
	for _, a := range item.Attendees {
		ev.Attendees = append(ev.Attendees, a.Email)
	}
	return ev, nil
}

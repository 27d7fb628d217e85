// Package ics serializes aggregated events to iCalendar for export.
package ics

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	"mcal/internal/calendar"
)

// Write serializes events as a VCALENDAR. Event UIDs are qualified with
// the owning account so the same remote id appearing under two accounts
// stays distinct.
func Write(w io.Writer, events []calendar.Event) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//mcal//agenda export//EN")

	now := time.Now().UTC()
	for _, ev := range events {
		ve := cal.AddEvent(fmt.Sprintf("%s@%s", ev.ID, ev.Account))
		ve.SetDtStampTime(now)
		ve.SetSummary(ev.Summary)
		if ev.AllDay {
			ve.SetAllDayStartAt(ev.Start)
			ve.SetAllDayEndAt(ev.End)
		} else {
			ve.SetStartAt(ev.Start)
			ve.SetEndAt(ev.End)
		}
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.HTMLLink != "" {
			ve.SetURL(ev.HTMLLink)
		}
	}

	if err := cal.SerializeTo(w); err != nil {
		return fmt.Errorf("failed to serialize calendar: %w", err)
	}
	return nil
}

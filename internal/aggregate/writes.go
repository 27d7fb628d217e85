package aggregate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mcal/internal/calendar"
	"mcal/internal/logging"
)

// ErrNoMatchingEvent means a delete found no event matching the text.
var ErrNoMatchingEvent = errors.New("no matching event")

// primaryCalendarID is where write operations land.
const primaryCalendarID = "primary"

// AddEventInput describes an event to create on one account's primary
// calendar. End is derived from Start plus Duration.
type AddEventInput struct {
	Title       string
	Start       time.Time
	Duration    time.Duration
	AllDay      bool
	Location    string
	Description string
	Attendees   []string
}

// QuickAdd creates an event from natural language text on one account.
// Write operations never fan out.
func (e *Engine) QuickAdd(ctx context.Context, account, text string) (*calendar.Event, error) {
	svc, err := e.openFor(ctx, account)
	if err != nil {
		return nil, err
	}
	ev, err := svc.QuickAdd(ctx, primaryCalendarID, text)
	if err != nil {
		return nil, err
	}
	e.logger.Info("created event",
		logging.Operation("quick_add"),
		logging.Account(account))
	return ev, nil
}

// AddEvent creates a detailed event on one account's primary calendar.
func (e *Engine) AddEvent(ctx context.Context, account string, input AddEventInput) (*calendar.Event, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("event title is required")
	}
	if input.Start.IsZero() {
		return nil, fmt.Errorf("event start time is required")
	}

	end := input.Start.Add(input.Duration)
	if input.AllDay {
		if input.Duration <= 0 {
			end = input.Start.AddDate(0, 0, 1)
		}
	} else if input.Duration <= 0 {
		end = input.Start.Add(time.Hour)
	}

	svc, err := e.openFor(ctx, account)
	if err != nil {
		return nil, err
	}
	ev, err := svc.InsertEvent(ctx, primaryCalendarID, calendar.EventInput{
		Summary:     input.Title,
		Start:       input.Start.In(e.loc),
		End:         end.In(e.loc),
		AllDay:      input.AllDay,
		Location:    input.Location,
		Description: input.Description,
		Attendees:   input.Attendees,
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info("created event",
		logging.Operation("add_event"),
		logging.Account(account))
	return ev, nil
}

// FindMatches returns the account's events matching the text, earliest
// first, using the default search window.
func (e *Engine) FindMatches(ctx context.Context, account, matchText string) ([]calendar.Event, error) {
	svc, err := e.openFor(ctx, account)
	if err != nil {
		return nil, err
	}
	return findMatches(ctx, svc, e.loc, matchText)
}

func findMatches(ctx context.Context, svc Service, loc *time.Location, matchText string) ([]calendar.Event, error) {
	cals, err := svc.ListCalendars(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().In(loc)
	var matches []calendar.Event
	for _, cal := range cals {
		if !eligibleRole(cal.AccessRole) {
			continue
		}
		evs, err := svc.ListEvents(ctx, cal.ID, cal.Summary, now.Add(-searchLookBehind), now.Add(searchLookAhead), matchText)
		if err != nil {
			return nil, err
		}
		matches = append(matches, evs...)
	}
	sortEvents(matches)
	return matches, nil
}

// DeleteEventByID deletes one specific event. Callers that already showed
// the user a concrete match use this, so the event removed is exactly the
// one confirmed even if remote state changed in between.
func (e *Engine) DeleteEventByID(ctx context.Context, account, calendarID, eventID string) error {
	svc, err := e.openFor(ctx, account)
	if err != nil {
		return err
	}
	if err := svc.DeleteEvent(ctx, calendarID, eventID); err != nil {
		return err
	}
	e.logger.Info("deleted event",
		logging.Operation("delete_event"),
		logging.Account(account))
	return nil
}

// DeleteEvent deletes the earliest event on the account matching the text
// and returns it. It fails with ErrNoMatchingEvent when nothing matches.
func (e *Engine) DeleteEvent(ctx context.Context, account, matchText string) (*calendar.Event, error) {
	svc, err := e.openFor(ctx, account)
	if err != nil {
		return nil, err
	}
	matches, err := findMatches(ctx, svc, e.loc, matchText)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %q on account %q", ErrNoMatchingEvent, matchText, account)
	}

	target := matches[0]
	if err := svc.DeleteEvent(ctx, target.CalendarID, target.ID); err != nil {
		return nil, err
	}
	e.logger.Info("deleted event",
		logging.Operation("delete_event"),
		logging.Account(account))
	return &target, nil
}

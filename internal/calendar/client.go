package calendar

import (
	"context"
	"fmt"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"mcal/internal/auth"
)

// Client wraps the Google Calendar service for one authorized account.
type Client struct {
	svc     *gcal.Service
	account string
	loc     *time.Location
}

// NewClient creates a Calendar client from an authorized session. All
// event timestamps it returns are normalized into loc.
func NewClient(ctx context.Context, sess *auth.Session, loc *time.Location) (*Client, error) {
	if loc == nil {
		loc = time.UTC
	}
	svc, err := gcal.NewService(ctx, option.WithHTTPClient(sess.HTTPClient()))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return &Client{svc: svc, account: sess.Account(), loc: loc}, nil
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string { return c.account }

// ListCalendars lists all calendars the account can see, following
// pagination to the end.
func (c *Client) ListCalendars(ctx context.Context) ([]Calendar, error) {
	var calendars []Calendar
	err := c.svc.CalendarList.List().Pages(ctx, func(page *gcal.CalendarList) error {
		for _, entry := range page.Items {
			calendars = append(calendars, toCalendar(entry, c.account))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}
	return calendars, nil
}

// ListEvents lists events in a calendar within a time range, optionally
// restricted by a free-text query. Recurring events are expanded and
// cancelled instances skipped.
func (c *Client) ListEvents(ctx context.Context, calendarID, calendarName string, timeMin, timeMax time.Time, query string) ([]Event, error) {
	call := c.svc.Events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")
	if query != "" {
		call = call.Q(query)
	}

	var events []Event
	err := call.Pages(ctx, func(page *gcal.Events) error {
		for _, item := range page.Items {
			if item.Status == "cancelled" {
				continue
			}
			ev, err := toEvent(item, c.account, calendarID, calendarName, c.loc)
			if err != nil {
				return err
			}
			events = append(events, ev)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events in %s: %w", calendarID, err)
	}
	return events, nil
}

// QuickAdd creates an event from natural language text.
func (c *Client) QuickAdd(ctx context.Context, calendarID, text string) (*Event, error) {
	created, err := c.svc.Events.QuickAdd(calendarID, text).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to quick-add event: %w", err)
	}
	ev, err := toEvent(created, c.account, calendarID, "", c.loc)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// InsertEvent creates a new event. All-day events are sent with
// date-valued bounds; timed events carry the target timezone.
func (c *Client) InsertEvent(ctx context.Context, calendarID string, input EventInput) (*Event, error) {
	event := &gcal.Event{
		Summary:     input.Summary,
		Location:    input.Location,
		Description: input.Description,
	}

	if input.AllDay {
		event.Start = &gcal.EventDateTime{Date: input.Start.Format("2006-01-02")}
		event.End = &gcal.EventDateTime{Date: input.End.Format("2006-01-02")}
	} else {
		event.Start = &gcal.EventDateTime{
			DateTime: input.Start.Format(time.RFC3339),
			TimeZone: c.loc.String(),
		}
		event.End = &gcal.EventDateTime{
			DateTime: input.End.Format(time.RFC3339),
			TimeZone: c.loc.String(),
		}
	}

	for _, email := range input.Attendees {
		event.Attendees = append(event.Attendees, &gcal.EventAttendee{Email: email})
	}

	created, err := c.svc.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	ev, err := toEvent(created, c.account, calendarID, "", c.loc)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// DeleteEvent deletes an event by id.
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	if err := c.svc.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", eventID, err)
	}
	return nil
}

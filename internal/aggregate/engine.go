package aggregate

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"mcal/internal/auth"
	"mcal/internal/calendar"
	"mcal/internal/credstore"
	"mcal/internal/instrumentation"
	"mcal/internal/logging"
	"mcal/internal/registry"
)

// DefaultConcurrency bounds simultaneous in-flight account fetches.
const DefaultConcurrency = 5

// Default query windows for text search.
const (
	searchLookBehind = 30 * 24 * time.Hour
	searchLookAhead  = 365 * 24 * time.Hour
)

// Service is the per-account slice of the remote calendar capability the
// engine drives. *calendar.Client implements it.
type Service interface {
	ListCalendars(ctx context.Context) ([]calendar.Calendar, error)
	ListEvents(ctx context.Context, calendarID, calendarName string, timeMin, timeMax time.Time, query string) ([]calendar.Event, error)
	QuickAdd(ctx context.Context, calendarID, text string) (*calendar.Event, error)
	InsertEvent(ctx context.Context, calendarID string, input calendar.EventInput) (*calendar.Event, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// SessionSource hands out one authorized session per account.
// *auth.Manager implements it.
type SessionSource interface {
	ObtainSession(ctx context.Context, account string) (*auth.Session, error)
}

// OpenFunc turns an authorized session into a Service.
type OpenFunc func(ctx context.Context, sess *auth.Session) (Service, error)

// Query restricts a fetch to a time range and/or free-text search.
type Query struct {
	TimeMin time.Time
	TimeMax time.Time
	Text    string
}

// AccountFailure records one account whose fetch failed.
type AccountFailure struct {
	Account string
	Err     error
}

// Failure kind labels exposed to display layers.
const (
	KindNotAuthenticated = "not_authenticated"
	KindReauthRequired   = "reauthentication_required"
	KindConfiguration    = "configuration"
	KindCanceled         = "canceled"
	KindRemote           = "remote"
)

// Kind classifies the failure for display purposes.
func (f AccountFailure) Kind() string {
	switch {
	case errors.Is(f.Err, auth.ErrNotAuthenticated):
		return KindNotAuthenticated
	case errors.Is(f.Err, auth.ErrReauthenticationRequired):
		return KindReauthRequired
	case errors.Is(f.Err, credstore.ErrNoClientIdentity):
		return KindConfiguration
	case errors.Is(f.Err, context.Canceled), errors.Is(f.Err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindRemote
	}
}

// Result is a merged, chronologically sorted event sequence plus the
// accounts whose fetch failed, so callers can report partial success.
type Result struct {
	Events   []calendar.Event
	Failures []AccountFailure
	Canceled bool
}

// CalendarList is the fan-out result of a calendar listing.
type CalendarList struct {
	Calendars []calendar.Calendar
	Failures  []AccountFailure
	Canceled  bool
}

// Engine drives the lifecycle manager per account, fetches concurrently,
// and merges results deterministically.
type Engine struct {
	sessions SessionSource
	open     OpenFunc
	limit    int
	loc      *time.Location
	logger   *slog.Logger
	metrics  *instrumentation.Metrics
	tracer   trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithConcurrency sets the bound on simultaneous account fetches.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.limit = n
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics attaches aggregation metrics.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithOpener overrides how a session becomes a Service. Tests use this to
// substitute a fake remote.
func WithOpener(open OpenFunc) Option {
	return func(e *Engine) {
		if open != nil {
			e.open = open
		}
	}
}

// NewEngine creates an engine that opens real Calendar clients normalizing
// timestamps into loc.
func NewEngine(sessions SessionSource, loc *time.Location, opts ...Option) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	e := &Engine{
		sessions: sessions,
		limit:    DefaultConcurrency,
		loc:      loc,
		logger:   slog.Default(),
		tracer:   otel.Tracer("mcal/aggregate"),
	}
	e.open = func(ctx context.Context, sess *auth.Session) (Service, error) {
		return calendar.NewClient(ctx, sess, loc)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FetchAll fetches events for the resolved account set concurrently and
// merges them into one sorted sequence. Per-account failures are collected,
// never propagated; with zero accounts the result is empty.
func (e *Engine) FetchAll(ctx context.Context, accounts []registry.Account, q Query, calendarFilters []string) (*Result, error) {
	ctx, span := e.tracer.Start(ctx, "aggregate.FetchAll",
		trace.WithAttributes(attribute.Int("accounts", len(accounts))))
	defer span.End()

	if len(accounts) == 0 {
		return &Result{}, nil
	}

	type slot struct {
		events []calendar.Event
		err    error
	}
	slots := make([]slot, len(accounts))

	g := new(errgroup.Group)
	g.SetLimit(e.limit)
	for i, acct := range accounts {
		i, name := i, acct.Name
		g.Go(func() error {
			start := time.Now()
			events, err := e.fetchAccount(ctx, name, q, calendarFilters)
			slots[i] = slot{events: events, err: err}

			status := logging.StatusSuccess
			if err != nil {
				status = logging.StatusError
			}
			e.metrics.RecordAccountFetch(ctx, name, status, time.Since(start))
			e.logger.Debug("account fetch settled",
				logging.Operation("fetch"),
				logging.Account(name),
				logging.Status(status),
				logging.Duration(time.Since(start)),
				logging.Err(err))
			return nil
		})
	}
	g.Wait()

	res := &Result{Canceled: ctx.Err() != nil}
	for i, acct := range accounts {
		if slots[i].err != nil {
			res.Failures = append(res.Failures, AccountFailure{Account: acct.Name, Err: slots[i].err})
			continue
		}
		res.Events = append(res.Events, slots[i].events...)
	}
	sortEvents(res.Events)

	e.metrics.RecordMergedEvents(ctx, len(res.Events))
	span.SetAttributes(
		attribute.Int("events", len(res.Events)),
		attribute.Int("failures", len(res.Failures)))
	return res, nil
}

// SearchEvents fetches by free text across accounts with the default
// search window, using the same fan-out and merge policy as FetchAll.
func (e *Engine) SearchEvents(ctx context.Context, accounts []registry.Account, text string, calendarFilters []string) (*Result, error) {
	now := time.Now().In(e.loc)
	return e.FetchAll(ctx, accounts, Query{
		TimeMin: now.Add(-searchLookBehind),
		TimeMax: now.Add(searchLookAhead),
		Text:    text,
	}, calendarFilters)
}

// ListCalendars lists calendars across accounts with the same fan-out,
// failure isolation, and name-filter discipline as FetchAll.
func (e *Engine) ListCalendars(ctx context.Context, accounts []registry.Account, calendarFilters []string) (*CalendarList, error) {
	ctx, span := e.tracer.Start(ctx, "aggregate.ListCalendars",
		trace.WithAttributes(attribute.Int("accounts", len(accounts))))
	defer span.End()

	if len(accounts) == 0 {
		return &CalendarList{}, nil
	}

	type slot struct {
		calendars []calendar.Calendar
		err       error
	}
	slots := make([]slot, len(accounts))

	g := new(errgroup.Group)
	g.SetLimit(e.limit)
	for i, acct := range accounts {
		i, name := i, acct.Name
		g.Go(func() error {
			cals, err := e.listAccountCalendars(ctx, name, calendarFilters)
			slots[i] = slot{calendars: cals, err: err}
			return nil
		})
	}
	g.Wait()

	res := &CalendarList{Canceled: ctx.Err() != nil}
	for i, acct := range accounts {
		if slots[i].err != nil {
			res.Failures = append(res.Failures, AccountFailure{Account: acct.Name, Err: slots[i].err})
			continue
		}
		res.Calendars = append(res.Calendars, slots[i].calendars...)
	}
	sort.Slice(res.Calendars, func(i, j int) bool {
		a, b := res.Calendars[i], res.Calendars[j]
		if a.Account != b.Account {
			return a.Account < b.Account
		}
		if a.Summary != b.Summary {
			return a.Summary < b.Summary
		}
		return a.ID < b.ID
	})
	return res, nil
}

// fetchAccount is one account's unit of work: obtain a session, list the
// account's calendars, and fetch events from those that pass the role and
// name filters. Filtering happens before any per-calendar event fetch.
func (e *Engine) fetchAccount(ctx context.Context, account string, q Query, calendarFilters []string) ([]calendar.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	svc, err := e.openFor(ctx, account)
	if err != nil {
		return nil, err
	}

	cals, err := svc.ListCalendars(ctx)
	if err != nil {
		return nil, err
	}

	var events []calendar.Event
	for _, cal := range cals {
		if !eligibleRole(cal.AccessRole) {
			continue
		}
		if !MatchesCalendarFilter(cal.Summary, calendarFilters) {
			continue
		}
		evs, err := svc.ListEvents(ctx, cal.ID, cal.Summary, q.TimeMin, q.TimeMax, q.Text)
		if err != nil {
			return nil, err
		}
		events = append(events, evs...)
	}
	return events, nil
}

func (e *Engine) listAccountCalendars(ctx context.Context, account string, calendarFilters []string) ([]calendar.Calendar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	svc, err := e.openFor(ctx, account)
	if err != nil {
		return nil, err
	}
	cals, err := svc.ListCalendars(ctx)
	if err != nil {
		return nil, err
	}

	filtered := cals[:0]
	for _, cal := range cals {
		if MatchesCalendarFilter(cal.Summary, calendarFilters) {
			filtered = append(filtered, cal)
		}
	}
	return filtered, nil
}

func (e *Engine) openFor(ctx context.Context, account string) (Service, error) {
	sess, err := e.sessions.ObtainSession(ctx, account)
	if err != nil {
		return nil, err
	}
	return e.open(ctx, sess)
}

// eligibleRole excludes freeBusyReader calendars: that role cannot return
// event content, only busy blocks, and would yield silently empty data.
func eligibleRole(role string) bool {
	switch role {
	case calendar.RoleOwner, calendar.RoleWriter, calendar.RoleReader:
		return true
	}
	return false
}

// sortEvents orders by start instant ascending with a stable, deterministic
// tie-break (account, then title, then id) so repeated runs over identical
// input produce identical order.
func sortEvents(events []calendar.Event) {
	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if a.Account != b.Account {
			return a.Account < b.Account
		}
		if a.Summary != b.Summary {
			return a.Summary < b.Summary
		}
		return a.ID < b.ID
	})
}

// Package calendar wraps the Google Calendar v3 API behind the small
// per-account surface the aggregation engine needs: listing calendars,
// listing and searching events, and single-calendar writes.
//
// Every timestamp leaving this package is normalized into the configured
// display timezone, including all-day event boundaries, so values are
// always timezone-aware and mutually comparable.
package calendar

package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records aggregation measurements. A nil *Metrics is valid and
// records nothing, so callers never need to guard.
type Metrics struct {
	accountFetches metric.Int64Counter
	fetchDuration  metric.Float64Histogram
	eventsMerged   metric.Int64Counter
}

// NewMetrics creates the aggregation instruments on the global meter.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("mcal/aggregate")

	accountFetches, err := meter.Int64Counter("mcal_account_fetches_total",
		metric.WithDescription("Per-account fetches by status"))
	if err != nil {
		return nil, fmt.Errorf("failed to create account fetches counter: %w", err)
	}

	fetchDuration, err := meter.Float64Histogram("mcal_account_fetch_duration_seconds",
		metric.WithDescription("Duration of per-account fetches"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("failed to create fetch duration histogram: %w", err)
	}

	eventsMerged, err := meter.Int64Counter("mcal_events_merged_total",
		metric.WithDescription("Events returned by merged aggregation results"))
	if err != nil {
		return nil, fmt.Errorf("failed to create merged events counter: %w", err)
	}

	return &Metrics{
		accountFetches: accountFetches,
		fetchDuration:  fetchDuration,
		eventsMerged:   eventsMerged,
	}, nil
}

// RecordAccountFetch records one settled per-account fetch.
func (m *Metrics) RecordAccountFetch(ctx context.Context, account, status string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("account", account),
		attribute.String("status", status),
	)
	m.accountFetches.Add(ctx, 1, attrs)
	m.fetchDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordMergedEvents records the size of a merged result.
func (m *Metrics) RecordMergedEvents(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.eventsMerged.Add(ctx, int64(n))
}

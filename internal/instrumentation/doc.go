// Package instrumentation configures OpenTelemetry metrics and tracing
// for the aggregation path. Exporters are selected via environment
// variables and default to none, which yields no-op providers.
package instrumentation

package observability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ParseMetrics holds the domain instruments for name parsing, the GraphQL
// endpoint and the surname override table.
type ParseMetrics struct {
	parses        metric.Int64Counter
	issues        metric.Int64Counter
	parseDuration metric.Float64Histogram
	batchSize     metric.Int64Histogram

	requestDuration metric.Float64Histogram
	requestCounter  metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter

	overrideReloads metric.Int64Counter
	overrideSize    metric.Int64Gauge
	adminDenied     metric.Int64Counter
	authDenied      metric.Int64Counter
}

// ParseOutcome describes one finished parse for metric attributes.
type ParseOutcome struct {
	Layout   string
	Error    bool
	Cleaned  bool
	Issues   []string
	Duration time.Duration
}

// NewParseMetrics creates the instruments on meter.
func NewParseMetrics(meter metric.Meter) (*ParseMetrics, error) {
	m := &ParseMetrics{}
	var err error

	if m.parses, err = meter.Int64Counter(
		"nameparse.parses.total",
		metric.WithDescription("Total number of names parsed"),
	); err != nil {
		return nil, fmt.Errorf("failed to create parses counter: %w", err)
	}
	if m.issues, err = meter.Int64Counter(
		"nameparse.issues.total",
		metric.WithDescription("Total number of validation issues recorded"),
	); err != nil {
		return nil, fmt.Errorf("failed to create issues counter: %w", err)
	}
	if m.parseDuration, err = meter.Float64Histogram(
		"nameparse.parse.duration",
		metric.WithDescription("Duration of a single name parse in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, fmt.Errorf("failed to create parse duration histogram: %w", err)
	}
	if m.batchSize, err = meter.Int64Histogram(
		"nameparse.batch.size",
		metric.WithDescription("Number of names submitted in one batch"),
	); err != nil {
		return nil, fmt.Errorf("failed to create batch size histogram: %w", err)
	}

	if m.requestDuration, err = meter.Float64Histogram(
		"nameparse.requests.duration",
		metric.WithDescription("Duration of GraphQL requests in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, fmt.Errorf("failed to create request duration histogram: %w", err)
	}
	if m.requestCounter, err = meter.Int64Counter(
		"nameparse.requests.total",
		metric.WithDescription("Total number of GraphQL requests"),
	); err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}
	if m.activeRequests, err = meter.Int64UpDownCounter(
		"nameparse.requests.active",
		metric.WithDescription("Number of in-flight GraphQL requests"),
	); err != nil {
		return nil, fmt.Errorf("failed to create active requests counter: %w", err)
	}

	if m.overrideReloads, err = meter.Int64Counter(
		"nameparse.overrides.reloads.total",
		metric.WithDescription("Surname override table loads by outcome"),
	); err != nil {
		return nil, fmt.Errorf("failed to create override reload counter: %w", err)
	}
	if m.overrideSize, err = meter.Int64Gauge(
		"nameparse.overrides.size",
		metric.WithDescription("Entries in the active surname override table"),
	); err != nil {
		return nil, fmt.Errorf("failed to create override size gauge: %w", err)
	}
	if m.adminDenied, err = meter.Int64Counter(
		"nameparse.admin.denied.total",
		metric.WithDescription("Admin requests rejected by token checks"),
	); err != nil {
		return nil, fmt.Errorf("failed to create admin denied counter: %w", err)
	}
	if m.authDenied, err = meter.Int64Counter(
		"nameparse.auth.denied.total",
		metric.WithDescription("Requests rejected by bearer token validation"),
	); err != nil {
		return nil, fmt.Errorf("failed to create auth denied counter: %w", err)
	}

	return m, nil
}

// InitMetrics creates ParseMetrics on the global meter provider.
func InitMetrics(logger *slog.Logger) (*ParseMetrics, error) {
	metrics, err := NewParseMetrics(otel.Meter(InstrumentationName))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize parse metrics: %w", err)
	}
	logger.Info("parse metrics initialized")
	return metrics, nil
}

// RecordParse records one parse. A nil receiver is a no-op so callers can
// run without metrics.
func (m *ParseMetrics) RecordParse(ctx context.Context, source string, out ParseOutcome) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("layout", out.Layout),
		attribute.Bool("error", out.Error),
		attribute.Bool("cleaned", out.Cleaned),
	)
	m.parses.Add(ctx, 1, attrs)
	m.parseDuration.Record(ctx, float64(out.Duration.Microseconds())/1000, attrs)
	for _, kind := range out.Issues {
		m.issues.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
	}
}

// RecordBatch records the size of a batch request.
func (m *ParseMetrics) RecordBatch(ctx context.Context, source string, size int) {
	if m == nil {
		return
	}
	m.batchSize.Record(ctx, int64(size), metric.WithAttributes(attribute.String("source", source)))
}

// RecordRequest records a GraphQL request with its duration and outcome.
func (m *ParseMetrics) RecordRequest(ctx context.Context, duration time.Duration, hasErrors bool, operation string) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.Bool("has_errors", hasErrors),
	)
	m.requestDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	m.requestCounter.Add(ctx, 1, attrs)
}

// IncrementActiveRequests increments the active requests counter
func (m *ParseMetrics) IncrementActiveRequests(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeRequests.Add(ctx, 1)
}

// DecrementActiveRequests decrements the active requests counter
func (m *ParseMetrics) DecrementActiveRequests(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeRequests.Add(ctx, -1)
}

// RecordOverrideLoad records a load of the override table from source.
// size is only reported on success.
func (m *ParseMetrics) RecordOverrideLoad(ctx context.Context, source string, size int, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.overrideReloads.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("outcome", outcome),
	))
	if err == nil {
		m.overrideSize.Record(ctx, int64(size))
	}
}

// RecordAdminDenied records a rejected admin request.
func (m *ParseMetrics) RecordAdminDenied(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.adminDenied.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordAuthDenied records a request rejected by bearer token validation.
func (m *ParseMetrics) RecordAuthDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	m.authDenied.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("reason", reason),
	))
}

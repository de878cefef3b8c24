package metrics

import (
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	HTTPRequestsTotal       metric.Int64Counter
	HTTPRequestDuration     metric.Float64Histogram
	UpstreamRequestsTotal   metric.Int64Counter
	UpstreamDurationSeconds metric.Float64Histogram
	CitiesReturnedTotal     metric.Int64Counter
	RecordsSkippedTotal     metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	initErr    error
	once       sync.Once
)

// New creates the instruments on the given meter.
func New(meter metric.Meter) (*AppMetrics, error) {
	var err error
	m := &AppMetrics{}

	m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of inbound HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("metrics: http_requests_total: %w", err)
	}

	m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("Duration of inbound HTTP requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("metrics: http_request_duration_seconds: %w", err)
	}

	m.UpstreamRequestsTotal, err = meter.Int64Counter(
		"notion_requests_total",
		metric.WithDescription("Total number of Notion database queries by outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("metrics: notion_requests_total: %w", err)
	}

	m.UpstreamDurationSeconds, err = meter.Float64Histogram(
		"notion_request_duration_seconds",
		metric.WithDescription("Duration of Notion database queries in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("metrics: notion_request_duration_seconds: %w", err)
	}

	m.CitiesReturnedTotal, err = meter.Int64Counter(
		"cities_returned_total",
		metric.WithDescription("Total number of city names returned to clients"),
		metric.WithUnit("{city}"),
	)
	if err != nil {
		return nil, fmt.Errorf("metrics: cities_returned_total: %w", err)
	}

	m.RecordsSkippedTotal, err = meter.Int64Counter(
		"records_skipped_total",
		metric.WithDescription("Total number of Notion pages dropped during city extraction"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, fmt.Errorf("metrics: records_skipped_total: %w", err)
	}

	return m, nil
}

// InitAppMetrics initializes the global instruments once, using the meter
// from the globally configured MeterProvider.
func InitAppMetrics() (*AppMetrics, error) {
	once.Do(func() {
		appMetrics, initErr = New(otel.GetMeterProvider().Meter("notion-city-proxy"))
	})
	return appMetrics, initErr
}

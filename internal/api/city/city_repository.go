package city

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/FACorreiaa/notion-city-proxy/app/notion"
	"github.com/FACorreiaa/notion-city-proxy/app/observability/metrics"
	"github.com/FACorreiaa/notion-city-proxy/internal/types"
)

var _ CityRepository = (*NotionCityRepository)(nil)

type CityRepository interface {
	QueryCityPages(ctx context.Context) ([]types.Page, error)
}

// DatabaseQuerier is satisfied by *notion.Client.
type DatabaseQuerier interface {
	QueryDatabase(ctx context.Context, databaseID string, query types.QueryDatabaseRequest) (*types.QueryDatabaseResponse, error)
}

type NotionCityRepository struct {
	logger     *slog.Logger
	client     DatabaseQuerier
	databaseID string
	metrics    *metrics.AppMetrics
}

func NewCityRepository(client DatabaseQuerier, databaseID string, m *metrics.AppMetrics, logger *slog.Logger) *NotionCityRepository {
	return &NotionCityRepository{
		logger:     logger,
		client:     client,
		databaseID: databaseID,
		metrics:    m,
	}
}

// QueryCityPages returns the first page of results with no filter or sort,
// in the order Notion returned them.
func (r *NotionCityRepository) QueryCityPages(ctx context.Context) ([]types.Page, error) {
	start := time.Now()
	resp, err := r.client.QueryDatabase(ctx, r.databaseID, types.QueryDatabaseRequest{})

	outcome := queryOutcome(err)
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	r.metrics.UpstreamRequestsTotal.Add(ctx, 1, attrs)
	r.metrics.UpstreamDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)

	if err != nil {
		return nil, err
	}
	if resp.HasMore {
		r.logger.DebugContext(ctx, "Notion has more results than the first page",
			slog.Int("returned", len(resp.Results)))
	}
	return resp.Results, nil
}

func queryOutcome(err error) string {
	var he *notion.HTTPError
	var te *notion.TransportError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, notion.ErrUpstreamTimeout):
		return "timeout"
	case errors.As(err, &he):
		return "http_error"
	case errors.As(err, &te):
		return "transport_error"
	default:
		return "error"
	}
}

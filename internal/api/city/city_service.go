package city

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/FACorreiaa/notion-city-proxy/app/observability/metrics"
	"github.com/FACorreiaa/notion-city-proxy/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	GetAllCities(ctx context.Context) ([]string, error)
}

type ServiceImpl struct {
	logger       *slog.Logger
	repo         CityRepository
	propertyName string
	metrics      *metrics.AppMetrics
}

func NewCityService(repo CityRepository, propertyName string, m *metrics.AppMetrics, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:       logger,
		repo:         repo,
		propertyName: propertyName,
		metrics:      m,
	}
}

// GetAllCities returns one trimmed name per page that carries a usable city
// property, in upstream order. Pages without one are logged and dropped.
// Upstream errors are returned wrapped and unchanged in kind.
func (s *ServiceImpl) GetAllCities(ctx context.Context) ([]string, error) {
	l := s.logger.With(slog.String("method", "GetAllCities"))

	pages, err := s.repo.QueryCityPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("error querying city pages: %w", err)
	}

	cities := make([]string, 0, len(pages))
	for _, page := range pages {
		name, skipped := ExtractCityName(page, s.propertyName)
		if skipped != nil {
			l.WarnContext(ctx, "Skipping page without a usable city name",
				slog.String("page_id", skipped.PageID),
				slog.String("property", s.propertyName),
				slog.String("reason", string(skipped.Reason)),
				slog.String("raw", string(skipped.Property)),
			)
			s.metrics.RecordsSkippedTotal.Add(ctx, 1,
				metric.WithAttributes(attribute.String("reason", string(skipped.Reason))))
			continue
		}
		cities = append(cities, name)
	}

	s.metrics.CitiesReturnedTotal.Add(ctx, int64(len(cities)))
	l.InfoContext(ctx, "Fetched cities from Notion",
		slog.Int("pages", len(pages)),
		slog.Int("cities", len(cities)),
	)
	return cities, nil
}

// ExtractCityName reads the named property of page. Only title and
// rich_text properties are interpreted, and only their first segment.
func ExtractCityName(page types.Page, propertyName string) (string, *types.SkippedCity) {
	prop, ok, err := page.Property(propertyName)
	if !ok {
		return "", &types.SkippedCity{PageID: page.ID, Reason: types.SkipMissingProperty}
	}
	if err != nil {
		return "", &types.SkippedCity{PageID: page.ID, Reason: types.SkipMalformedProperty, Property: prop.Raw}
	}

	var segments []types.RichText
	switch v := prop.Value.(type) {
	case types.TitleValue:
		segments = v.Segments
	case types.RichTextValue:
		segments = v.Segments
	default:
		return "", &types.SkippedCity{PageID: page.ID, Reason: types.SkipUnsupportedProperty, Property: prop.Raw}
	}

	if len(segments) == 0 {
		return "", &types.SkippedCity{PageID: page.ID, Reason: types.SkipEmptyName, Property: prop.Raw}
	}
	name := strings.TrimSpace(segments[0].PlainText)
	if name == "" {
		return "", &types.SkippedCity{PageID: page.ID, Reason: types.SkipEmptyName, Property: prop.Raw}
	}
	return name, nil
}
